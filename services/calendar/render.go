package calendar

import (
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"villacal/models"
)

// RenderICS serializes merged busy intervals back into a minimal ICS
// document: one all-day VEVENT per interval, DTEND exclusive again
// (End + 1 day), so the output round-trips through ParseFeed.
func RenderICS(intervals []models.BusyInterval, calendarName string) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//villacal//availability proxy//EN")
	cal.SetXWRCalName(calendarName)

	now := time.Now().UTC()
	for _, iv := range intervals {
		event := cal.AddEvent(uuid.New().String())
		event.SetDtStampTime(now)
		event.SetAllDayStartAt(iv.Start)
		event.SetAllDayEndAt(iv.End.AddDate(0, 0, 1))
		label := iv.Label
		if label == "" {
			label = "Not available"
		}
		event.SetSummary(label)
		if iv.Source != "" {
			event.SetDescription("Source: " + iv.Source)
		}
	}

	return cal.Serialize()
}
