package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates (day granularity).
const DateLayout = "2006-01-02"

// BusyInterval represents a continuous run of reserved nights.
// Start and End are inclusive calendar days; End is the last occupied night.
type BusyInterval struct {
	Start  time.Time `json:"-"`
	End    time.Time `json:"-"`
	Label  string    `json:"label,omitempty"`  // e.g., "Not available"
	Source string    `json:"source,omitempty"` // e.g., "Airbnb", "Airbnb+Booking.com"
}

type busyIntervalJSON struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Label  string `json:"label,omitempty"`
	Source string `json:"source,omitempty"`
}

func (b BusyInterval) MarshalJSON() ([]byte, error) {
	return json.Marshal(busyIntervalJSON{
		Start:  b.Start.Format(DateLayout),
		End:    b.End.Format(DateLayout),
		Label:  b.Label,
		Source: b.Source,
	})
}

func (b *BusyInterval) UnmarshalJSON(data []byte) error {
	var raw busyIntervalJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := time.ParseInLocation(DateLayout, raw.Start, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", raw.Start, err)
	}
	end, err := time.ParseInLocation(DateLayout, raw.End, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", raw.End, err)
	}
	b.Start, b.End = start, end
	b.Label, b.Source = raw.Label, raw.Source
	return nil
}

// Contains reports whether day d (truncated to day granularity) falls inside
// the interval, boundaries included.
func (b BusyInterval) Contains(d time.Time) bool {
	day := Day(d.Year(), d.Month(), d.Day())
	return !day.Before(b.Start) && !day.After(b.End)
}

// Nights returns the number of occupied nights, at least 1 for a valid interval.
func (b BusyInterval) Nights() int {
	return int(b.End.Sub(b.Start).Hours()/24) + 1
}

func (b BusyInterval) String() string {
	return fmt.Sprintf("%s..%s (%s)", b.Start.Format(DateLayout), b.End.Format(DateLayout), b.Source)
}

// Day builds a day-granularity timestamp (UTC midnight).
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
