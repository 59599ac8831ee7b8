package calendar

import (
	"sort"

	"villacal/models"
)

// MergedLabel replaces the per-event summary whenever two bookings collapse
// into one continuous busy range.
const MergedLabel = "Booking (Not available)"

// Merge collapses overlapping and near-adjacent busy intervals into a minimal
// ordered list. Two intervals merge when the later one starts no more than one
// day after the earlier one ends: a checkout day routinely doubles as the next
// guest's checkin day, so a 1-day gap still reads as continuously unavailable.
// Gaps of two days or more stay separate. Merge is idempotent.
func Merge(intervals []models.BusyInterval) []models.BusyInterval {
	if len(intervals) <= 1 {
		return intervals
	}

	sorted := make([]models.BusyInterval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := make([]models.BusyInterval, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		// next.Start <= current.End + 1 day
		if !next.Start.After(current.End.AddDate(0, 0, 1)) {
			if next.Start.Before(current.Start) {
				current.Start = next.Start
			}
			if next.End.After(current.End) {
				current.End = next.End
			}
			current.Label = MergedLabel
			current.Source = current.Source + "+" + next.Source
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)

	return merged
}
