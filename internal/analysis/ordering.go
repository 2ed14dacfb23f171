package analysis

import (
	"sort"

	"github.com/jengzang/fieldtrack-backend-go/internal/models"
)

// SortSamples returns a copy of samples ordered by timestamp, ties broken by ID.
// Delayed fixes can arrive after later ones, so every consumer sorts first.
func SortSamples(samples []models.PositionSample) []models.PositionSample {
	out := make([]models.PositionSample, len(samples))
	copy(out, samples)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SortEvents returns a copy of events ordered by timestamp.
// Events sharing a timestamp keep their input order.
func SortEvents(events []models.DutyEvent) []models.DutyEvent {
	out := make([]models.DutyEvent, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
