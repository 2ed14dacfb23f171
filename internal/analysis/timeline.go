package analysis

import (
	"sort"
	"time"

	"github.com/jengzang/fieldtrack-backend-go/internal/models"
	"github.com/jengzang/fieldtrack-backend-go/internal/spatial"
)

type dutyState int

const (
	stateIdle dutyState = iota
	stateOnDuty
)

// Reconstruct turns one subject-day of duty events into an ordered sequence of work
// and travel intervals. It never fails on malformed ordering:
//
//   - CheckIn while idle opens a session; if a previous session closed with a
//     CheckOut, the gap becomes a travel interval whose distance is the path length
//     of the samples inside the gap.
//   - CheckOut while on duty closes the session as a completed work interval.
//   - CheckIn while on duty leaves the first session unterminated (no end, zero
//     duration) and opens a new one without a travel gap.
//   - CheckOut while idle is dangling and ignored.
//   - A session still open at the end of the stream is reported in progress.
//
// stops is optional; when given, travel intervals count the stops inside them.
func Reconstruct(subjectID string, events []models.DutyEvent, samples []models.PositionSample, stops []models.StopCluster) []models.TimelineInterval {
	intervals := []models.TimelineInterval{}
	sortedSamples := SortSamples(samples)

	state := stateIdle
	var open models.DutyEvent
	var lastCheckOut *time.Time

	for _, ev := range SortEvents(events) {
		switch ev.Kind {
		case models.CheckIn:
			if state == stateOnDuty {
				intervals = append(intervals, openWork(subjectID, open, models.StatusUnterminated))
			} else if lastCheckOut != nil {
				intervals = append(intervals, travel(subjectID, *lastCheckOut, ev.Timestamp, sortedSamples, stops))
			}
			open = ev
			state = stateOnDuty
			lastCheckOut = nil

		case models.CheckOut:
			if state != stateOnDuty {
				continue
			}
			end := ev.Timestamp
			intervals = append(intervals, models.TimelineInterval{
				SubjectID:       subjectID,
				Type:            models.IntervalWork,
				Status:          models.StatusCompleted,
				StartTime:       open.Timestamp,
				EndTime:         &end,
				DurationMinutes: end.Sub(open.Timestamp).Minutes(),
				LocationID:      open.LocationID,
			})
			lastCheckOut = &end
			state = stateIdle
		}
	}

	if state == stateOnDuty {
		intervals = append(intervals, openWork(subjectID, open, models.StatusInProgress))
	}

	return intervals
}

// Totals sums completed work and all travel intervals
func Totals(intervals []models.TimelineInterval) models.TimelineTotals {
	var t models.TimelineTotals
	for _, iv := range intervals {
		switch iv.Type {
		case models.IntervalWork:
			if iv.Status == models.StatusCompleted {
				t.WorkMinutes += iv.DurationMinutes
			}
		case models.IntervalTravel:
			t.TravelMinutes += iv.DurationMinutes
			t.TravelKm += iv.DistanceKm
		}
	}
	return t
}

func openWork(subjectID string, checkIn models.DutyEvent, status models.IntervalStatus) models.TimelineInterval {
	return models.TimelineInterval{
		SubjectID:  subjectID,
		Type:       models.IntervalWork,
		Status:     status,
		StartTime:  checkIn.Timestamp,
		LocationID: checkIn.LocationID,
	}
}

func travel(subjectID string, start, end time.Time, samples []models.PositionSample, stops []models.StopCluster) models.TimelineInterval {
	gap := samplesBetween(samples, start, end)
	points := make([]spatial.Point, len(gap))
	for i, s := range gap {
		points[i] = samplePoint(s)
	}

	stopCount := 0
	for _, st := range stops {
		if !st.StartTime.Before(start) && !st.EndTime.After(end) {
			stopCount++
		}
	}

	endCopy := end
	return models.TimelineInterval{
		SubjectID:       subjectID,
		Type:            models.IntervalTravel,
		Status:          models.StatusCompleted,
		StartTime:       start,
		EndTime:         &endCopy,
		DurationMinutes: end.Sub(start).Minutes(),
		DistanceKm:      spatial.PathLengthMeters(points) / 1000,
		StopCount:       stopCount,
	}
}

// samplesBetween returns the sorted samples with start <= ts <= end
func samplesBetween(sorted []models.PositionSample, start, end time.Time) []models.PositionSample {
	lo := sort.Search(len(sorted), func(i int) bool {
		return !sorted[i].Timestamp.Before(start)
	})
	hi := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].Timestamp.After(end)
	})
	if lo >= hi {
		return nil
	}
	return sorted[lo:hi]
}
