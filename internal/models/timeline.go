package models

import "time"

// IntervalType labels a timeline interval
type IntervalType string

const (
	IntervalWork   IntervalType = "work"
	IntervalTravel IntervalType = "travel"
)

// IntervalStatus describes whether an interval has a closing timestamp
type IntervalStatus string

const (
	StatusCompleted IntervalStatus = "completed"
	// StatusUnterminated marks a check-in superseded by another check-in
	StatusUnterminated IntervalStatus = "unterminated"
	// StatusInProgress marks the last open check-in of the stream
	StatusInProgress IntervalStatus = "in_progress"
)

// TimelineInterval is one labeled segment of a reconstructed day
type TimelineInterval struct {
	SubjectID       string         `json:"subjectId"`
	Type            IntervalType   `json:"type"`
	Status          IntervalStatus `json:"status"`
	StartTime       time.Time      `json:"startTime"`
	EndTime         *time.Time     `json:"endTime"` // nil unless completed
	DurationMinutes float64        `json:"durationMinutes"`
	DistanceKm      float64        `json:"distanceKm,omitempty"` // Travel only
	LocationID      string         `json:"locationId,omitempty"` // Work only, empty = unresolved
	StopCount       int            `json:"stopCount,omitempty"`  // Travel only
}

// TimelineTotals aggregates a timeline
type TimelineTotals struct {
	WorkMinutes   float64 `json:"workMinutes"`
	TravelMinutes float64 `json:"travelMinutes"`
	TravelKm      float64 `json:"travelKm"`
}

// DailyTimeline is the reconstructed day for one subject
type DailyTimeline struct {
	SubjectID string             `json:"subjectId"`
	Date      string             `json:"date"` // YYYY-MM-DD in the configured timezone
	Intervals []TimelineInterval `json:"intervals"`
	Totals    TimelineTotals     `json:"totals"`
}
