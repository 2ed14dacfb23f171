package models

import "time"

// DutyEventKind is either a check-in or a check-out
type DutyEventKind string

const (
	CheckIn  DutyEventKind = "check_in"
	CheckOut DutyEventKind = "check_out"
)

// Valid reports whether the kind is one of the known values
func (k DutyEventKind) Valid() bool {
	return k == CheckIn || k == CheckOut
}

// DutyEvent is a discrete check-in or check-out record
type DutyEvent struct {
	ID         string        `json:"id" db:"id"`
	SubjectID  string        `json:"subjectId" db:"subject_id"`
	Timestamp  time.Time     `json:"timestamp" db:"ts"`
	Kind       DutyEventKind `json:"kind" db:"kind"`
	Latitude   *float64      `json:"latitude,omitempty" db:"latitude"`
	Longitude  *float64      `json:"longitude,omitempty" db:"longitude"`
	LocationID string        `json:"locationId,omitempty" db:"location_id"` // Registered checkpoint, empty if none
}

// HasPosition reports whether the event carries coordinates
func (e DutyEvent) HasPosition() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// CreateDutyEventRequest is the body of POST /subjects/:subjectId/events
type CreateDutyEventRequest struct {
	Kind       DutyEventKind `json:"kind" binding:"required"`
	Timestamp  *time.Time    `json:"timestamp"`
	Latitude   *float64      `json:"latitude"`
	Longitude  *float64      `json:"longitude"`
	LocationID string        `json:"locationId"`
}
