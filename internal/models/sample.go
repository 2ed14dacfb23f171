package models

import "time"

// ActivityType is the instantaneous movement class derived from reported speed
type ActivityType string

const (
	ActivityStill   ActivityType = "still"
	ActivityWalking ActivityType = "walking"
	ActivityVehicle ActivityType = "vehicle"
)

// FixTrigger tells the ingestor which path produced a raw fix
type FixTrigger string

const (
	TriggerMovement  FixTrigger = "movement"  // continuous watch update
	TriggerHeartbeat FixTrigger = "heartbeat" // periodic keep-alive fix
)

// RawFix is one position reading from a device before filtering
type RawFix struct {
	Timestamp time.Time `json:"timestamp"`
	Latitude  *float64  `json:"latitude"`           // nil when the payload omitted it
	Longitude *float64  `json:"longitude"`          // nil when the payload omitted it
	Accuracy  *float64  `json:"accuracy,omitempty"` // Meters, nil if unknown
	Speed     *float64  `json:"speed,omitempty"`    // m/s, nil if not reported
}

// HasPosition reports whether both coordinates were supplied
func (f RawFix) HasPosition() bool {
	return f.Latitude != nil && f.Longitude != nil
}

// PositionSample is an accepted and persisted fix
type PositionSample struct {
	ID           int64        `json:"id" db:"id"`
	SubjectID    string       `json:"subjectId" db:"subject_id"`
	Timestamp    time.Time    `json:"timestamp" db:"ts"`
	Latitude     float64      `json:"latitude" db:"latitude"`
	Longitude    float64      `json:"longitude" db:"longitude"`
	Accuracy     *float64     `json:"accuracy,omitempty" db:"accuracy"`
	Speed        float64      `json:"speed" db:"speed"`
	ActivityType ActivityType `json:"activityType" db:"activity_type"`
	Unreliable   bool         `json:"unreliable" db:"unreliable"`
	Trigger      FixTrigger   `json:"trigger" db:"fix_trigger"`
}
