package models

import (
	"errors"
	"fmt"
	"math"
)

// CheckpointStatus is the lifecycle state of a checkpoint
type CheckpointStatus string

const (
	CheckpointActive   CheckpointStatus = "active"
	CheckpointInactive CheckpointStatus = "inactive"
)

// Checkpoint is a registered circular geofence
type Checkpoint struct {
	ID              string           `json:"id" db:"id"`
	SiteID          string           `json:"siteId" db:"site_id"`
	Name            string           `json:"name" db:"name"`
	CenterLatitude  float64          `json:"centerLatitude" db:"center_lat"`
	CenterLongitude float64          `json:"centerLongitude" db:"center_lon"`
	RadiusMeters    float64          `json:"radiusMeters" db:"radius_meters"`
	Status          CheckpointStatus `json:"status" db:"status"`
	Questions       []string         `json:"questions,omitempty" db:"questions"` // Ordered verification questions
	CreatedAt       string           `json:"createdAt,omitempty" db:"created_at"`
	UpdatedAt       string           `json:"updatedAt,omitempty" db:"updated_at"`
}

// Validate checks the checkpoint invariants
func (c Checkpoint) Validate() error {
	if c.ID == "" {
		return errors.New("checkpoint id is required")
	}
	if !(c.RadiusMeters > 0) || math.IsInf(c.RadiusMeters, 0) {
		return fmt.Errorf("radius must be positive, got %v", c.RadiusMeters)
	}
	if math.IsNaN(c.CenterLatitude) || c.CenterLatitude < -90 || c.CenterLatitude > 90 {
		return fmt.Errorf("center latitude out of range: %v", c.CenterLatitude)
	}
	if math.IsNaN(c.CenterLongitude) || c.CenterLongitude < -180 || c.CenterLongitude > 180 {
		return fmt.Errorf("center longitude out of range: %v", c.CenterLongitude)
	}
	if c.Status != CheckpointActive && c.Status != CheckpointInactive {
		return fmt.Errorf("unknown checkpoint status %q", c.Status)
	}
	return nil
}

// UpsertCheckpointRequest is the body of PUT /checkpoints/:checkpointId
type UpsertCheckpointRequest struct {
	SiteID          string           `json:"siteId"`
	Name            string           `json:"name"`
	CenterLatitude  float64          `json:"centerLatitude"`
	CenterLongitude float64          `json:"centerLongitude"`
	RadiusMeters    float64          `json:"radiusMeters"`
	Status          CheckpointStatus `json:"status"`
	Questions       []string         `json:"questions"`
}

// VerifyPositionRequest is the body of POST /checkpoints/:checkpointId/verify
type VerifyPositionRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}
