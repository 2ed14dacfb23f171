// Package geofence checks reported positions against registered checkpoints.
package geofence

import (
	"context"
	"fmt"

	"github.com/jengzang/fieldtrack-backend-go/internal/models"
	"github.com/jengzang/fieldtrack-backend-go/internal/spatial"
)

// Status is the outcome of a verification
type Status string

const (
	StatusVerified           Status = "verified"
	StatusOutOfRange         Status = "out_of_range"
	StatusCheckpointNotFound Status = "checkpoint_not_found"
	StatusCheckpointInactive Status = "checkpoint_inactive"
)

// Verdict is the typed result of Verify. DistanceMeters and RadiusMeters are set
// whenever the checkpoint was found and active, and are always serialized so a
// position at the exact center still reports 0.
type Verdict struct {
	Status         Status  `json:"status"`
	CheckpointID   string  `json:"checkpointId"`
	DistanceMeters float64 `json:"distanceMeters"`
	RadiusMeters   float64 `json:"radiusMeters"`
}

// Verified reports whether the position was accepted
func (v Verdict) Verified() bool {
	return v.Status == StatusVerified
}

// CheckpointRegistry looks up checkpoints; a missing id yields nil, nil
type CheckpointRegistry interface {
	GetByID(ctx context.Context, id string) (*models.Checkpoint, error)
}

// Verifier checks positions against the registry. It has no side effects.
type Verifier struct {
	registry        CheckpointRegistry
	toleranceMeters float64
}

// NewVerifier creates a new verifier
func NewVerifier(registry CheckpointRegistry, toleranceMeters float64) *Verifier {
	return &Verifier{registry: registry, toleranceMeters: toleranceMeters}
}

// Verify checks whether position lies inside the checkpoint's circle. The error is
// only set when the registry itself fails.
func (v *Verifier) Verify(ctx context.Context, position spatial.Point, checkpointID string) (Verdict, error) {
	verdict := Verdict{CheckpointID: checkpointID}

	cp, err := v.registry.GetByID(ctx, checkpointID)
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to get checkpoint: %w", err)
	}
	if cp == nil {
		verdict.Status = StatusCheckpointNotFound
		return verdict, nil
	}
	if cp.Status != models.CheckpointActive {
		verdict.Status = StatusCheckpointInactive
		return verdict, nil
	}

	center := spatial.Point{Lat: cp.CenterLatitude, Lon: cp.CenterLongitude}
	verdict.DistanceMeters = spatial.DistanceMeters(position, center)
	verdict.RadiusMeters = cp.RadiusMeters

	if spatial.IsWithinGeofence(position, center, cp.RadiusMeters, v.toleranceMeters) {
		verdict.Status = StatusVerified
	} else {
		verdict.Status = StatusOutOfRange
	}
	return verdict, nil
}
