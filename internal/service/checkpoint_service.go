package service

import (
	"context"
	"fmt"

	"github.com/jengzang/fieldtrack-backend-go/internal/geofence"
	"github.com/jengzang/fieldtrack-backend-go/internal/models"
	"github.com/jengzang/fieldtrack-backend-go/internal/spatial"
)

// CheckpointStore reads and writes the checkpoint registry
type CheckpointStore interface {
	GetByID(ctx context.Context, id string) (*models.Checkpoint, error)
	Upsert(ctx context.Context, c models.Checkpoint) error
}

// CheckpointService handles checkpoint verification and registry maintenance
type CheckpointService struct {
	store    CheckpointStore
	verifier *geofence.Verifier
}

// NewCheckpointService creates a new checkpoint service
func NewCheckpointService(store CheckpointStore, toleranceMeters float64) *CheckpointService {
	return &CheckpointService{
		store:    store,
		verifier: geofence.NewVerifier(store, toleranceMeters),
	}
}

// Verify checks a reported position against the checkpoint
func (s *CheckpointService) Verify(ctx context.Context, position spatial.Point, checkpointID string) (geofence.Verdict, error) {
	if !position.Valid() {
		return geofence.Verdict{}, invalidInput("position out of range")
	}
	verdict, err := s.verifier.Verify(ctx, position, checkpointID)
	if err != nil {
		return geofence.Verdict{}, retrievalError("checkpoint", err)
	}
	return verdict, nil
}

// Get returns the checkpoint, or nil if it does not exist
func (s *CheckpointService) Get(ctx context.Context, id string) (*models.Checkpoint, error) {
	cp, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, retrievalError("checkpoint", err)
	}
	return cp, nil
}

// Upsert creates or replaces the checkpoint with the given id
func (s *CheckpointService) Upsert(ctx context.Context, id string, req models.UpsertCheckpointRequest) (*models.Checkpoint, error) {
	cp := models.Checkpoint{
		ID:              id,
		SiteID:          req.SiteID,
		Name:            req.Name,
		CenterLatitude:  req.CenterLatitude,
		CenterLongitude: req.CenterLongitude,
		RadiusMeters:    req.RadiusMeters,
		Status:          req.Status,
		Questions:       req.Questions,
	}
	if cp.Status == "" {
		cp.Status = models.CheckpointActive
	}
	if err := cp.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.store.Upsert(ctx, cp); err != nil {
		return nil, fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return s.Get(ctx, id)
}
