package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/fieldtrack-backend-go/internal/models"
	"github.com/jengzang/fieldtrack-backend-go/internal/spatial"
)

// EventWriter persists duty events
type EventWriter interface {
	Insert(ctx context.Context, e models.DutyEvent) error
}

// EventService records check-ins and check-outs
type EventService struct {
	store EventWriter
	now   func() time.Time
}

// NewEventService creates a new event service
func NewEventService(store EventWriter) *EventService {
	return &EventService{store: store, now: time.Now}
}

// Record validates and stores a duty event. A missing timestamp means now.
func (s *EventService) Record(ctx context.Context, subjectID string, req models.CreateDutyEventRequest) (*models.DutyEvent, error) {
	if subjectID == "" {
		return nil, invalidInput("subject id is required")
	}
	if !req.Kind.Valid() {
		return nil, invalidInput("unknown event kind %q", req.Kind)
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, invalidInput("latitude and longitude must be given together")
	}
	if req.Latitude != nil && !(spatial.Point{Lat: *req.Latitude, Lon: *req.Longitude}).Valid() {
		return nil, invalidInput("position out of range")
	}

	ts := s.now()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	event := models.DutyEvent{
		ID:         uuid.NewString(),
		SubjectID:  subjectID,
		Timestamp:  ts.UTC(),
		Kind:       req.Kind,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		LocationID: req.LocationID,
	}
	if err := s.store.Insert(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record duty event: %w", err)
	}
	return &event, nil
}
