package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jengzang/fieldtrack-backend-go/internal/analysis"
	"github.com/jengzang/fieldtrack-backend-go/internal/models"
	"github.com/jengzang/fieldtrack-backend-go/internal/spatial"
)

const dateLayout = "2006-01-02"

// SampleReader reads accepted samples in [from, to)
type SampleReader interface {
	Query(ctx context.Context, subjectID string, from, to time.Time) ([]models.PositionSample, error)
}

// EventReader reads duty events in [from, to)
type EventReader interface {
	Query(ctx context.Context, subjectID string, from, to time.Time) ([]models.DutyEvent, error)
}

// CheckpointLister lists checkpoints usable for location resolution
type CheckpointLister interface {
	ListActive(ctx context.Context) ([]models.Checkpoint, error)
}

// TimelineService builds daily timelines and stop lists on demand
type TimelineService struct {
	samples         SampleReader
	events          EventReader
	checkpoints     CheckpointLister
	detector        *analysis.StopDetector
	loc             *time.Location
	toleranceMeters float64
	logger          *zap.Logger
}

// NewTimelineService creates a new timeline service. checkpoints may be nil, which
// leaves work locations unresolved when events carry no location id.
func NewTimelineService(samples SampleReader, events EventReader, checkpoints CheckpointLister,
	detector *analysis.StopDetector, loc *time.Location, toleranceMeters float64, logger *zap.Logger) *TimelineService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimelineService{
		samples:         samples,
		events:          events,
		checkpoints:     checkpoints,
		detector:        detector,
		loc:             loc,
		toleranceMeters: toleranceMeters,
		logger:          logger,
	}
}

// Location is the timezone subject-days are cut in
func (s *TimelineService) Location() *time.Location {
	return s.loc
}

// DayWindow returns [start, end) of the calendar day in the service timezone
func (s *TimelineService) DayWindow(date string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(dateLayout, date, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, invalidInput("date must be YYYY-MM-DD, got %q", date)
	}
	return start, start.AddDate(0, 0, 1), nil
}

// GetDailyTimeline reconstructs the subject's day from its events and samples
func (s *TimelineService) GetDailyTimeline(ctx context.Context, subjectID, date string) (*models.DailyTimeline, error) {
	from, to, err := s.DayWindow(date)
	if err != nil {
		return nil, err
	}

	events, err := s.events.Query(ctx, subjectID, from, to)
	if err != nil {
		return nil, retrievalError("duty events", err)
	}
	samples, err := s.samples.Query(ctx, subjectID, from, to)
	if err != nil {
		return nil, retrievalError("position samples", err)
	}

	events, err = s.resolveLocations(ctx, events)
	if err != nil {
		return nil, err
	}

	stops := s.detector.Detect(samples)
	intervals := analysis.Reconstruct(subjectID, events, samples, stops)

	s.logger.Debug("timeline reconstructed",
		zap.String("subject_id", subjectID),
		zap.String("date", date),
		zap.Int("events", len(events)),
		zap.Int("samples", len(samples)),
		zap.Int("intervals", len(intervals)))

	return &models.DailyTimeline{
		SubjectID: subjectID,
		Date:      date,
		Intervals: intervals,
		Totals:    analysis.Totals(intervals),
	}, nil
}

// GetStops returns the stop clusters of the subject's day
func (s *TimelineService) GetStops(ctx context.Context, subjectID, date string) ([]models.StopCluster, error) {
	from, to, err := s.DayWindow(date)
	if err != nil {
		return nil, err
	}

	samples, err := s.samples.Query(ctx, subjectID, from, to)
	if err != nil {
		return nil, retrievalError("position samples", err)
	}
	return s.detector.Detect(samples), nil
}

// resolveLocations fills LocationID of check-ins that carry a position but no
// location, using the first active checkpoint containing the position.
func (s *TimelineService) resolveLocations(ctx context.Context, events []models.DutyEvent) ([]models.DutyEvent, error) {
	if s.checkpoints == nil {
		return events, nil
	}

	needed := false
	for _, ev := range events {
		if ev.Kind == models.CheckIn && ev.LocationID == "" && ev.HasPosition() {
			needed = true
			break
		}
	}
	if !needed {
		return events, nil
	}

	active, err := s.checkpoints.ListActive(ctx)
	if err != nil {
		return nil, retrievalError("checkpoints", err)
	}

	resolved := make([]models.DutyEvent, len(events))
	copy(resolved, events)
	for i, ev := range resolved {
		if ev.Kind != models.CheckIn || ev.LocationID != "" || !ev.HasPosition() {
			continue
		}
		pos := spatial.Point{Lat: *ev.Latitude, Lon: *ev.Longitude}
		for _, cp := range active {
			center := spatial.Point{Lat: cp.CenterLatitude, Lon: cp.CenterLongitude}
			if spatial.IsWithinGeofence(pos, center, cp.RadiusMeters, s.toleranceMeters) {
				resolved[i].LocationID = cp.ID
				break
			}
		}
	}
	return resolved, nil
}
