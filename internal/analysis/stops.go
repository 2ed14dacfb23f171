package analysis

import (
	"time"

	"go.uber.org/zap"

	"github.com/jengzang/fieldtrack-backend-go/internal/models"
	"github.com/jengzang/fieldtrack-backend-go/internal/spatial"
)

// StopOptions controls stop detection
type StopOptions struct {
	MovementThresholdMeters float64       // a step longer than this leaves the cluster
	MinStopDuration         time.Duration // shorter dwells are discarded
}

// DefaultStopOptions returns 100 m / 5 min
func DefaultStopOptions() StopOptions {
	return StopOptions{
		MovementThresholdMeters: 100,
		MinStopDuration:         5 * time.Minute,
	}
}

// StopDetector partitions one subject-day of samples into stationary clusters
type StopDetector struct {
	opts   StopOptions
	logger *zap.Logger
}

// NewStopDetector creates a new stop detector
func NewStopDetector(opts StopOptions, logger *zap.Logger) *StopDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StopDetector{opts: opts, logger: logger}
}

// Detect returns the stops found in samples, in chronological order.
//
// Consecutive samples stay in the same cluster while the step between them is at
// most MovementThresholdMeters (a step of exactly the threshold is jitter, not
// movement). A cluster becomes a stop when the time between its first and last
// sample reaches MinStopDuration. The trailing cluster is evaluated too, so a day
// that ends stationary still reports its last stop.
func (d *StopDetector) Detect(samples []models.PositionSample) []models.StopCluster {
	stops := []models.StopCluster{}

	valid := make([]models.PositionSample, 0, len(samples))
	for _, s := range SortSamples(samples) {
		if !samplePoint(s).Valid() {
			d.logger.Warn("skipping malformed sample",
				zap.String("subject_id", s.SubjectID),
				zap.Int64("sample_id", s.ID),
				zap.Time("timestamp", s.Timestamp),
				zap.Float64("latitude", s.Latitude),
				zap.Float64("longitude", s.Longitude),
			)
			continue
		}
		valid = append(valid, s)
	}

	if len(valid) < 2 {
		return stops
	}

	members := []models.PositionSample{valid[0]}
	cursor := valid[0]
	for _, s := range valid[1:] {
		if spatial.DistanceMeters(samplePoint(cursor), samplePoint(s)) > d.opts.MovementThresholdMeters {
			if stop, ok := d.closeCluster(members); ok {
				stops = append(stops, stop)
			}
			members = nil
		}
		members = append(members, s)
		cursor = s
	}

	if stop, ok := d.closeCluster(members); ok {
		stops = append(stops, stop)
	}

	return stops
}

func (d *StopDetector) closeCluster(members []models.PositionSample) (models.StopCluster, bool) {
	if len(members) == 0 {
		return models.StopCluster{}, false
	}
	first, last := members[0], members[len(members)-1]
	dwell := last.Timestamp.Sub(first.Timestamp)
	if dwell < d.opts.MinStopDuration {
		return models.StopCluster{}, false
	}

	points := make([]spatial.Point, len(members))
	for i, m := range members {
		points[i] = samplePoint(m)
	}

	return models.StopCluster{
		SubjectID:       first.SubjectID,
		StartTime:       first.Timestamp,
		EndTime:         last.Timestamp,
		Latitude:        first.Latitude,
		Longitude:       first.Longitude,
		DurationMinutes: dwell.Minutes(),
		SampleCount:     len(members),
		RadiusMeters:    spatial.RadiusOfGyration(points),
	}, true
}

func samplePoint(s models.PositionSample) spatial.Point {
	return spatial.Point{Lat: s.Latitude, Lon: s.Longitude}
}
