// Package ingest filters raw device fixes into persisted position samples.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jengzang/fieldtrack-backend-go/internal/analysis"
	"github.com/jengzang/fieldtrack-backend-go/internal/config"
	"github.com/jengzang/fieldtrack-backend-go/internal/models"
	"github.com/jengzang/fieldtrack-backend-go/internal/spatial"
)

// ErrInvalidFix is returned for fixes that can never become a sample
var ErrInvalidFix = errors.New("invalid fix")

// Reason explains an accept or suppress decision
type Reason string

const (
	ReasonFirstFix     Reason = "first_fix"
	ReasonHeartbeat    Reason = "heartbeat"
	ReasonHeartbeatDue Reason = "heartbeat_due"
	ReasonMoved        Reason = "moved"
	ReasonThrottled    Reason = "throttled"
	ReasonTooClose     Reason = "too_close"
	ReasonDuplicate    Reason = "duplicate"
)

// Result is the outcome of offering one fix to the ingestor
type Result struct {
	Accepted bool
	Reason   Reason
	Sample   *models.PositionSample // Set when accepted
}

// SampleStore appends accepted samples
type SampleStore interface {
	Append(ctx context.Context, s models.PositionSample) (int64, error)
}

// Options thresholds for the acceptance filter
type Options struct {
	MinDistanceMeters     float64
	HeartbeatInterval     time.Duration
	WatchThrottleWindow   time.Duration
	AccuracyCeilingMeters float64
	Activity              analysis.ActivityThresholds
}

// OptionsFromConfig picks the ingest thresholds out of the engine config
func OptionsFromConfig(cfg config.EngineConfig) Options {
	return Options{
		MinDistanceMeters:     cfg.MinDistanceMeters,
		HeartbeatInterval:     cfg.HeartbeatInterval,
		WatchThrottleWindow:   cfg.WatchThrottleWindow,
		AccuracyCeilingMeters: cfg.AccuracyCeilingMeters,
		Activity: analysis.ActivityThresholds{
			StillSpeedMax:   cfg.StillSpeedMax,
			VehicleSpeedMin: cfg.VehicleSpeedMin,
		},
	}
}

// Ingestor decides which raw fixes are persisted. Decisions for one subject are
// serialized so the cursor read, the append and the cursor update happen as a unit.
type Ingestor struct {
	opts    Options
	samples SampleStore
	cursors CursorStore
	logger  *zap.Logger

	locks sync.Map // subjectID -> *sync.Mutex

	mu   sync.RWMutex
	last map[string]models.PositionSample
}

// NewIngestor creates a new ingestor. cursors may be nil.
func NewIngestor(opts Options, samples SampleStore, cursors CursorStore, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		opts:    opts,
		samples: samples,
		cursors: cursors,
		logger:  logger,
		last:    make(map[string]models.PositionSample),
	}
}

func (i *Ingestor) subjectLock(subjectID string) *sync.Mutex {
	l, _ := i.locks.LoadOrStore(subjectID, &sync.Mutex{})
	return l.(*sync.Mutex)
}

// Accept offers a raw fix for the subject and persists it if it passes the filter
func (i *Ingestor) Accept(ctx context.Context, subjectID string, fix models.RawFix, trigger models.FixTrigger) (Result, error) {
	if err := validateFix(subjectID, fix); err != nil {
		return Result{}, err
	}
	if trigger == "" {
		trigger = models.TriggerMovement
	}

	lock := i.subjectLock(subjectID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	last, err := i.cursor(ctx, subjectID)
	if err != nil {
		return Result{}, err
	}

	accepted, reason := i.decide(last, fix, trigger)
	if !accepted {
		return Result{Accepted: false, Reason: reason}, nil
	}

	sample := i.buildSample(subjectID, fix, trigger)

	// Once a fix is accepted the write runs to completion even if the caller goes away
	writeCtx := context.WithoutCancel(ctx)
	id, err := i.samples.Append(writeCtx, sample)
	if err != nil {
		return Result{}, fmt.Errorf("failed to append sample: %w", err)
	}
	sample.ID = id

	if last == nil || sample.Timestamp.After(last.Timestamp) {
		i.mu.Lock()
		i.last[subjectID] = sample
		i.mu.Unlock()

		if i.cursors != nil {
			if err := i.cursors.Save(writeCtx, sample); err != nil {
				i.logger.Warn("failed to persist cursor",
					zap.String("subject_id", subjectID), zap.Error(err))
			}
		}
	}

	return Result{Accepted: true, Reason: reason, Sample: &sample}, nil
}

// LastAccepted returns the subject's cursor, or nil before the first acceptance
func (i *Ingestor) LastAccepted(ctx context.Context, subjectID string) (*models.PositionSample, error) {
	lock := i.subjectLock(subjectID)
	lock.Lock()
	defer lock.Unlock()
	return i.cursor(ctx, subjectID)
}

// cursor returns the in-memory cursor, hydrating from the store on first use.
// Caller must hold the subject lock.
func (i *Ingestor) cursor(ctx context.Context, subjectID string) (*models.PositionSample, error) {
	i.mu.RLock()
	last, ok := i.last[subjectID]
	i.mu.RUnlock()
	if ok {
		return &last, nil
	}
	if i.cursors == nil {
		return nil, nil
	}

	stored, err := i.cursors.Load(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cursor: %w", err)
	}
	if stored == nil {
		return nil, nil
	}

	i.mu.Lock()
	i.last[subjectID] = *stored
	i.mu.Unlock()
	return stored, nil
}

func (i *Ingestor) decide(last *models.PositionSample, fix models.RawFix, trigger models.FixTrigger) (bool, Reason) {
	if last == nil {
		return true, ReasonFirstFix
	}

	// Samples are stored at millisecond precision, so compare at that resolution
	if fix.Timestamp.UnixMilli() == last.Timestamp.UnixMilli() {
		return false, ReasonDuplicate
	}

	elapsed := fix.Timestamp.Sub(last.Timestamp)
	switch {
	case trigger == models.TriggerHeartbeat:
		return true, ReasonHeartbeat
	case elapsed >= i.opts.HeartbeatInterval:
		return true, ReasonHeartbeatDue
	case elapsed < i.opts.WatchThrottleWindow:
		return false, ReasonThrottled
	}

	moved := spatial.DistanceMeters(
		spatial.Point{Lat: last.Latitude, Lon: last.Longitude},
		fixPoint(fix),
	)
	if moved < i.opts.MinDistanceMeters {
		return false, ReasonTooClose
	}
	return true, ReasonMoved
}

func (i *Ingestor) buildSample(subjectID string, fix models.RawFix, trigger models.FixTrigger) models.PositionSample {
	var accuracy *float64
	if fix.Accuracy != nil && isFinite(*fix.Accuracy) && *fix.Accuracy >= 0 {
		a := *fix.Accuracy
		accuracy = &a
	}

	var speed float64
	if fix.Speed != nil && isFinite(*fix.Speed) && *fix.Speed >= 0 {
		speed = *fix.Speed
	}

	return models.PositionSample{
		SubjectID:    subjectID,
		Timestamp:    fix.Timestamp.UTC(),
		Latitude:     *fix.Latitude,
		Longitude:    *fix.Longitude,
		Accuracy:     accuracy,
		Speed:        speed,
		ActivityType: analysis.ClassifyActivity(fix.Speed, i.opts.Activity),
		Unreliable:   accuracy != nil && *accuracy > i.opts.AccuracyCeilingMeters,
		Trigger:      trigger,
	}
}

func validateFix(subjectID string, fix models.RawFix) error {
	if subjectID == "" {
		return fmt.Errorf("%w: subject id is required", ErrInvalidFix)
	}
	if fix.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidFix)
	}
	if !fix.HasPosition() {
		return fmt.Errorf("%w: latitude and longitude are required", ErrInvalidFix)
	}
	if !fixPoint(fix).Valid() {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidFix)
	}
	return nil
}

// fixPoint assumes fix.HasPosition()
func fixPoint(fix models.RawFix) spatial.Point {
	return spatial.Point{Lat: *fix.Latitude, Lon: *fix.Longitude}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
