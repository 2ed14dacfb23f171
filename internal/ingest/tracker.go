package ingest

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jengzang/fieldtrack-backend-go/internal/models"
	"github.com/jengzang/fieldtrack-backend-go/internal/source"
)

// TrackOptions timing of the heartbeat loop
type TrackOptions struct {
	HeartbeatInterval time.Duration
	FixTimeout        time.Duration
}

// Tracker drives the ingestor for one subject from a live source: a heartbeat
// request on every tick plus a continuous watch subscription.
type Tracker struct {
	ingestor  *Ingestor
	src       source.Source
	subjectID string
	opts      TrackOptions
	logger    *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// Track starts tracking the subject until Stop is called or ctx ends
func (i *Ingestor) Track(ctx context.Context, subjectID string, src source.Source, opts TrackOptions) *Tracker {
	ctx, cancel := context.WithCancel(ctx)
	t := &Tracker{
		ingestor:  i,
		src:       src,
		subjectID: subjectID,
		opts:      opts,
		logger:    i.logger.With(zap.String("subject_id", subjectID)),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go t.run(ctx)
	return t
}

// Stop cancels tracking and waits for the loop to exit. Fixes delivered after
// Stop returns are discarded.
func (t *Tracker) Stop() {
	t.cancel()
	<-t.done
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)

	var unwatch func()
	defer func() {
		if unwatch != nil {
			unwatch()
		}
	}()

	ticker := time.NewTicker(t.opts.HeartbeatInterval)
	defer ticker.Stop()

	for {
		if unwatch == nil {
			unwatch = t.watch(ctx)
		}
		t.heartbeat(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (t *Tracker) watch(ctx context.Context) func() {
	cancel, err := t.src.Watch(t.subjectID, func(fix models.RawFix) {
		if ctx.Err() != nil {
			return
		}
		t.offer(ctx, fix, models.TriggerMovement)
	})
	if err != nil {
		t.logger.Warn("watch unavailable, retrying next tick", zap.Error(err))
		return nil
	}
	return cancel
}

func (t *Tracker) heartbeat(ctx context.Context) {
	fix, err := t.src.CurrentFix(ctx, t.subjectID, t.opts.FixTimeout)
	switch {
	case err == nil:
		t.offer(ctx, fix, models.TriggerHeartbeat)
	case errors.Is(err, source.ErrFixTimeout):
		t.logger.Info("heartbeat fix timed out, skipping tick")
	case errors.Is(err, source.ErrSourceUnavailable):
		t.logger.Warn("position source unavailable, retrying next tick")
	case ctx.Err() != nil:
	default:
		t.logger.Error("failed to get heartbeat fix", zap.Error(err))
	}
}

func (t *Tracker) offer(ctx context.Context, fix models.RawFix, trigger models.FixTrigger) {
	res, err := t.ingestor.Accept(ctx, t.subjectID, fix, trigger)
	if err != nil {
		if ctx.Err() == nil {
			t.logger.Warn("fix rejected", zap.Error(err))
		}
		return
	}
	t.logger.Debug("fix processed",
		zap.Bool("accepted", res.Accepted),
		zap.String("reason", string(res.Reason)),
		zap.String("trigger", string(trigger)))
}
