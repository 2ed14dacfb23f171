// Package source defines the raw position source consumed by the ingestor.
package source

import (
	"context"
	"errors"
	"time"

	"github.com/jengzang/fieldtrack-backend-go/internal/models"
)

var (
	// ErrSourceUnavailable means the source cannot deliver fixes at all (disconnected,
	// denied or disabled). Callers should prompt for permissions or retry later.
	ErrSourceUnavailable = errors.New("position source unavailable")
	// ErrFixTimeout means the source is up but no fix arrived in time.
	ErrFixTimeout = errors.New("timed out waiting for position fix")
)

// FixHandler receives fixes from a watch subscription
type FixHandler func(fix models.RawFix)

// Source provides raw device fixes
type Source interface {
	// CurrentFix blocks until a fresh fix for the subject arrives or timeout elapses
	CurrentFix(ctx context.Context, subjectID string, timeout time.Duration) (models.RawFix, error)
	// Watch delivers every fix for the subject to handler until cancel is called
	Watch(subjectID string, handler FixHandler) (cancel func(), err error)
}
