package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jengzang/fieldtrack-backend-go/internal/models"
)

// CursorStore persists each subject's last accepted sample across restarts.
// The ingestor keeps the live cursor in memory and writes through to the store.
type CursorStore interface {
	Load(ctx context.Context, subjectID string) (*models.PositionSample, error)
	Save(ctx context.Context, sample models.PositionSample) error
}

// LatestSampleFinder is satisfied by the sample repository
type LatestSampleFinder interface {
	Latest(ctx context.Context, subjectID string) (*models.PositionSample, error)
}

// SampleCursorStore recovers cursors from the newest stored sample. Save is a no-op
// since the sample itself is already the durable record.
type SampleCursorStore struct {
	finder LatestSampleFinder
}

// NewSampleCursorStore creates a cursor store backed by the sample log
func NewSampleCursorStore(finder LatestSampleFinder) *SampleCursorStore {
	return &SampleCursorStore{finder: finder}
}

func (s *SampleCursorStore) Load(ctx context.Context, subjectID string) (*models.PositionSample, error) {
	return s.finder.Latest(ctx, subjectID)
}

func (s *SampleCursorStore) Save(context.Context, models.PositionSample) error {
	return nil
}

// KV is the subset of the redis client used for cursors
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisCursorStore keeps cursors as JSON strings under prefix+subjectID
type RedisCursorStore struct {
	kv     KV
	prefix string
}

// NewRedisCursorStore creates a redis-backed cursor store
func NewRedisCursorStore(kv KV, prefix string) *RedisCursorStore {
	return &RedisCursorStore{kv: kv, prefix: prefix}
}

func (s *RedisCursorStore) key(subjectID string) string {
	return s.prefix + subjectID
}

func (s *RedisCursorStore) Load(ctx context.Context, subjectID string) (*models.PositionSample, error) {
	raw, err := s.kv.Get(ctx, s.key(subjectID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cursor: %w", err)
	}

	var sample models.PositionSample
	if err := json.Unmarshal([]byte(raw), &sample); err != nil {
		return nil, fmt.Errorf("failed to decode cursor: %w", err)
	}
	return &sample, nil
}

func (s *RedisCursorStore) Save(ctx context.Context, sample models.PositionSample) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to encode cursor: %w", err)
	}
	if err := s.kv.Set(ctx, s.key(sample.SubjectID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save cursor: %w", err)
	}
	return nil
}
