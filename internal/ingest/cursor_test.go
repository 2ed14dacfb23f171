package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/fieldtrack-backend-go/internal/models"
)

type fakeKV struct {
	data map[string]string
	err  error
}

func (f *fakeKV) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeKV) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func TestRedisCursorStoreRoundTrip(t *testing.T) {
	kv := &fakeKV{data: map[string]string{}}
	store := NewRedisCursorStore(kv, "fieldtrack:cursor:")
	ctx := context.Background()

	got, err := store.Load(ctx, "w1")
	require.NoError(t, err)
	assert.Nil(t, got)

	sample := models.PositionSample{
		ID: 7, SubjectID: "w1", Timestamp: base, Latitude: 52, Longitude: 4,
		ActivityType: models.ActivityWalking, Trigger: models.TriggerHeartbeat,
	}
	require.NoError(t, store.Save(ctx, sample))
	assert.Contains(t, kv.data, "fieldtrack:cursor:w1")

	got, err = store.Load(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.ID)
	assert.True(t, base.Equal(got.Timestamp))
	assert.Equal(t, models.ActivityWalking, got.ActivityType)
}

func TestRedisCursorStoreErrors(t *testing.T) {
	boom := errors.New("connection refused")
	store := NewRedisCursorStore(&fakeKV{data: map[string]string{}, err: boom}, "p:")

	_, err := store.Load(context.Background(), "w1")
	assert.ErrorIs(t, err, boom)

	err = store.Save(context.Background(), models.PositionSample{SubjectID: "w1"})
	assert.ErrorIs(t, err, boom)
}

func TestRedisCursorStoreCorruptValue(t *testing.T) {
	store := NewRedisCursorStore(&fakeKV{data: map[string]string{"p:w1": "{"}}, "p:")

	_, err := store.Load(context.Background(), "w1")
	assert.Error(t, err)
}

type latestFinder struct{ sample *models.PositionSample }

func (l latestFinder) Latest(context.Context, string) (*models.PositionSample, error) {
	return l.sample, nil
}

func TestSampleCursorStore(t *testing.T) {
	s := &models.PositionSample{SubjectID: "w1", Timestamp: base}
	store := NewSampleCursorStore(latestFinder{sample: s})

	got, err := store.Load(context.Background(), "w1")
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.NoError(t, store.Save(context.Background(), *s))
}
