package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jengzang/fieldtrack-backend-go/internal/analysis"
	"github.com/jengzang/fieldtrack-backend-go/internal/config"
	"github.com/jengzang/fieldtrack-backend-go/internal/database"
	"github.com/jengzang/fieldtrack-backend-go/internal/ingest"
	"github.com/jengzang/fieldtrack-backend-go/internal/middleware"
	"github.com/jengzang/fieldtrack-backend-go/internal/repository"
	"github.com/jengzang/fieldtrack-backend-go/internal/service"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T, secret string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "api.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.NewMigrationManager(db, zap.NewNop()).RunMigrations(context.Background()))

	cfg := config.Default()
	cfg.JWTSecret = secret

	samples := repository.NewSampleRepository(db)
	events := repository.NewEventRepository(db)
	checkpoints := repository.NewCheckpointRepository(db)

	ingestor := ingest.NewIngestor(ingest.OptionsFromConfig(cfg.Engine), samples, ingest.NewSampleCursorStore(samples), zap.NewNop())
	detector := analysis.NewStopDetector(analysis.DefaultStopOptions(), zap.NewNop())

	svc := Services{
		Ingest:     service.NewIngestService(ingestor),
		Event:      service.NewEventService(events),
		Timeline:   service.NewTimelineService(samples, events, checkpoints, detector, time.UTC, 0, zap.NewNop()),
		Checkpoint: service.NewCheckpointService(checkpoints, 0),
	}
	return SetupRouter(cfg, svc, middleware.NewRateLimiter(100, time.Minute), zap.NewNop())
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Equal(t, 0, env.Code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, data))
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, "")
	w := do(t, r, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWorkdayEndToEnd(t *testing.T) {
	r := newTestRouter(t, "")
	base := "/api/v1/subjects/w1"

	for _, ev := range []map[string]string{
		{"kind": "check_in", "timestamp": "2024-05-06T09:00:00Z"},
		{"kind": "check_out", "timestamp": "2024-05-06T13:00:00Z"},
		{"kind": "check_in", "timestamp": "2024-05-06T14:00:00Z"},
		{"kind": "check_out", "timestamp": "2024-05-06T18:00:00Z"},
	} {
		w := do(t, r, http.MethodPost, base+"/events", ev, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := do(t, r, http.MethodPost, base+"/fixes", map[string]interface{}{
		"fixes": []map[string]interface{}{
			{"timestamp": "2024-05-06T13:30:00Z", "latitude": 52.01, "longitude": 4.0},
			{"timestamp": "2024-05-06T13:00:00Z", "latitude": 52.00, "longitude": 4.0},
			{"timestamp": "2024-05-06T13:00:10Z", "latitude": 52.00, "longitude": 4.0},
		},
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ingested struct {
		Accepted int `json:"accepted"`
		Results  []struct {
			Accepted bool   `json:"accepted"`
			Reason   string `json:"reason"`
		} `json:"results"`
	}
	decode(t, w, &ingested)
	assert.Equal(t, 2, ingested.Accepted)
	require.Len(t, ingested.Results, 3)
	assert.Equal(t, "throttled", ingested.Results[1].Reason)

	w = do(t, r, http.MethodGet, base+"/timeline?date=2024-05-06", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tl struct {
		Intervals []struct {
			Type string `json:"type"`
		} `json:"intervals"`
		Totals struct {
			WorkMinutes   float64 `json:"workMinutes"`
			TravelMinutes float64 `json:"travelMinutes"`
			TravelKm      float64 `json:"travelKm"`
		} `json:"totals"`
	}
	decode(t, w, &tl)
	require.Len(t, tl.Intervals, 3)
	assert.Equal(t, "travel", tl.Intervals[1].Type)
	assert.Equal(t, 480.0, tl.Totals.WorkMinutes)
	assert.Equal(t, 60.0, tl.Totals.TravelMinutes)
	assert.InDelta(t, 1.112, tl.Totals.TravelKm, 0.01)

	w = do(t, r, http.MethodGet, base+"/timeline/export?date=2024-05-06&format=csv", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "timeline_w1_2024-05-06.csv")
	assert.Contains(t, w.Body.String(), "Type,Start,End,Duration (min),Distance (km),Location")

	w = do(t, r, http.MethodGet, base+"/timeline/export?date=2024-05-06&format=xlsx", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))

	w = do(t, r, http.MethodGet, base+"/stops?date=2024-05-06", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestTimelineBadRequests(t *testing.T) {
	r := newTestRouter(t, "")

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/v1/subjects/w1/timeline", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/v1/subjects/w1/timeline?date=yesterday", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/v1/subjects/w1/timeline/export?date=2024-05-06&format=pdf", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/v1/subjects/w1/events", map[string]string{"kind": "nap"}, "").Code)
}

func TestCheckpointLifecycle(t *testing.T) {
	r := newTestRouter(t, "")
	path := "/api/v1/checkpoints/gate"

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, path, nil, "").Code)

	w := do(t, r, http.MethodPut, path, map[string]interface{}{
		"name": "Main gate", "centerLatitude": 52.0, "centerLongitude": 4.0, "radiusMeters": 50,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPut, path, map[string]interface{}{
		"centerLatitude": 52.0, "centerLongitude": 4.0, "radiusMeters": -1,
	}, "").Code)

	type verdict struct {
		Status         string  `json:"status"`
		DistanceMeters float64 `json:"distanceMeters"`
		RadiusMeters   float64 `json:"radiusMeters"`
	}

	var v verdict
	w = do(t, r, http.MethodPost, path+"/verify", map[string]float64{"latitude": 52.0001, "longitude": 4.0}, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &v)
	assert.Equal(t, "verified", v.Status)

	w = do(t, r, http.MethodPost, path+"/verify", map[string]float64{"latitude": 52.01, "longitude": 4.0}, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &v)
	assert.Equal(t, "out_of_range", v.Status)
	assert.InDelta(t, 1112, v.DistanceMeters, 2)
	assert.Equal(t, 50.0, v.RadiusMeters)

	w = do(t, r, http.MethodPost, "/api/v1/checkpoints/missing/verify", map[string]float64{"latitude": 52, "longitude": 4}, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &v)
	assert.Equal(t, "checkpoint_not_found", v.Status)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, path+"/verify", map[string]float64{"latitude": 52}, "").Code)
}

func TestFixUploadRequiresDeviceToken(t *testing.T) {
	r := newTestRouter(t, "s3cret")
	path := "/api/v1/subjects/w1/fixes"
	fix := map[string]interface{}{"timestamp": "2024-05-06T09:00:00Z", "latitude": 52.0, "longitude": 4.0}

	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodPost, path, fix, "").Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "w1"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	w := do(t, r, http.MethodPost, path, fix, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Reads stay open
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/v1/subjects/w1/stops?date=2024-05-06", nil, "").Code)
}
