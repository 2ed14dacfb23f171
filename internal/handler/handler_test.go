package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/jengzang/fieldtrack-backend-go/internal/analysis"
	"github.com/jengzang/fieldtrack-backend-go/internal/ingest"
	"github.com/jengzang/fieldtrack-backend-go/internal/models"
	"github.com/jengzang/fieldtrack-backend-go/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var errLocked = errors.New("database is locked")

type brokenStore struct{}

func (brokenStore) Query(context.Context, string, time.Time, time.Time) ([]models.PositionSample, error) {
	return nil, errLocked
}

type brokenEvents struct{}

func (brokenEvents) Query(context.Context, string, time.Time, time.Time) ([]models.DutyEvent, error) {
	return nil, errLocked
}

func (brokenEvents) Insert(context.Context, models.DutyEvent) error { return errLocked }

type brokenCheckpoints struct{}

func (brokenCheckpoints) GetByID(context.Context, string) (*models.Checkpoint, error) {
	return nil, errLocked
}

func (brokenCheckpoints) Upsert(context.Context, models.Checkpoint) error { return errLocked }

type brokenAcceptor struct{}

func (brokenAcceptor) Accept(context.Context, string, models.RawFix, models.FixTrigger) (ingest.Result, error) {
	return ingest.Result{}, errLocked
}

func newBrokenRouter() *gin.Engine {
	detector := analysis.NewStopDetector(analysis.DefaultStopOptions(), nil)
	timeline := NewTimelineHandler(service.NewTimelineService(brokenStore{}, brokenEvents{}, nil, detector, time.UTC, 0, nil))
	checkpoints := NewCheckpointHandler(service.NewCheckpointService(brokenCheckpoints{}, 0))
	events := NewEventHandler(service.NewEventService(brokenEvents{}))
	fixes := NewIngestHandler(service.NewIngestService(brokenAcceptor{}))

	r := gin.New()
	r.GET("/subjects/:subjectId/timeline", timeline.GetTimeline)
	r.GET("/subjects/:subjectId/stops", timeline.GetStops)
	r.GET("/subjects/:subjectId/timeline/export", timeline.ExportTimeline)
	r.POST("/subjects/:subjectId/events", events.PostEvent)
	r.POST("/subjects/:subjectId/fixes", fixes.PostFixes)
	r.GET("/checkpoints/:checkpointId", checkpoints.GetCheckpoint)
	r.POST("/checkpoints/:checkpointId/verify", checkpoints.Verify)
	return r
}

func request(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRetrievalFailuresAreServiceUnavailable(t *testing.T) {
	r := newBrokenRouter()

	for _, path := range []string{
		"/subjects/w1/timeline?date=2024-05-06",
		"/subjects/w1/stops?date=2024-05-06",
		"/subjects/w1/timeline/export?date=2024-05-06",
		"/checkpoints/gate",
	} {
		w := request(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
		assert.Contains(t, w.Body.String(), "retry", path)
	}

	w := request(r, http.MethodPost, "/checkpoints/gate/verify", `{"latitude":52,"longitude":4}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestWriteFailuresAreInternalErrors(t *testing.T) {
	r := newBrokenRouter()

	w := request(r, http.MethodPost, "/subjects/w1/events", `{"kind":"check_in"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = request(r, http.MethodPost, "/subjects/w1/fixes", `{"timestamp":"2024-05-06T09:00:00Z","latitude":52,"longitude":4}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMalformedBodies(t *testing.T) {
	r := newBrokenRouter()

	assert.Equal(t, http.StatusBadRequest, request(r, http.MethodPost, "/subjects/w1/fixes", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, request(r, http.MethodPost, "/subjects/w1/events", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, request(r, http.MethodPost, "/checkpoints/gate/verify", `{"longitude":4}`).Code)

	for _, body := range []string{
		`{"timestamp":"2024-05-06T09:00:00Z","longitude":4}`,
		`{"timestamp":"2024-05-06T09:00:00Z","latitude":52}`,
		`{"timestamp":"2024-05-06T09:00:00Z"}`,
	} {
		w := request(r, http.MethodPost, "/subjects/w1/fixes", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), "latitude and longitude are required", body)
	}
}
