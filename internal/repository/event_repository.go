package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jengzang/fieldtrack-backend-go/internal/models"
)

// EventRepository handles database operations for duty events
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Insert stores a duty event
func (r *EventRepository) Insert(ctx context.Context, e models.DutyEvent) error {
	query := `INSERT INTO duty_events (id, subject_id, ts, kind, latitude, longitude, location_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	var lat, lon sql.NullFloat64
	if e.Latitude != nil {
		lat = sql.NullFloat64{Float64: *e.Latitude, Valid: true}
	}
	if e.Longitude != nil {
		lon = sql.NullFloat64{Float64: *e.Longitude, Valid: true}
	}
	var locationID sql.NullString
	if e.LocationID != "" {
		locationID = sql.NullString{String: e.LocationID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query, e.ID, e.SubjectID, e.Timestamp.UnixMilli(),
		string(e.Kind), lat, lon, locationID)
	if err != nil {
		return fmt.Errorf("failed to insert duty event: %w", err)
	}
	return nil
}

// Query returns the subject's events with from <= ts < to, ordered by timestamp.
// Events sharing a timestamp come back in insertion order.
func (r *EventRepository) Query(ctx context.Context, subjectID string, from, to time.Time) ([]models.DutyEvent, error) {
	query := `SELECT id, subject_id, ts, kind, latitude, longitude, location_id
		FROM duty_events
		WHERE subject_id = ? AND ts >= ? AND ts < ?
		ORDER BY ts, rowid`

	rows, err := r.db.QueryContext(ctx, query, subjectID, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to query duty events: %w", err)
	}
	defer rows.Close()

	events := []models.DutyEvent{}
	for rows.Next() {
		var (
			e          models.DutyEvent
			tsMillis   int64
			kind       string
			lat, lon   sql.NullFloat64
			locationID sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.SubjectID, &tsMillis, &kind, &lat, &lon, &locationID); err != nil {
			return nil, fmt.Errorf("failed to scan duty event: %w", err)
		}
		e.Timestamp = time.UnixMilli(tsMillis).UTC()
		e.Kind = models.DutyEventKind(kind)
		if lat.Valid {
			v := lat.Float64
			e.Latitude = &v
		}
		if lon.Valid {
			v := lon.Float64
			e.Longitude = &v
		}
		if locationID.Valid {
			e.LocationID = locationID.String
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate duty events: %w", err)
	}

	return events, nil
}
