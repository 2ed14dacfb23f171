package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jengzang/fieldtrack-backend-go/internal/models"
)

// SampleRepository handles database operations for accepted position samples
type SampleRepository struct {
	db *sql.DB
}

// NewSampleRepository creates a new sample repository
func NewSampleRepository(db *sql.DB) *SampleRepository {
	return &SampleRepository{db: db}
}

// Append stores an accepted sample and returns its row ID
func (r *SampleRepository) Append(ctx context.Context, s models.PositionSample) (int64, error) {
	query := `INSERT INTO position_samples
		(subject_id, ts, latitude, longitude, accuracy, speed, activity_type, unreliable, fix_trigger)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var accuracy sql.NullFloat64
	if s.Accuracy != nil {
		accuracy = sql.NullFloat64{Float64: *s.Accuracy, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, query,
		s.SubjectID, s.Timestamp.UnixMilli(), s.Latitude, s.Longitude, accuracy,
		s.Speed, string(s.ActivityType), s.Unreliable, string(s.Trigger),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert position sample: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read sample id: %w", err)
	}
	return id, nil
}

// Query returns the subject's samples with from <= ts < to, ordered by timestamp
func (r *SampleRepository) Query(ctx context.Context, subjectID string, from, to time.Time) ([]models.PositionSample, error) {
	query := `SELECT id, subject_id, ts, latitude, longitude, accuracy, speed, activity_type, unreliable, fix_trigger
		FROM position_samples
		WHERE subject_id = ? AND ts >= ? AND ts < ?
		ORDER BY ts, id`

	rows, err := r.db.QueryContext(ctx, query, subjectID, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to query position samples: %w", err)
	}
	defer rows.Close()

	samples := []models.PositionSample{}
	for rows.Next() {
		var (
			s        models.PositionSample
			tsMillis int64
			accuracy sql.NullFloat64
			activity string
			trigger  string
		)
		if err := rows.Scan(&s.ID, &s.SubjectID, &tsMillis, &s.Latitude, &s.Longitude,
			&accuracy, &s.Speed, &activity, &s.Unreliable, &trigger); err != nil {
			return nil, fmt.Errorf("failed to scan position sample: %w", err)
		}
		s.Timestamp = time.UnixMilli(tsMillis).UTC()
		if accuracy.Valid {
			v := accuracy.Float64
			s.Accuracy = &v
		}
		s.ActivityType = models.ActivityType(activity)
		s.Trigger = models.FixTrigger(trigger)
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate position samples: %w", err)
	}

	return samples, nil
}

// Latest returns the subject's most recent sample, or nil if there is none
func (r *SampleRepository) Latest(ctx context.Context, subjectID string) (*models.PositionSample, error) {
	query := `SELECT id, subject_id, ts, latitude, longitude, accuracy, speed, activity_type, unreliable, fix_trigger
		FROM position_samples WHERE subject_id = ? ORDER BY ts DESC, id DESC LIMIT 1`

	var (
		s        models.PositionSample
		tsMillis int64
		accuracy sql.NullFloat64
		activity string
		trigger  string
	)
	err := r.db.QueryRowContext(ctx, query, subjectID).Scan(&s.ID, &s.SubjectID, &tsMillis,
		&s.Latitude, &s.Longitude, &accuracy, &s.Speed, &activity, &s.Unreliable, &trigger)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest sample: %w", err)
	}

	s.Timestamp = time.UnixMilli(tsMillis).UTC()
	if accuracy.Valid {
		v := accuracy.Float64
		s.Accuracy = &v
	}
	s.ActivityType = models.ActivityType(activity)
	s.Trigger = models.FixTrigger(trigger)
	return &s, nil
}
