package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jengzang/fieldtrack-backend-go/internal/models"
)

// CheckpointRepository is the sqlite-backed checkpoint registry
type CheckpointRepository struct {
	db *sql.DB
}

// NewCheckpointRepository creates a new checkpoint repository
func NewCheckpointRepository(db *sql.DB) *CheckpointRepository {
	return &CheckpointRepository{db: db}
}

const checkpointColumns = `id, site_id, name, center_lat, center_lon, radius_meters, status, questions, created_at, updated_at`

// GetByID retrieves a checkpoint by ID. A missing checkpoint returns nil, nil.
func (r *CheckpointRepository) GetByID(ctx context.Context, id string) (*models.Checkpoint, error) {
	query := `SELECT ` + checkpointColumns + ` FROM checkpoints WHERE id = ?`

	c, err := scanCheckpoint(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}
	return c, nil
}

// ListActive returns every active checkpoint ordered by ID
func (r *CheckpointRepository) ListActive(ctx context.Context) ([]models.Checkpoint, error) {
	query := `SELECT ` + checkpointColumns + ` FROM checkpoints WHERE status = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, string(models.CheckpointActive))
	if err != nil {
		return nil, fmt.Errorf("failed to query checkpoints: %w", err)
	}
	defer rows.Close()

	checkpoints := []models.Checkpoint{}
	for rows.Next() {
		c, err := scanCheckpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		checkpoints = append(checkpoints, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checkpoints: %w", err)
	}
	return checkpoints, nil
}

// Upsert creates or replaces a checkpoint
func (r *CheckpointRepository) Upsert(ctx context.Context, c models.Checkpoint) error {
	questions := c.Questions
	if questions == nil {
		questions = []string{}
	}
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("failed to encode questions: %w", err)
	}

	query := `INSERT INTO checkpoints (id, site_id, name, center_lat, center_lon, radius_meters, status, questions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			site_id = excluded.site_id,
			name = excluded.name,
			center_lat = excluded.center_lat,
			center_lon = excluded.center_lon,
			radius_meters = excluded.radius_meters,
			status = excluded.status,
			questions = excluded.questions,
			updated_at = datetime('now')`

	_, err = r.db.ExecContext(ctx, query, c.ID, c.SiteID, c.Name, c.CenterLatitude, c.CenterLongitude,
		c.RadiusMeters, string(c.Status), string(questionsJSON))
	if err != nil {
		return fmt.Errorf("failed to upsert checkpoint: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheckpoint(row rowScanner) (*models.Checkpoint, error) {
	var (
		c         models.Checkpoint
		status    string
		questions string
	)
	if err := row.Scan(&c.ID, &c.SiteID, &c.Name, &c.CenterLatitude, &c.CenterLongitude,
		&c.RadiusMeters, &status, &questions, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Status = models.CheckpointStatus(status)
	if questions != "" {
		if err := json.Unmarshal([]byte(questions), &c.Questions); err != nil {
			return nil, fmt.Errorf("failed to decode questions: %w", err)
		}
	}
	return &c, nil
}
