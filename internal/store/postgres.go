// Package store — PostgreSQL Store implementation.
// Complaints and workflow traces are stored as JSONB documents alongside a
// few indexed columns for filtering; the document column is authoritative.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/swapdesk/swapdesk/pkg/models"
)

// PostgresStore implements Store backed by PostgreSQL via pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL and runs migrations.
func NewPostgresStore(ctx context.Context, connURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connURL)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}

	log.Info().Msg("Postgres store initialized")
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS sd_complaints (
			id            TEXT PRIMARY KEY,
			type          TEXT NOT NULL,
			status        TEXT NOT NULL,
			priority      TEXT NOT NULL DEFAULT '',
			assigned_role TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL,
			doc           JSONB NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sd_complaints_status ON sd_complaints (status);
		CREATE INDEX IF NOT EXISTS idx_sd_complaints_type ON sd_complaints (type);
		CREATE INDEX IF NOT EXISTS idx_sd_complaints_created ON sd_complaints (created_at DESC);

		CREATE TABLE IF NOT EXISTS sd_workflows (
			complaint_id TEXT PRIMARY KEY,
			steps        JSONB NOT NULL,
			updated_at   TIMESTAMPTZ NOT NULL
		);
	`
	_, err := s.pool.Exec(ctx, ddl)
	return err
}

// ── Complaint Store ─────────────────────────────────────────

func (s *PostgresStore) ListComplaints(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error) {
	query := `SELECT doc FROM sd_complaints WHERE 1=1`
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Assigned != "" {
		args = append(args, string(filter.Assigned))
		query += fmt.Sprintf(" AND assigned_role = $%d", len(args))
	}
	if filter.Priority != "" {
		args = append(args, string(filter.Priority))
		query += fmt.Sprintf(" AND priority = $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()

	var out []models.Complaint
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var c models.Complaint
		if err := json.Unmarshal(doc, &c); err != nil {
			return nil, fmt.Errorf("decode complaint: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM sd_complaints WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &ErrNotFound{Entity: "complaint", Key: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get complaint: %w", err)
	}

	var c models.Complaint
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, fmt.Errorf("decode complaint: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.UpdatedAt = c.CreatedAt

	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode complaint: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO sd_complaints (id, type, status, priority, assigned_role, created_at, updated_at, doc)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, string(c.Type), string(c.Status), string(c.Priority), string(c.AssignedAgentRole),
		c.CreatedAt, c.UpdatedAt, doc)
	if err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateComplaint(ctx context.Context, c *models.Complaint) error {
	c.UpdatedAt = time.Now().UTC()

	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode complaint: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE sd_complaints
		SET type = $2, status = $3, priority = $4, assigned_role = $5, updated_at = $6, doc = $7
		WHERE id = $1`,
		c.ID, string(c.Type), string(c.Status), string(c.Priority), string(c.AssignedAgentRole),
		c.UpdatedAt, doc)
	if err != nil {
		return fmt.Errorf("update complaint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &ErrNotFound{Entity: "complaint", Key: c.ID}
	}
	return nil
}

func (s *PostgresStore) DeleteComplaint(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sd_complaints WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete complaint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &ErrNotFound{Entity: "complaint", Key: id}
	}
	_, err = s.pool.Exec(ctx, `DELETE FROM sd_workflows WHERE complaint_id = $1`, id)
	return err
}

// ── Workflow Store ──────────────────────────────────────────

func (s *PostgresStore) SaveWorkflowSteps(ctx context.Context, complaintID string, steps []models.WorkflowStep) error {
	doc, err := json.Marshal(steps)
	if err != nil {
		return fmt.Errorf("encode workflow steps: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO sd_workflows (complaint_id, steps, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (complaint_id) DO UPDATE SET steps = EXCLUDED.steps, updated_at = EXCLUDED.updated_at`,
		complaintID, doc, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save workflow steps: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetWorkflowSteps(ctx context.Context, complaintID string) ([]models.WorkflowStep, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT steps FROM sd_workflows WHERE complaint_id = $1`, complaintID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return []models.WorkflowStep{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow steps: %w", err)
	}

	var steps []models.WorkflowStep
	if err := json.Unmarshal(doc, &steps); err != nil {
		return nil, fmt.Errorf("decode workflow steps: %w", err)
	}
	return steps, nil
}

// ── Lifecycle ───────────────────────────────────────────────

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
