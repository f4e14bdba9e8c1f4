// Package store provides the storage interface and implementations for the
// complaint service. The in-memory store (with optional JSON snapshots) is
// the default; a PostgreSQL-backed store is used when a database URL is
// configured.
package store

import (
	"context"
	"time"

	"github.com/swapdesk/swapdesk/pkg/models"
)

// Store is the primary storage interface. Handlers and the orchestrator
// depend on this interface so tests can run against the in-memory
// implementation and production against PostgreSQL.
type Store interface {
	ComplaintStore
	WorkflowStore

	// Ping checks if the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the store.
	Close() error
}

// ── Complaint Store ─────────────────────────────────────────

// ComplaintFilter defines optional filters for listing complaints.
type ComplaintFilter struct {
	Status   models.ComplaintStatus   // exact match
	Type     models.ComplaintType     // exact match
	Assigned models.AgentRole         // exact match on assigned role
	Priority models.ComplaintPriority // exact match
	Limit    int                      // max results (default 100)
}

type ComplaintStore interface {
	ListComplaints(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error)
	GetComplaint(ctx context.Context, id string) (*models.Complaint, error)
	CreateComplaint(ctx context.Context, c *models.Complaint) error
	UpdateComplaint(ctx context.Context, c *models.Complaint) error
	DeleteComplaint(ctx context.Context, id string) error
}

// ── Workflow Store ──────────────────────────────────────────

// WorkflowStore persists per-complaint triage traces. Steps are written as
// a whole trace after each step completes; the trace for a complaint only
// ever grows.
type WorkflowStore interface {
	SaveWorkflowSteps(ctx context.Context, complaintID string, steps []models.WorkflowStep) error
	GetWorkflowSteps(ctx context.Context, complaintID string) ([]models.WorkflowStep, error)
}

// ── Errors ──────────────────────────────────────────────────

// ErrNotFound is returned when a requested entity does not exist.
type ErrNotFound struct {
	Entity string
	Key    string
}

func (e *ErrNotFound) Error() string {
	return e.Entity + " not found: " + e.Key
}

// ── Filter helpers ──────────────────────────────────────────

// ListFilter provides common pagination options.
type ListFilter struct {
	Limit  int
	Offset int
	Since  *time.Time
}
