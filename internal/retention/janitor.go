// Package retention implements the data retention policy for resolved
// complaints. Complaints stay in the hot store indefinitely while open; once
// resolved they are archived to a local JSONL file and purged after the
// retention window, together with their workflow traces.
//
// The janitor runs as a background goroutine and respects context
// cancellation for graceful shutdown. Archiving is fail-safe: a complaint is
// NOT purged if archiving fails.
package retention

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/swapdesk/swapdesk/internal/store"
	"github.com/swapdesk/swapdesk/pkg/models"
)

// DefaultRetentionDays is how long resolved complaints stay in the hot store.
const DefaultRetentionDays = 90

// CycleStats tracks what happened in a single retention cycle.
type CycleStats struct {
	Scanned  int
	Archived int
	Purged   int
	Errors   []error
}

// ArchivedComplaint is the record written to the archive: the complaint and
// its final workflow trace.
type ArchivedComplaint struct {
	Complaint models.Complaint      `json:"complaint"`
	Workflow  []models.WorkflowStep `json:"workflow"`
}

// Archiver persists expired complaints before they are purged.
type Archiver interface {
	Archive(ctx context.Context, records []ArchivedComplaint) (location string, err error)
}

// Janitor periodically archives and purges expired resolved complaints.
type Janitor struct {
	store     store.Store
	archiver  Archiver
	interval  time.Duration
	retention time.Duration
}

// NewJanitor creates a retention janitor. A nil archiver means purge-only.
func NewJanitor(s store.Store, archiver Archiver, interval time.Duration, retentionDays int) *Janitor {
	if interval < time.Minute {
		interval = time.Hour
	}
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &Janitor{
		store:     s,
		archiver:  archiver,
		interval:  interval,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// Run executes retention cycles until the context is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	log.Info().
		Dur("interval", j.interval).
		Dur("retention", j.retention).
		Msg("Retention janitor started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Retention janitor stopped")
			return
		case <-ticker.C:
			stats := j.RunCycle(ctx)
			if stats.Purged > 0 || len(stats.Errors) > 0 {
				log.Info().
					Int("scanned", stats.Scanned).
					Int("archived", stats.Archived).
					Int("purged", stats.Purged).
					Int("errors", len(stats.Errors)).
					Msg("Retention cycle finished")
			}
		}
	}
}

// RunCycle performs one archive-and-purge pass and returns its stats.
func (j *Janitor) RunCycle(ctx context.Context) CycleStats {
	var stats CycleStats
	cutoff := time.Now().UTC().Add(-j.retention)

	resolved, err := j.store.ListComplaints(ctx, store.ComplaintFilter{
		Status: models.StatusResolved,
		Limit:  10000,
	})
	if err != nil {
		stats.Errors = append(stats.Errors, err)
		return stats
	}
	stats.Scanned = len(resolved)

	var expired []ArchivedComplaint
	for i := range resolved {
		c := resolved[i]
		if c.ResolvedAt == nil || c.ResolvedAt.After(cutoff) {
			continue
		}
		steps, err := j.store.GetWorkflowSteps(ctx, c.ID)
		if err != nil {
			stats.Errors = append(stats.Errors, err)
			continue
		}
		expired = append(expired, ArchivedComplaint{Complaint: c, Workflow: steps})
	}
	if len(expired) == 0 {
		return stats
	}

	if j.archiver != nil {
		location, err := j.archiver.Archive(ctx, expired)
		if err != nil {
			// Fail-safe: keep the data in the hot store.
			stats.Errors = append(stats.Errors, err)
			return stats
		}
		stats.Archived = len(expired)
		log.Debug().Str("location", location).Int("count", len(expired)).Msg("Expired complaints archived")
	}

	for _, rec := range expired {
		if err := j.store.DeleteComplaint(ctx, rec.Complaint.ID); err != nil {
			stats.Errors = append(stats.Errors, err)
			continue
		}
		stats.Purged++
	}
	return stats
}
