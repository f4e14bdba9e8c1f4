// Package store — in-memory Store implementation.
// Used as a fallback when PostgreSQL is not available (local dev, tests).
// Supports file-based snapshot persistence so data survives restarts.
package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/swapdesk/swapdesk/pkg/models"
)

// snapshot is the JSON-serializable shape written to disk.
type snapshot struct {
	Complaints map[string]*models.Complaint     `json:"complaints"`
	Workflows  map[string][]models.WorkflowStep `json:"workflows"` // key: complaint id
}

// MemoryStore implements Store with in-memory maps.
type MemoryStore struct {
	mu         sync.RWMutex
	complaints map[string]*models.Complaint     // key: id
	workflows  map[string][]models.WorkflowStep // key: complaint id

	// Persistence
	snapshotPath string        // empty = no persistence
	saveMu       sync.Mutex    // guards file writes
	saveCh       chan struct{} // debounce channel
	doneCh       chan struct{} // signals the save goroutine to stop
	closeOnce    sync.Once
}

// NewMemoryStore creates a new in-memory store.
// If SWAPDESK_DATA_DIR is set, data is persisted to a JSON file in that
// directory. Set it to "-" to disable persistence entirely.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		complaints: make(map[string]*models.Complaint),
		workflows:  make(map[string][]models.WorkflowStep),
		saveCh:     make(chan struct{}, 1),
		doneCh:     make(chan struct{}),
	}

	dataDir := os.Getenv("SWAPDESK_DATA_DIR")
	if dataDir != "" && dataDir != "-" {
		m.snapshotPath = filepath.Join(dataDir, "data.json")
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			log.Warn().Err(err).Str("dir", dataDir).Msg("Cannot create data dir, persistence disabled")
			m.snapshotPath = ""
		}
	}

	if m.snapshotPath != "" {
		m.loadSnapshot()
		go m.saveLoop()
	}

	log.Info().Str("snapshot", m.snapshotPath).Msg("Memory store configured")
	return m
}

// ── Complaint Store ─────────────────────────────────────────

func (m *MemoryStore) ListComplaints(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	out := make([]models.Complaint, 0, len(m.complaints))
	for _, c := range m.complaints {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Type != "" && c.Type != filter.Type {
			continue
		}
		if filter.Assigned != "" && c.AssignedAgentRole != filter.Assigned {
			continue
		}
		if filter.Priority != "" && c.Priority != filter.Priority {
			continue
		}
		out = append(out, *c)
	}

	// Newest first, stable for equal timestamps.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.complaints[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "complaint", Key: id}
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryStore) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	m.mu.Lock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.complaints[c.ID] = &cp
	m.mu.Unlock()

	m.requestSave()
	return nil
}

func (m *MemoryStore) UpdateComplaint(ctx context.Context, c *models.Complaint) error {
	m.mu.Lock()
	if _, ok := m.complaints[c.ID]; !ok {
		m.mu.Unlock()
		return &ErrNotFound{Entity: "complaint", Key: c.ID}
	}
	c.UpdatedAt = time.Now().UTC()
	cp := *c
	m.complaints[c.ID] = &cp
	m.mu.Unlock()

	m.requestSave()
	return nil
}

func (m *MemoryStore) DeleteComplaint(ctx context.Context, id string) error {
	m.mu.Lock()
	if _, ok := m.complaints[id]; !ok {
		m.mu.Unlock()
		return &ErrNotFound{Entity: "complaint", Key: id}
	}
	delete(m.complaints, id)
	delete(m.workflows, id)
	m.mu.Unlock()

	m.requestSave()
	return nil
}

// ── Workflow Store ──────────────────────────────────────────

func (m *MemoryStore) SaveWorkflowSteps(ctx context.Context, complaintID string, steps []models.WorkflowStep) error {
	cp := make([]models.WorkflowStep, len(steps))
	copy(cp, steps)

	m.mu.Lock()
	m.workflows[complaintID] = cp
	m.mu.Unlock()

	m.requestSave()
	return nil
}

func (m *MemoryStore) GetWorkflowSteps(ctx context.Context, complaintID string) ([]models.WorkflowStep, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	steps, ok := m.workflows[complaintID]
	if !ok {
		return []models.WorkflowStep{}, nil
	}
	cp := make([]models.WorkflowStep, len(steps))
	copy(cp, steps)
	return cp, nil
}

// ── Lifecycle ───────────────────────────────────────────────

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

// Close flushes a final snapshot and stops the save goroutine.
func (m *MemoryStore) Close() error {
	m.closeOnce.Do(func() {
		close(m.doneCh)
		if m.snapshotPath != "" {
			m.saveSnapshot()
		}
	})
	return nil
}

// ── Persistence ─────────────────────────────────────────────

// requestSave signals the background goroutine to persist data.
// Non-blocking: coalesces multiple rapid writes into one disk flush.
func (m *MemoryStore) requestSave() {
	if m.snapshotPath == "" {
		return
	}
	select {
	case m.saveCh <- struct{}{}:
	default:
		// Already pending
	}
}

// saveLoop runs in a goroutine, debouncing save requests (max 1 write per 500ms).
func (m *MemoryStore) saveLoop() {
	for {
		select {
		case <-m.doneCh:
			return
		case <-m.saveCh:
			time.Sleep(500 * time.Millisecond) // debounce
			m.saveSnapshot()
		}
	}
}

// saveSnapshot persists all data to disk as JSON.
func (m *MemoryStore) saveSnapshot() {
	m.mu.RLock()
	snap := snapshot{
		Complaints: m.complaints,
		Workflows:  m.workflows,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	m.mu.RUnlock()

	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal snapshot")
		return
	}

	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	// Write to temp file then rename for atomicity
	tmp := m.snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		log.Error().Err(err).Str("path", tmp).Msg("Failed to write snapshot tmp")
		return
	}
	if err := os.Rename(tmp, m.snapshotPath); err != nil {
		log.Error().Err(err).Str("path", m.snapshotPath).Msg("Failed to rename snapshot")
		return
	}

	log.Debug().Str("path", m.snapshotPath).Msg("Snapshot saved")
}

// loadSnapshot reads data from disk on startup.
func (m *MemoryStore) loadSnapshot() {
	data, err := os.ReadFile(m.snapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", m.snapshotPath).Msg("No snapshot file found, starting fresh")
			return
		}
		log.Warn().Err(err).Str("path", m.snapshotPath).Msg("Failed to read snapshot")
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Error().Err(err).Str("path", m.snapshotPath).Msg("Failed to parse snapshot, starting fresh")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if snap.Complaints != nil {
		m.complaints = snap.Complaints
	}
	if snap.Workflows != nil {
		m.workflows = snap.Workflows
	}

	log.Info().
		Int("complaints", len(m.complaints)).
		Int("workflows", len(m.workflows)).
		Msg("Snapshot loaded")
}
