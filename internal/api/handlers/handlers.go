// Package handlers implements the HTTP handlers for the complaint service.
// All handlers go through the Store interface and the workflow orchestrator;
// nothing here touches catalogs or agents directly.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/swapdesk/swapdesk/internal/metrics"
	"github.com/swapdesk/swapdesk/internal/store"
	"github.com/swapdesk/swapdesk/internal/workflow"
	"github.com/swapdesk/swapdesk/pkg/models"
)

// Handlers holds all handler dependencies.
type Handlers struct {
	Store        store.Store
	Orchestrator *workflow.Orchestrator
}

// New creates a new Handlers instance.
func New(s store.Store, o *workflow.Orchestrator) *Handlers {
	return &Handlers{
		Store:        s,
		Orchestrator: o,
	}
}

// ── Complaint Handlers ───────────────────────────────────────

// SubmitComplaint ingests a complaint and runs it through the triage
// pipeline synchronously, returning the full triage result.
func (h *Handlers) SubmitComplaint(w http.ResponseWriter, r *http.Request) {
	var c models.Complaint
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = models.StatusOpen
	}
	if c.Priority == "" {
		c.Priority = models.PriorityMedium
	}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt

	result, err := h.Orchestrator.ProcessNewComplaint(r.Context(), &c)
	if err != nil {
		if errors.Is(err, models.ErrMissingComplaintID) || errors.Is(err, models.ErrMissingComplaintType) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Str("complaint_id", c.ID).Msg("Complaint processing failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// ListComplaints returns complaints filtered by optional query parameters.
func (h *Handlers) ListComplaints(w http.ResponseWriter, r *http.Request) {
	filter := store.ComplaintFilter{
		Status:   models.ComplaintStatus(r.URL.Query().Get("status")),
		Type:     models.ComplaintType(r.URL.Query().Get("type")),
		Assigned: models.AgentRole(r.URL.Query().Get("assigned")),
		Priority: models.ComplaintPriority(r.URL.Query().Get("priority")),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}

	complaints, err := h.Store.ListComplaints(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if complaints == nil {
		complaints = []models.Complaint{}
	}
	respondJSON(w, http.StatusOK, complaints)
}

// GetComplaint returns one complaint by id.
func (h *Handlers) GetComplaint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "complaintId")

	c, err := h.Store.GetComplaint(r.Context(), id)
	if err != nil {
		var nf *store.ErrNotFound
		if errors.As(err, &nf) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// GetComplaintWorkflow returns the triage trace for a complaint. Unknown
// complaints yield an empty trace, matching the orchestrator contract.
func (h *Handlers) GetComplaintWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "complaintId")
	respondJSON(w, http.StatusOK, h.Orchestrator.GetWorkflowSteps(id))
}

// ── Queue Handlers ───────────────────────────────────────────

// EnqueueComplaint appends a complaint to the intake queue without
// processing it.
func (h *Handlers) EnqueueComplaint(w http.ResponseWriter, r *http.Request) {
	var c models.Complaint
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = models.StatusOpen
	}

	h.Orchestrator.AddComplaintToQueue(c)
	respondJSON(w, http.StatusAccepted, c)
}

// GetComplaintQueue returns a copy of the intake queue.
func (h *Handlers) GetComplaintQueue(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.Orchestrator.ComplaintQueue())
}

// ── Metrics Handler ──────────────────────────────────────────

// GetMetrics returns aggregate complaint metrics.
func (h *Handlers) GetMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := metrics.Compute(r.Context(), h.Store)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// ── Helpers ──────────────────────────────────────────────────

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
