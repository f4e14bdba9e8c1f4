// Package workflow implements the complaint triage orchestrator.
//
// The orchestrator owns the fixed agent roster and drives each complaint
// through a staged pipeline: the Support Agent always runs first, then the
// pipeline follows each decision's recommended next role until an agent
// resolves the complaint, hands it to a human administrator, or keeps it
// with no further routing. Every agent invocation is recorded as an
// immutable workflow step in a per-complaint trace.
//
// Execution flow:
//  1. Validate the inbound complaint (id and type are required)
//  2. Run the Support Agent, record its decision
//  3. Follow decision.NextRole through the roster, one stage per hop,
//     guarding against revisiting a role
//  4. Apply each decision to the complaint (status, assignee, escalation
//     history), publishing the step trace atomically after every stage
//  5. Derive caller-facing next steps and return the full trace
package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/swapdesk/swapdesk/internal/agents"
	"github.com/swapdesk/swapdesk/internal/events"
	"github.com/swapdesk/swapdesk/internal/notify"
	"github.com/swapdesk/swapdesk/internal/refdata"
	"github.com/swapdesk/swapdesk/internal/store"
	"github.com/swapdesk/swapdesk/pkg/models"
)

// Orchestrator drives complaints through the agent pipeline.
type Orchestrator struct {
	roster []agents.Agent
	byRole map[models.AgentRole]agents.Agent

	store    store.Store
	events   events.Publisher
	notifier *notify.Service
	tracer   trace.Tracer

	// Completed step traces: complaint id → steps. A trace is republished
	// as a whole after each completed step, so concurrent readers observe
	// either the previous trace or the new one, never a partial step.
	mu        sync.RWMutex
	workflows map[string][]models.WorkflowStep

	// Intake queue, independent of the processing pipeline.
	queueMu sync.Mutex
	queue   []models.Complaint
}

// NewOrchestrator builds the orchestrator with the fixed roster over the
// given catalogs. Store and publisher are required; pass a MemoryStore and
// NopPublisher when persistence or eventing is not wanted. The notifier may
// be nil.
func NewOrchestrator(refs refdata.Catalogs, st store.Store, pub events.Publisher, notifier *notify.Service) *Orchestrator {
	roster := agents.Roster(refs)
	byRole := make(map[models.AgentRole]agents.Agent, len(roster))
	for _, a := range roster {
		byRole[a.Role()] = a
	}
	return &Orchestrator{
		roster:    roster,
		byRole:    byRole,
		store:     st,
		events:    pub,
		notifier:  notifier,
		tracer:    otel.Tracer("swapdesk/workflow"),
		workflows: make(map[string][]models.WorkflowStep),
	}
}

// ProcessNewComplaint runs the complaint through the pipeline and returns
// the mutated complaint, the triage decision, derived next steps, and the
// full step trace.
//
// The complaint is mutated in place. An agent failure propagates to the
// caller with the mutations made before the failing stage still applied;
// the trace records the failed step. Cancellation is honored between
// stages, never mid-agent-call.
func (o *Orchestrator) ProcessNewComplaint(ctx context.Context, c *models.Complaint) (*models.TriageResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	ctx, span := o.tracer.Start(ctx, "workflow.process_complaint",
		trace.WithAttributes(
			attribute.String("complaint.id", c.ID),
			attribute.String("complaint.type", string(c.Type)),
		))
	defer span.End()

	log.Info().
		Str("complaint_id", c.ID).
		Str("type", string(c.Type)).
		Str("priority", string(c.Priority)).
		Msg("🎫 Complaint processing started")

	o.persistNew(ctx, c)
	o.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintReceived,
		ComplaintID: c.ID,
		Status:      c.Status,
	})

	var (
		steps         []models.WorkflowStep
		firstDecision *models.AgentDecision
		lastDecision  *models.AgentDecision
		visited       = make(map[models.AgentRole]bool)
		current       = models.RoleSupportAgent
	)

	// Bounded by the roster size: each role runs at most once per complaint.
	for hop := 0; hop < len(o.roster); hop++ {
		if err := ctx.Err(); err != nil {
			o.finishTrace(ctx, c.ID, steps)
			return nil, fmt.Errorf("processing aborted after %d steps: %w", len(steps), err)
		}

		agent, ok := o.byRole[current]
		if !ok {
			break
		}
		visited[current] = true

		if !agent.CanHandle(c) {
			// Advisory only: the pipeline still invokes the agent, but the
			// mismatch is worth surfacing to operators.
			log.Debug().
				Str("complaint_id", c.ID).
				Str("agent", string(current)).
				Msg("Agent eligibility predicate rejected complaint, invoking anyway")
		}

		decision, step, err := o.runStage(ctx, agent, c)
		steps = append(steps, step)
		o.publishSteps(c.ID, steps)

		if err != nil {
			o.finishTrace(ctx, c.ID, steps)
			o.notify(ctx, notify.NewEvent(notify.EventStepFailed, c.ID, current, err.Error(), nil))
			return nil, fmt.Errorf("agent %s: %w", current, err)
		}

		lastDecision = decision
		if firstDecision == nil {
			firstDecision = decision
		}

		o.publishEvent(ctx, events.Event{
			Type:        events.EventDecisionRecorded,
			ComplaintID: c.ID,
			AgentRole:   current,
			Decision:    decision,
		})

		next, done := o.applyDecision(ctx, c, current, decision, visited)
		if done {
			break
		}
		current = next
	}

	o.finishTrace(ctx, c.ID, steps)
	o.persistUpdate(ctx, c)

	if c.Status == models.StatusResolved {
		o.publishEvent(ctx, events.Event{
			Type:        events.EventComplaintResolved,
			ComplaintID: c.ID,
			Status:      c.Status,
		})
		o.notify(ctx, notify.NewEvent(notify.EventComplaintResolved, c.ID, c.AssignedAgentRole,
			lastDecision.NextAction, nil))
	}

	result := &models.TriageResult{
		Complaint:     c,
		Decision:      *firstDecision,
		NextSteps:     nextSteps(c, lastDecision),
		WorkflowSteps: o.GetWorkflowSteps(c.ID),
	}

	log.Info().
		Str("complaint_id", c.ID).
		Str("status", string(c.Status)).
		Str("assigned", string(c.AssignedAgentRole)).
		Int("steps", len(result.WorkflowSteps)).
		Msg("✅ Complaint processing finished")

	return result, nil
}

// runStage invokes one agent inside a span and returns the completed (or
// failed) workflow step.
func (o *Orchestrator) runStage(ctx context.Context, agent agents.Agent, c *models.Complaint) (*models.AgentDecision, models.WorkflowStep, error) {
	ctx, span := o.tracer.Start(ctx, "workflow.stage",
		trace.WithAttributes(attribute.String("agent.role", string(agent.Role()))))
	defer span.End()

	step := models.WorkflowStep{
		ID:        uuid.New().String(),
		AgentRole: agent.Role(),
		Status:    models.StepProcessing,
		Timestamp: time.Now().UTC(),
	}

	decision, err := agent.ProcessComplaint(ctx, c)
	if err != nil {
		step.Status = models.StepFailed
		span.RecordError(err)
		return nil, step, err
	}

	step.Status = models.StepCompleted
	step.Decision = &decision

	log.Info().
		Str("complaint_id", c.ID).
		Str("agent", string(agent.Role())).
		Str("decision", decision.Decision).
		Float64("confidence", decision.Confidence).
		Str("outcome", string(decision.Outcome)).
		Msg("Agent decision recorded")

	return &decision, step, nil
}

// applyDecision mutates the complaint per the decision's outcome and routing
// tag and returns the next role to run, or done=true when the pipeline stops.
func (o *Orchestrator) applyDecision(ctx context.Context, c *models.Complaint, current models.AgentRole, d *models.AgentDecision, visited map[models.AgentRole]bool) (models.AgentRole, bool) {
	now := time.Now().UTC()
	c.UpdatedAt = now

	if d.Outcome == models.OutcomeResolved {
		c.Status = models.StatusResolved
		c.AssignedAgentRole = current
		c.ResolvedAt = &now
		c.AddCommunication(current, d.NextAction, models.AudienceCustomer)
		return "", true
	}

	next := d.NextRole
	if next == "" {
		// Compatibility fallback for decisions that embed the target in the
		// label text instead of tagging NextRole.
		next, _ = models.ParseAgentRole(d.Decision)
	}

	// No onward routing: the complaint stays with the current handler in the
	// state the outcome dictates.
	if next == "" || next == current {
		c.AssignedAgentRole = current
		if d.Outcome == models.OutcomeEscalated {
			c.Status = models.StatusEscalated
		} else {
			c.Status = models.StatusInProgress
		}
		return "", true
	}

	// Routing out of the roster means a human takes over.
	if _, inRoster := o.byRole[next]; !inRoster {
		c.Escalate(current, next, d.Reasoning)
		c.Status = models.StatusEscalated
		c.AssignedAgentRole = next
		o.publishEvent(ctx, events.Event{
			Type:        events.EventComplaintEscalated,
			ComplaintID: c.ID,
			AgentRole:   next,
			Status:      c.Status,
		})
		o.notify(ctx, notify.NewEvent(notify.EventAdminRequired, c.ID, next, d.Reasoning, nil))
		return "", true
	}

	// Revisiting a role would loop; park the complaint as escalated instead.
	if visited[next] {
		log.Warn().
			Str("complaint_id", c.ID).
			Str("from", string(current)).
			Str("to", string(next)).
			Msg("Routing loop detected, halting pipeline")
		c.Status = models.StatusEscalated
		c.AssignedAgentRole = current
		return "", true
	}

	c.Status = models.StatusInProgress
	c.AssignedAgentRole = next
	if d.Outcome == models.OutcomeEscalated {
		c.Escalate(current, next, d.Reasoning)
		o.publishEvent(ctx, events.Event{
			Type:        events.EventComplaintEscalated,
			ComplaintID: c.ID,
			AgentRole:   next,
			Status:      c.Status,
		})
	}
	return next, false
}

// nextSteps derives the caller-facing follow-up checklist.
func nextSteps(c *models.Complaint, last *models.AgentDecision) []string {
	if c.Status == models.StatusResolved {
		return []string{
			"Send resolution confirmation to customer",
			"Update complaint database",
			"Generate satisfaction survey",
		}
	}

	steps := []string{
		fmt.Sprintf("Continue processing with %s", c.AssignedAgentRole),
		"Monitor complaint progress",
	}
	if last != nil && last.Confidence < 0.7 {
		steps = append(steps, "Consider escalation if no progress in 2 hours")
	}
	return steps
}

// ── Trace cache ─────────────────────────────────────────────

// publishSteps atomically replaces the cached trace with a fresh copy.
func (o *Orchestrator) publishSteps(complaintID string, steps []models.WorkflowStep) {
	cp := make([]models.WorkflowStep, len(steps))
	copy(cp, steps)

	o.mu.Lock()
	o.workflows[complaintID] = cp
	o.mu.Unlock()
}

// finishTrace publishes the final trace and persists it.
func (o *Orchestrator) finishTrace(ctx context.Context, complaintID string, steps []models.WorkflowStep) {
	o.publishSteps(complaintID, steps)
	if err := o.store.SaveWorkflowSteps(ctx, complaintID, steps); err != nil {
		log.Warn().Err(err).Str("complaint_id", complaintID).Msg("Failed to persist workflow trace")
	}
}

// GetWorkflowSteps returns the cached trace for a complaint, or an empty
// slice if unknown. Falls back to the store for complaints processed before
// a restart.
func (o *Orchestrator) GetWorkflowSteps(complaintID string) []models.WorkflowStep {
	o.mu.RLock()
	steps, ok := o.workflows[complaintID]
	o.mu.RUnlock()

	if ok {
		cp := make([]models.WorkflowStep, len(steps))
		copy(cp, steps)
		return cp
	}

	stored, err := o.store.GetWorkflowSteps(context.Background(), complaintID)
	if err != nil || stored == nil {
		return []models.WorkflowStep{}
	}
	return stored
}

// ── Intake queue ────────────────────────────────────────────

// AddComplaintToQueue appends a complaint to the FIFO intake buffer.
func (o *Orchestrator) AddComplaintToQueue(c models.Complaint) {
	o.queueMu.Lock()
	o.queue = append(o.queue, c)
	o.queueMu.Unlock()

	log.Debug().Str("complaint_id", c.ID).Msg("Complaint queued")
}

// ComplaintQueue returns a defensive copy of the intake buffer.
func (o *Orchestrator) ComplaintQueue() []models.Complaint {
	o.queueMu.Lock()
	defer o.queueMu.Unlock()

	cp := make([]models.Complaint, len(o.queue))
	copy(cp, o.queue)
	return cp
}

// ── Support ─────────────────────────────────────────────────

// persistNew stores the inbound complaint, updating instead when it already
// exists. Persistence failures never fail the pipeline.
func (o *Orchestrator) persistNew(ctx context.Context, c *models.Complaint) {
	if _, err := o.store.GetComplaint(ctx, c.ID); err == nil {
		if err := o.store.UpdateComplaint(ctx, c); err != nil {
			log.Warn().Err(err).Str("complaint_id", c.ID).Msg("Failed to update complaint")
		}
		return
	}
	if err := o.store.CreateComplaint(ctx, c); err != nil {
		log.Warn().Err(err).Str("complaint_id", c.ID).Msg("Failed to persist complaint")
	}
}

func (o *Orchestrator) persistUpdate(ctx context.Context, c *models.Complaint) {
	if err := o.store.UpdateComplaint(ctx, c); err != nil {
		log.Warn().Err(err).Str("complaint_id", c.ID).Msg("Failed to persist complaint update")
	}
}

// publishEvent emits a lifecycle event, logging delivery failures.
func (o *Orchestrator) publishEvent(ctx context.Context, ev events.Event) {
	ev.Timestamp = time.Now().UTC()
	if err := o.events.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("type", ev.Type).Str("complaint_id", ev.ComplaintID).Msg("Event publish failed")
	}
}

func (o *Orchestrator) notify(ctx context.Context, ev notify.Event) {
	if o.notifier == nil {
		return
	}
	o.notifier.Dispatch(ctx, ev)
}
