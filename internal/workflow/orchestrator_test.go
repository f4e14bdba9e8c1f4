package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/swapdesk/swapdesk/internal/events"
	"github.com/swapdesk/swapdesk/internal/refdata"
	"github.com/swapdesk/swapdesk/internal/store"
	"github.com/swapdesk/swapdesk/internal/workflow"
	"github.com/swapdesk/swapdesk/pkg/models"
)

func newTestOrchestrator(t *testing.T) (*workflow.Orchestrator, *store.MemoryStore) {
	t.Helper()
	t.Setenv("SWAPDESK_DATA_DIR", "-") // disable snapshot persistence
	st := store.NewMemoryStore()
	t.Cleanup(func() { st.Close() })

	refs := refdata.NewMemory(refdata.DefaultSeed()).Catalogs()
	return workflow.NewOrchestrator(refs, st, events.NopPublisher{}, nil), st
}

func openComplaint(id string, typ models.ComplaintType, description string) *models.Complaint {
	return &models.Complaint{
		ID:          id,
		Title:       "test",
		Description: description,
		Type:        typ,
		Status:      models.StatusOpen,
		Priority:    models.PriorityMedium,
		CustomerID:  "CUST001",
	}
}

func TestProcessNewComplaint_ValidationErrors(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()

	_, err := o.ProcessNewComplaint(ctx, &models.Complaint{Type: models.TypeVehicle})
	if !errors.Is(err, models.ErrMissingComplaintID) {
		t.Errorf("error = %v, want ErrMissingComplaintID", err)
	}

	_, err = o.ProcessNewComplaint(ctx, &models.Complaint{ID: "CMP-X"})
	if !errors.Is(err, models.ErrMissingComplaintType) {
		t.Errorf("error = %v, want ErrMissingComplaintType", err)
	}

	// Nothing should have been traced for rejected complaints.
	if steps := o.GetWorkflowSteps("CMP-X"); len(steps) != 0 {
		t.Errorf("GetWorkflowSteps() = %v, want empty for rejected complaint", steps)
	}
}

func TestProcessNewComplaint_PaymentDiscrepancyPipeline(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	c := openComplaint("CMP-PAY", models.TypePayment, "There is a duplicate transaction on my billing statement")
	res, err := o.ProcessNewComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessNewComplaint() error = %v", err)
	}

	// Support Agent escalates to Finance Officer, who opens an investigation.
	if len(res.WorkflowSteps) != 2 {
		t.Fatalf("got %d steps, want 2 (Support Agent, Finance Officer)", len(res.WorkflowSteps))
	}
	if res.WorkflowSteps[0].AgentRole != models.RoleSupportAgent {
		t.Errorf("step[0].AgentRole = %q, want Support Agent", res.WorkflowSteps[0].AgentRole)
	}
	if res.WorkflowSteps[1].AgentRole != models.RoleFinanceOfficer {
		t.Errorf("step[1].AgentRole = %q, want Finance Officer", res.WorkflowSteps[1].AgentRole)
	}
	if res.WorkflowSteps[1].Decision == nil || res.WorkflowSteps[1].Decision.Decision != "Investigate payment discrepancy" {
		t.Errorf("finance decision = %+v, want Investigate payment discrepancy", res.WorkflowSteps[1].Decision)
	}

	// The returned triage decision is the Support Agent's.
	if res.Decision.AgentRole != models.RoleSupportAgent {
		t.Errorf("Decision.AgentRole = %q, want Support Agent", res.Decision.AgentRole)
	}

	if c.Status != models.StatusInProgress {
		t.Errorf("Status = %q, want In Progress", c.Status)
	}
	if c.AssignedAgentRole != models.RoleFinanceOfficer {
		t.Errorf("AssignedAgentRole = %q, want Finance Officer", c.AssignedAgentRole)
	}
	if len(c.EscalationHistory) != 1 {
		t.Errorf("EscalationHistory len = %d, want 1", len(c.EscalationHistory))
	}
}

func TestProcessNewComplaint_ResolvedInvariant(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	c := openComplaint("CMP-CLEAN", models.TypeBattery, "The station near my office is really dirty")
	res, err := o.ProcessNewComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessNewComplaint() error = %v", err)
	}

	if c.Status != models.StatusResolved {
		t.Fatalf("Status = %q, want Resolved", c.Status)
	}
	if c.ResolvedAt == nil {
		t.Error("ResolvedAt is nil for a resolved complaint")
	}
	if c.AssignedAgentRole != models.RoleStationManager {
		t.Errorf("AssignedAgentRole = %q, want Station Manager", c.AssignedAgentRole)
	}

	want := []string{
		"Send resolution confirmation to customer",
		"Update complaint database",
		"Generate satisfaction survey",
	}
	if len(res.NextSteps) != len(want) {
		t.Fatalf("NextSteps = %v, want %v", res.NextSteps, want)
	}
	for i := range want {
		if res.NextSteps[i] != want[i] {
			t.Errorf("NextSteps[%d] = %q, want %q", i, res.NextSteps[i], want[i])
		}
	}

	// A resolution is communicated to the customer.
	if len(c.CommunicationLog) == 0 || c.CommunicationLog[0].Audience != models.AudienceCustomer {
		t.Errorf("CommunicationLog = %v, want a customer-facing entry", c.CommunicationLog)
	}
}

func TestProcessNewComplaint_UnresolvedInvariant(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	c := openComplaint("CMP-OPEN", models.TypePayment, "There is a duplicate transaction on my billing statement")
	if _, err := o.ProcessNewComplaint(context.Background(), c); err != nil {
		t.Fatalf("ProcessNewComplaint() error = %v", err)
	}

	if c.Status == models.StatusResolved {
		t.Fatal("complaint unexpectedly resolved")
	}
	if c.ResolvedAt != nil {
		t.Error("ResolvedAt set for an unresolved complaint")
	}
}

func TestProcessNewComplaint_CriticalEscalatesToAdmin(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	c := openComplaint("CMP-CRIT", models.TypeOther, "I am absolutely furious about everything")
	c.Priority = models.PriorityCritical
	_, err := o.ProcessNewComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessNewComplaint() error = %v", err)
	}

	// Support Agent routes unclassifiable complaints to the Complaint
	// Manager, who hands critical cases to a human administrator.
	if c.Status != models.StatusEscalated {
		t.Errorf("Status = %q, want Escalated", c.Status)
	}
	if c.AssignedAgentRole != models.RoleAdmin {
		t.Errorf("AssignedAgentRole = %q, want Admin", c.AssignedAgentRole)
	}
	if len(c.EscalationHistory) != 2 {
		t.Errorf("EscalationHistory len = %d, want 2 (support→manager, manager→admin)", len(c.EscalationHistory))
	}
}

func TestProcessNewComplaint_QuickSolutionStopsAtSupport(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	c := openComplaint("CMP-APP", models.TypeVehicle, "The app won't pair over bluetooth")
	res, err := o.ProcessNewComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessNewComplaint() error = %v", err)
	}

	if len(res.WorkflowSteps) != 1 {
		t.Fatalf("got %d steps, want 1 (quick solution short-circuits)", len(res.WorkflowSteps))
	}
	if c.Status != models.StatusInProgress {
		t.Errorf("Status = %q, want In Progress", c.Status)
	}
	if c.AssignedAgentRole != models.RoleSupportAgent {
		t.Errorf("AssignedAgentRole = %q, want Support Agent", c.AssignedAgentRole)
	}
}

func TestGetWorkflowSteps_RoundTrip(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	c := openComplaint("CMP-RT", models.TypePayment, "There is a duplicate transaction on my billing statement")
	res, err := o.ProcessNewComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessNewComplaint() error = %v", err)
	}

	got := o.GetWorkflowSteps("CMP-RT")
	if len(got) != len(res.WorkflowSteps) {
		t.Fatalf("GetWorkflowSteps() len = %d, result len = %d", len(got), len(res.WorkflowSteps))
	}
	for i := range got {
		if got[i].ID != res.WorkflowSteps[i].ID {
			t.Errorf("step[%d].ID = %q, want %q", i, got[i].ID, res.WorkflowSteps[i].ID)
		}
		if got[i].Status != models.StepCompleted {
			t.Errorf("step[%d].Status = %q, want completed", i, got[i].Status)
		}
		if got[i].Decision == nil {
			t.Errorf("step[%d].Decision is nil for a completed step", i)
		}
	}
}

func TestGetWorkflowSteps_Unknown(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	if steps := o.GetWorkflowSteps("nope"); len(steps) != 0 {
		t.Errorf("GetWorkflowSteps(unknown) = %v, want empty", steps)
	}
}

func TestProcessNewComplaint_PersistsComplaintAndTrace(t *testing.T) {
	o, st := newTestOrchestrator(t)
	ctx := context.Background()

	c := openComplaint("CMP-ST", models.TypeBattery, "The station near my office is really dirty")
	if _, err := o.ProcessNewComplaint(ctx, c); err != nil {
		t.Fatalf("ProcessNewComplaint() error = %v", err)
	}

	stored, err := st.GetComplaint(ctx, "CMP-ST")
	if err != nil {
		t.Fatalf("GetComplaint() error = %v", err)
	}
	if stored.Status != models.StatusResolved {
		t.Errorf("stored Status = %q, want Resolved", stored.Status)
	}

	steps, err := st.GetWorkflowSteps(ctx, "CMP-ST")
	if err != nil {
		t.Fatalf("GetWorkflowSteps() error = %v", err)
	}
	if len(steps) != 2 {
		t.Errorf("stored trace has %d steps, want 2", len(steps))
	}
}

func TestConcurrentComplaints_NoCrossContamination(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("CMP-%02d", n)
			c := openComplaint(id, models.TypePayment, "There is a duplicate transaction on my billing statement")
			res, err := o.ProcessNewComplaint(context.Background(), c)
			if err != nil {
				errs <- err
				return
			}
			for _, step := range res.WorkflowSteps {
				if step.Decision == nil {
					errs <- fmt.Errorf("%s: partial step visible", id)
					return
				}
			}
			got := o.GetWorkflowSteps(id)
			if len(got) != len(res.WorkflowSteps) {
				errs <- fmt.Errorf("%s: trace len %d != result len %d", id, len(got), len(res.WorkflowSteps))
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestComplaintQueue_FIFO(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	o.AddComplaintToQueue(*openComplaint("Q1", models.TypeVehicle, "a"))
	o.AddComplaintToQueue(*openComplaint("Q2", models.TypeBattery, "b"))

	q := o.ComplaintQueue()
	if len(q) != 2 || q[0].ID != "Q1" || q[1].ID != "Q2" {
		t.Fatalf("ComplaintQueue() = %v, want Q1,Q2 in order", q)
	}

	// Returned queue is a defensive copy.
	q[0].ID = "mutated"
	again := o.ComplaintQueue()
	if again[0].ID != "Q1" {
		t.Error("ComplaintQueue() returned a reference into orchestrator internals")
	}
}

func TestProcessNewComplaint_CancelledContext(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := openComplaint("CMP-CANCEL", models.TypePayment, "I was charged twice")
	_, err := o.ProcessNewComplaint(ctx, c)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
