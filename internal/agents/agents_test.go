package agents_test

import (
	"context"
	"strings"
	"testing"

	"github.com/swapdesk/swapdesk/internal/agents"
	"github.com/swapdesk/swapdesk/internal/refdata"
	"github.com/swapdesk/swapdesk/pkg/models"
)

func testCatalogs(t *testing.T) refdata.Catalogs {
	t.Helper()
	return refdata.NewMemory(refdata.DefaultSeed()).Catalogs()
}

func newComplaint(typ models.ComplaintType, description string) *models.Complaint {
	return &models.Complaint{
		ID:          "CMP-TEST",
		Title:       "test complaint",
		Description: description,
		Type:        typ,
		Status:      models.StatusOpen,
		Priority:    models.PriorityMedium,
		CustomerID:  "CUST001",
	}
}

func TestSupportAgent_QuickSolution(t *testing.T) {
	a := agents.NewSupportAgent(testCatalogs(t))

	c := newComplaint(models.TypeVehicle, "The app won't pair with my scooter over bluetooth")
	d, err := a.ProcessComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessComplaint() error = %v", err)
	}
	if d.Decision != "Provide immediate solution" {
		t.Errorf("Decision = %q, want %q", d.Decision, "Provide immediate solution")
	}
	if d.Confidence != 0.92 {
		t.Errorf("Confidence = %v, want the matched solution's success rate 0.92", d.Confidence)
	}
	if d.Outcome != models.OutcomeInProgress {
		t.Errorf("Outcome = %q, want %q", d.Outcome, models.OutcomeInProgress)
	}
	if d.NextRole != "" {
		t.Errorf("NextRole = %q, want empty for a quick solution", d.NextRole)
	}
}

func TestSupportAgent_ReclassifiesAndRoutesToFinance(t *testing.T) {
	a := agents.NewSupportAgent(testCatalogs(t))

	// Untyped complaint with payment keywords must be reclassified to
	// Payment and routed to the Finance Officer.
	c := newComplaint(models.TypeOther, "My wallet balance looks wrong after a refund")
	d, err := a.ProcessComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessComplaint() error = %v", err)
	}
	if d.Outcome != models.OutcomeEscalated {
		t.Fatalf("Outcome = %q, want %q", d.Outcome, models.OutcomeEscalated)
	}
	if d.NextRole != models.RoleFinanceOfficer {
		t.Errorf("NextRole = %q, want %q", d.NextRole, models.RoleFinanceOfficer)
	}
	if d.Confidence != 0.85 {
		t.Errorf("Confidence = %v, want 0.85 for escalation decisions", d.Confidence)
	}
	if got := d.Data["classification"]; got != models.TypePayment {
		t.Errorf("Data[classification] = %v, want %q", got, models.TypePayment)
	}
}

func TestSupportAgent_EscalationTargets(t *testing.T) {
	a := agents.NewSupportAgent(testCatalogs(t))

	tests := []struct {
		name        string
		typ         models.ComplaintType
		description string
		want        models.AgentRole
	}{
		{"vehicle goes to technician", models.TypeVehicle, "the wheel wobbles badly", models.RoleTechnician},
		{"battery with station mention", models.TypeBattery, "battery swap failed at the station", models.RoleStationManager},
		{"battery without station mention", models.TypeBattery, "battery drains too fast on my commute", models.RoleTechnician},
		{"unclassifiable goes to manager", models.TypeOther, "I am unhappy with everything lately", models.RoleComplaintManager},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := a.ProcessComplaint(context.Background(), newComplaint(tt.typ, tt.description))
			if err != nil {
				t.Fatalf("ProcessComplaint() error = %v", err)
			}
			if d.NextRole != tt.want {
				t.Errorf("NextRole = %q, want %q", d.NextRole, tt.want)
			}
		})
	}
}

func TestSupportAgent_CanHandle(t *testing.T) {
	a := agents.NewSupportAgent(testCatalogs(t))

	open := newComplaint(models.TypeVehicle, "brakes")
	if !a.CanHandle(open) {
		t.Error("CanHandle() = false for an open complaint, want true")
	}
	open.Status = models.StatusEscalated
	if a.CanHandle(open) {
		t.Error("CanHandle() = true for an escalated complaint, want false")
	}
}

func TestTechnician_KnownIssue(t *testing.T) {
	a := agents.NewTechnician(testCatalogs(t))

	c := newComplaint(models.TypeVehicle, "The scooter won't start at all this morning")
	c.Status = models.StatusInProgress
	d, err := a.ProcessComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessComplaint() error = %v", err)
	}
	if d.Decision != "Apply technical solution" {
		t.Errorf("Decision = %q, want %q", d.Decision, "Apply technical solution")
	}
	if d.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", d.Confidence)
	}
	if d.Outcome != models.OutcomeResolved {
		t.Errorf("Outcome = %q, want %q", d.Outcome, models.OutcomeResolved)
	}
}

func TestTechnician_PhysicalInspection(t *testing.T) {
	a := agents.NewTechnician(testCatalogs(t))

	// Physical keywords but no known-issue symptom match.
	c := newComplaint(models.TypeVehicle, "The brake feels loose and makes noise")
	c.Status = models.StatusInProgress
	d, err := a.ProcessComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessComplaint() error = %v", err)
	}
	if d.Decision != "Schedule physical inspection" {
		t.Errorf("Decision = %q, want %q", d.Decision, "Schedule physical inspection")
	}
	if d.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", d.Confidence)
	}
	if d.Outcome != models.OutcomeInProgress {
		t.Errorf("Outcome = %q, want %q", d.Outcome, models.OutcomeInProgress)
	}
}

func TestTechnician_EscalatesUnknown(t *testing.T) {
	a := agents.NewTechnician(testCatalogs(t))

	c := newComplaint(models.TypeVehicle, "something intermittent I cannot describe")
	c.Status = models.StatusEscalated
	d, err := a.ProcessComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessComplaint() error = %v", err)
	}
	if d.NextRole != models.RoleComplaintManager {
		t.Errorf("NextRole = %q, want %q", d.NextRole, models.RoleComplaintManager)
	}
	if d.Confidence != 0.7 {
		t.Errorf("Confidence = %v, want 0.7", d.Confidence)
	}
}

func TestTechnician_CanHandle(t *testing.T) {
	a := agents.NewTechnician(testCatalogs(t))

	tests := []struct {
		typ    models.ComplaintType
		status models.ComplaintStatus
		want   bool
	}{
		{models.TypeVehicle, models.StatusInProgress, true},
		{models.TypeBattery, models.StatusEscalated, true},
		{models.TypeVehicle, models.StatusOpen, false},
		{models.TypePayment, models.StatusInProgress, false},
	}
	for _, tt := range tests {
		c := newComplaint(tt.typ, "x")
		c.Status = tt.status
		if got := a.CanHandle(c); got != tt.want {
			t.Errorf("CanHandle(type=%s status=%s) = %v, want %v", tt.typ, tt.status, got, tt.want)
		}
	}
}

// Maintenance keywords take precedence over cleanliness keywords: a dirty
// station with a stuck swap machine is scheduled for maintenance, not resolved
// as a cleaning issue.
func TestStationManager_MaintenancePrecedence(t *testing.T) {
	a := agents.NewStationManager(testCatalogs(t))

	c := newComplaint(models.TypeBattery, "The station is dirty and the swap machine is stuck")
	c.Status = models.StatusInProgress
	d, err := a.ProcessComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessComplaint() error = %v", err)
	}
	if d.Decision != "Schedule station maintenance" {
		t.Errorf("Decision = %q, want %q", d.Decision, "Schedule station maintenance")
	}
	if d.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", d.Confidence)
	}
	if got := d.Data["priority"]; got != models.PriorityHigh {
		t.Errorf("Data[priority] = %v, want %q", got, models.PriorityHigh)
	}
	if d.Outcome != models.OutcomeInProgress {
		t.Errorf("Outcome = %q, want %q", d.Outcome, models.OutcomeInProgress)
	}
}

func TestStationManager_ResolvesCleanlinessIssue(t *testing.T) {
	a := agents.NewStationManager(testCatalogs(t))

	c := newComplaint(models.TypeBattery, "The station near my office is really dirty")
	c.Status = models.StatusInProgress
	d, err := a.ProcessComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessComplaint() error = %v", err)
	}
	if d.Decision != "Resolve station issue" {
		t.Errorf("Decision = %q, want %q", d.Decision, "Resolve station issue")
	}
	if d.Confidence != 0.85 {
		t.Errorf("Confidence = %v, want 0.85", d.Confidence)
	}
	if d.Outcome != models.OutcomeResolved {
		t.Errorf("Outcome = %q, want %q", d.Outcome, models.OutcomeResolved)
	}
}

func TestStationManager_EscalatesGenericIssue(t *testing.T) {
	a := agents.NewStationManager(testCatalogs(t))

	c := newComplaint(models.TypeBattery, "The station screen shows odd colors")
	c.Status = models.StatusInProgress
	d, err := a.ProcessComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessComplaint() error = %v", err)
	}
	if d.Decision != "Escalate to Technician" {
		t.Errorf("Decision = %q, want %q", d.Decision, "Escalate to Technician")
	}
	if d.NextRole != models.RoleTechnician {
		t.Errorf("NextRole = %q, want %q", d.NextRole, models.RoleTechnician)
	}
	if d.Confidence != 0.75 {
		t.Errorf("Confidence = %v, want 0.75", d.Confidence)
	}
}

func TestStationManager_MatchesNamedStation(t *testing.T) {
	a := agents.NewStationManager(testCatalogs(t))

	c := newComplaint(models.TypeBattery, "swap failed at the Harbor Market station")
	c.Status = models.StatusInProgress
	d, err := a.ProcessComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessComplaint() error = %v", err)
	}
	station, ok := d.Data["station"].(*models.StationRecord)
	if !ok {
		t.Fatalf("Data[station] = %T, want *models.StationRecord", d.Data["station"])
	}
	if station.ID != "ST002" {
		t.Errorf("matched station = %s, want ST002 (Harbor Market)", station.ID)
	}
}

func TestStationManager_CanHandle(t *testing.T) {
	a := agents.NewStationManager(testCatalogs(t))

	if !a.CanHandle(newComplaint(models.TypeBattery, "the station is broken")) {
		t.Error("CanHandle() = false for battery complaint mentioning station, want true")
	}
	if a.CanHandle(newComplaint(models.TypeBattery, "battery drains fast")) {
		t.Error("CanHandle() = true without station mention, want false")
	}
	if a.CanHandle(newComplaint(models.TypeVehicle, "the station is broken")) {
		t.Error("CanHandle() = true for vehicle complaint, want false")
	}
}

func TestFinanceOfficer_ProcessRefund(t *testing.T) {
	a := agents.NewFinanceOfficer(testCatalogs(t))

	// CUST001 has a completed payment on file.
	c := newComplaint(models.TypePayment, "I want a refund for my last swap")
	c.Status = models.StatusInProgress
	d, err := a.ProcessComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessComplaint() error = %v", err)
	}
	if d.Decision != "Process refund" {
		t.Errorf("Decision = %q, want %q", d.Decision, "Process refund")
	}
	if d.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", d.Confidence)
	}
	if d.Outcome != models.OutcomeResolved {
		t.Errorf("Outcome = %q, want %q", d.Outcome, models.OutcomeResolved)
	}
	if got, want := d.Data["refund_amount"], 12.50; got != want {
		t.Errorf("Data[refund_amount] = %v, want %v", got, want)
	}
	// The reasoning cites the ledger record so a reviewer can audit it.
	if !strings.Contains(d.Reasoning, "PAY001") {
		t.Errorf("Reasoning = %q, want reference to payment PAY001", d.Reasoning)
	}
}

func TestFinanceOfficer_DuplicateCharge(t *testing.T) {
	a := agents.NewFinanceOfficer(testCatalogs(t))

	c := newComplaint(models.TypePayment, "I was charged twice for my last swap")
	c.Status = models.StatusInProgress
	d, err := a.ProcessComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessComplaint() error = %v", err)
	}
	if d.Decision != "Investigate payment discrepancy" {
		t.Errorf("Decision = %q, want %q", d.Decision, "Investigate payment discrepancy")
	}
	if d.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", d.Confidence)
	}
}

func TestFinanceOfficer_FailedChargeInvestigated(t *testing.T) {
	a := agents.NewFinanceOfficer(testCatalogs(t))

	// CUST002's most recent payment has status failed.
	c := newComplaint(models.TypePayment, "I was charged but the swap never happened")
	c.CustomerID = "CUST002"
	c.Status = models.StatusInProgress
	d, err := a.ProcessComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessComplaint() error = %v", err)
	}
	if d.Decision != "Investigate payment discrepancy" {
		t.Errorf("Decision = %q, want %q", d.Decision, "Investigate payment discrepancy")
	}
}

func TestFinanceOfficer_NoRecordFallsBack(t *testing.T) {
	a := agents.NewFinanceOfficer(testCatalogs(t))

	c := newComplaint(models.TypePayment, "I want a refund right now")
	c.CustomerID = "CUST-UNKNOWN"
	c.Status = models.StatusInProgress
	d, err := a.ProcessComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessComplaint() error = %v", err)
	}
	if d.Decision != "Request additional payment information" {
		t.Errorf("Decision = %q, want %q", d.Decision, "Request additional payment information")
	}
	if d.Confidence != 0.7 {
		t.Errorf("Confidence = %v, want 0.7", d.Confidence)
	}
	if d.Outcome != models.OutcomeInProgress {
		t.Errorf("Outcome = %q, want %q", d.Outcome, models.OutcomeInProgress)
	}
}

func TestComplaintManager_CoordinatesMultiDomain(t *testing.T) {
	a := agents.NewComplaintManager(testCatalogs(t))

	c := newComplaint(models.TypeOther, "vehicle won't start and payment failed at the station")
	c.Status = models.StatusEscalated
	c.Priority = models.PriorityCritical
	d, err := a.ProcessComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessComplaint() error = %v", err)
	}
	if d.Decision != "Coordinate multi-agent resolution" {
		t.Errorf("Decision = %q, want %q", d.Decision, "Coordinate multi-agent resolution")
	}
	if d.Confidence != 0.85 {
		t.Errorf("Confidence = %v, want 0.85", d.Confidence)
	}
	required, ok := d.Data["required_agents"].([]models.AgentRole)
	if !ok {
		t.Fatalf("Data[required_agents] = %T, want []models.AgentRole", d.Data["required_agents"])
	}
	want := []models.AgentRole{models.RoleTechnician, models.RoleStationManager, models.RoleFinanceOfficer}
	if len(required) != len(want) {
		t.Fatalf("required_agents = %v, want %v", required, want)
	}
	for i := range want {
		if required[i] != want[i] {
			t.Errorf("required_agents[%d] = %q, want %q", i, required[i], want[i])
		}
	}
}

func TestComplaintManager_EscalatesCriticalToAdmin(t *testing.T) {
	a := agents.NewComplaintManager(testCatalogs(t))

	// Single domain group but Critical priority forces the Admin path.
	c := newComplaint(models.TypePayment, "billing dispute dragging on for weeks")
	c.Status = models.StatusEscalated
	c.Priority = models.PriorityCritical
	d, err := a.ProcessComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessComplaint() error = %v", err)
	}
	if d.Decision != "Escalate to Admin" {
		t.Errorf("Decision = %q, want %q", d.Decision, "Escalate to Admin")
	}
	if d.NextRole != models.RoleAdmin {
		t.Errorf("NextRole = %q, want %q", d.NextRole, models.RoleAdmin)
	}
	if d.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", d.Confidence)
	}
}

func TestComplaintManager_ReassignsSimpleCase(t *testing.T) {
	a := agents.NewComplaintManager(testCatalogs(t))

	c := newComplaint(models.TypePayment, "billing question about my plan")
	c.Status = models.StatusEscalated
	d, err := a.ProcessComplaint(context.Background(), c)
	if err != nil {
		t.Fatalf("ProcessComplaint() error = %v", err)
	}
	if d.Decision != "Reassign to appropriate agent" {
		t.Errorf("Decision = %q, want %q", d.Decision, "Reassign to appropriate agent")
	}
	if d.NextRole != models.RoleFinanceOfficer {
		t.Errorf("NextRole = %q, want %q", d.NextRole, models.RoleFinanceOfficer)
	}
	if d.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", d.Confidence)
	}
}

func TestComplaintManager_CanHandle(t *testing.T) {
	a := agents.NewComplaintManager(testCatalogs(t))

	escalated := newComplaint(models.TypeOther, "x")
	escalated.Status = models.StatusEscalated
	if !a.CanHandle(escalated) {
		t.Error("CanHandle() = false for escalated complaint, want true")
	}

	critical := newComplaint(models.TypeOther, "x")
	critical.Priority = models.PriorityCritical
	if !a.CanHandle(critical) {
		t.Error("CanHandle() = false for critical complaint, want true")
	}

	plain := newComplaint(models.TypeOther, "x")
	if a.CanHandle(plain) {
		t.Error("CanHandle() = true for open medium-priority complaint, want false")
	}
}

// Every agent must return a valid decision for a description that matches no
// catalog entry and no keyword table, regardless of outcome.
func TestAllAgents_FallbackNeverFails(t *testing.T) {
	refs := testCatalogs(t)

	for _, a := range agents.Roster(refs) {
		t.Run(string(a.Role()), func(t *testing.T) {
			c := newComplaint(models.TypeOther, "zzz qqq xyzzy")
			c.CustomerID = "CUST-UNKNOWN"
			d, err := a.ProcessComplaint(context.Background(), c)
			if err != nil {
				t.Fatalf("ProcessComplaint() error = %v", err)
			}
			if !d.Valid() {
				t.Errorf("decision invalid: %+v", d)
			}
			if d.Confidence < 0 || d.Confidence > 1 {
				t.Errorf("Confidence = %v out of [0,1]", d.Confidence)
			}
			if strings.TrimSpace(d.Reasoning) == "" {
				t.Error("Reasoning is empty")
			}
		})
	}
}

func TestRoster_OrderAndRoles(t *testing.T) {
	roster := agents.Roster(testCatalogs(t))

	want := []models.AgentRole{
		models.RoleSupportAgent,
		models.RoleTechnician,
		models.RoleStationManager,
		models.RoleFinanceOfficer,
		models.RoleComplaintManager,
	}
	if len(roster) != len(want) {
		t.Fatalf("Roster() returned %d agents, want %d", len(roster), len(want))
	}
	for i, a := range roster {
		if a.Role() != want[i] {
			t.Errorf("roster[%d].Role() = %q, want %q", i, a.Role(), want[i])
		}
		if len(a.Capabilities()) == 0 {
			t.Errorf("%s declares no capabilities", a.Role())
		}
	}
}
