package metrics_test

import (
	"testing"
	"time"

	"github.com/swapdesk/swapdesk/internal/metrics"
	"github.com/swapdesk/swapdesk/pkg/models"
)

func TestAggregate_Empty(t *testing.T) {
	m := metrics.Aggregate(nil)
	if m.TotalComplaints != 0 || m.ResolutionRate != 0 || m.AverageResolutionTime != 0 {
		t.Errorf("Aggregate(nil) = %+v, want zero metrics", m)
	}
}

func TestAggregate(t *testing.T) {
	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	resolved := created.Add(2 * time.Hour)

	complaints := []models.Complaint{
		{
			ID: "C1", Type: models.TypeBattery, Status: models.StatusResolved,
			AssignedAgentRole: models.RoleStationManager,
			CreatedAt:         created, ResolvedAt: &resolved,
		},
		{
			ID: "C2", Type: models.TypeBattery, Status: models.StatusInProgress,
			AssignedAgentRole: models.RoleTechnician,
			CreatedAt:         created,
		},
		{
			ID: "C3", Type: models.TypePayment, Status: models.StatusEscalated,
			AssignedAgentRole: models.RoleFinanceOfficer,
			CreatedAt:         created,
		},
		{
			ID: "C4", Type: models.TypeVehicle, Status: models.StatusOpen,
			CreatedAt: created,
		},
	}

	m := metrics.Aggregate(complaints)

	if m.TotalComplaints != 4 {
		t.Errorf("TotalComplaints = %d, want 4", m.TotalComplaints)
	}
	if m.ResolvedComplaints != 1 {
		t.Errorf("ResolvedComplaints = %d, want 1", m.ResolvedComplaints)
	}
	if m.ResolutionRate != 0.25 {
		t.Errorf("ResolutionRate = %v, want 0.25", m.ResolutionRate)
	}
	if m.AverageResolutionTime != 2*time.Hour {
		t.Errorf("AverageResolutionTime = %v, want 2h", m.AverageResolutionTime)
	}
	if m.ComplaintsByType[models.TypeBattery] != 2 {
		t.Errorf("ComplaintsByType[Battery] = %d, want 2", m.ComplaintsByType[models.TypeBattery])
	}
	if m.ComplaintsByStatus[models.StatusEscalated] != 1 {
		t.Errorf("ComplaintsByStatus[Escalated] = %d, want 1", m.ComplaintsByStatus[models.StatusEscalated])
	}

	perf := m.AgentPerformance[models.RoleStationManager]
	if perf.Assigned != 1 || perf.Resolved != 1 {
		t.Errorf("AgentPerformance[Station Manager] = %+v, want assigned=1 resolved=1", perf)
	}
	if _, ok := m.AgentPerformance[""]; ok {
		t.Error("unassigned complaints must not appear in AgentPerformance")
	}
}
