package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/swapdesk/swapdesk/internal/refdata"
	"github.com/swapdesk/swapdesk/pkg/models"
)

// stationIssue is the Station Manager's classification of a station problem.
type stationIssue struct {
	kind        string
	canResolve  bool
	maintenance bool
	solution    string
	priority    models.ComplaintPriority
}

// StationManager handles swap-station operational complaints.
type StationManager struct {
	refs refdata.Catalogs
}

func NewStationManager(refs refdata.Catalogs) *StationManager {
	return &StationManager{refs: refs}
}

func (a *StationManager) Role() models.AgentRole { return models.RoleStationManager }

func (a *StationManager) Capabilities() []string {
	return []string{
		"station_operations",
		"facility_management",
		"swap_process_optimization",
		"station_maintenance",
	}
}

// CanHandle accepts battery complaints that actually mention a station.
func (a *StationManager) CanHandle(c *models.Complaint) bool {
	return c.Type == models.TypeBattery && strings.Contains(strings.ToLower(c.Description), "station")
}

func (a *StationManager) ProcessComplaint(ctx context.Context, c *models.Complaint) (models.AgentDecision, error) {
	customer, _ := a.refs.Customers.FindCustomer(c)

	if station, ok := a.refs.Stations.FindStation(c); ok {
		issue := classifyStationIssue(c.Description)

		if issue.maintenance {
			d := newDecision(a.Role(),
				"Schedule station maintenance",
				fmt.Sprintf("Station at %s requires maintenance. Issue: %s", station.Location, issue.kind),
				"Schedule maintenance crew and notify customers of temporary service interruption",
				0.9,
				models.OutcomeInProgress,
			)
			d.Data = map[string]interface{}{
				"station":              station,
				"maintenance_required": true,
				"priority":             issue.priority,
			}
			return d, nil
		}

		if issue.canResolve {
			d := newDecision(a.Role(),
				"Resolve station issue",
				fmt.Sprintf("Station issue identified at %s: %s. Station status: %s", station.Location, issue.kind, station.Status),
				fmt.Sprintf("Implement solution: %s. Monitor station performance", issue.solution),
				0.85,
				models.OutcomeResolved,
			)
			d.Data = map[string]interface{}{
				"station":  station,
				"issue":    issue.kind,
				"customer": customer,
			}
			return d, nil
		}
	}

	d := newDecision(a.Role(),
		"Escalate to Technician",
		"Station issue requires technical expertise for resolution",
		"Route to Technician for specialized technical resolution",
		0.75,
		models.OutcomeEscalated,
	)
	d.NextRole = models.RoleTechnician
	d.Data = map[string]interface{}{
		"requires_technical_support": true,
	}
	return d, nil
}

// classifyStationIssue buckets the complaint by description keywords.
// Precedence is fixed and load-bearing: mechanism problems (swap/stuck)
// first, then payment hardware (payment/card), then cleanliness — a stuck
// swap machine at a dirty station is a maintenance call, not a cleaning one.
func classifyStationIssue(description string) stationIssue {
	lower := strings.ToLower(description)

	if strings.Contains(lower, "swap") || strings.Contains(lower, "stuck") {
		return stationIssue{
			kind:        "Battery swap mechanism",
			maintenance: true,
			priority:    models.PriorityHigh,
		}
	}
	if strings.Contains(lower, "payment") || strings.Contains(lower, "card") {
		return stationIssue{
			kind:        "Payment system malfunction",
			maintenance: true,
			priority:    models.PriorityHigh,
		}
	}
	if strings.Contains(lower, "dirty") || strings.Contains(lower, "clean") {
		return stationIssue{
			kind:       "Cleanliness issue",
			canResolve: true,
			solution:   "Deploy cleaning crew and implement regular cleaning schedule",
			priority:   models.PriorityMedium,
		}
	}
	return stationIssue{
		kind:     "General station issue",
		priority: models.PriorityMedium,
	}
}
