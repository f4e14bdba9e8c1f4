package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/swapdesk/swapdesk/internal/analysis"
	"github.com/swapdesk/swapdesk/internal/refdata"
	"github.com/swapdesk/swapdesk/pkg/models"
)

// physicalKeywords indicate a hardware problem that needs an on-site look
// even when no known issue matches.
var physicalKeywords = []string{"brake", "wheel", "motor", "noise", "vibration", "loose", "broken"}

// Technician diagnoses vehicle and battery hardware complaints against the
// known-issue catalog.
type Technician struct {
	refs refdata.Catalogs
}

func NewTechnician(refs refdata.Catalogs) *Technician {
	return &Technician{refs: refs}
}

func (a *Technician) Role() models.AgentRole { return models.RoleTechnician }

func (a *Technician) Capabilities() []string {
	return []string{
		"hardware_diagnosis",
		"mechanical_repair",
		"battery_analysis",
		"technical_troubleshooting",
	}
}

// CanHandle accepts hardware-domain complaints already in flight.
func (a *Technician) CanHandle(c *models.Complaint) bool {
	if c.Type != models.TypeVehicle && c.Type != models.TypeBattery {
		return false
	}
	return c.Status == models.StatusInProgress || c.Status == models.StatusEscalated
}

func (a *Technician) ProcessComplaint(ctx context.Context, c *models.Complaint) (models.AgentDecision, error) {
	text := analysis.Analyze(c.Description)
	customer, _ := a.refs.Customers.FindCustomer(c)

	if issue, ok := a.refs.Issues.FindIssue(c.Description); ok {
		d := newDecision(a.Role(),
			"Apply technical solution",
			fmt.Sprintf("Identified issue: %s. Symptoms match: %s. Severity: %s",
				issue.Type, strings.Join(issue.Symptoms, ", "), issue.Severity),
			fmt.Sprintf("Implement solution: %s. Estimated repair time: %d minutes",
				issue.Solution, issue.EstimatedRepairTime),
			0.9,
			models.OutcomeResolved,
		)
		d.Data = map[string]interface{}{
			"issue":          issue,
			"customer":       customer,
			"estimated_time": issue.EstimatedRepairTime,
		}
		return d, nil
	}

	if containsAny(strings.ToLower(c.Description), physicalKeywords...) {
		d := newDecision(a.Role(),
			"Schedule physical inspection",
			fmt.Sprintf("Technical analysis indicates hardware issue requiring on-site inspection. Urgency: %s", text.Urgency),
			"Dispatch field technician for physical inspection and repair",
			0.8,
			models.OutcomeInProgress,
		)
		d.Data = map[string]interface{}{
			"inspection_required": true,
			"urgency":             text.Urgency,
		}
		return d, nil
	}

	d := newDecision(a.Role(),
		"Escalate to Complaint Manager",
		"Complex technical issue requiring specialized resources or further investigation",
		"Route to Complaint Manager for resource allocation and advanced troubleshooting",
		0.7,
		models.OutcomeEscalated,
	)
	d.NextRole = models.RoleComplaintManager
	d.Data = map[string]interface{}{
		"requires_escalation": true,
		"complexity":          "high",
	}
	return d, nil
}
