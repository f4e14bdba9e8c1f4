package agents

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/swapdesk/swapdesk/internal/analysis"
	"github.com/swapdesk/swapdesk/internal/refdata"
	"github.com/swapdesk/swapdesk/pkg/models"
)

// typeKeywords drives complaint-type classification by keyword scoring.
// Ordered so ties resolve deterministically (first listed wins on equal
// scores above the incumbent).
var typeKeywords = []struct {
	complaintType models.ComplaintType
	keywords      []string
}{
	{models.TypeVehicle, []string{"scooter", "bike", "vehicle", "motor", "wheel", "brake", "speed", "acceleration", "steering"}},
	{models.TypeBattery, []string{"battery", "charge", "power", "swap", "station", "charging", "energy"}},
	{models.TypePayment, []string{"payment", "billing", "charge", "refund", "transaction", "money", "credit", "debit"}},
}

// SupportAgent performs first-line triage: type classification, quick-win
// solution lookup, and escalation routing.
type SupportAgent struct {
	refs refdata.Catalogs
}

func NewSupportAgent(refs refdata.Catalogs) *SupportAgent {
	return &SupportAgent{refs: refs}
}

func (a *SupportAgent) Role() models.AgentRole { return models.RoleSupportAgent }

func (a *SupportAgent) Capabilities() []string {
	return []string{
		"complaint_classification",
		"basic_troubleshooting",
		"customer_communication",
		"escalation_routing",
	}
}

// CanHandle accepts only freshly opened complaints.
func (a *SupportAgent) CanHandle(c *models.Complaint) bool {
	return c.Status == models.StatusOpen
}

func (a *SupportAgent) ProcessComplaint(ctx context.Context, c *models.Complaint) (models.AgentDecision, error) {
	text := analysis.Analyze(c.Description)
	customer, _ := a.refs.Customers.FindCustomer(c)
	classified := a.classifyType(c)

	// A high-confidence catalog solution short-circuits escalation entirely.
	if quick, ok := a.findQuickSolution(c); ok {
		d := newDecision(a.Role(),
			"Provide immediate solution",
			fmt.Sprintf("Found matching solution in catalog: %s. Historical success rate: %d%%", quick.Solution, int(math.Round(quick.SuccessRate*100))),
			"Send solution to customer and monitor for confirmation",
			quick.SuccessRate,
			models.OutcomeInProgress,
		)
		d.Data = map[string]interface{}{
			"solution": quick,
			"customer": customer,
		}
		return d, nil
	}

	target := escalationTarget(classified, c.Description)

	d := newDecision(a.Role(),
		fmt.Sprintf("Escalate to %s", target),
		fmt.Sprintf("Complaint classified as %s with %s urgency. Keywords: %s. Sentiment: %s",
			classified, text.Urgency, strings.Join(text.Keywords, ", "), text.Sentiment),
		fmt.Sprintf("Route complaint to %s for specialized resolution", target),
		0.85,
		models.OutcomeEscalated,
	)
	d.NextRole = target
	d.Data = map[string]interface{}{
		"classification":    classified,
		"analysis":          text,
		"customer":          customer,
		"escalation_target": target,
	}
	return d, nil
}

// classifyType scores the type keyword lists against title+description and
// returns the highest-scoring type. Ties keep the incumbent type, or fall
// back to Other when the complaint arrived untyped.
func (a *SupportAgent) classifyType(c *models.Complaint) models.ComplaintType {
	lower := strings.ToLower(c.Title + " " + c.Description)

	classified := c.Type
	if classified == "" {
		classified = models.TypeOther
	}

	maxScore := 0
	for _, entry := range typeKeywords {
		score := 0
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > maxScore {
			maxScore = score
			classified = entry.complaintType
		}
	}
	return classified
}

// findQuickSolution returns the first catalog solution whose keywords match
// the description and whose historical success rate exceeds 0.8.
func (a *SupportAgent) findQuickSolution(c *models.Complaint) (models.TechnicalSolution, bool) {
	for _, sol := range a.refs.Solutions.FindSolutions(c.Description) {
		if sol.SuccessRate > 0.8 {
			return sol, true
		}
	}
	return models.TechnicalSolution{}, false
}

// escalationTarget is the fixed type → specialist mapping. Battery issues go
// to the Station Manager only when the description actually mentions a
// station; otherwise the Technician owns them.
func escalationTarget(t models.ComplaintType, description string) models.AgentRole {
	switch t {
	case models.TypeVehicle:
		return models.RoleTechnician
	case models.TypeBattery:
		if strings.Contains(strings.ToLower(description), "station") {
			return models.RoleStationManager
		}
		return models.RoleTechnician
	case models.TypePayment:
		return models.RoleFinanceOfficer
	default:
		return models.RoleComplaintManager
	}
}
