package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/swapdesk/swapdesk/internal/refdata"
	"github.com/swapdesk/swapdesk/pkg/models"
)

// domainGroups maps resolution domains to the raw description keywords that
// pull them in. A complaint matching two or more groups needs coordinated
// handling rather than a single specialist.
var domainGroups = []struct {
	domain   string
	role     models.AgentRole
	keywords []string
}{
	{"vehicle", models.RoleTechnician, []string{"vehicle", "scooter", "motor"}},
	{"station", models.RoleStationManager, []string{"station", "swap"}},
	{"payment", models.RoleFinanceOfficer, []string{"payment", "billing"}},
}

// ComplaintManager is the escalation terminus: it handles complaints the
// specialists bounced back, coordinates multi-domain cases, and decides
// when a human administrator has to step in.
type ComplaintManager struct {
	refs refdata.Catalogs
}

func NewComplaintManager(refs refdata.Catalogs) *ComplaintManager {
	return &ComplaintManager{refs: refs}
}

func (a *ComplaintManager) Role() models.AgentRole { return models.RoleComplaintManager }

func (a *ComplaintManager) Capabilities() []string {
	return []string{
		"complex_case_management",
		"multi_agent_coordination",
		"escalation_management",
		"admin_liaison",
	}
}

func (a *ComplaintManager) CanHandle(c *models.Complaint) bool {
	return c.Status == models.StatusEscalated || c.Priority == models.PriorityCritical
}

func (a *ComplaintManager) ProcessComplaint(ctx context.Context, c *models.Complaint) (models.AgentDecision, error) {
	lower := strings.ToLower(c.Description)

	var involved []models.AgentRole
	var domains []string
	for _, g := range domainGroups {
		if containsAny(lower, g.keywords...) {
			involved = append(involved, g.role)
			domains = append(domains, g.domain)
		}
	}

	complexity := len(involved)
	if c.Priority == models.PriorityCritical {
		complexity += 2
	}
	if len(c.EscalationHistory) > 0 {
		complexity++
	}

	if len(involved) >= 2 {
		d := newDecision(a.Role(),
			"Coordinate multi-agent resolution",
			fmt.Sprintf("Complaint spans multiple domains (%s) and requires coordinated resolution", strings.Join(domains, ", ")),
			"Assign case owners per domain and track resolution across agents",
			0.85,
			models.OutcomeEscalated,
		)
		d.Data = map[string]interface{}{
			"required_agents":  involved,
			"domains":          domains,
			"complexity_score": complexity,
		}
		return d, nil
	}

	if complexity > 3 || c.Priority == models.PriorityCritical {
		d := newDecision(a.Role(),
			"Escalate to Admin",
			fmt.Sprintf("Complaint exceeds automated handling thresholds (complexity: %d, priority: %s)", complexity, c.Priority),
			"Transfer case to human administrator with full context",
			0.9,
			models.OutcomeEscalated,
		)
		d.NextRole = models.RoleAdmin
		d.Data = map[string]interface{}{
			"complexity_score": complexity,
		}
		return d, nil
	}

	target := a.recommendAgent(lower)
	d := newDecision(a.Role(),
		"Reassign to appropriate agent",
		fmt.Sprintf("Complaint can be handled by %s after review", target),
		fmt.Sprintf("Route complaint to %s with manager notes", target),
		0.8,
		models.OutcomeEscalated,
	)
	d.NextRole = target
	d.Data = map[string]interface{}{
		"recommended_agent": target,
	}
	return d, nil
}

func (a *ComplaintManager) recommendAgent(lower string) models.AgentRole {
	switch {
	case containsAny(lower, "payment", "billing"):
		return models.RoleFinanceOfficer
	case containsAny(lower, "station"):
		return models.RoleStationManager
	case containsAny(lower, "scooter", "vehicle", "technical"):
		return models.RoleTechnician
	default:
		return models.RoleSupportAgent
	}
}
