// Package agents implements the five rule-based triage agents of the
// complaint pipeline. Every agent composes the shared text analyzer and the
// read-only reference catalogs; there is no base type — the Agent interface
// plus constructor-injected refdata.Catalogs is the whole contract.
package agents

import (
	"context"
	"strings"
	"time"

	"github.com/swapdesk/swapdesk/internal/refdata"
	"github.com/swapdesk/swapdesk/pkg/models"
)

// Agent is the two-operation contract every triage role implements.
type Agent interface {
	// Role names the operational role this agent acts as.
	Role() models.AgentRole

	// Capabilities lists the agent's declared capabilities. The strings are
	// opaque: used for documentation and audit payloads, never evaluated.
	Capabilities() []string

	// CanHandle is a pure eligibility predicate over the complaint's
	// status/type/priority. It is advisory: the orchestrator drives the
	// pipeline by decision routing, not by this predicate.
	CanHandle(c *models.Complaint) bool

	// ProcessComplaint evaluates the complaint and returns exactly one
	// decision. It must not fail for well-formed input: missing reference
	// data degrades to a low-confidence fallback decision. The context
	// covers future I/O-backed catalog lookups.
	ProcessComplaint(ctx context.Context, c *models.Complaint) (models.AgentDecision, error)
}

// Roster returns the fixed agent lineup in pipeline order, all sharing the
// same catalog capabilities.
func Roster(refs refdata.Catalogs) []Agent {
	return []Agent{
		NewSupportAgent(refs),
		NewTechnician(refs),
		NewStationManager(refs),
		NewFinanceOfficer(refs),
		NewComplaintManager(refs),
	}
}

// newDecision builds the common decision envelope. Confidence is clamped to
// [0,1] so no agent can emit an out-of-range score.
func newDecision(role models.AgentRole, label, reasoning, nextAction string, confidence float64, outcome models.DecisionOutcome) models.AgentDecision {
	return models.AgentDecision{
		AgentRole:  role,
		Decision:   label,
		Reasoning:  reasoning,
		NextAction: nextAction,
		Confidence: clamp01(confidence),
		Outcome:    outcome,
		Timestamp:  time.Now().UTC(),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// containsAny reports whether any of the needles appears in the haystack.
// Callers pass pre-lowered text.
func containsAny(lower string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
