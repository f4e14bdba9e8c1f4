// Package models defines the shared domain types for the SwapDesk complaint
// triage pipeline: complaints, agent decisions, workflow steps, and the
// read-only reference catalog records the agents consult.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ── Complaint taxonomy ───────────────────────────────────────

// ComplaintType classifies what a complaint is about.
type ComplaintType string

const (
	TypeVehicle ComplaintType = "Vehicle"
	TypeBattery ComplaintType = "Battery"
	TypePayment ComplaintType = "Payment"
	TypeOther   ComplaintType = "Other"
)

// ComplaintStatus is the complaint lifecycle state.
// Open → In Progress → Escalated → Resolved; Resolved is terminal.
type ComplaintStatus string

const (
	StatusOpen       ComplaintStatus = "Open"
	StatusInProgress ComplaintStatus = "In Progress"
	StatusEscalated  ComplaintStatus = "Escalated"
	StatusResolved   ComplaintStatus = "Resolved"
)

// ComplaintPriority is the caller-assigned urgency of a complaint.
type ComplaintPriority string

const (
	PriorityLow      ComplaintPriority = "Low"
	PriorityMedium   ComplaintPriority = "Medium"
	PriorityHigh     ComplaintPriority = "High"
	PriorityCritical ComplaintPriority = "Critical"
)

// AgentRole identifies one of the fixed operational roles in the pipeline.
type AgentRole string

const (
	RoleSupportAgent     AgentRole = "Support Agent"
	RoleTechnician       AgentRole = "Technician"
	RoleStationManager   AgentRole = "Station Manager"
	RoleFinanceOfficer   AgentRole = "Finance Officer"
	RoleComplaintManager AgentRole = "Complaint Manager"

	// RoleAdmin is an escalation target outside the agent roster; complaints
	// assigned to it await human action.
	RoleAdmin AgentRole = "Admin"
)

// ParseAgentRole extracts a role name from free text (case-insensitive
// substring match). Returns false when no role name appears. Kept as the
// compatibility fallback for decisions that don't set NextRole explicitly.
func ParseAgentRole(text string) (AgentRole, bool) {
	lower := strings.ToLower(text)
	for _, role := range []AgentRole{RoleTechnician, RoleStationManager, RoleFinanceOfficer, RoleComplaintManager} {
		if strings.Contains(lower, strings.ToLower(string(role))) {
			return role, true
		}
	}
	return "", false
}

// ── Complaint ────────────────────────────────────────────────

// Complaint is the unit of work flowing through the triage pipeline.
// It is created by the ingestion layer in status Open with no assignee and
// mutated exclusively by the workflow orchestrator.
type Complaint struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Type        ComplaintType     `json:"type"`
	Status      ComplaintStatus   `json:"status"`
	Priority    ComplaintPriority `json:"priority"`

	CustomerID        string    `json:"customer_id"`
	CustomerEmail     string    `json:"customer_email"`
	AssignedAgentRole AgentRole `json:"assigned_agent_role,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	EscalationHistory []EscalationRecord    `json:"escalation_history,omitempty"`
	CommunicationLog  []CommunicationRecord `json:"communication_log,omitempty"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Validation errors for inbound complaints. Missing reference data is never
// an error (agents degrade to fallback decisions); these cover malformed
// input only, rejected before any agent runs.
var (
	ErrMissingComplaintID   = errors.New("complaint id is required")
	ErrMissingComplaintType = errors.New("complaint type is required")
)

// Validate rejects malformed complaints. A missing description is not an
// error: text analysis then yields all-default outputs.
func (c *Complaint) Validate() error {
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return ErrMissingComplaintID
	}
	if c.Type == "" {
		return ErrMissingComplaintType
	}
	return nil
}

// Escalate appends an escalation record and keeps the history time-ordered
// by always appending with the current time.
func (c *Complaint) Escalate(from, to AgentRole, reason string) {
	c.EscalationHistory = append(c.EscalationHistory, EscalationRecord{
		FromAgent: from,
		ToAgent:   to,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	})
}

// AddCommunication appends a communication record to the complaint log.
func (c *Complaint) AddCommunication(role AgentRole, message string, audience CommunicationAudience) {
	c.CommunicationLog = append(c.CommunicationLog, CommunicationRecord{
		AgentRole: role,
		Message:   message,
		Audience:  audience,
		Timestamp: time.Now().UTC(),
	})
}

// EscalationRecord is one reassignment of a complaint between roles.
type EscalationRecord struct {
	FromAgent AgentRole `json:"from_agent"`
	ToAgent   AgentRole `json:"to_agent"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// CommunicationAudience distinguishes internal notes from customer-facing
// messages.
type CommunicationAudience string

const (
	AudienceInternal CommunicationAudience = "internal"
	AudienceCustomer CommunicationAudience = "customer"
)

// CommunicationRecord is one message logged against a complaint.
type CommunicationRecord struct {
	AgentRole AgentRole             `json:"agent_role"`
	Message   string                `json:"message"`
	Audience  CommunicationAudience `json:"audience"`
	Timestamp time.Time             `json:"timestamp"`
}

// ── Agent decisions ──────────────────────────────────────────

// DecisionOutcome is the typed disposition of a decision. Each agent branch
// sets it deliberately; the orchestrator switches on it rather than sniffing
// the decision text.
type DecisionOutcome string

const (
	OutcomeInProgress DecisionOutcome = "in_progress"
	OutcomeEscalated  DecisionOutcome = "escalated"
	OutcomeResolved   DecisionOutcome = "resolved"
)

// AgentDecision is the immutable output of one agent's evaluation of one
// complaint. Reasoning is always non-empty so a human reviewing an escalated
// ticket can audit why the system acted as it did.
type AgentDecision struct {
	AgentRole  AgentRole `json:"agent_role"`
	Decision   string    `json:"decision"`
	Reasoning  string    `json:"reasoning"`
	NextAction string    `json:"next_action"`

	// Confidence is the agent's self-reported certainty in [0,1].
	Confidence float64 `json:"confidence"`

	// Outcome tags the disposition of this decision.
	Outcome DecisionOutcome `json:"outcome"`

	// NextRole is the recommended next assignee, empty when the decision
	// keeps the complaint with the current handler.
	NextRole AgentRole `json:"next_role,omitempty"`

	Timestamp time.Time `json:"timestamp"`

	// Data carries decision-specific structured evidence (matched catalog
	// entries, computed assessments). No fixed shape.
	Data map[string]interface{} `json:"data,omitempty"`
}

// Valid reports whether the decision satisfies the invariants every agent
// must uphold: confidence in [0,1] and non-empty decision/reasoning.
func (d AgentDecision) Valid() bool {
	return d.Confidence >= 0 && d.Confidence <= 1 && d.Decision != "" && d.Reasoning != ""
}

// ── Workflow steps ───────────────────────────────────────────

// StepStatus is the state of a workflow step. Transitions are monotonic:
// pending → processing → completed|failed.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepProcessing StepStatus = "processing"
	StepCompleted  StepStatus = "completed"
	StepFailed     StepStatus = "failed"
)

// WorkflowStep is one logged agent invocation in a complaint's trace.
// Decision is present iff the step completed.
type WorkflowStep struct {
	ID        string         `json:"id"`
	AgentRole AgentRole      `json:"agent_role"`
	Status    StepStatus     `json:"status"`
	Decision  *AgentDecision `json:"decision,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// TriageResult is what ProcessNewComplaint returns to the caller: the mutated
// complaint, the first (triage) decision, derived next steps, and the full
// step trace.
type TriageResult struct {
	Complaint     *Complaint     `json:"complaint"`
	Decision      AgentDecision  `json:"decision"`
	NextSteps     []string       `json:"next_steps"`
	WorkflowSteps []WorkflowStep `json:"workflow_steps"`
}

// ── Reference catalogs ───────────────────────────────────────

// Customer is a directory record matched by id or email.
type Customer struct {
	ID               string    `json:"id" yaml:"id"`
	Email            string    `json:"email" yaml:"email"`
	Name             string    `json:"name" yaml:"name"`
	SubscriptionType string    `json:"subscription_type" yaml:"subscription_type"`
	TotalSwaps       int       `json:"total_swaps" yaml:"total_swaps"`
	LastActivity     time.Time `json:"last_activity" yaml:"last_activity"`
}

// TechnicalSolution is a known-solution catalog entry with its historical
// success rate.
type TechnicalSolution struct {
	ID          string   `json:"id" yaml:"id"`
	ProblemType string   `json:"problem_type" yaml:"problem_type"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
	Solution    string   `json:"solution" yaml:"solution"`
	SuccessRate float64  `json:"success_rate" yaml:"success_rate"`
}

// KnownIssue is a known-issue catalog entry keyed by symptom keywords.
type KnownIssue struct {
	ID       string   `json:"id" yaml:"id"`
	Type     string   `json:"type" yaml:"type"`
	Symptoms []string `json:"symptoms" yaml:"symptoms"`
	Solution string   `json:"solution" yaml:"solution"`
	Severity string   `json:"severity" yaml:"severity"`

	// EstimatedRepairTime is in minutes.
	EstimatedRepairTime int `json:"estimated_repair_time" yaml:"estimated_repair_time"`
}

// StationRecord describes a battery-swap station.
type StationRecord struct {
	ID                 string    `json:"id" yaml:"id"`
	Location           string    `json:"location" yaml:"location"`
	Status             string    `json:"status" yaml:"status"` // operational | maintenance | offline
	BatterySlots       int       `json:"battery_slots" yaml:"battery_slots"`
	AvailableBatteries int       `json:"available_batteries" yaml:"available_batteries"`
	LastMaintenance    time.Time `json:"last_maintenance" yaml:"last_maintenance"`
	CommonIssues       []string  `json:"common_issues" yaml:"common_issues"`
}

// PaymentStatus is the ledger state of a payment record.
type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentPending   PaymentStatus = "pending"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentRecord is a payment-ledger entry for a customer.
type PaymentRecord struct {
	ID              string        `json:"id" yaml:"id"`
	CustomerID      string        `json:"customer_id" yaml:"customer_id"`
	Amount          float64       `json:"amount" yaml:"amount"`
	Status          PaymentStatus `json:"status" yaml:"status"`
	TransactionDate time.Time     `json:"transaction_date" yaml:"transaction_date"`
	PaymentMethod   string        `json:"payment_method" yaml:"payment_method"`
}

// ── Metrics ──────────────────────────────────────────────────

// RolePerformance aggregates per-role workload numbers.
type RolePerformance struct {
	Assigned int `json:"assigned"`
	Resolved int `json:"resolved"`
}

// ComplaintMetrics is the aggregate view served by the metrics endpoint.
type ComplaintMetrics struct {
	TotalComplaints       int                           `json:"total_complaints"`
	ResolvedComplaints    int                           `json:"resolved_complaints"`
	ResolutionRate        float64                       `json:"resolution_rate"`
	AverageResolutionTime time.Duration                 `json:"average_resolution_time"`
	ComplaintsByType      map[ComplaintType]int         `json:"complaints_by_type"`
	ComplaintsByStatus    map[ComplaintStatus]int       `json:"complaints_by_status"`
	AgentPerformance      map[AgentRole]RolePerformance `json:"agent_performance"`
}

// String implements fmt.Stringer for log-friendly complaint identity.
func (c *Complaint) String() string {
	return fmt.Sprintf("%s [%s/%s/%s]", c.ID, c.Type, c.Priority, c.Status)
}
