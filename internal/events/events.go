// Package events publishes triage lifecycle events to Kafka so downstream
// consumers (dashboards, notification fan-out, BI pipelines) can react to
// complaint activity without polling the API.
package events

import (
	"context"
	"time"

	"github.com/swapdesk/swapdesk/pkg/models"
)

// Event types published to the complaint events topic.
const (
	EventComplaintReceived  = "complaint.received"
	EventDecisionRecorded   = "decision.recorded"
	EventComplaintResolved  = "complaint.resolved"
	EventComplaintEscalated = "complaint.escalated"
)

// Event is the wire shape of a triage lifecycle event.
type Event struct {
	Type        string                 `json:"type"`
	ComplaintID string                 `json:"complaint_id"`
	AgentRole   models.AgentRole       `json:"agent_role,omitempty"`
	Status      models.ComplaintStatus `json:"status,omitempty"`
	Decision    *models.AgentDecision  `json:"decision,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

// Publisher emits triage events. Publishing is best-effort: the pipeline
// never fails a complaint because an event could not be delivered.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// NopPublisher discards all events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, ev Event) error { return nil }
func (NopPublisher) Close() error                                { return nil }
