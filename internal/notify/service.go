// Package notify dispatches complaint lifecycle notifications to registered
// channels (webhook, log). Channel drivers are pluggable: OSS ships with the
// webhook driver (HMAC-signed HTTP POST) and a structured-log driver.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/swapdesk/swapdesk/pkg/models"
)

// ── Event types ─────────────────────────────────────────────

// EventType describes what happened to a complaint.
type EventType string

const (
	EventComplaintResolved  EventType = "complaint_resolved"
	EventComplaintEscalated EventType = "complaint_escalated"
	EventAdminRequired      EventType = "admin_required"
	EventStepFailed         EventType = "step_failed"
)

// Event is the notification payload.
type Event struct {
	Type        EventType              `json:"type"`
	ComplaintID string                 `json:"complaint_id"`
	AgentRole   models.AgentRole       `json:"agent_role,omitempty"`
	Summary     string                 `json:"summary,omitempty"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

// NewEvent creates an Event with the given type and fields.
func NewEvent(eventType EventType, complaintID string, role models.AgentRole, summary string, payload map[string]interface{}) Event {
	return Event{
		Type:        eventType,
		ComplaintID: complaintID,
		AgentRole:   role,
		Summary:     summary,
		Payload:     payload,
		Timestamp:   time.Now().UTC(),
	}
}

// ── Channels & drivers ──────────────────────────────────────

// ChannelKind identifies a delivery mechanism.
type ChannelKind string

const (
	ChannelWebhook ChannelKind = "webhook"
	ChannelLog     ChannelKind = "log"
)

// Channel is a configured notification destination.
type Channel struct {
	Name   string      `json:"name" yaml:"name"`
	Kind   ChannelKind `json:"kind" yaml:"kind"`
	URL    string      `json:"url,omitempty" yaml:"url,omitempty"`
	Secret string      `json:"secret,omitempty" yaml:"secret,omitempty"`
	// Events this channel subscribes to; empty or "*" means all.
	Events []string `json:"events,omitempty" yaml:"events,omitempty"`
}

// ChannelDriver delivers an event to one channel.
type ChannelDriver interface {
	Kind() ChannelKind
	Send(ctx context.Context, channel *Channel, event Event) error
}

// ── Service ──────────────────────────────────────────────────

// Service fans events out to every subscribed channel.
type Service struct {
	client   *http.Client
	channels []Channel
	drivers  map[ChannelKind]ChannelDriver
	drvMu    sync.RWMutex
}

// NewService creates a notification service with the built-in drivers.
func NewService(channels []Channel) *Service {
	svc := &Service{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		channels: channels,
		drivers:  make(map[ChannelKind]ChannelDriver),
	}
	svc.RegisterDriver(NewWebhookChannelDriver(svc.client, 2*time.Second))
	svc.RegisterDriver(&LogChannelDriver{})
	return svc
}

// RegisterDriver adds or replaces a channel driver for the given kind.
func (s *Service) RegisterDriver(driver ChannelDriver) {
	s.drvMu.Lock()
	defer s.drvMu.Unlock()
	s.drivers[driver.Kind()] = driver
}

// Dispatch delivers the event to every subscribed channel. Delivery failures
// are logged, never returned: notifications are best-effort and must not
// fail the triage pipeline.
func (s *Service) Dispatch(ctx context.Context, event Event) {
	for i := range s.channels {
		ch := &s.channels[i]
		if !channelSubscribes(ch, event.Type) {
			continue
		}

		s.drvMu.RLock()
		driver := s.drivers[ch.Kind]
		s.drvMu.RUnlock()
		if driver == nil {
			log.Warn().Str("channel", ch.Name).Str("kind", string(ch.Kind)).Msg("No driver for notification channel")
			continue
		}

		if err := driver.Send(ctx, ch, event); err != nil {
			log.Warn().Err(err).
				Str("channel", ch.Name).
				Str("event", string(event.Type)).
				Str("complaint_id", event.ComplaintID).
				Msg("Notification delivery failed")
		}
	}
}

func channelSubscribes(ch *Channel, eventType EventType) bool {
	if len(ch.Events) == 0 {
		return true
	}
	for _, e := range ch.Events {
		if e == string(eventType) || e == "*" {
			return true
		}
	}
	return false
}

// ── Webhook Channel Driver ───────────────────────────────────

// WebhookChannelDriver sends notifications via HTTP POST to a webhook URL
// with optional HMAC-SHA256 signing.
type WebhookChannelDriver struct {
	client     *http.Client
	retryDelay time.Duration
}

// NewWebhookChannelDriver creates a webhook driver. retryDelay scales the
// backoff between attempts; zero disables the wait.
func NewWebhookChannelDriver(client *http.Client, retryDelay time.Duration) *WebhookChannelDriver {
	return &WebhookChannelDriver{client: client, retryDelay: retryDelay}
}

// Kind returns ChannelWebhook.
func (d *WebhookChannelDriver) Kind() ChannelKind {
	return ChannelWebhook
}

// Send posts the event as JSON to the channel's URL with optional HMAC signing.
func (d *WebhookChannelDriver) Send(ctx context.Context, channel *Channel, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	// HMAC-SHA256 signing if secret is configured
	var signature string
	if channel.Secret != "" {
		mac := hmac.New(sha256.New, []byte(channel.Secret))
		mac.Write(body)
		signature = "sha256=" + hex.EncodeToString(mac.Sum(nil))
	}

	// Send with retries. Each attempt gets a fresh request: the transport
	// consumes the body reader, so a reused request would retry with an
	// empty payload.
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * d.retryDelay)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, channel.URL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "SwapDesk-Webhook/1.0")
		req.Header.Set("X-SwapDesk-Event", string(event.Type))
		if signature != "" {
			req.Header.Set("X-SwapDesk-Signature", signature)
		}
		resp, err := d.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("webhook HTTP %d from %s", resp.StatusCode, channel.URL)
	}
	return fmt.Errorf("webhook failed after 3 attempts: %w", lastErr)
}

// ── Log Channel Driver ───────────────────────────────────────

// LogChannelDriver writes events to the structured log. Useful as a default
// channel in local development.
type LogChannelDriver struct{}

// Kind returns ChannelLog.
func (d *LogChannelDriver) Kind() ChannelKind {
	return ChannelLog
}

// Send logs the event at info level.
func (d *LogChannelDriver) Send(ctx context.Context, channel *Channel, event Event) error {
	log.Info().
		Str("channel", channel.Name).
		Str("event", string(event.Type)).
		Str("complaint_id", event.ComplaintID).
		Str("agent_role", string(event.AgentRole)).
		Str("summary", event.Summary).
		Msg("📣 Complaint notification")
	return nil
}
