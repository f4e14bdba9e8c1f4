// Package server provides the public entry point for initializing the
// complaint service.
//
// This package exists in pkg/ (not internal/) so that embedding programs
// (batch importers, integration test harnesses) can compose the full server
// and reuse its store and orchestrator.
//
// Usage:
//
//	srv, err := server.New(ctx)
//	http.ListenAndServe(":8080", srv.Handler)
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/swapdesk/swapdesk/internal/api"
	"github.com/swapdesk/swapdesk/internal/api/handlers"
	"github.com/swapdesk/swapdesk/internal/config"
	"github.com/swapdesk/swapdesk/internal/events"
	"github.com/swapdesk/swapdesk/internal/notify"
	"github.com/swapdesk/swapdesk/internal/refdata"
	"github.com/swapdesk/swapdesk/internal/retention"
	"github.com/swapdesk/swapdesk/internal/store"
	"github.com/swapdesk/swapdesk/internal/telemetry"
	"github.com/swapdesk/swapdesk/internal/workflow"
)

// Server holds the initialized complaint service.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Store is the data store (in-memory unless DATABASE_URL is set).
	Store store.Store

	// Orchestrator drives complaints through the triage pipeline. Exposed
	// so embedding programs can process complaints in-process.
	Orchestrator *workflow.Orchestrator

	// Events is the lifecycle event publisher (Kafka or no-op).
	Events events.Publisher

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes all components from environment configuration and returns
// a ready Server.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the complaint service with explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	// Initialize telemetry
	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	// Store: PostgreSQL when configured, in-memory otherwise
	var dataStore store.Store
	if cfg.Database.URL != "" {
		dataStore, err = store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		log.Info().Msg("✅ Postgres store initialized")
	} else {
		dataStore = store.NewMemoryStore()
		log.Info().Msg("✅ In-memory store initialized")
	}

	// Reference catalogs
	seed, err := refdata.LoadSeed(cfg.Refdata.SeedPath)
	if err != nil {
		log.Warn().Err(err).Msg("Seed file unusable, using built-in defaults")
	}
	refs := refdata.NewMemory(seed).Catalogs()
	log.Info().Msg("✅ Reference catalogs initialized")

	// Lifecycle events
	var pub events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		pub = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("✅ Kafka publisher initialized")
	}

	// Notifications
	channels := []notify.Channel{
		{Name: "ops-log", Kind: notify.ChannelLog},
	}
	if cfg.Webhook.URL != "" {
		channels = append(channels, notify.Channel{
			Name:   "ops-webhook",
			Kind:   notify.ChannelWebhook,
			URL:    cfg.Webhook.URL,
			Secret: cfg.Webhook.Secret,
		})
	}
	notifier := notify.NewService(channels)

	// Orchestrator over the fixed agent roster
	orch := workflow.NewOrchestrator(refs, dataStore, pub, notifier)
	log.Info().Msg("✅ Triage orchestrator initialized")

	// Retention: archive and purge resolved complaints past the window
	archiver := retention.NewLocalFileArchiver(cfg.Retention.ArchiveDir, true)
	janitor := retention.NewJanitor(dataStore, archiver, time.Hour, cfg.Retention.Days)
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	go janitor.Run(janitorCtx)

	// Build handlers + API router
	h := handlers.New(dataStore, orch)
	router := api.NewRouter(cfg, h)

	return &Server{
		Handler:      router,
		Store:        dataStore,
		Orchestrator: orch,
		Events:       pub,
		Port:         cfg.Port,
		ShutdownFunc: func(ctx context.Context) error {
			stopJanitor()
			return shutdown(ctx)
		},
	}, nil
}
