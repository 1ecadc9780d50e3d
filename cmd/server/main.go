// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

// Package main is the entry point for the Farescope server.
//
// Farescope is a flight search and travel analytics backend: it proxies
// flight-offer and location searches, serves CMS content, ingests
// anonymized search and clickout tracking events through an embedded
// JetStream broker into DuckDB, and exposes analytics dashboards with
// CSV/JSON export.
//
// Startup order:
//
//  1. Configuration (koanf: defaults, config file, environment)
//  2. Logging (zerolog)
//  3. DuckDB: schema, bootstrap admin, reference data
//  4. Embedded NATS JetStream broker and the events stream
//  5. Event pipeline: publisher, consumer, badger WAL retrier
//  6. Upstream clients: flights, geoip, currency, SMTP mailer
//  7. HTTP API and the suture supervision tree
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farescope/farescope/internal/api"
	"github.com/farescope/farescope/internal/auth"
	"github.com/farescope/farescope/internal/authz"
	"github.com/farescope/farescope/internal/config"
	"github.com/farescope/farescope/internal/currency"
	"github.com/farescope/farescope/internal/database"
	"github.com/farescope/farescope/internal/eventprocessor"
	"github.com/farescope/farescope/internal/flights"
	"github.com/farescope/farescope/internal/geoip"
	"github.com/farescope/farescope/internal/logging"
	"github.com/farescope/farescope/internal/mailer"
	"github.com/farescope/farescope/internal/models"
	"github.com/farescope/farescope/internal/supervisor"
	"github.com/farescope/farescope/internal/wal"
	"github.com/farescope/farescope/internal/websocket"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Starting Farescope")

	if cfg.Auth.JWTSecret == "" {
		secret, err := generateSecret()
		if err != nil {
			return fmt.Errorf("generating JWT secret: %w", err)
		}
		cfg.Auth.JWTSecret = secret
		logging.Warn().Msg("AUTH_JWT_SECRET not set, generated an ephemeral secret; sessions will not survive restarts")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	if err := bootstrapData(ctx, cfg, db); err != nil {
		return err
	}

	// Event broker. The embedded server starts before the tree because
	// the publisher and subscriber need its client URL.
	natsURL := cfg.NATS.URL
	var broker *eventprocessor.EmbeddedServer
	if cfg.NATS.Embedded {
		broker, err = eventprocessor.NewEmbeddedServer(&cfg.NATS)
		if err != nil {
			return fmt.Errorf("starting embedded broker: %w", err)
		}
		natsURL = broker.ClientURL()
	}
	if err := eventprocessor.EnsureStream(ctx, natsURL); err != nil {
		return fmt.Errorf("ensuring events stream: %w", err)
	}

	publisher, err := eventprocessor.NewPublisher(natsURL)
	if err != nil {
		return fmt.Errorf("connecting event publisher: %w", err)
	}
	defer func() { _ = publisher.Close() }()

	subscriber, err := eventprocessor.NewJetStreamSubscriber(natsURL)
	if err != nil {
		return fmt.Errorf("connecting event subscriber: %w", err)
	}
	defer func() { _ = subscriber.Close() }()

	// Failed-insert buffer.
	var walStore *wal.Store
	var retrier *wal.Retrier
	if cfg.WAL.Enabled {
		walStore, err = wal.Open(cfg.WAL.Dir)
		if err != nil {
			return fmt.Errorf("opening event buffer: %w", err)
		}
		defer func() { _ = walStore.Close() }()
		retrier = wal.NewRetrier(walStore, &cfg.WAL, replaySink(db))
	}

	var buffer eventprocessor.Buffer
	if walStore != nil {
		buffer = walStore
	}
	consumer := eventprocessor.NewConsumer(subscriber, db, buffer)

	// Upstream clients.
	flightsClient := flights.NewClient(&cfg.Flights)
	geoipClient := geoip.NewClient(&cfg.GeoIP)
	defer geoipClient.Close()
	currencyClient := currency.NewClient(&cfg.Currency)
	defer currencyClient.Close()
	mail := mailer.New(&cfg.SMTP, db)

	hub := websocket.NewHub()

	jwt, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTimeout)
	if err != nil {
		return fmt.Errorf("initializing JWT manager: %w", err)
	}
	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return fmt.Errorf("initializing permission enforcer: %w", err)
	}

	var natsHealthy func() bool
	if broker != nil {
		natsHealthy = broker.IsRunning
	}

	handler := api.NewHandler(api.HandlerParams{
		Config:      cfg,
		DB:          db,
		Hub:         hub,
		JWT:         jwt,
		Flights:     flightsClient,
		GeoIP:       geoipClient,
		Currency:    currencyClient,
		Mailer:      mail,
		Publisher:   publisher,
		WAL:         walStore,
		NATSHealthy: natsHealthy,
	})
	mw := api.NewChiMiddleware(cfg.Server.AllowedOrigins, false)
	router := api.NewRouter(handler, mw, jwt, enforcer).Setup()

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Supervision tree.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if retrier != nil {
		tree.AddDataService(retrier)
	}
	tree.AddMessagingService(supervisor.NewRunnerService(hub, "websocket-hub"))
	tree.AddMessagingService(consumer)
	if broker != nil {
		tree.AddMessagingService(supervisor.NewBrokerService(broker, 10*time.Second))
	}
	tree.AddAPIService(supervisor.NewHTTPServerService(server, 10*time.Second))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := tree.ServeBackground(runCtx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			reportUnstopped(tree)
			return err
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			reportUnstopped(tree)
			return err
		}
	}

	logging.Info().Msg("Shutdown complete")
	return nil
}

// bootstrapData applies the schema-adjacent startup writes: the admin
// account and the reference tables.
func bootstrapData(ctx context.Context, cfg *config.Config, db *database.DB) error {
	if cfg.Auth.AdminPassword != "" {
		hash, err := auth.HashPassword(cfg.Auth.AdminPassword)
		if err != nil {
			return fmt.Errorf("hashing admin password: %w", err)
		}
		if err := db.EnsureAdminUser(ctx, cfg.Auth.AdminUsername, hash); err != nil {
			return fmt.Errorf("ensuring admin user: %w", err)
		}
	} else {
		logging.Warn().Msg("AUTH_ADMIN_PASSWORD not set, skipping bootstrap admin account")
	}

	airports, cities, countries, airlines := database.DefaultReferenceData()
	if err := db.SeedReferenceData(ctx, airports, cities, countries, airlines); err != nil {
		return fmt.Errorf("seeding reference data: %w", err)
	}
	return nil
}

// replaySink rebuilds the insert for a buffered event.
func replaySink(db *database.DB) wal.Sink {
	return func(ctx context.Context, entry *wal.Entry) error {
		switch entry.Kind {
		case "search":
			var event models.SearchEvent
			if err := entry.UnmarshalPayload(&event); err != nil {
				return err
			}
			return db.InsertSearchEvent(ctx, &event)
		case "clickout":
			var event models.ClickoutEvent
			if err := entry.UnmarshalPayload(&event); err != nil {
				return err
			}
			return db.InsertClickoutEvent(ctx, &event)
		default:
			return fmt.Errorf("unknown buffered event kind %q", entry.Kind)
		}
	}
}

func reportUnstopped(tree *supervisor.Tree) {
	unstopped, err := tree.UnstoppedServiceReport()
	if err != nil || len(unstopped) == 0 {
		return
	}
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
	}
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
