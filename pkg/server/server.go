// Package server wires the PawMart backend together: configuration,
// store selection, the upstream model client, the assistant pipeline, and
// the HTTP router.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/pawmart/pawmart/internal/api"
	"github.com/pawmart/pawmart/internal/api/handlers"
	"github.com/pawmart/pawmart/internal/assistant"
	"github.com/pawmart/pawmart/internal/auth"
	"github.com/pawmart/pawmart/internal/config"
	"github.com/pawmart/pawmart/internal/llm"
	"github.com/pawmart/pawmart/internal/store"
	"github.com/pawmart/pawmart/internal/telemetry"
)

// Server holds the initialized backend.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Store is the data store (in-memory unless DATABASE_URL is set).
	Store store.Store

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes all components from environment configuration.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the backend with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	var dataStore store.Store
	if cfg.Database.URL != "" {
		dataStore, err = store.NewPostgresStore(ctx, cfg.Database.URL, cfg.Database.MaxConnections)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
	} else {
		dataStore = store.NewMemoryStore()
		log.Info().Msg("in-memory store initialized (set DATABASE_URL for persistence)")
	}

	upstream := llm.NewOpenAI(cfg.Upstream)
	if !upstream.Configured() {
		log.Warn().Msg("no upstream API key configured; assistant degrades to keyword-only intent")
	}

	authManager := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	classifier := assistant.NewClassifier(upstream, cfg.Upstream.Model, cfg.Intent)

	h := handlers.New(dataStore, authManager, upstream, classifier, cfg.Development, cfg.Version)
	router := api.NewRouter(h, authManager)

	return &Server{
		Handler:      router,
		Store:        dataStore,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}
