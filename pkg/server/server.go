// Package server provides the public entry point for initializing the
// FashBot gateway.
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

	"github.com/fashbot/fashbot/internal/api"
	"github.com/fashbot/fashbot/internal/api/handlers"
	"github.com/fashbot/fashbot/internal/assets"
	"github.com/fashbot/fashbot/internal/catalog"
	"github.com/fashbot/fashbot/internal/config"
	"github.com/fashbot/fashbot/internal/localgen"
	"github.com/fashbot/fashbot/internal/orchestrator"
	"github.com/fashbot/fashbot/internal/telemetry"

	"github.com/rs/zerolog/log"
)

// Server holds the initialized FashBot gateway.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Config is the loaded configuration.
	Config *config.Config

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes all gateway components and returns a ready Server.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the gateway with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	store, err := assets.NewStore(cfg.GeneratedDir)
	if err != nil {
		return nil, fmt.Errorf("init asset store: %w", err)
	}
	log.Info().Str("dir", store.Dir()).Msg("Generated-asset store initialized")

	cat := catalog.New(cfg.Providers)
	scripts := localgen.NewScriptRunner(cfg.PythonBin)
	orch := orchestrator.New(cat, scripts, store)
	log.Info().Msg("Provider orchestrator initialized")

	h := handlers.New(orch, cfg.PingMessage)
	router := api.NewRouter(cfg, h, store.Dir())

	return &Server{
		Handler:      router,
		Config:       cfg,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}
