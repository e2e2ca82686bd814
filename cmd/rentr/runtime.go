package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/mark3labs/rentr/internal/backend"
	"github.com/mark3labs/rentr/internal/config"
	"github.com/mark3labs/rentr/internal/hooks"
	"github.com/mark3labs/rentr/internal/listing"
	"github.com/mark3labs/rentr/internal/logger"
	"github.com/mark3labs/rentr/internal/nats"
	"github.com/mark3labs/rentr/internal/session"
)

// loadConfig loads the layered configuration, applies the root flags on
// top, validates it and configures the logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if rootFlags.apiURL != "" {
		cfg.APIBaseURL = rootFlags.apiURL
	}
	if rootFlags.dataDir != "" {
		cfg.DataDir = rootFlags.dataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logger: %w", err)
	}
	return cfg, nil
}

// newClient builds the backend client for cfg.
func newClient(cfg *config.Config) *backend.Client {
	return backend.New(cfg.APIBaseURL, backend.WithHTTPClient(&http.Client{Timeout: cfg.UploadTimeout}))
}

// runtime holds what the commands that touch the local store share.
type runtime struct {
	cfg     *config.Config
	bus     *nats.Bus
	journal *session.Store
	actors  *session.ActorStore
	client  *backend.Client
	hooks   *hooks.Runner
}

// openRuntime loads the config and opens the local session store.
func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	logger.Debug("Opening session store in %s", cfg.DataDir)
	bus, err := nats.Open(ctx, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	return &runtime{
		cfg:     cfg,
		bus:     bus,
		journal: session.NewStore(bus.JS, bus.Journal),
		actors:  session.NewActorStore(bus.Session),
		client:  newClient(cfg),
	}, nil
}

// Close waits for running hooks and shuts the session store down.
func (r *runtime) Close() {
	if r.hooks != nil {
		r.hooks.Wait()
	}
	if err := r.bus.Close(); err != nil {
		logger.Warn("Error closing session store: %v", err)
	}
}

// actor returns the signed-in identity or tells the user how to sign in.
func (r *runtime) actor(ctx context.Context) (listing.Actor, error) {
	actor, err := r.actors.Load(ctx)
	if errors.Is(err, session.ErrNoActor) {
		return listing.Actor{}, errors.New("not signed in\n\nRun 'rentr login' first")
	}
	return actor, err
}

// newController builds a wizard controller for the signed-in actor that
// journals its activity and runs the hooks configured in the working
// directory.
func (r *runtime) newController(ctx context.Context) (*listing.Controller, error) {
	actor, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	hooksCfg, err := hooks.LoadConfig(workDir)
	if err != nil {
		return nil, err
	}
	r.hooks = hooks.NewRunner(ctx, hooksCfg, workDir)

	return listing.New(actor, r.client,
		listing.WithTimeout(r.cfg.RequestTimeout),
		listing.WithObserver(session.NewRecorder(r.journal)),
		listing.WithObserver(r.hooks),
		listing.WithUploader(r.client),
		listing.WithMaxUploadBytes(r.cfg.MaxUploadBytes),
		listing.WithUploadTimeout(r.cfg.UploadTimeout),
	)
}
