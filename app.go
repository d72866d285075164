package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/devdot/churchsync/internal/churchtools"
	"github.com/devdot/churchsync/internal/config"
	"github.com/devdot/churchsync/internal/engine"
	"github.com/devdot/churchsync/internal/platform"
)

// sessionKey is the platform config-store key the persisted API session
// lives under.
const sessionKey = "api_session"

// defaultRequestTimeout bounds every remote request when the config does not
// set one. A hung remote call must not stall a scheduled pass indefinitely.
const defaultRequestTimeout = 30 * time.Second

// app bundles the wired components for one CLI invocation.
type app struct {
	store  *platform.Store
	engine *engine.Engine
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("closing platform store", "error", err.Error())
	}
}

// buildApp wires the platform store, the remote client, and the engine from
// the loaded configuration.
func buildApp(cfg *config.Config) (*app, error) {
	configureLogger(cfg.Logging.LogLevel, cfg.Logging.LogFormat)
	logger := slog.Default()

	store, err := platform.NewStore(cfg.DatabasePath, logger)
	if err != nil {
		return nil, err
	}

	timeout := defaultRequestTimeout
	if cfg.Network.RequestTimeout != "" {
		if d, err := time.ParseDuration(cfg.Network.RequestTimeout); err == nil && d > 0 {
			timeout = d
		}
	}

	client := churchtools.NewClient(
		cfg.URL,
		&http.Client{Timeout: timeout},
		&sessionStore{store: store},
		cfg.APIToken,
		logger,
		churchtools.Options{
			UserAgent:         cfg.Network.UserAgent,
			RequestsPerSecond: cfg.Network.RequestsPerSecond,
			Burst:             cfg.Network.Burst,
		},
	)

	eng := engine.New(client, store, store, store, store, store, engine.Settings{
		UserPrefix:        cfg.UserPrefix,
		GroupPrefix:       cfg.GroupPrefix,
		LeaderGroupSuffix: cfg.LeaderGroupSuffix,
		FolderTag:         cfg.GroupFoldersTag,
		FoldersEnabled:    cfg.GroupFoldersEnabled,
	}, logger)

	return &app{store: store, engine: eng}, nil
}

// sessionStore adapts the platform config store to the remote client's
// credential persistence interface.
type sessionStore struct {
	store platform.ConfigStore
}

func (s *sessionStore) Session(ctx context.Context) (string, error) {
	return s.store.GetAppValue(ctx, sessionKey)
}

func (s *sessionStore) SaveSession(ctx context.Context, session string) error {
	return s.store.SetAppValue(ctx, sessionKey, session)
}
