package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teemow/taskbridge/internal/auth"
	"github.com/teemow/taskbridge/internal/config"
	"github.com/teemow/taskbridge/internal/credentials"
	"github.com/teemow/taskbridge/internal/endpoints"
	"github.com/teemow/taskbridge/internal/google"
	"github.com/teemow/taskbridge/internal/instrumentation"
	"github.com/teemow/taskbridge/internal/tasks"
)

// runtime is the credential and dispatch stack shared by the commands.
type runtime struct {
	identity   *google.IdentityLoader
	store      *credentials.Store
	manager    *auth.Manager
	dispatcher *endpoints.Dispatcher
}

// newAuthRuntime wires the credential side only. Nothing touches the network
// or the client secret file until first use.
func newAuthRuntime(cfg *config.Config, logger *slog.Logger, metrics *instrumentation.Metrics) (*runtime, error) {
	backend, err := cfg.Credentials.NewBackend()
	if err != nil {
		return nil, fmt.Errorf("failed to create credential backend: %w", err)
	}

	rt := &runtime{
		identity: google.NewIdentityLoader(cfg.ClientSecretFile),
		store:    credentials.NewStore(backend, logger),
	}

	rt.manager, err = auth.NewManager(auth.Config{
		Identity: rt.identity,
		Store:    rt.store,
		Authorizer: &auth.LoopbackAuthorizer{
			Port:        cfg.Auth.CallbackPort,
			OpenBrowser: cfg.Auth.OpenBrowser,
			Logger:      logger,
		},
		Scopes:  cfg.Scopes,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create credential manager: %w", err)
	}
	return rt, nil
}

// newRuntime wires the full stack: stored credential, Tasks client,
// authentication-repairing executor and dispatcher. A missing or malformed
// client identity fails here with a *google.ConfigurationError.
func newRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *instrumentation.Metrics) (*runtime, error) {
	rt, err := newAuthRuntime(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}
	rt.manager.LoadStored(ctx)
	if err := rt.manager.Configure(); err != nil {
		return nil, err
	}

	client, err := tasks.NewClient(ctx, rt.manager.HTTPClient(), logger)
	if err != nil {
		return nil, err
	}

	registry := endpoints.DefaultRegistry()
	if cfg.Server.ReadOnly {
		registry = registry.Filter(func(def endpoints.Definition) bool { return def.ReadOnly })
	}

	rt.dispatcher = endpoints.NewDispatcher(endpoints.DispatcherConfig{
		Registry:     registry,
		API:          client,
		Executor:     auth.NewExecutor(rt.manager, logger, metrics),
		Reauthorizer: rt.manager,
		Logger:       logger,
		Metrics:      metrics,
	})
	return rt, nil
}
