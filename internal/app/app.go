// Package app wires the application's services together in a samber/do
// container. Services are built lazily on first use, so commands that only
// need part of the graph (migrate) never open the rest.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nfrund/kaashub/internal/config"
	"github.com/nfrund/kaashub/internal/database"
	"github.com/nfrund/kaashub/internal/database/postgres"
	"github.com/nfrund/kaashub/internal/server"
	"github.com/samber/do/v2"
)

// App owns the service container and the resources that must be released
// on shutdown.
type App struct {
	ctx      context.Context
	cfg      config.Provider
	injector *do.RootScope

	mu      sync.Mutex
	closers []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

// Option adjusts the container before anything is built.
type Option func(do.Injector)

// WithService replaces the service of type T with value.
func WithService[T any](value T) Option {
	return func(i do.Injector) {
		do.OverrideValue(i, value)
	}
}

// New registers every provider. ctx bounds the background work started by
// the services (subscriptions, connection monitoring).
func New(ctx context.Context, cfg config.Provider, opts ...Option) *App {
	a := &App{
		ctx:      ctx,
		cfg:      cfg,
		injector: do.New(),
	}
	do.ProvideValue(a.injector, cfg)
	a.registerInfrastructure()
	a.registerServices()
	a.registerHTTP()
	for _, opt := range opts {
		opt(a.injector)
	}
	return a
}

// Server builds the HTTP server and everything it depends on.
func (a *App) Server() (*server.Server, error) {
	return do.Invoke[*server.Server](a.injector)
}

// Migrate applies the SurrealDB schema, and the Postgres schema when
// profiles are stored there.
func (a *App) Migrate(ctx context.Context) error {
	conn, err := do.Invoke[database.Conn](a.injector)
	if err != nil {
		return err
	}
	if err := database.Migrate(ctx, conn); err != nil {
		return err
	}

	if a.cfg.GetProfileStore() != config.ProfileStorePostgres {
		return nil
	}
	pool, err := do.Invoke[*pgxpool.Pool](a.injector)
	if err != nil {
		return err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Postgres schema applied", "event", "pg_migrate")
	return nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	s, err := a.Server()
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}
	return s.Start(ctx)
}

// Close releases resources in reverse order of creation.
func (a *App) Close(ctx context.Context) error {
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if err := c.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "Failed to close resource", "resource", c.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	a.injector.Shutdown()
	return errors.Join(errs...)
}

func (a *App) onClose(name string, fn func(context.Context) error) {
	a.mu.Lock()
	a.closers = append(a.closers, closer{name: name, fn: fn})
	a.mu.Unlock()
}
