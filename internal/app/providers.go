package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nfrund/kaashub/internal/auth"
	"github.com/nfrund/kaashub/internal/config"
	"github.com/nfrund/kaashub/internal/database"
	"github.com/nfrund/kaashub/internal/database/postgres"
	"github.com/nfrund/kaashub/internal/domain"
	"github.com/nfrund/kaashub/internal/email"
	"github.com/nfrund/kaashub/internal/filestore"
	"github.com/nfrund/kaashub/internal/handlers"
	"github.com/nfrund/kaashub/internal/metrics"
	"github.com/nfrund/kaashub/internal/profile"
	"github.com/nfrund/kaashub/internal/pubsub"
	"github.com/nfrund/kaashub/internal/rendering"
	"github.com/nfrund/kaashub/internal/server"
	"github.com/nfrund/kaashub/internal/session"
	"github.com/nfrund/kaashub/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/trace"
)

func (a *App) registerInfrastructure() {
	i := a.injector

	do.Provide(i, func(i do.Injector) (*database.Connection, error) {
		conn := database.NewConnection(do.MustInvoke[config.Provider](i))
		if err := conn.Connect(a.ctx); err != nil {
			return nil, fmt.Errorf("connect to surrealdb: %w", err)
		}
		conn.StartMonitoring()
		a.onClose("surrealdb", conn.Close)
		return conn, nil
	})
	do.Provide(i, func(i do.Injector) (database.Conn, error) {
		return do.Invoke[*database.Connection](i)
	})
	do.Provide(i, func(i do.Injector) (handlers.HealthChecker, error) {
		return do.Invoke[*database.Connection](i)
	})

	do.Provide(i, func(i do.Injector) (*pgxpool.Pool, error) {
		pool, err := postgres.NewPool(a.ctx, do.MustInvoke[config.Provider](i).GetPostgresURL())
		if err != nil {
			return nil, err
		}
		a.onClose("postgres", func(context.Context) error {
			pool.Close()
			return nil
		})
		return pool, nil
	})

	do.Provide(i, func(i do.Injector) (domain.UserRepository, error) {
		conn, err := do.Invoke[database.Conn](i)
		if err != nil {
			return nil, err
		}
		return database.NewUserStore(conn, do.MustInvoke[config.Provider](i))
	})
	do.Provide(i, func(i do.Injector) (domain.SessionRepository, error) {
		conn, err := do.Invoke[database.Conn](i)
		if err != nil {
			return nil, err
		}
		return database.NewSessionStore(conn, do.MustInvoke[config.Provider](i))
	})
	do.Provide(i, func(i do.Injector) (domain.ObjectRepository, error) {
		conn, err := do.Invoke[database.Conn](i)
		if err != nil {
			return nil, err
		}
		return database.NewObjectStore(conn, do.MustInvoke[config.Provider](i))
	})
	do.Provide(i, func(i do.Injector) (domain.ProfileRepository, error) {
		cfg := do.MustInvoke[config.Provider](i)
		if cfg.GetProfileStore() == config.ProfileStorePostgres {
			pool, err := do.Invoke[*pgxpool.Pool](i)
			if err != nil {
				return nil, err
			}
			return postgres.NewProfileStore(pool), nil
		}
		conn, err := do.Invoke[database.Conn](i)
		if err != nil {
			return nil, err
		}
		return database.NewProfileStore(conn, cfg)
	})

	do.Provide(i, func(i do.Injector) (storage.Store, error) {
		dir := do.MustInvoke[config.Provider](i).GetStorageDir()
		if dir == config.StorageMemory {
			return storage.NewAferoStore(afero.NewMemMapFs()), nil
		}
		return storage.NewDirStore(dir)
	})

	do.Provide(i, func(i do.Injector) (domain.EmailSender, error) {
		return email.NewEmailService(do.MustInvoke[config.Provider](i))
	})

	do.Provide(i, func(i do.Injector) (trace.Tracer, error) {
		tracer, shutdown, err := pubsub.SetupTracing(a.ctx, pubsub.TracingConfigFrom(do.MustInvoke[config.Provider](i)))
		if err != nil {
			return nil, fmt.Errorf("setup tracing: %w", err)
		}
		a.onClose("tracing", shutdown)
		return tracer, nil
	})
	do.Provide(i, func(i do.Injector) (*pubsub.WatermillBridge, error) {
		tracer, err := do.Invoke[trace.Tracer](i)
		if err != nil {
			return nil, err
		}
		bus := pubsub.NewWatermillBridge(pubsub.WithTracer(tracer))
		a.onClose("pubsub", func(context.Context) error { return bus.Close() })
		return bus, nil
	})

	do.Provide(i, func(do.Injector) (*prometheus.Registry, error) {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		return reg, nil
	})
	do.Provide(i, func(i do.Injector) (*metrics.Metrics, error) {
		reg, err := do.Invoke[*prometheus.Registry](i)
		if err != nil {
			return nil, err
		}
		return metrics.New(reg), nil
	})
}

func (a *App) registerServices() {
	i := a.injector

	do.Provide(i, func(i do.Injector) (*filestore.Service, error) {
		store, err := do.Invoke[storage.Store](i)
		if err != nil {
			return nil, err
		}
		objects, err := do.Invoke[domain.ObjectRepository](i)
		if err != nil {
			return nil, err
		}
		return filestore.NewService(store, objects, do.MustInvoke[config.Provider](i).GetStoragePublicURL()), nil
	})

	do.Provide(i, func(i do.Injector) (*auth.Client, error) {
		cfg := do.MustInvoke[config.Provider](i)
		users, err := do.Invoke[domain.UserRepository](i)
		if err != nil {
			return nil, err
		}
		sessions, err := do.Invoke[domain.SessionRepository](i)
		if err != nil {
			return nil, err
		}
		emailer, err := do.Invoke[domain.EmailSender](i)
		if err != nil {
			return nil, err
		}
		bus, err := do.Invoke[*pubsub.WatermillBridge](i)
		if err != nil {
			return nil, err
		}
		return auth.NewClient(users, sessions, emailer, bus, cfg,
			auth.WithProviders(auth.ConfiguredProviders(cfg)...),
		), nil
	})

	do.Provide(i, func(i do.Injector) (*session.Tracker, error) {
		client, err := do.Invoke[*auth.Client](i)
		if err != nil {
			return nil, err
		}
		bus, err := do.Invoke[*pubsub.WatermillBridge](i)
		if err != nil {
			return nil, err
		}
		tracker := session.NewTracker(client, bus)
		if err := tracker.Start(a.ctx); err != nil {
			return nil, fmt.Errorf("start session tracker: %w", err)
		}
		a.onClose("session tracker", func(context.Context) error {
			tracker.Stop()
			return nil
		})
		return tracker, nil
	})

	do.Provide(i, func(i do.Injector) (*profile.Service, error) {
		profiles, err := do.Invoke[domain.ProfileRepository](i)
		if err != nil {
			return nil, err
		}
		files, err := do.Invoke[*filestore.Service](i)
		if err != nil {
			return nil, err
		}
		bus, err := do.Invoke[*pubsub.WatermillBridge](i)
		if err != nil {
			return nil, err
		}
		svc := profile.NewService(profiles, files, do.MustInvoke[config.Provider](i))
		if err := svc.Start(a.ctx, bus); err != nil {
			return nil, fmt.Errorf("start profile service: %w", err)
		}
		return svc, nil
	})
}

func (a *App) registerHTTP() {
	i := a.injector

	do.Provide(i, func(do.Injector) (rendering.Renderer, error) {
		return rendering.NewNodeRenderer(), nil
	})

	do.Provide(i, func(i do.Injector) (*server.Server, error) {
		cfg := do.MustInvoke[config.Provider](i)
		renderer := do.MustInvoke[rendering.Renderer](i)

		client, err := do.Invoke[*auth.Client](i)
		if err != nil {
			return nil, err
		}
		tracker, err := do.Invoke[*session.Tracker](i)
		if err != nil {
			return nil, err
		}
		profiles, err := do.Invoke[*profile.Service](i)
		if err != nil {
			return nil, err
		}
		files, err := do.Invoke[*filestore.Service](i)
		if err != nil {
			return nil, err
		}
		m, err := do.Invoke[*metrics.Metrics](i)
		if err != nil {
			return nil, err
		}
		health, err := do.Invoke[handlers.HealthChecker](i)
		if err != nil {
			return nil, err
		}

		s := server.New(server.Deps{
			Config: cfg,
			Handlers: server.Handlers{
				Auth:      handlers.NewAuthHandler(client, tracker, renderer, m, cfg.GetAuthRedirectURL()),
				Dashboard: handlers.NewDashboardHandler(profiles, renderer),
				Profile:   handlers.NewProfileHandler(profiles, tracker, renderer, m, cfg.GetAvatarMaxSize()),
				Storage:   handlers.NewStorageHandler(files, cfg.GetAvatarBucket()),
			},
			Users:    tracker,
			Health:   health,
			Registry: do.MustInvoke[*prometheus.Registry](i),
		})
		s.RegisterRoutes()
		return s, nil
	})
}
