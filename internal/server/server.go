package server

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/kaashub/internal/config"
	"github.com/nfrund/kaashub/internal/handlers"
	appmiddleware "github.com/nfrund/kaashub/internal/middleware"
	"github.com/nfrund/kaashub/internal/rendering"
	"github.com/nfrund/kaashub/web"
	"github.com/prometheus/client_golang/prometheus"
)

// Handlers groups the HTTP handlers the server routes to.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Dashboard *handlers.DashboardHandler
	Profile   *handlers.ProfileHandler
	Storage   *handlers.StorageHandler
}

// Deps are the collaborators a Server is built from.
type Deps struct {
	Config   config.Provider
	Handlers Handlers
	// Users resolves the auth cookie for guarded routes.
	Users appmiddleware.UserResolver
	// Health is optional; without it /health always answers OK.
	Health handlers.HealthChecker
	// Registry receives the HTTP metrics and backs /metrics.
	Registry *prometheus.Registry
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	E        *echo.Echo
	Cfg      config.Provider
	handlers Handlers
	users    appmiddleware.UserResolver
	health   handlers.HealthChecker
	registry *prometheus.Registry
}

// New creates a new Server instance with the middleware chain installed.
// Routes are added by RegisterRoutes.
func New(deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	e.Renderer = rendering.NewNodeRenderer()
	setupErrorHandling(e)

	e.Use(middleware.RequestID())
	e.Use(appmiddleware.Logger)
	e.Use(middleware.Recover())
	if deps.Registry != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "http",
			Registerer: deps.Registry,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics" || c.Path() == "/health"
			},
		}))
	}

	// Flash messages live in this cookie. The auth token has its own cookie.
	store := sessions.NewCookieStore([]byte(deps.Config.GetSessionSecret()))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))

	e.StaticFS("/static", echo.MustSubFS(web.FS, "static"))

	return &Server{
		E:        e,
		Cfg:      deps.Config,
		handlers: deps.Handlers,
		users:    deps.Users,
		health:   deps.Health,
		registry: deps.Registry,
	}
}
