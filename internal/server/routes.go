package server

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/nfrund/kaashub/internal/handlers"
	"github.com/nfrund/kaashub/internal/middleware"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	h := s.handlers
	rateLimiter := middleware.RateLimiter()
	requireUser := middleware.Auth(s.users)

	s.E.GET("/", h.Auth.LoginGet)
	s.E.POST("/auth/email", h.Auth.EmailPost, rateLimiter)
	s.E.POST("/auth/mode", h.Auth.ModePost)
	s.E.POST("/auth/oauth/:provider", h.Auth.OAuthStart, rateLimiter)
	s.E.GET("/auth/oauth/:provider/callback", h.Auth.OAuthCallback)
	s.E.GET("/auth/confirm", h.Auth.Confirm)
	s.E.GET("/auth/callback", h.Auth.Callback)
	s.E.POST("/auth/logout", h.Auth.Logout)

	// Both spellings are linked to from the wild.
	s.E.GET("/dashboard", h.Dashboard.DashboardGet, requireUser)
	s.E.GET("/Dashboard", h.Dashboard.DashboardGet, requireUser)
	s.E.GET("/dashboard/sidebar", h.Dashboard.Sidebar, requireUser)
	s.E.GET("/dashboard/logout-dialog", h.Dashboard.LogoutDialog, requireUser)

	s.E.GET("/profile", h.Profile.ProfileGet, requireUser)
	// The form posts resolve the user themselves so a vanished session shows
	// up as a status line instead of a redirect.
	s.E.POST("/profile", h.Profile.ProfilePost)
	s.E.POST("/profile/avatar", h.Profile.AvatarPost)

	s.E.GET("/storage/v1/object/public/:bucket/*", h.Storage.PublicObject)

	s.E.GET("/health", handlers.Health(s.health))
	if s.registry != nil {
		s.E.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: s.registry}))
	}
}
