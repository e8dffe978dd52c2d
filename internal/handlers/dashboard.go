package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/kaashub/internal/middleware"
	"github.com/nfrund/kaashub/internal/rendering"
	"github.com/nfrund/kaashub/web/src/templates/components"
	"github.com/nfrund/kaashub/web/src/templates/pages"
)

const profileLoadError = "Could not load your profile."

// DashboardHandler serves the dashboard and its sidebar and dialog fragments.
// All routes sit behind middleware.Auth.
type DashboardHandler struct {
	profiles ProfileService
	renderer rendering.Renderer
}

func NewDashboardHandler(profiles ProfileService, renderer rendering.Renderer) *DashboardHandler {
	return &DashboardHandler{profiles: profiles, renderer: renderer}
}

// DashboardGet renders the dashboard (GET /dashboard and GET /Dashboard).
func (h *DashboardHandler) DashboardGet(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.Redirect(c, "/")
	}

	p, err := h.profiles.Load(ctx, user)
	if err != nil {
		logger.Error("Failed to load profile", "user_id", user.ID, "error", err)
		return h.renderer.RenderPage(c, http.StatusInternalServerError, pages.ErrorPage("Dashboard", profileLoadError))
	}

	// Once per load. The provider avatar is displayed anyway, so a failed
	// sync only costs the stored copy.
	if err := h.profiles.SyncProviderAvatar(ctx, user, p); err != nil {
		logger.Warn("Provider avatar sync failed", "user_id", user.ID, "error", err)
	}

	return h.renderer.RenderPage(c, http.StatusOK, pages.Dashboard(*p))
}

// Sidebar renders the sidebar open or closed (GET /dashboard/sidebar).
func (h *DashboardHandler) Sidebar(c echo.Context) error {
	var req ToggleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format.")
	}
	return h.renderer.RenderPage(c, http.StatusOK, components.Sidebar(req.Open))
}

// LogoutDialog renders the logout confirmation open or closed
// (GET /dashboard/logout-dialog).
func (h *DashboardHandler) LogoutDialog(c echo.Context) error {
	var req ToggleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format.")
	}
	return h.renderer.RenderPage(c, http.StatusOK, components.LogoutDialog(req.Open))
}
