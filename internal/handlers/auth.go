package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/kaashub/internal/domain"
	"github.com/nfrund/kaashub/internal/metrics"
	"github.com/nfrund/kaashub/internal/middleware"
	"github.com/nfrund/kaashub/internal/rendering"
	"github.com/nfrund/kaashub/internal/view"
	"github.com/nfrund/kaashub/internal/view/dto/auth"
	"github.com/nfrund/kaashub/web/src/templates/pages"
	hxhttp "maragu.dev/gomponents-htmx/http"
)

const signUpMessage = "Check your email for a confirmation link!"

// oauthQueryParams ask the provider for a refresh token and a fresh consent.
var oauthQueryParams = map[string]string{
	"access_type": "offline",
	"prompt":      "consent",
}

// AuthHandler serves the login card and the endpoints its buttons post to.
type AuthHandler struct {
	auth        AuthService
	sessions    SessionCache
	renderer    rendering.Renderer
	metrics     *metrics.Metrics
	redirectURL string
}

// NewAuthHandler creates a new AuthHandler. redirectURL is where OAuth and
// email confirmation flows land once they have a session.
func NewAuthHandler(authService AuthService, sessions SessionCache, renderer rendering.Renderer, m *metrics.Metrics, redirectURL string) *AuthHandler {
	return &AuthHandler{
		auth:        authService,
		sessions:    sessions,
		renderer:    renderer,
		metrics:     m,
		redirectURL: redirectURL,
	}
}

// LoginGet renders the login page (GET /). Flash messages left by the
// callback and confirmation flows show up in the form's message slots.
func (h *AuthHandler) LoginGet(c echo.Context) error {
	flashes := view.GetFlashData(c)
	return h.renderLogin(c, auth.LoginData{
		Error:   strings.Join(flashes.Error, " "),
		Message: strings.Join(flashes.Success, " "),
	})
}

// EmailPost signs up or signs in with email and password (POST /auth/email).
func (h *AuthHandler) EmailPost(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	req, err := h.bindLogin(c)
	if err != nil {
		return err
	}
	data := h.loginData(req)

	if req.signUp() {
		_, err := h.auth.SignUp(ctx, req.Email, req.Password, h.redirectURL)
		h.metrics.SignUps.WithLabelValues(metrics.Result(err)).Inc()
		if err != nil {
			logFailure(logger, "Sign-up failed", err)
			data.Error = errorMessage(err)
			return h.renderLogin(c, data)
		}
		data.Message = signUpMessage
		return h.renderLogin(c, data)
	}

	session, err := h.auth.SignInWithPassword(ctx, req.Email, req.Password)
	h.metrics.SignIns.WithLabelValues(domain.ProviderEmail, metrics.Result(err)).Inc()
	if err != nil {
		logFailure(logger, "Sign-in failed", err)
		data.Error = errorMessage(err)
		return h.renderLogin(c, data)
	}

	middleware.SetAuthCookie(c, session.AccessToken)
	logger.Info("User signed in", "user_id", session.User.ID)
	return middleware.Redirect(c, "/dashboard")
}

// ModePost flips the card between login and signup (POST /auth/mode). The
// entered email and password are kept and any error is cleared.
func (h *AuthHandler) ModePost(c echo.Context) error {
	req, err := h.bindLogin(c)
	if err != nil {
		return err
	}
	data := h.loginData(req)
	data.SignUp = !data.SignUp
	return h.renderLogin(c, data)
}

// OAuthStart sends the browser to the provider's consent screen
// (POST /auth/oauth/:provider).
func (h *AuthHandler) OAuthStart(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := h.bindLogin(c)
	if err != nil {
		return err
	}

	consentURL, err := h.auth.SignInWithOAuth(ctx, c.Param("provider"), h.redirectURL, oauthQueryParams)
	if err != nil {
		logFailure(middleware.FromContext(ctx), "OAuth start failed", err)
		data := h.loginData(req)
		data.Error = errorMessage(err)
		return h.renderLogin(c, data)
	}
	return middleware.Redirect(c, consentURL)
}

// OAuthCallback finishes an OAuth flow (GET /auth/oauth/:provider/callback).
func (h *AuthHandler) OAuthCallback(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	var req OAuthCallbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format.")
	}

	if req.Error != "" {
		logger.Warn("OAuth provider returned an error", "provider", req.Provider, "error", req.Error)
		msg := req.ErrorDescription
		if msg == "" {
			msg = req.Error
		}
		h.metrics.SignIns.WithLabelValues(req.Provider, metrics.ResultFailure).Inc()
		view.SetFlashError(c, msg)
		return c.Redirect(http.StatusSeeOther, "/")
	}

	session, redirectTo, err := h.auth.ExchangeOAuthCode(ctx, req.Provider, req.State, req.Code)
	h.metrics.SignIns.WithLabelValues(req.Provider, metrics.Result(err)).Inc()
	if err != nil {
		logger.Error("OAuth code exchange failed", "provider", req.Provider, "error", err)
		view.SetFlashError(c, errorMessage(err))
		return c.Redirect(http.StatusSeeOther, "/")
	}

	middleware.SetAuthCookie(c, session.AccessToken)
	logger.Info("User signed in", "user_id", session.User.ID, "provider", req.Provider)
	return c.Redirect(http.StatusSeeOther, h.landing(redirectTo))
}

// Confirm completes an email sign-up from the mailed link (GET /auth/confirm).
func (h *AuthHandler) Confirm(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	session, redirectTo, err := h.auth.ConfirmEmail(ctx, c.QueryParam("token"))
	if err != nil {
		logFailure(logger, "Email confirmation failed", err)
		view.SetFlashError(c, errorMessage(err))
		return c.Redirect(http.StatusSeeOther, "/")
	}

	middleware.SetAuthCookie(c, session.AccessToken)
	logger.Info("Email confirmed", "user_id", session.User.ID)
	return c.Redirect(http.StatusSeeOther, h.landing(redirectTo))
}

// Callback checks once for a session and routes to the dashboard or back to
// the login page (GET /auth/callback). There is no retry.
func (h *AuthHandler) Callback(c echo.Context) error {
	ctx := c.Request().Context()

	session, err := h.auth.GetSession(ctx, middleware.SessionToken(c))
	if err != nil {
		middleware.FromContext(ctx).Error("Failed to retrieve session", "error", err)
		view.SetFlashError(c, errorMessage(err))
		return c.Redirect(http.StatusSeeOther, "/")
	}
	if session == nil {
		view.SetFlashError(c, domain.ErrNoSession.Error())
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout ends the session (POST /auth/logout). A failure replaces the
// dashboard with the error; either way the confirmation dialog is gone.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)
	token := middleware.SessionToken(c)

	err := h.auth.SignOut(ctx, token)
	h.metrics.SignOuts.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		logger.Error("Sign-out failed", "error", err)
		msg := errorMessage(err)
		if hxhttp.IsRequest(c.Request().Header) {
			c.Response().Header().Set("HX-Retarget", "#"+pages.DashboardID)
			c.Response().Header().Set("HX-Reswap", "outerHTML")
			return h.renderer.RenderPage(c, http.StatusOK, pages.ErrorTakeover(msg))
		}
		return h.renderer.RenderPage(c, http.StatusInternalServerError, pages.ErrorPage("Error", msg))
	}

	h.sessions.Forget(token)
	middleware.ClearAuthCookie(c)
	return middleware.Redirect(c, "/")
}

func (h *AuthHandler) bindLogin(c echo.Context) (LoginRequest, error) {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "Invalid request format.")
	}
	if err := c.Validate(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return req, nil
}

func (h *AuthHandler) loginData(req LoginRequest) auth.LoginData {
	return auth.LoginData{
		Email:     req.Email,
		Password:  req.Password,
		SignUp:    req.signUp(),
		Providers: h.auth.Providers(),
	}
}

// renderLogin answers htmx requests with the card alone and everything else
// with the whole page.
func (h *AuthHandler) renderLogin(c echo.Context, data auth.LoginData) error {
	if data.Providers == nil {
		data.Providers = h.auth.Providers()
	}
	if hxhttp.IsRequest(c.Request().Header) {
		return h.renderer.RenderPage(c, http.StatusOK, pages.LoginForm(data))
	}
	return h.renderer.RenderPage(c, http.StatusOK, pages.LoginPage(data))
}

// landing falls back to the dashboard when a flow carried no target.
func (h *AuthHandler) landing(redirectTo string) string {
	if redirectTo == "" {
		return "/dashboard"
	}
	return redirectTo
}

// logFailure logs expected authentication failures quietly and everything
// else as an error.
func logFailure(logger *slog.Logger, msg string, err error) {
	if errorMessage(err) != genericErrorMessage {
		logger.Warn(msg, "error", err)
		return
	}
	logger.Error(msg, "error", err)
}
