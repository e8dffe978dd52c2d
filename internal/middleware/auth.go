package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/kaashub/internal/domain"
	hxhttp "maragu.dev/gomponents-htmx/http"
)

const (
	// AuthCookieName holds the opaque session token.
	AuthCookieName = "auth_token"

	UserContextKey  = "user"
	TokenContextKey = "session_token"
)

// UserResolver maps a session token to its user.
type UserResolver interface {
	Current(ctx context.Context, token string) (*domain.User, error)
}

// Auth creates a middleware that protects routes that require a signed-in user.
// Without one the browser is sent back to the login page.
func Auth(resolver UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(AuthCookieName)
			if err != nil || cookie.Value == "" {
				return redirectToLogin(c)
			}
			token := cookie.Value

			user, err := resolver.Current(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrNoSession) {
					// The token is dead, so drop it.
					ClearAuthCookie(c)
				} else {
					FromContext(c.Request().Context()).Error("Failed to resolve session", "error", err)
				}
				return redirectToLogin(c)
			}

			c.Set(UserContextKey, user)
			c.Set(TokenContextKey, token)
			return next(c)
		}
	}
}

// CurrentUser returns the user stored by Auth, or nil.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(UserContextKey).(*domain.User)
	return user
}

// SessionToken returns the token of the current request's session, if any.
func SessionToken(c echo.Context) string {
	if token, ok := c.Get(TokenContextKey).(string); ok {
		return token
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// SetAuthCookie stores token in the session cookie. An empty token clears it.
func SetAuthCookie(c echo.Context, token string) {
	cookie := &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		cookie.MaxAge = -1
	}
	c.SetCookie(cookie)
}

// ClearAuthCookie removes the session cookie.
func ClearAuthCookie(c echo.Context) {
	SetAuthCookie(c, "")
}

// Redirect navigates to url, using HX-Redirect for htmx requests so the whole
// page changes instead of a fragment.
func Redirect(c echo.Context, url string) error {
	if hxhttp.IsRequest(c.Request().Header) {
		hxhttp.SetRedirect(c.Response().Header(), url)
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, url)
}

func redirectToLogin(c echo.Context) error {
	return Redirect(c, "/")
}
