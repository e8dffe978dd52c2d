package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCredentialRoutes mounts the limiter the way the server does: one shared
// instance in front of both sign-in endpoints.
func newCredentialRoutes() *echo.Echo {
	e := echo.New()
	limit := RateLimiter()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.POST("/auth/email", ok, limit)
	e.POST("/auth/oauth/:provider", ok, limit)
	e.GET("/", ok)
	return e
}

func post(e *echo.Echo, target, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_BurstAcrossSignInRoutes(t *testing.T) {
	e := newCredentialRoutes()
	const attacker = "203.0.113.7:50000"

	targets := []string{"/auth/email", "/auth/oauth/google"}
	for i := range 10 {
		rec := post(e, targets[i%2], attacker)
		require.Equal(t, http.StatusNoContent, rec.Code, "attempt %d", i+1)
	}

	rec := post(e, "/auth/oauth/github", attacker)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests. Please try again later.", rec.Body.String())

	rec = post(e, "/auth/email", attacker)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "the shared bucket stays empty")
}

func TestRateLimiter_PerClient(t *testing.T) {
	e := newCredentialRoutes()

	for range 11 {
		post(e, "/auth/email", "203.0.113.7:50000")
	}

	assert.Equal(t, http.StatusNoContent, post(e, "/auth/email", "198.51.100.20:40000").Code,
		"another address has its own budget")

	// Pages outside the sign-in endpoints are never limited.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:50000"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
