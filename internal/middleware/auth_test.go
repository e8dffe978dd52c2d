package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/kaashub/internal/domain"
	"github.com/stretchr/testify/assert"
)

type stubResolver struct {
	users map[string]*domain.User
	err   error
}

func (s stubResolver) Current(_ context.Context, token string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, domain.ErrNoSession
}

func newAuthEcho(resolver UserResolver) *echo.Echo {
	e := echo.New()
	e.GET("/dashboard", func(c echo.Context) error {
		return c.String(http.StatusOK, "hello "+CurrentUser(c).Email+" "+SessionToken(c))
	}, Auth(resolver))
	return e
}

func TestAuthMiddleware(t *testing.T) {
	resolver := stubResolver{users: map[string]*domain.User{
		"valid-token": {ID: "u1", Email: "ada@example.com"},
	}}
	e := newAuthEcho(resolver)

	t.Run("no cookie redirects to login", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("dead session clears the cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "expired"})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		cookies := rec.Result().Cookies()
		if assert.Len(t, cookies, 1) {
			assert.Equal(t, AuthCookieName, cookies[0].Name)
			assert.Equal(t, -1, cookies[0].MaxAge)
		}
	})

	t.Run("htmx requests get HX-Redirect", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("HX-Redirect"))
	})

	t.Run("valid session reaches the handler", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "valid-token"})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "hello ada@example.com valid-token", rec.Body.String())
	})

	t.Run("lookup failure keeps the cookie", func(t *testing.T) {
		e := newAuthEcho(stubResolver{err: errors.New("db down")})
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "valid-token"})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	})
}
