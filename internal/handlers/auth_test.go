package handlers_test

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/nfrund/kaashub/internal/auth/oauth"
	"github.com/nfrund/kaashub/internal/config"
	"github.com/nfrund/kaashub/internal/domain"
	"github.com/nfrund/kaashub/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginGet(t *testing.T) {
	env := newTestEnv(t, &fakeProvider{name: "google"})

	rec := env.get("/")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Login - KaasHub</title>")
	assert.Contains(t, body, "Welcome back")
	assert.Contains(t, body, "Login with Google")
	assert.NotContains(t, body, "Login with Facebook")
}

func TestEmailPost_SignIn(t *testing.T) {
	t.Run("valid credentials navigate to the dashboard", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.addUser(t, "kaas@example.com", "password123", domain.UserMetadata{})

		form := url.Values{"email": {"kaas@example.com"}, "password": {"password123"}, "mode": {"login"}}
		rec := env.postForm("/auth/email", form, asHTMX())

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("HX-Redirect"))
		cookie := authCookie(rec)
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)

		dash := env.get("/dashboard", withToken(cookie.Value))
		assert.Equal(t, http.StatusOK, dash.Code)
		assert.Contains(t, dash.Body.String(), "Welcome, "+user.Email+"!")
		assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.SignIns.WithLabelValues("email", metrics.ResultSuccess)))
	})

	t.Run("plain form posts get a see-other redirect", func(t *testing.T) {
		env := newTestEnv(t)
		env.addUser(t, "kaas@example.com", "password123", domain.UserMetadata{})

		form := url.Values{"email": {"kaas@example.com"}, "password": {"password123"}}
		rec := env.postForm("/auth/email", form)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})

	t.Run("invalid credentials show the backend message", func(t *testing.T) {
		env := newTestEnv(t)
		env.addUser(t, "kaas@example.com", "password123", domain.UserMetadata{})

		form := url.Values{"email": {"kaas@example.com"}, "password": {"wrong"}, "mode": {"login"}}
		rec := env.postForm("/auth/email", form, asHTMX())

		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Invalid login credentials")
		assert.Contains(t, body, `id="login-form"`)
		assert.NotContains(t, body, "<html", "htmx gets the card only")
		assert.NotRegexp(t, `\sdisabled[\s>=]`, body, "loading is cleared")
		assert.Nil(t, authCookie(rec))
		assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.SignIns.WithLabelValues("email", metrics.ResultFailure)))
	})

	t.Run("unconfirmed users are refused", func(t *testing.T) {
		env := newTestEnv(t)
		form := url.Values{"email": {"new@example.com"}, "password": {"password123"}, "mode": {"signup"}}
		env.postForm("/auth/email", form, asHTMX())

		form.Set("mode", "login")
		rec := env.postForm("/auth/email", form, asHTMX())
		assert.Contains(t, rec.Body.String(), "Email not confirmed")
	})

	t.Run("unknown mode is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.postForm("/auth/email", url.Values{"mode": {"admin"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestEmailPost_SignUpAndConfirm(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"email": {"new@example.com"}, "password": {"password123"}, "mode": {"signup"}}
	rec := env.postForm("/auth/email", form, asHTMX())

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Check your email for a confirmation link!")
	assert.Contains(t, body, "Create an Account")
	require.Len(t, env.mail.Sent, 1)

	// Following the mailed link signs the user in and lands on the callback.
	mailBody := env.mail.Last().HTMLBody
	start := strings.Index(mailBody, "/auth/confirm?")
	require.GreaterOrEqual(t, start, 0)
	link := mailBody[start:]
	link = link[:strings.Index(link, `"`)]

	confirm := env.get(link)
	assert.Equal(t, http.StatusSeeOther, confirm.Code)
	assert.Equal(t, config.DefaultAuthRedirectURL, confirm.Header().Get("Location"))
	require.NotNil(t, authCookie(confirm))

	t.Run("duplicate sign-up", func(t *testing.T) {
		rec := env.postForm("/auth/email", form, asHTMX())
		assert.Contains(t, rec.Body.String(), "User already registered")
	})

	t.Run("bad confirmation link", func(t *testing.T) {
		rec := env.get("/auth/confirm?token=garbage")
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		assert.Equal(t, []interface{}{domain.ErrInvalidToken.Error()}, flashes(t, rec, "error"))
	})
}

func TestModePost(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"email": {"kaas@example.com"}, "password": {"secret-pw"}, "mode": {"login"}}
	rec := env.postForm("/auth/mode", form, asHTMX())

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Create an Account")
	assert.Contains(t, body, `value="signup"`)
	assert.Contains(t, body, `value="kaas@example.com"`)
	assert.Contains(t, body, `value="secret-pw"`)
	assert.NotContains(t, body, "form-error")

	form.Set("mode", "signup")
	rec = env.postForm("/auth/mode", form, asHTMX())
	assert.Contains(t, rec.Body.String(), "Welcome back")
}

func TestOAuthFlow(t *testing.T) {
	google := &fakeProvider{name: "google", info: &oauth.UserInfo{
		ID:        "g-1",
		Email:     "grace@example.com",
		Name:      "Grace Hopper",
		AvatarURL: "https://lh3.googleusercontent.com/grace.png",
		Provider:  "google",
	}}
	env := newTestEnv(t, google)

	start := env.postForm("/auth/oauth/google", url.Values{}, asHTMX())
	require.Equal(t, http.StatusOK, start.Code)
	consent, err := url.Parse(start.Header().Get("HX-Redirect"))
	require.NoError(t, err)
	assert.Equal(t, "idp.example.com", consent.Host)
	assert.Equal(t, "offline", consent.Query().Get("access_type"))
	assert.Equal(t, "consent", consent.Query().Get("prompt"))

	cb := env.get("/auth/oauth/google/callback?code=abc&state=" + url.QueryEscape(consent.Query().Get("state")))
	assert.Equal(t, http.StatusSeeOther, cb.Code)
	assert.Equal(t, config.DefaultAuthRedirectURL, cb.Header().Get("Location"))
	cookie := authCookie(cb)
	require.NotNil(t, cookie)

	landing := env.get("/auth/callback", withToken(cookie.Value))
	assert.Equal(t, http.StatusSeeOther, landing.Code)
	assert.Equal(t, "/dashboard", landing.Header().Get("Location"))
}

func TestOAuthErrors(t *testing.T) {
	t.Run("unknown provider shows the error in the card", func(t *testing.T) {
		env := newTestEnv(t)
		form := url.Values{"email": {"kaas@example.com"}}
		rec := env.postForm("/auth/oauth/github", form, asHTMX())

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("HX-Redirect"))
		assert.Contains(t, rec.Body.String(), "Unsupported login provider")
		assert.Contains(t, rec.Body.String(), `value="kaas@example.com"`)
	})

	t.Run("provider denial", func(t *testing.T) {
		env := newTestEnv(t, &fakeProvider{name: "facebook"})
		rec := env.get("/auth/oauth/facebook/callback?error=access_denied&error_description=Permissions+error")

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		assert.Equal(t, []interface{}{"Permissions error"}, flashes(t, rec, "error"))
	})

	t.Run("stale state", func(t *testing.T) {
		env := newTestEnv(t, &fakeProvider{name: "google"})
		rec := env.get("/auth/oauth/google/callback?code=abc&state=forged")
		assert.Equal(t, []interface{}{domain.ErrInvalidOAuthState.Error()}, flashes(t, rec, "error"))
	})

	t.Run("exchange failure is not leaked", func(t *testing.T) {
		env := newTestEnv(t, &fakeProvider{name: "google", err: errors.New("token endpoint returned 500")})
		start := env.postForm("/auth/oauth/google", url.Values{})
		require.Equal(t, http.StatusSeeOther, start.Code)
		consent, err := url.Parse(start.Header().Get("Location"))
		require.NoError(t, err)

		rec := env.get("/auth/oauth/google/callback?code=abc&state=" + url.QueryEscape(consent.Query().Get("state")))
		got := flashes(t, rec, "error")
		require.Len(t, got, 1)
		assert.NotContains(t, got[0], "500")
	})
}

func TestCallback(t *testing.T) {
	t.Run("no session returns to login with the reason", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.get("/auth/callback")

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		assert.Equal(t, []interface{}{"No session found"}, flashes(t, rec, "error"))

		login := env.get("/", withCookies(rec.Result().Cookies()))
		assert.Contains(t, login.Body.String(), "No session found")
	})

	t.Run("retrieval error", func(t *testing.T) {
		env := newTestEnv(t)
		env.sessions.FindErr = errors.New("connection refused")
		rec := env.get("/auth/callback", withToken("some-token"))

		assert.Equal(t, "/", rec.Header().Get("Location"))
		assert.Len(t, flashes(t, rec, "error"), 1)
	})
}

func TestLogout(t *testing.T) {
	t.Run("confirm signs out and goes home", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.signIn(t, domain.UserMetadata{})
		require.Equal(t, 1, env.sessions.Len())

		rec := env.do(http.MethodPost, "/auth/logout", nil, "", withToken(token), asHTMX())
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("HX-Redirect"))
		assert.Zero(t, env.sessions.Len())
		cookie := authCookie(rec)
		require.NotNil(t, cookie)
		assert.Equal(t, -1, cookie.MaxAge)

		after := env.get("/dashboard", withToken(token))
		assert.Equal(t, http.StatusSeeOther, after.Code)
	})

	t.Run("cancel keeps the session", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.signIn(t, domain.UserMetadata{})

		rec := env.get("/dashboard/logout-dialog?open=false", withToken(token), asHTMX())
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `<div id="logout-dialog"></div>`, rec.Body.String())
		assert.Equal(t, 1, env.sessions.Len())
	})

	t.Run("failure replaces the dashboard", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.signIn(t, domain.UserMetadata{})
		env.sessions.FindErr = errors.New("db down")

		rec := env.do(http.MethodPost, "/auth/logout", nil, "", withToken(token), asHTMX())
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "#dashboard", rec.Header().Get("HX-Retarget"))
		assert.Equal(t, "outerHTML", rec.Header().Get("HX-Reswap"))
		assert.Contains(t, rec.Body.String(), "error-takeover")
		assert.NotContains(t, rec.Body.String(), "db down")
	})
}
