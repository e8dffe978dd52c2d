package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// newProviderServer fakes a token endpoint at /token and a user info document at /me.
func newProviderServer(t *testing.T, userJSON string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"test-token","token_type":"Bearer"}`))
		case "/me":
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			w.Write([]byte(userJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testEndpoint(srv *httptest.Server) oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:  srv.URL + "/authorize",
		TokenURL: srv.URL + "/token",
	}
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	require.NoError(t, err)
	b, err := GenerateState()
	require.NoError(t, err)
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestConfig_Enabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.False(t, Config{ClientID: "id"}.Enabled())
	assert.True(t, Config{ClientID: "id", ClientSecret: "secret"}.Enabled())
}

func TestGoogleProvider_GetConsentURL(t *testing.T) {
	provider := NewGoogleProvider(Config{
		ClientID:    "test-client-id",
		RedirectURL: "http://localhost:8080/auth/oauth/google/callback",
	})
	assert.Equal(t, "google", provider.Name())

	url := provider.GetConsentURL("test-state", map[string]string{
		"access_type": "offline",
		"prompt":      "consent",
	})

	assert.Contains(t, url, "accounts.google.com")
	assert.Contains(t, url, "client_id=test-client-id")
	assert.Contains(t, url, "state=test-state")
	assert.Contains(t, url, "access_type=offline")
	assert.Contains(t, url, "prompt=consent")
}

func TestGoogleProvider_ExchangeCode(t *testing.T) {
	srv := newProviderServer(t, `{
		"id": "g-123",
		"email": "ada@example.com",
		"name": "Ada Lovelace",
		"picture": "https://lh3.googleusercontent.com/a/ada.png"
	}`, http.StatusOK)

	provider := NewGoogleProvider(Config{ClientID: "id", ClientSecret: "secret"})
	provider.config.Endpoint = testEndpoint(srv)
	provider.userInfoURL = srv.URL + "/me"

	info, err := provider.ExchangeCode(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, &UserInfo{
		ID:        "g-123",
		Email:     "ada@example.com",
		Name:      "Ada Lovelace",
		AvatarURL: "https://lh3.googleusercontent.com/a/ada.png",
		Provider:  "google",
	}, info)
}

func TestGoogleProvider_ExchangeCode_Errors(t *testing.T) {
	t.Run("user info failure", func(t *testing.T) {
		srv := newProviderServer(t, `{}`, http.StatusUnauthorized)
		provider := NewGoogleProvider(Config{ClientID: "id", ClientSecret: "secret"})
		provider.config.Endpoint = testEndpoint(srv)
		provider.userInfoURL = srv.URL + "/me"

		_, err := provider.ExchangeCode(context.Background(), "auth-code")
		assert.ErrorContains(t, err, "status 401")
	})

	t.Run("missing email", func(t *testing.T) {
		srv := newProviderServer(t, `{"id":"g-1","name":"Nameless"}`, http.StatusOK)
		provider := NewGoogleProvider(Config{ClientID: "id", ClientSecret: "secret"})
		provider.config.Endpoint = testEndpoint(srv)
		provider.userInfoURL = srv.URL + "/me"

		_, err := provider.ExchangeCode(context.Background(), "auth-code")
		assert.ErrorContains(t, err, "no email")
	})
}

func TestFacebookProvider(t *testing.T) {
	provider := NewFacebookProvider(Config{ClientID: "fb-client", ClientSecret: "secret"})
	assert.Equal(t, "facebook", provider.Name())
	assert.Contains(t, provider.GetConsentURL("s1", nil), "facebook.com")

	srv := newProviderServer(t, `{
		"id": "fb-9",
		"name": "Grace Hopper",
		"email": "grace@example.com",
		"picture": {"data": {"url": "https://graph.facebook.com/fb-9/picture"}}
	}`, http.StatusOK)
	provider.config.Endpoint = testEndpoint(srv)
	provider.userInfoURL = srv.URL + "/me"

	info, err := provider.ExchangeCode(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", info.Email)
	assert.Equal(t, "Grace Hopper", info.Name)
	assert.Equal(t, "https://graph.facebook.com/fb-9/picture", info.AvatarURL)
	assert.Equal(t, "facebook", info.Provider)
}
