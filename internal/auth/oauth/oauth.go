package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// UserInfo is the identity a provider reports after a successful code exchange.
type UserInfo struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
	Provider  string
}

// Provider drives the authorization code flow for one identity provider.
type Provider interface {
	Name() string
	// GetConsentURL returns the provider URL the browser is sent to. extra is
	// appended as query parameters.
	GetConsentURL(state string, extra map[string]string) string
	ExchangeCode(ctx context.Context, code string) (*UserInfo, error)
}

// Config holds the client credentials of one provider.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether credentials were configured.
func (c Config) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// GenerateState returns a random, URL-safe state value.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func consentURL(cfg *oauth2.Config, state string, extra map[string]string) string {
	opts := make([]oauth2.AuthCodeOption, 0, len(extra))
	for k, v := range extra {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	return cfg.AuthCodeURL(state, opts...)
}

// fetchProfile exchanges code for a token and decodes the JSON document at url
// into dst using the token's client.
func fetchProfile(ctx context.Context, cfg *oauth2.Config, code, url string, dst any) error {
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code: %w", err)
	}

	client := cfg.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build user info request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("user info endpoint returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode user info: %w", err)
	}
	return nil
}
