package auth

import (
	"strings"

	"github.com/nfrund/kaashub/internal/auth/oauth"
	"github.com/nfrund/kaashub/internal/config"
)

// ConfiguredProviders builds the OAuth providers that have credentials set.
// Each provider calls back to /auth/oauth/<name>/callback on the app.
func ConfiguredProviders(cfg config.Provider) []oauth.Provider {
	base := strings.TrimRight(cfg.GetAppBaseURL(), "/")
	callback := func(name string) string {
		return base + "/auth/oauth/" + name + "/callback"
	}

	var providers []oauth.Provider
	google := oauth.Config{
		ClientID:     cfg.GetGoogleClientID(),
		ClientSecret: cfg.GetGoogleClientSecret(),
		RedirectURL:  callback("google"),
	}
	if google.Enabled() {
		providers = append(providers, oauth.NewGoogleProvider(google))
	}
	facebook := oauth.Config{
		ClientID:     cfg.GetFacebookClientID(),
		ClientSecret: cfg.GetFacebookClientSecret(),
		RedirectURL:  callback("facebook"),
	}
	if facebook.Enabled() {
		providers = append(providers, oauth.NewFacebookProvider(facebook))
	}
	return providers
}
