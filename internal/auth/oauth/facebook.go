package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

const facebookUserInfoURL = "https://graph.facebook.com/me?fields=id,name,email,picture.type(large)"

type FacebookProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewFacebookProvider(cfg Config) *FacebookProvider {
	return &FacebookProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"email", "public_profile"},
			Endpoint:     facebook.Endpoint,
		},
		userInfoURL: facebookUserInfoURL,
	}
}

func (p *FacebookProvider) Name() string {
	return "facebook"
}

func (p *FacebookProvider) GetConsentURL(state string, extra map[string]string) string {
	return consentURL(p.config, state, extra)
}

func (p *FacebookProvider) ExchangeCode(ctx context.Context, code string) (*UserInfo, error) {
	var fbUser struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := fetchProfile(ctx, p.config, code, p.userInfoURL, &fbUser); err != nil {
		return nil, err
	}
	if fbUser.Email == "" {
		return nil, fmt.Errorf("facebook account has no email address")
	}

	return &UserInfo{
		ID:        fbUser.ID,
		Email:     fbUser.Email,
		Name:      fbUser.Name,
		AvatarURL: fbUser.Picture.Data.URL,
		Provider:  "facebook",
	}, nil
}
