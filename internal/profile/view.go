package profile

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// View is the UserProfile view-model rebuilt on every dashboard and profile
// request. Email always comes from the signed-in user.
type View struct {
	Email             string
	FullName          string
	AvatarURL         string
	ProviderAvatarURL string
}

// DisplayName is the full name, or the email when no name is set.
func (v View) DisplayName() string {
	if strings.TrimSpace(v.FullName) != "" {
		return v.FullName
	}
	return v.Email
}

// Initial is the upper-cased first letter shown when there is no avatar.
func (v View) Initial() string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(v.DisplayName()))
	if r == utf8.RuneError {
		return "U"
	}
	return string(unicode.ToUpper(r))
}

// EffectiveAvatar is the stored avatar, falling back to the one supplied by
// the login provider.
func (v View) EffectiveAvatar() string {
	if v.AvatarURL != "" {
		return v.AvatarURL
	}
	return v.ProviderAvatarURL
}
