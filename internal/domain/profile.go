package domain

import (
	"context"
	"time"
)

// Profile is the editable row owned by a user. Both fields are optional and
// the row carries no email; email always comes from the session's user.
type Profile struct {
	UserID    string
	FullName  *string
	AvatarURL *string
	UpdatedAt *time.Time
}

// Name returns the stored full name or "".
func (p *Profile) Name() string {
	if p == nil || p.FullName == nil {
		return ""
	}
	return *p.FullName
}

// Avatar returns the stored avatar URL or "".
func (p *Profile) Avatar() string {
	if p == nil || p.AvatarURL == nil {
		return ""
	}
	return *p.AvatarURL
}

// ProfileRepository persists profile rows. Writes are last-write-wins.
type ProfileRepository interface {
	// FindByUserID returns ErrProfileNotFound when the row does not exist.
	FindByUserID(ctx context.Context, userID string) (*Profile, error)

	// Ensure creates the row with the given seed name, or fills the name of
	// an existing row that has none.
	Ensure(ctx context.Context, userID string, fullName *string) error

	// Save writes full_name and avatar_url, creating the row if needed.
	Save(ctx context.Context, profile *Profile) error

	// SetAvatarIfEmpty stores avatarURL only when the row has no avatar yet.
	// It reports whether a write happened, so repeated calls are harmless.
	SetAvatarIfEmpty(ctx context.Context, userID, avatarURL string) (bool, error)
}
