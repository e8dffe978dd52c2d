package domain

import (
	"context"
	"time"
)

// Login providers a user can originate from.
const (
	ProviderEmail    = "email"
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

// UserMetadata holds identity details supplied by an OAuth provider.
type UserMetadata struct {
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// User is an authenticated identity. The profile row is a separate record
// keyed by the same ID.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Provider     string
	ProviderID   string
	Metadata     UserMetadata
	ConfirmedAt  *time.Time
	CreatedAt    time.Time
}

// Confirmed reports whether the user may sign in.
func (u *User) Confirmed() bool {
	return u.ConfirmedAt != nil
}

// UserRepository defines the contract for user data storage operations.
// It lives in the domain because it's a requirement OF the domain, not
// of the database implementation.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	// FindByEmail returns ErrNotFound when no user has the address.
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) (*User, error)
}
