package handlers

import (
	"context"
	"io"

	"github.com/nfrund/kaashub/internal/domain"
	"github.com/nfrund/kaashub/internal/profile"
)

// AuthService is the session client as the views use it.
type AuthService interface {
	Providers() []string
	SignUp(ctx context.Context, email, password, redirectTo string) (*domain.User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*domain.AuthSession, error)
	SignInWithOAuth(ctx context.Context, provider, redirectTo string, queryParams map[string]string) (string, error)
	ExchangeOAuthCode(ctx context.Context, provider, state, code string) (*domain.AuthSession, string, error)
	ConfirmEmail(ctx context.Context, token string) (*domain.AuthSession, string, error)
	GetSession(ctx context.Context, token string) (*domain.AuthSession, error)
	SignOut(ctx context.Context, token string) error
}

// ProfileService loads and edits profile rows.
type ProfileService interface {
	Load(ctx context.Context, user *domain.User) (*profile.View, error)
	SyncProviderAvatar(ctx context.Context, user *domain.User, view *profile.View) error
	Save(ctx context.Context, userID, fullName, avatarURL string) error
	UploadAvatar(ctx context.Context, userID, filename, contentType string, content io.Reader) (string, error)
}

// ObjectReader opens stored objects for serving.
type ObjectReader interface {
	Open(ctx context.Context, bucket, path string) (*domain.Object, io.ReadCloser, error)
}

// SessionCache drops a cached session as soon as it is signed out.
type SessionCache interface {
	Forget(token string)
}
