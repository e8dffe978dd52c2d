package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Session is the stored half of a login. Only the digest of the access token
// is persisted; the token itself is handed to the browser once.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AuthSession is what a sign-in returns to the caller.
type AuthSession struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *User
}

// SessionIDFromToken derives the stored session ID from an access token.
func SessionIDFromToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// SessionRepository stores sessions keyed by token digest.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	// FindByID returns ErrNotFound when the session does not exist.
	FindByID(ctx context.Context, id string) (*Session, error)
	UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
}
