package database

import (
	"context"
	"errors"
	"time"

	"github.com/nfrund/kaashub/internal/config"
	"github.com/nfrund/kaashub/internal/domain"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

type sessionRecord struct {
	ID        *models.RecordID       `json:"id,omitempty"`
	UserID    string                 `json:"user_id"`
	ExpiresAt *models.CustomDateTime `json:"expires_at"`
	CreatedAt *models.CustomDateTime `json:"created_at,omitempty"`
}

var _ domain.SessionRepository = (*SessionStore)(nil)

// SessionStore keeps sessions keyed by access token digest.
type SessionStore struct {
	client Client[sessionRecord]
}

// NewSessionStore creates a session repository backed by conn.
func NewSessionStore(conn Conn, cfg config.Provider, opts ...ClientOption[sessionRecord]) (*SessionStore, error) {
	c, err := NewClient(conn, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &SessionStore{client: c}, nil
}

func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" || session.UserID == "" {
		return NewDBError(ErrInvalidInput, "session id and user id are required")
	}
	rec := sessionRecord{
		UserID:    session.UserID,
		ExpiresAt: toDateTime(session.ExpiresAt),
		CreatedAt: toDateTime(session.CreatedAt),
	}
	_, err := s.client.Create(ctx, models.NewRecordID(sessionsTable, session.ID), rec)
	return err
}

func (s *SessionStore) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	rec, err := s.client.Select(ctx, models.NewRecordID(sessionsTable, id))
	if errors.Is(err, ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		ID:        recordKey(rec.ID),
		UserID:    rec.UserID,
		ExpiresAt: fromDateTime(rec.ExpiresAt),
		CreatedAt: fromDateTime(rec.CreatedAt),
	}, nil
}

func (s *SessionStore) UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	params := recordParams(models.NewRecordID(sessionsTable, id))
	params["expires_at"] = toDateTime(expiresAt)
	return s.client.Execute(ctx, "UPDATE type::thing($tb, $id) SET expires_at = $expires_at", params)
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, models.NewRecordID(sessionsTable, id))
}
