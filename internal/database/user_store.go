package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/kaashub/internal/config"
	"github.com/nfrund/kaashub/internal/domain"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

type userRecord struct {
	ID           *models.RecordID       `json:"id,omitempty"`
	Email        string                 `json:"email"`
	PasswordHash string                 `json:"password_hash,omitempty"`
	Provider     string                 `json:"provider"`
	ProviderID   string                 `json:"provider_id,omitempty"`
	Metadata     domain.UserMetadata    `json:"metadata"`
	ConfirmedAt  *models.CustomDateTime `json:"confirmed_at,omitempty"`
	CreatedAt    *models.CustomDateTime `json:"created_at,omitempty"`
}

func (r *userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           recordKey(r.ID),
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Provider:     r.Provider,
		ProviderID:   r.ProviderID,
		Metadata:     r.Metadata,
		ConfirmedAt:  fromDateTimePtr(r.ConfirmedAt),
		CreatedAt:    fromDateTime(r.CreatedAt),
	}
}

var _ domain.UserRepository = (*UserStore)(nil)

// UserStore implements domain.UserRepository on the users table.
type UserStore struct {
	client Client[userRecord]
}

// NewUserStore creates a user repository backed by conn.
func NewUserStore(conn Conn, cfg config.Provider, opts ...ClientOption[userRecord]) (*UserStore, error) {
	c, err := NewClient(conn, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &UserStore{client: c}, nil
}

// Create inserts a new user. A fresh ID is assigned when user.ID is empty.
func (s *UserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil || user.Email == "" {
		return nil, NewDBError(ErrInvalidInput, "user email is required")
	}

	if _, err := s.FindByEmail(ctx, user.Email); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	id := user.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	rec := userRecord{
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Provider:     user.Provider,
		ProviderID:   user.ProviderID,
		Metadata:     user.Metadata,
		CreatedAt:    toDateTime(createdAt),
	}
	if user.ConfirmedAt != nil {
		rec.ConfirmedAt = toDateTime(*user.ConfirmedAt)
	}

	created, err := s.client.Create(ctx, models.NewRecordID(usersTable, id), rec)
	if err != nil {
		// The unique email index catches concurrent sign-ups.
		if strings.Contains(strings.ToLower(err.Error()), "already") {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created.toDomain(), nil
}

// FindByID retrieves a user by their ID key.
func (s *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	rec, err := s.client.Select(ctx, models.NewRecordID(usersTable, id))
	if errors.Is(err, ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

// FindByEmail retrieves a user by their email address.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := "SELECT * FROM users WHERE email = $email"
	rec, err := s.client.QueryOne(ctx, query, map[string]any{"email": email})
	if err != nil {
		return nil, WrapError(err, "find user by email")
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec.toDomain(), nil
}

// Update writes the mutable fields of an existing user.
func (s *UserStore) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil || user.ID == "" {
		return nil, NewDBError(ErrInvalidInput, "user ID is required for update")
	}

	data := map[string]any{
		"password_hash": user.PasswordHash,
		"provider":      user.Provider,
		"provider_id":   user.ProviderID,
		"metadata":      user.Metadata,
	}
	if user.ConfirmedAt != nil {
		data["confirmed_at"] = toDateTime(*user.ConfirmedAt)
	}

	query := "UPDATE type::thing($tb, $id) MERGE $data"
	params := recordParams(models.NewRecordID(usersTable, user.ID))
	params["data"] = data
	rec, err := s.client.QueryOne(ctx, query, params)
	if err != nil {
		return nil, WrapError(err, "update user")
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec.toDomain(), nil
}
