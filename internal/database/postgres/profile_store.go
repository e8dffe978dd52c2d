// Package postgres stores profile rows in PostgreSQL. It is selected with
// PROFILE_STORE=postgres; users, sessions and objects stay in SurrealDB.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nfrund/kaashub/internal/domain"
)

// Querier is the subset of *pgxpool.Pool the store uses.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		full_name TEXT,
		avatar_url TEXT,
		updated_at TIMESTAMP WITH TIME ZONE
	)`,
}

// NewPool connects to databaseURL and verifies the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Migrate creates the profiles table.
func Migrate(ctx context.Context, db Querier) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

// ProfileStore implements domain.ProfileRepository on PostgreSQL.
type ProfileStore struct {
	db Querier
}

var _ domain.ProfileRepository = (*ProfileStore)(nil)

func NewProfileStore(db Querier) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) FindByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `SELECT user_id, full_name, avatar_url, updated_at FROM profiles WHERE user_id = $1`

	var (
		p         domain.Profile
		updatedAt *time.Time
	)
	err := s.db.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.FullName, &p.AvatarURL, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	p.UpdatedAt = updatedAt
	return &p, nil
}

func (s *ProfileStore) Ensure(ctx context.Context, userID string, fullName *string) error {
	query := `INSERT INTO profiles (user_id, full_name) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET full_name = COALESCE(profiles.full_name, EXCLUDED.full_name)`
	if _, err := s.db.Exec(ctx, query, userID, fullName); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (s *ProfileStore) Save(ctx context.Context, profile *domain.Profile) error {
	query := `INSERT INTO profiles (user_id, full_name, avatar_url, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET full_name = EXCLUDED.full_name, avatar_url = EXCLUDED.avatar_url, updated_at = EXCLUDED.updated_at`
	if _, err := s.db.Exec(ctx, query, profile.UserID, profile.FullName, profile.AvatarURL); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (s *ProfileStore) SetAvatarIfEmpty(ctx context.Context, userID, avatarURL string) (bool, error) {
	query := `INSERT INTO profiles (user_id, avatar_url, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET avatar_url = EXCLUDED.avatar_url, updated_at = EXCLUDED.updated_at
		WHERE profiles.avatar_url IS NULL OR profiles.avatar_url = ''`
	tag, err := s.db.Exec(ctx, query, userID, avatarURL)
	if err != nil {
		return false, fmt.Errorf("failed to set avatar: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
