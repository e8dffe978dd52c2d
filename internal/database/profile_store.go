package database

import (
	"context"
	"errors"
	"time"

	"github.com/nfrund/kaashub/internal/config"
	"github.com/nfrund/kaashub/internal/domain"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

type profileRecord struct {
	ID        *models.RecordID       `json:"id,omitempty"`
	FullName  *string                `json:"full_name"`
	AvatarURL *string                `json:"avatar_url"`
	UpdatedAt *models.CustomDateTime `json:"updated_at,omitempty"`
}

func (r *profileRecord) toDomain() *domain.Profile {
	return &domain.Profile{
		UserID:    recordKey(r.ID),
		FullName:  r.FullName,
		AvatarURL: r.AvatarURL,
		UpdatedAt: fromDateTimePtr(r.UpdatedAt),
	}
}

var _ domain.ProfileRepository = (*ProfileStore)(nil)

// ProfileStore keeps one profiles row per user, keyed by the user ID.
type ProfileStore struct {
	client Client[profileRecord]
}

// NewProfileStore creates a profile repository backed by conn.
func NewProfileStore(conn Conn, cfg config.Provider, opts ...ClientOption[profileRecord]) (*ProfileStore, error) {
	c, err := NewClient(conn, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &ProfileStore{client: c}, nil
}

func profileID(userID string) models.RecordID {
	return models.NewRecordID(profilesTable, userID)
}

// FindByUserID returns the row or domain.ErrProfileNotFound.
func (s *ProfileStore) FindByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	rec, err := s.client.Select(ctx, profileID(userID))
	if errors.Is(err, ErrNotFound) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

// Ensure creates the row seeded with fullName. An existing row only gets
// fullName when it has no name yet, since another writer may have created it
// first.
func (s *ProfileStore) Ensure(ctx context.Context, userID string, fullName *string) error {
	if filled, err := s.fillName(ctx, userID, fullName); err != nil || filled {
		return err
	}
	if _, err := s.FindByUserID(ctx, userID); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrProfileNotFound) {
		return err
	}

	rec := profileRecord{FullName: fullName, UpdatedAt: toDateTime(time.Now())}
	if _, err := s.client.Create(ctx, profileID(userID), rec); err != nil {
		// Lost a race with another writer; the row exists either way.
		if _, findErr := s.FindByUserID(ctx, userID); findErr == nil {
			_, err := s.fillName(ctx, userID, fullName)
			return err
		}
		return err
	}
	return nil
}

func (s *ProfileStore) fillName(ctx context.Context, userID string, fullName *string) (bool, error) {
	if fullName == nil {
		return false, nil
	}
	query := "UPDATE type::thing($tb, $id) SET full_name = $name, updated_at = $now " +
		"WHERE full_name IS NONE OR full_name IS NULL"
	params := recordParams(profileID(userID))
	params["name"] = *fullName
	params["now"] = toDateTime(time.Now())

	updated, err := s.client.Query(ctx, query, params)
	if err != nil {
		return false, WrapError(err, "seed profile name")
	}
	return len(updated) > 0, nil
}

// Save writes both editable fields, creating the row if it is missing.
func (s *ProfileStore) Save(ctx context.Context, profile *domain.Profile) error {
	if profile == nil || profile.UserID == "" {
		return NewDBError(ErrInvalidInput, "profile user id is required")
	}
	data := map[string]any{
		"full_name":  profile.FullName,
		"avatar_url": profile.AvatarURL,
		"updated_at": toDateTime(time.Now()),
	}
	_, err := s.client.Upsert(ctx, profileID(profile.UserID), data)
	return err
}

// SetAvatarIfEmpty writes avatarURL only while the stored avatar is empty.
func (s *ProfileStore) SetAvatarIfEmpty(ctx context.Context, userID, avatarURL string) (bool, error) {
	if avatarURL == "" {
		return false, nil
	}

	query := "UPDATE type::thing($tb, $id) SET avatar_url = $url, updated_at = $now " +
		"WHERE avatar_url IS NONE OR avatar_url IS NULL OR avatar_url = ''"
	params := recordParams(profileID(userID))
	params["url"] = avatarURL
	params["now"] = toDateTime(time.Now())

	updated, err := s.client.Query(ctx, query, params)
	if err != nil {
		return false, WrapError(err, "sync provider avatar")
	}
	if len(updated) > 0 {
		return true, nil
	}

	// Nothing updated: either the avatar is already set or the row is missing.
	if _, err := s.FindByUserID(ctx, userID); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrProfileNotFound) {
		return false, err
	}

	rec := profileRecord{AvatarURL: &avatarURL, UpdatedAt: toDateTime(time.Now())}
	if _, err := s.client.Create(ctx, profileID(userID), rec); err != nil {
		if _, findErr := s.FindByUserID(ctx, userID); findErr == nil {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
