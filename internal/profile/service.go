// Package profile loads and edits the profile row of the signed-in user and
// handles avatar uploads.
package profile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/nfrund/kaashub/internal/config"
	"github.com/nfrund/kaashub/internal/domain"
	"github.com/nfrund/kaashub/internal/filestore"
	"github.com/nfrund/kaashub/internal/pubsub"
)

const avatarCacheControl = "3600"

// sniffLen is how much of an upload http.DetectContentType looks at.
const sniffLen = 512

// avatarTypes maps the accepted detected types to the extension stored
// objects get.
var avatarTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ObjectStore is the part of the object service the profile editor needs.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, path string, content io.Reader, opts filestore.UploadOptions) (*domain.Object, error)
	PublicURL(bucket, path string) string
	Remove(ctx context.Context, bucket, path string) error
}

type Service struct {
	profiles domain.ProfileRepository
	objects  ObjectStore
	bucket   string
	maxSize  int64
}

func NewService(profiles domain.ProfileRepository, objects ObjectStore, cfg config.Provider) *Service {
	return &Service{
		profiles: profiles,
		objects:  objects,
		bucket:   cfg.GetAvatarBucket(),
		maxSize:  cfg.GetAvatarMaxSize(),
	}
}

// Load builds the view-model for user. A missing row is an empty profile.
// Load never writes.
func (s *Service) Load(ctx context.Context, user *domain.User) (*View, error) {
	view := &View{
		Email:             user.Email,
		ProviderAvatarURL: user.Metadata.AvatarURL,
	}

	row, err := s.profiles.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return view, nil
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	view.FullName = row.Name()
	view.AvatarURL = row.Avatar()
	return view, nil
}

// SyncProviderAvatar copies the provider avatar into the profile row when the
// row has none. It is safe to call repeatedly; the store only writes while
// the stored avatar is still empty.
func (s *Service) SyncProviderAvatar(ctx context.Context, user *domain.User, view *View) error {
	if view.AvatarURL != "" || user.Metadata.AvatarURL == "" {
		return nil
	}
	wrote, err := s.profiles.SetAvatarIfEmpty(ctx, user.ID, user.Metadata.AvatarURL)
	if err != nil {
		return fmt.Errorf("failed to sync provider avatar: %w", err)
	}
	if wrote {
		view.AvatarURL = user.Metadata.AvatarURL
		slog.InfoContext(ctx, "Synced provider avatar", "user_id", user.ID)
	}
	return nil
}

// Save writes full_name and avatar_url for userID. Empty values are stored as null.
func (s *Service) Save(ctx context.Context, userID, fullName, avatarURL string) error {
	return s.profiles.Save(ctx, &domain.Profile{
		UserID:    userID,
		FullName:  nullable(fullName),
		AvatarURL: nullable(avatarURL),
	})
}

// UploadAvatar stores an image under a fresh random name and returns its
// public URL. The profile row is not touched. The type is detected from the
// content; the claimed type and filename only show up in logs. Only raster
// formats browsers cannot execute are accepted.
func (s *Service) UploadAvatar(ctx context.Context, userID, filename, contentType string, content io.Reader) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	detected := http.DetectContentType(head)
	ext, ok := avatarTypes[detected]
	if !ok {
		slog.WarnContext(ctx, "Rejected avatar upload",
			"user_id", userID, "filename", filename, "claimed_type", contentType, "detected_type", detected)
		return "", domain.ErrUnsupportedMedia
	}

	path := uuid.NewString() + "." + ext
	body := io.MultiReader(bytes.NewReader(head), content)
	obj, err := s.objects.Upload(ctx, s.bucket, path, io.LimitReader(body, s.maxSize+1), filestore.UploadOptions{
		ContentType:  detected,
		CacheControl: avatarCacheControl,
		Upsert:       true,
		OwnerID:      userID,
	})
	if err != nil {
		return "", err
	}
	if obj.Size > s.maxSize {
		if err := s.objects.Remove(ctx, s.bucket, path); err != nil {
			slog.WarnContext(ctx, "Failed to remove oversized avatar", "path", path, "error", err)
		}
		return "", domain.ErrFileTooLarge
	}

	return s.objects.PublicURL(s.bucket, path), nil
}

// HandleUserCreated creates the profile row of a new user, seeded with the
// name the login provider reported.
func (s *Service) HandleUserCreated(ctx context.Context, ev domain.UserCreated) error {
	return s.profiles.Ensure(ctx, ev.UserID, nullable(ev.FullName))
}

// Start subscribes the service to user-created events until ctx is done.
func (s *Service) Start(ctx context.Context, sub pubsub.Subscriber) error {
	return pubsub.UserCreated.Subscribe(ctx, sub, s.HandleUserCreated)
}

func nullable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
