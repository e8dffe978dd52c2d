package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"

	"github.com/nfrund/kaashub/internal/domain"
	"github.com/nfrund/kaashub/internal/storage"
)

// UploadOptions mirror the options an object storage upload accepts.
type UploadOptions struct {
	ContentType  string
	CacheControl string
	// Upsert replaces an existing object instead of failing with ErrObjectExists.
	Upsert  bool
	OwnerID string
}

// Service stores object bytes in a storage.Store and their metadata in a
// domain.ObjectRepository, and derives public URLs for them.
type Service struct {
	store     storage.Store
	repo      domain.ObjectRepository
	publicURL string
}

// NewService creates a new object service. publicURL is the externally
// reachable base the storage routes are mounted under.
func NewService(store storage.Store, repo domain.ObjectRepository, publicURL string) *Service {
	return &Service{
		store:     store,
		repo:      repo,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Upload saves content at bucket/path and records its metadata.
func (s *Service) Upload(ctx context.Context, bucket, path string, content io.Reader, opts UploadOptions) (*domain.Object, error) {
	object := &domain.Object{
		Bucket:       bucket,
		Path:         path,
		MIMEType:     opts.ContentType,
		CacheControl: opts.CacheControl,
		OwnerID:      opts.OwnerID,
	}
	if object.MIMEType == "" {
		object.MIMEType = "application/octet-stream"
	}
	if err := object.Validate(); err != nil {
		return nil, fmt.Errorf("invalid object location: %w", err)
	}

	if !opts.Upsert {
		exists, err := s.store.Exists(ctx, object.Key())
		if err != nil {
			return nil, fmt.Errorf("failed to check object: %w", err)
		}
		if exists {
			return nil, domain.ErrObjectExists
		}
	}

	size, err := s.store.Save(ctx, object.Key(), content)
	if err != nil {
		return nil, fmt.Errorf("failed to save object content: %w", err)
	}
	object.Size = size

	stored, err := s.repo.Upsert(ctx, object)
	if err != nil {
		// Without metadata the bytes are unreachable, so remove them.
		if delErr := s.store.Delete(ctx, object.Key()); delErr != nil {
			slog.ErrorContext(ctx, "Failed to clean up object after metadata failure",
				"bucket", bucket, "path", path, "error", delErr)
		}
		return nil, fmt.Errorf("failed to store object metadata: %w", err)
	}
	return stored, nil
}

// PublicURL returns the URL an uploaded object is served from.
func (s *Service) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.publicURL, url.PathEscape(bucket), escapePath(path))
}

// Open returns the object's metadata and a reader for its content.
func (s *Service) Open(ctx context.Context, bucket, path string) (*domain.Object, io.ReadCloser, error) {
	object, err := s.repo.Find(ctx, bucket, path)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(ctx, object.Key())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %v", domain.ErrObjectNotFound, err)
		}
		return nil, nil, fmt.Errorf("failed to open object content: %w", err)
	}
	return object, rc, nil
}

// Remove deletes both the content and the metadata of an object.
func (s *Service) Remove(ctx context.Context, bucket, path string) error {
	if err := s.store.Delete(ctx, bucket+"/"+path); err != nil {
		return fmt.Errorf("failed to delete object content: %w", err)
	}
	return s.repo.Delete(ctx, bucket, path)
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
