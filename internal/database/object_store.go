package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nfrund/kaashub/internal/config"
	"github.com/nfrund/kaashub/internal/domain"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

type objectRecord struct {
	ID           *models.RecordID       `json:"id,omitempty"`
	Bucket       string                 `json:"bucket"`
	Path         string                 `json:"path"`
	MIMEType     string                 `json:"mime_type"`
	Size         int64                  `json:"size"`
	CacheControl string                 `json:"cache_control,omitempty"`
	OwnerID      string                 `json:"owner_id,omitempty"`
	CreatedAt    *models.CustomDateTime `json:"created_at,omitempty"`
	UpdatedAt    *models.CustomDateTime `json:"updated_at,omitempty"`
}

func (r *objectRecord) toDomain() *domain.Object {
	return &domain.Object{
		Bucket:       r.Bucket,
		Path:         r.Path,
		MIMEType:     r.MIMEType,
		Size:         r.Size,
		CacheControl: r.CacheControl,
		OwnerID:      r.OwnerID,
		CreatedAt:    fromDateTime(r.CreatedAt),
		UpdatedAt:    fromDateTime(r.UpdatedAt),
	}
}

var _ domain.ObjectRepository = (*ObjectStore)(nil)

// ObjectStore implements operations for managing object metadata in the database.
type ObjectStore struct {
	client Client[objectRecord]
}

// NewObjectStore creates an object metadata repository backed by conn.
func NewObjectStore(conn Conn, cfg config.Provider, opts ...ClientOption[objectRecord]) (*ObjectStore, error) {
	c, err := NewClient(conn, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &ObjectStore{client: c}, nil
}

func objectID(bucket, path string) models.RecordID {
	return models.NewRecordID(objectsTable, bucket+"/"+path)
}

// Upsert creates or replaces metadata, keeping the original creation time.
func (s *ObjectStore) Upsert(ctx context.Context, object *domain.Object) (*domain.Object, error) {
	if object == nil {
		return nil, errors.New("object to store cannot be nil")
	}
	if err := object.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed for object: %w", err)
	}

	now := time.Now().UTC()
	data := map[string]any{
		"bucket":        object.Bucket,
		"path":          object.Path,
		"mime_type":     object.MIMEType,
		"size":          object.Size,
		"cache_control": object.CacheControl,
		"owner_id":      object.OwnerID,
		"updated_at":    toDateTime(now),
	}

	id := objectID(object.Bucket, object.Path)
	existing, err := s.client.Select(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		data["created_at"] = toDateTime(now)
	case err != nil:
		return nil, err
	default:
		data["created_at"] = existing.CreatedAt
	}

	rec, err := s.client.Upsert(ctx, id, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store object metadata: %w", err)
	}
	return rec.toDomain(), nil
}

// Find returns the metadata or domain.ErrObjectNotFound.
func (s *ObjectStore) Find(ctx context.Context, bucket, path string) (*domain.Object, error) {
	rec, err := s.client.Select(ctx, objectID(bucket, path))
	if errors.Is(err, ErrNotFound) {
		return nil, domain.ErrObjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

func (s *ObjectStore) Delete(ctx context.Context, bucket, path string) error {
	return s.client.Delete(ctx, objectID(bucket, path))
}
