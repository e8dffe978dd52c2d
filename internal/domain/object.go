package domain

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// validatorInstance is a package-level validator instance.
// Using a single instance is more efficient as it caches struct information.
var validatorInstance = validator.New()

func init() {
	_ = validatorInstance.RegisterValidation("safepath", validateSafePath)
}

// validateSafePath rejects paths that could escape their bucket.
func validateSafePath(fl validator.FieldLevel) bool {
	path := fl.Field().String()

	if strings.Contains(path, "..") ||
		strings.Contains(path, "~") ||
		strings.HasPrefix(path, "/") ||
		strings.Contains(path, "\\") {
		return false
	}

	// Catches "avatars/./x" style paths that clean to something else.
	return path == filepath.Clean(path)
}

// Object is the metadata of a stored file. The bytes live in the storage
// backend under Bucket/Path.
type Object struct {
	Bucket       string    `validate:"required,min=1,max=63,safepath"`
	Path         string    `validate:"required,min=1,max=255,safepath"`
	MIMEType     string    `validate:"required"`
	Size         int64     `validate:"gte=0"`
	CacheControl string    `validate:"omitempty,max=64"`
	OwnerID      string    `validate:"omitempty"`
	CreatedAt    time.Time `validate:"-"`
	UpdatedAt    time.Time `validate:"-"`
}

// Key is the location of the object inside the storage backend.
func (o *Object) Key() string {
	return o.Bucket + "/" + o.Path
}

// Validate runs validation checks on the Object using the defined tags.
func (o *Object) Validate() error {
	return validatorInstance.Struct(o)
}

// ObjectRepository stores object metadata.
type ObjectRepository interface {
	// Upsert creates or replaces the metadata for Bucket/Path.
	Upsert(ctx context.Context, object *Object) (*Object, error)
	// Find returns ErrObjectNotFound when nothing is stored at the key.
	Find(ctx context.Context, bucket, path string) (*Object, error)
	Delete(ctx context.Context, bucket, path string) error
}
