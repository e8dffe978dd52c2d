package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/afero"
)

var _ Store = (*AferoStore)(nil)

// AferoStore implements Store on any afero filesystem: the OS filesystem in
// production and MemMapFs in tests or ephemeral deployments.
type AferoStore struct {
	fs afero.Fs
}

// NewAferoStore creates a new AferoStore.
func NewAferoStore(fs afero.Fs) *AferoStore {
	return &AferoStore{fs: fs}
}

// NewDirStore roots an AferoStore at dir on the OS filesystem.
func NewDirStore(dir string) (*AferoStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
	}
	return NewAferoStore(afero.NewBasePathFs(osFs, dir)), nil
}

// Save writes reader to path, replacing any existing content. Content is
// written to a temporary file first so readers never see a partial object.
func (s *AferoStore) Save(ctx context.Context, p string, reader io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return 0, err
	}

	tmp := p + ".partial"
	f, err := s.fs.Create(tmp)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, reader)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(tmp)
		return 0, err
	}
	if err := s.fs.Rename(tmp, p); err != nil {
		_ = s.fs.Remove(tmp)
		return 0, err
	}
	return n, nil
}

// Open opens a file for reading.
func (s *AferoStore) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	return s.fs.OpenFile(p, os.O_RDONLY, 0)
}

// Exists reports whether a file is stored at p.
func (s *AferoStore) Exists(ctx context.Context, p string) (bool, error) {
	return afero.Exists(s.fs, p)
}

// Delete removes a file. Deleting a missing file is not an error.
func (s *AferoStore) Delete(ctx context.Context, p string) error {
	err := s.fs.Remove(p)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
