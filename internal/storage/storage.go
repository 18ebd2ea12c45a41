package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrBlobNotFound is returned when a stored path no longer has a backing file.
	ErrBlobNotFound = errors.New("storage: blob not found")
	// ErrInvalidPath is returned for paths that escape the storage root.
	ErrInvalidPath = errors.New("storage: invalid path")
)

// BlobStore is an opaque key-addressed file store.
type BlobStore interface {
	// Store writes the content under namespace with a generated unique name
	// that keeps the extension of suggestedName. It returns the logical path.
	Store(namespace, suggestedName string, r io.Reader) (string, int64, error)

	// Open returns a reader for a logical path.
	Open(p string) (io.ReadCloser, error)

	// Delete removes a logical path. Missing blobs are not an error.
	Delete(p string) error
}

// FileStore keeps blobs on the local filesystem below Root.
type FileStore struct {
	Root string
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Root: dir}
}

// Store implements BlobStore.
func (s *FileStore) Store(namespace, suggestedName string, r io.Reader) (string, int64, error) {
	dir, err := s.resolve(namespace)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("storage: create namespace %s: %w", namespace, err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(suggestedName))
	logical := path.Join(namespace, name)

	f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("storage: create %s: %w", logical, err)
	}

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(filepath.Join(dir, name))
		if copyErr == nil {
			copyErr = closeErr
		}
		return "", 0, fmt.Errorf("storage: write %s: %w", logical, copyErr)
	}

	return logical, n, nil
}

// Open implements BlobStore.
func (s *FileStore) Open(p string) (io.ReadCloser, error) {
	full, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("storage: open %s: %w", p, err)
	}
	return f, nil
}

// Delete implements BlobStore.
func (s *FileStore) Delete(p string) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: delete %s: %w", p, err)
	}
	return nil
}

func (s *FileStore) resolve(p string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(p))
	if clean == "/" || strings.Contains(p, "..") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.Root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}
