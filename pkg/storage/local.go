package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore writes receipt files to a directory on disk. Uploads land in a
// temp/ subdirectory first and are promoted once the owning record is
// confirmed.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if err := os.MkdirAll(filepath.Join(root, "temp"), 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// SaveTemp writes the upload into temp/ under a random name, preserving the
// original extension. It returns the path relative to the storage root.
func (s *LocalStore) SaveTemp(src io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext
	rel := filepath.Join("temp", name)

	f, err := os.Create(filepath.Join(s.root, rel))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, src); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	return rel, nil
}

// Promote moves a temp file into the permanent area. Returns the new relative
// path.
func (s *LocalStore) Promote(relPath string) (string, error) {
	if !strings.HasPrefix(relPath, "temp"+string(filepath.Separator)) && !strings.HasPrefix(relPath, "temp/") {
		// Already permanent.
		return relPath, nil
	}
	name := filepath.Base(relPath)
	dest := filepath.Join("receipts", name)
	if err := os.MkdirAll(filepath.Join(s.root, "receipts"), 0o755); err != nil {
		return "", fmt.Errorf("create receipts dir: %w", err)
	}
	if err := os.Rename(filepath.Join(s.root, relPath), filepath.Join(s.root, dest)); err != nil {
		return "", fmt.Errorf("promote file: %w", err)
	}
	return dest, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *LocalStore) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, relPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// Open returns a reader for a stored file.
func (s *LocalStore) Open(relPath string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, relPath))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}
