package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps objects on the local filesystem below a root directory and
// serves them through the router's static /media mount.
type DiskStore struct {
	root       string
	publicBase string
}

func NewDiskStore(root, publicBase string) *DiskStore {
	return &DiskStore{root: root, publicBase: strings.TrimRight(publicBase, "/")}
}

func (s *DiskStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *DiskStore) Put(ctx context.Context, key string, r io.Reader) error {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	// Write to a temp file first so a half-written object is never visible
	// under its final key.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *DiskStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return f, err
}

func (s *DiskStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

func (s *DiskStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (s *DiskStore) PublicURL(key string) string {
	return s.publicBase + "/" + key
}
