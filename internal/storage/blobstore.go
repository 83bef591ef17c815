package storage

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// BlobStore is a file-backed key/blob store for captured images. One binary
// object per run, keyed by the derived output name.
type BlobStore struct {
	dir           string
	publicURLBase string
	mu            sync.RWMutex
}

// NewBlobStore creates a BlobStore and ensures the directory exists.
func NewBlobStore(dir, publicURLBase string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blob store: mkdir %s: %w", dir, err)
	}
	return &BlobStore{dir: dir, publicURLBase: strings.TrimSuffix(publicURLBase, "/")}, nil
}

func (s *BlobStore) path(key string) string {
	return filepath.Join(s.dir, SanitizeName(key)+".png")
}

// Put writes the raw image bytes under the given key.
func (s *BlobStore) Put(key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("blob store: empty key")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("blob store: write %s: %w", key, err)
	}
	return nil
}

// Get reads the raw image bytes stored under the given key.
func (s *BlobStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob not found: %s", key)
		}
		return nil, fmt.Errorf("blob store: read %s: %w", key, err)
	}
	return data, nil
}

// Exists reports whether a blob is stored under the given key.
func (s *BlobStore) Exists(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.path(key))
	return err == nil
}

// PublicURL resolves a public locator for a stored blob. With no configured
// base URL it falls back to a file:// locator for the on-disk path.
func (s *BlobStore) PublicURL(key string) (string, error) {
	if !s.Exists(key) {
		return "", fmt.Errorf("blob not found: %s", key)
	}
	if s.publicURLBase != "" {
		return s.publicURLBase + "/" + url.PathEscape(SanitizeName(key)+".png"), nil
	}
	abs, err := filepath.Abs(s.path(key))
	if err != nil {
		return "", fmt.Errorf("blob store: resolve path for %s: %w", key, err)
	}
	return "file://" + abs, nil
}
