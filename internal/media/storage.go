package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	ErrStorageNotFound = errors.New("media: storage not configured")
	ErrFileNotFound    = errors.New("media: file not found")
	ErrInvalidKey      = errors.New("media: invalid file key")
	ErrInvalidFilename = errors.New("media: invalid original filename")
)

// FileStorage reads stored files by key.
type FileStorage interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Storages maps the storage aliases recorded on file infos to their backends.
type Storages struct {
	mu       sync.RWMutex
	backends map[string]FileStorage
}

// NewStorages creates an empty registry.
func NewStorages() *Storages {
	return &Storages{backends: make(map[string]FileStorage)}
}

// Register binds a storage alias.
func (s *Storages) Register(alias string, storage FileStorage) {
	if storage == nil || strings.TrimSpace(alias) == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backends[strings.TrimSpace(alias)] = storage
}

// Get returns the storage bound to the alias.
func (s *Storages) Get(alias string) (FileStorage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	storage, ok := s.backends[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStorageNotFound, alias)
	}
	return storage, nil
}

// LocalStorage serves files below a root directory.
type LocalStorage struct {
	root string
}

// NewLocalStorage creates a storage rooted at dir.
func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{root: filepath.Clean(dir)}
}

func (l *LocalStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := l.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, key)
		}
		return nil, err
	}
	return file, nil
}

func (l *LocalStorage) resolve(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimSpace(key)))
	if cleaned == "." || filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(l.root, cleaned), nil
}
