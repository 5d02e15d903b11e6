package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// FileStore keeps every key in a single JSON document on disk. Reads go to
// the current document and mutations re-read it under an exclusive lock file,
// so several processes can share one store.
type FileStore struct {
	Blobs map[string]string `json:"blobs"`
	Path  string            `json:"-"`
	lock  *flock.Flock
	mu    sync.Mutex
}

var _ Store = (*FileStore)(nil)

func OpenFile(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	s := &FileStore{
		Blobs: make(map[string]string),
		Path:  path,
		lock:  flock.New(path + ".lock"),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load replaces Blobs with the document on disk. A missing file is empty.
func (s *FileStore) load() error {
	s.Blobs = make(map[string]string)
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(s); err != nil {
		return fmt.Errorf("failed to decode store %s: %w", s.Path, err)
	}
	if s.Blobs == nil {
		s.Blobs = make(map[string]string)
	}
	return nil
}

// save writes to a temp file and renames it over the store so a reader never
// sees a truncated document. Callers hold s.mu and the lock file.
func (s *FileStore) save() error {
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

// mutate reloads the document, applies fn and writes the result back, all
// while holding the lock file.
func (s *FileStore) mutate(fn func(blobs map[string]string) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock store %s: %w", s.Path, err)
	}
	defer s.lock.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	changed, err := fn(s.Blobs)
	if err != nil || !changed {
		return err
	}
	if err := s.save(); err != nil {
		return fmt.Errorf("failed to write store %s: %w", s.Path, err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}
	v, ok := s.Blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	return s.mutate(func(blobs map[string]string) (bool, error) {
		blobs[key] = string(value)
		return true, nil
	})
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	return s.mutate(func(blobs map[string]string) (bool, error) {
		if _, exists := blobs[key]; !exists {
			return false, nil
		}
		delete(blobs, key)
		return true, nil
	})
}

func (s *FileStore) Update(_ context.Context, key string, fn UpdateFunc) error {
	return s.mutate(func(blobs map[string]string) (bool, error) {
		var current []byte
		if v, ok := blobs[key]; ok {
			current = []byte(v)
		}
		next, err := fn(current)
		if err != nil {
			return false, err
		}
		blobs[key] = string(next)
		return true, nil
	})
}
