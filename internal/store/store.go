// Package store is the key-value persistence used for the remembered lesson
// folder and the per-lesson played sections.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store is a key-value store. Get reports whether key was present and decodes
// its value into out.
type Store interface {
	Get(key string, out any) (bool, error)
	Set(key string, v any) error
}

// FileStore keeps every key in a single YAML document. The document is read
// on first use and rewritten atomically on every Set. It is safe for
// concurrent use.
type FileStore struct {
	path string

	mu     sync.Mutex
	loaded bool
	values map[string]yaml.Node
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store backed by path. The file and its directory
// are created on the first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) load() error {
	if s.loaded {
		return nil
	}
	s.values = make(map[string]yaml.Node)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("read store: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &s.values); err != nil {
			return fmt.Errorf("decode store %s: %w", s.path, err)
		}
	}
	s.loaded = true
	return nil
}

// Get implements Store.
func (s *FileStore) Get(key string, out any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return false, err
	}
	node, ok := s.values[key]
	if !ok {
		return false, nil
	}
	if err := node.Decode(out); err != nil {
		return true, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// Set implements Store.
func (s *FileStore) Set(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	prev, had := s.values[key]
	s.values[key] = node
	if err := s.flush(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

func (s *FileStore) flush() error {
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".store-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}
