package store

import (
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// Memory is an in-process Store. Values are round-tripped through YAML so
// callers see the same decoding rules as with FileStore.
type Memory struct {
	mu     sync.Mutex
	values map[string]yaml.Node
	writes int
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]yaml.Node)}
}

// Get implements Store.
func (m *Memory) Get(key string, out any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.values[key]
	if !ok {
		return false, nil
	}
	if err := node.Decode(out); err != nil {
		return true, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// Set implements Store.
func (m *Memory) Set(key string, v any) error {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = node
	m.writes++
	return nil
}

// Writes returns how many times Set succeeded.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
