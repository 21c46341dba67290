package exec

import (
	"sync"

	"blockmvcc/pkg/mvcc"
)

// MemState is an in-memory BaseState, enough for drivers and tests.
type MemState struct {
	mu     sync.RWMutex
	values map[mvcc.Key]*mvcc.Value
}

func NewMemState() *MemState {
	return &MemState{values: make(map[mvcc.Key]*mvcc.Value)}
}

// Set installs a pre-block value for key.
func (m *MemState) Set(key mvcc.Key, value *mvcc.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Get implements BaseState.
func (m *MemState) Get(key mvcc.Key) (*mvcc.Value, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, mvcc.ErrNotFound
	}
	return v, nil
}
