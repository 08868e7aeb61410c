package storage

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// MemoryStore keeps slots in process memory
type MemoryStore struct {
	slots  sync.Map
	closed atomic.Bool
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns a copy of the slot
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	v, ok := m.slots.Load(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, key)
	}
	return append([]byte(nil), v.([]byte)...), nil
}

// Put stores a copy of data
func (m *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.slots.Store(key, append([]byte(nil), data...))
	return nil
}

// Delete removes the slot. Deleting a missing slot is not an error.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.slots.Delete(key)
	return nil
}

// Close marks the store closed
func (m *MemoryStore) Close() error {
	m.closed.Store(true)
	return nil
}
