package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests and as a fallback when no
// database path is configured. It satisfies the same ordering and idempotency
// contract as the SQLite backend.
type MemoryStore struct {
	mu         sync.Mutex
	namespaces map[Namespace][]Entry
	clock      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		namespaces: make(map[Namespace][]Entry),
		clock:      time.Now,
	}
}

// Search returns the namespace entries in insertion order.
func (s *MemoryStore) Search(ns Namespace) ([]Entry, error) {
	if err := ns.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.namespaces[ns]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// Get retrieves one record by id, or ErrNotFound.
func (s *MemoryStore) Get(ns Namespace, id string) (Entry, error) {
	if err := ns.Validate(); err != nil {
		return Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.namespaces[ns] {
		if entry.ID == id {
			return entry, nil
		}
	}
	return Entry{}, ErrNotFound
}

// Put upserts the record, preserving the original insertion position on
// overwrite.
func (s *MemoryStore) Put(ns Namespace, id string, value json.RawMessage) error {
	if err := ns.Validate(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("store: record id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	cloned := make(json.RawMessage, len(value))
	copy(cloned, value)
	entries := s.namespaces[ns]
	for i, entry := range entries {
		if entry.ID == id {
			entries[i].Value = cloned
			entries[i].UpdatedAt = now
			return nil
		}
	}
	s.namespaces[ns] = append(entries, Entry{ID: id, Value: cloned, CreatedAt: now, UpdatedAt: now})
	return nil
}
