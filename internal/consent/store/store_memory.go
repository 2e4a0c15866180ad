package store

import (
	"context"
	"sync"

	"custodia/internal/consent/models"
)

// InMemoryStore keeps consent records in memory, for tests and the memory
// driver. Records are copied on the way in and out so callers can never share
// a flags map with the store.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.Record
}

// New constructs an empty in-memory consent store.
func New() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*models.Record)}
}

func (s *InMemoryStore) Get(_ context.Context, userID string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return record.Clone(), nil
}

func (s *InMemoryStore) Replace(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.UserID] = record.Clone()
	return nil
}

func (s *InMemoryStore) DeleteByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, userID)
	return nil
}
