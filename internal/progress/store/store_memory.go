package store

import (
	"context"
	"sync"

	"formflow/internal/progress"
	"formflow/pkg/domain"
	"formflow/pkg/platform/sentinel"
)

type recordKey struct {
	applicationID domain.ApplicationID
	scope         progress.Scope
	scopeID       string
}

type InMemory struct {
	mu      sync.RWMutex
	records map[recordKey]progress.Record
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[recordKey]progress.Record)}
}

func (s *InMemory) Find(_ context.Context, applicationID domain.ApplicationID, scope progress.Scope, scopeID string) (*progress.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[recordKey{applicationID, scope, scopeID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &rec, nil
}

// Save upserts the record.
func (s *InMemory) Save(_ context.Context, rec *progress.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[recordKey{rec.ApplicationID, rec.Scope, rec.ScopeID}] = *rec
	return nil
}
