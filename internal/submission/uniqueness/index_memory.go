package uniqueness

import (
	"context"
	"sync"

	"formflow/pkg/domain"
	"formflow/pkg/platform/sentinel"
	textutil "formflow/pkg/platform/strings"
)

type InMemory struct {
	mu     sync.RWMutex
	owners map[string]map[string]domain.ApplicationID
}

func NewInMemory() *InMemory {
	return &InMemory{owners: make(map[string]map[string]domain.ApplicationID)}
}

func (m *InMemory) Owner(_ context.Context, questionID domain.QuestionID, field, value string) (domain.ApplicationID, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	owner, ok := m.owners[Key(questionID, field)][textutil.Fold(value)]
	return owner, ok, nil
}

func (m *InMemory) Claim(_ context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, folded := Key(questionID, field), textutil.Fold(value)
	values := m.owners[key]
	if values == nil {
		values = make(map[string]domain.ApplicationID)
		m.owners[key] = values
	}
	if owner, ok := values[folded]; ok && owner != applicationID {
		return sentinel.ErrConflict
	}
	values[folded] = applicationID
	return nil
}

// Release drops value only if applicationID owns it.
func (m *InMemory) Release(_ context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	values := m.owners[Key(questionID, field)]
	folded := textutil.Fold(value)
	if owner, ok := values[folded]; ok && owner == applicationID {
		delete(values, folded)
	}
	return nil
}
