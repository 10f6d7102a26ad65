package store

import (
	"context"
	"sync"

	"formflow/internal/form/answer"
	"formflow/internal/progress"
	"formflow/internal/submission"
	"formflow/pkg/domain"
	"formflow/pkg/platform/sentinel"
)

type answerKey struct {
	applicationID domain.ApplicationID
	questionID    domain.QuestionID
}

// InMemory is the answer store used when no database is configured.
type InMemory struct {
	mu      sync.RWMutex
	answers map[answerKey]submission.Answer
}

func NewInMemory() *InMemory {
	return &InMemory{answers: make(map[answerKey]submission.Answer)}
}

func (s *InMemory) Find(_ context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID) (*submission.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.answers[answerKey{applicationID, questionID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &a, nil
}

// Save replaces any previous answer for the same application and question.
func (s *InMemory) Save(_ context.Context, a *submission.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[answerKey{a.ApplicationID, a.QuestionID}] = *a
	return nil
}

// AnsweredQuestions returns the subset of questionIDs with a non-empty answer.
func (s *InMemory) AnsweredQuestions(_ context.Context, applicationID domain.ApplicationID, questionIDs []domain.QuestionID) (progress.QuestionSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := progress.NewQuestionSet()
	for _, id := range questionIDs {
		if a, ok := s.answers[answerKey{applicationID, id}]; ok && answer.IsAnswered(a.Payload) {
			out[id] = struct{}{}
		}
	}
	return out, nil
}
