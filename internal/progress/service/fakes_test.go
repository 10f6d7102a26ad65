package service

import (
	"context"
	"errors"
	"sync"

	"formflow/internal/form/answer"
	"formflow/internal/progress"
	"formflow/pkg/domain"
)

// answerIndex is an in-memory AnswerIndex over raw payloads.
type answerIndex struct {
	mu       sync.Mutex
	payloads map[domain.ApplicationID]map[domain.QuestionID]string
	err      error
}

func newAnswerIndex() *answerIndex {
	return &answerIndex{payloads: make(map[domain.ApplicationID]map[domain.QuestionID]string)}
}

func (a *answerIndex) set(appID domain.ApplicationID, questionID domain.QuestionID, payload string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.payloads[appID] == nil {
		a.payloads[appID] = make(map[domain.QuestionID]string)
	}
	a.payloads[appID][questionID] = payload
}

func (a *answerIndex) AnsweredQuestions(_ context.Context, appID domain.ApplicationID, ids []domain.QuestionID) (progress.QuestionSet, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	out := progress.NewQuestionSet()
	for _, id := range ids {
		if raw, ok := a.payloads[appID][id]; ok && answer.IsAnswered(raw) {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

// gatedAnswerIndex pauses the first AnsweredQuestions call after it has read
// its snapshot, until release is closed.
type gatedAnswerIndex struct {
	*answerIndex
	once    sync.Once
	reached chan struct{}
	release chan struct{}
}

func newGatedAnswerIndex(inner *answerIndex) *gatedAnswerIndex {
	return &gatedAnswerIndex{answerIndex: inner, reached: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedAnswerIndex) AnsweredQuestions(ctx context.Context, appID domain.ApplicationID, ids []domain.QuestionID) (progress.QuestionSet, error) {
	set, err := g.answerIndex.AnsweredQuestions(ctx, appID, ids)
	g.once.Do(func() {
		close(g.reached)
		<-g.release
	})
	return set, err
}

type failingLocker struct{}

func (failingLocker) Lock(context.Context, domain.ApplicationID) (func(), error) {
	return nil, errors.New("lock wait timeout")
}
