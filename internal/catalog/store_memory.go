package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"formflow/pkg/domain"
	"formflow/pkg/platform/sentinel"
)

// InMemoryStore keeps the catalog in maps guarded by a RWMutex.
type InMemoryStore struct {
	mu        sync.RWMutex
	stages    map[domain.StageID]*Stage
	tasks     map[domain.TaskID]*Task
	questions map[domain.QuestionID]*Question
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		stages:    make(map[domain.StageID]*Stage),
		tasks:     make(map[domain.TaskID]*Task),
		questions: make(map[domain.QuestionID]*Question),
	}
}

func (s *InMemoryStore) SaveStage(_ context.Context, stage *Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *stage
	s.stages[stage.ID] = &cp
	return nil
}

func (s *InMemoryStore) SaveTask(_ context.Context, task *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stages[task.StageID]; !ok {
		return fmt.Errorf("stage %s: %w", task.StageID, sentinel.ErrNotFound)
	}
	cp := *task
	s.tasks[task.ID] = &cp
	return nil
}

// SaveQuestion upserts a question. A slug already used by another question
// of the same task is a conflict.
func (s *InMemoryStore) SaveQuestion(_ context.Context, q *Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[q.TaskID]; !ok {
		return fmt.Errorf("task %s: %w", q.TaskID, sentinel.ErrNotFound)
	}
	for id, existing := range s.questions {
		if id != q.ID && existing.TaskID == q.TaskID && existing.Slug == q.Slug {
			return fmt.Errorf("question slug %q: %w", q.Slug, sentinel.ErrConflict)
		}
	}
	cp := *q
	s.questions[q.ID] = &cp
	return nil
}

func (s *InMemoryStore) StageByID(_ context.Context, id domain.StageID) (*Stage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stages[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (s *InMemoryStore) TaskByID(_ context.Context, id domain.TaskID) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *InMemoryStore) QuestionByID(_ context.Context, id domain.QuestionID) (*Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

// TasksByStage lists a stage's tasks by order. An unknown stage yields
// sentinel.ErrNotFound.
func (s *InMemoryStore) TasksByStage(_ context.Context, stageID domain.StageID) ([]*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.stages[stageID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	var out []*Task
	for _, t := range s.tasks {
		if t.StageID == stageID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// QuestionsByTask lists a task's questions by order. An unknown task yields
// sentinel.ErrNotFound.
func (s *InMemoryStore) QuestionsByTask(_ context.Context, taskID domain.TaskID) ([]*Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.tasks[taskID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	var out []*Question
	for _, q := range s.questions {
		if q.TaskID == taskID {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}
