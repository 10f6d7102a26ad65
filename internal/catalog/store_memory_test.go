package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"formflow/pkg/domain"
	"formflow/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemoryStore
	stage *Stage
	task  *Task
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemoryStore()
	s.stage = &Stage{ID: domain.StageID(uuid.New()), Name: "About you"}
	s.task = &Task{ID: domain.TaskID(uuid.New()), StageID: s.stage.ID, Name: "Details"}
	s.Require().NoError(s.store.SaveStage(s.ctx, s.stage))
	s.Require().NoError(s.store.SaveTask(s.ctx, s.task))
}

func (s *InMemoryStoreSuite) TestNotFound() {
	_, err := s.store.QuestionByID(s.ctx, domain.QuestionID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.TaskByID(s.ctx, domain.TaskID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.QuestionsByTask(s.ctx, domain.TaskID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.TasksByStage(s.ctx, domain.StageID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestSaveQuestionRequiresTask() {
	err := s.store.SaveQuestion(s.ctx, &Question{ID: domain.QuestionID(uuid.New()), TaskID: domain.TaskID(uuid.New()), Slug: "x"})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestSlugConflict() {
	first := &Question{ID: domain.QuestionID(uuid.New()), TaskID: s.task.ID, Slug: "bio", Content: "{}"}
	s.Require().NoError(s.store.SaveQuestion(s.ctx, first))

	s.NoError(s.store.SaveQuestion(s.ctx, first), "upsert of the same question")

	second := &Question{ID: domain.QuestionID(uuid.New()), TaskID: s.task.ID, Slug: "bio", Content: "{}"}
	s.ErrorIs(s.store.SaveQuestion(s.ctx, second), sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestReturnsCopies() {
	q := &Question{ID: domain.QuestionID(uuid.New()), TaskID: s.task.ID, Slug: "bio", Content: "{}"}
	s.Require().NoError(s.store.SaveQuestion(s.ctx, q))

	got, err := s.store.QuestionByID(s.ctx, q.ID)
	s.Require().NoError(err)
	got.Slug = "changed"

	again, err := s.store.QuestionByID(s.ctx, q.ID)
	s.Require().NoError(err)
	s.Equal("bio", again.Slug)
}
