//go:build integration

package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"formflow/pkg/domain"
	"formflow/pkg/platform/sentinel"
	"formflow/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
	seed  *SeedFile
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgresStore(s.pg.DB)
	s.ctx = context.Background()
	var err error
	s.seed, err = LoadSeed("testdata/catalog.yaml")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx))
	s.Require().NoError(Seed(s.ctx, s.store, s.seed))
}

func (s *PostgresStoreSuite) TestSeedIsIdempotent() {
	s.Require().NoError(Seed(s.ctx, s.store, s.seed))

	task := s.seed.Stages[0].Tasks[0]
	questions, err := s.store.QuestionsByTask(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Len(questions, len(task.Questions))
}

func (s *PostgresStoreSuite) TestQuestionsAreOrdered() {
	task := s.seed.Stages[0].Tasks[0]
	questions, err := s.store.QuestionsByTask(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Require().Len(questions, 3)
	s.Equal([]string{"full-name", "reference-code", "roles"},
		[]string{questions[0].Slug, questions[1].Slug, questions[2].Slug})
	s.Equal(task.Questions[0].Content, questions[0].Content)
}

func (s *PostgresStoreSuite) TestTasksByStage() {
	stage := s.seed.Stages[1]
	tasks, err := s.store.TasksByStage(s.ctx, stage.ID)
	s.Require().NoError(err)
	s.Require().Len(tasks, 1)
	s.Equal("Proposal summary", tasks[0].Name)
	s.Equal(stage.ID, tasks[0].StageID)
}

func (s *PostgresStoreSuite) TestDuplicateSlugConflicts() {
	task := s.seed.Stages[0].Tasks[0]
	dup := &Question{ID: domain.QuestionID(uuid.New()), TaskID: task.ID, Slug: "full-name", Content: "{}"}
	err := s.store.SaveQuestion(s.ctx, dup)
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestUnknownIDs() {
	_, err := s.store.QuestionByID(s.ctx, s.seed.Stages[0].Tasks[0].Questions[0].ID)
	s.Require().NoError(err)

	_, err = s.store.TaskByID(s.ctx, domain.TaskID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.TasksByStage(s.ctx, domain.StageID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}
