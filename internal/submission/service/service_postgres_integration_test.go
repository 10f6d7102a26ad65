//go:build integration

package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"formflow/internal/catalog"
	"formflow/internal/platform/logger"
	"formflow/internal/progress"
	progressService "formflow/internal/progress/service"
	progressStore "formflow/internal/progress/store"
	"formflow/internal/submission"
	"formflow/internal/submission/store"
	"formflow/internal/submission/uniqueness"
	"formflow/pkg/domain"
	txcontext "formflow/pkg/platform/tx"
	"formflow/pkg/requestcontext"
	"formflow/pkg/testutil/containers"
)

// PostgresFlowSuite runs submissions end to end against Postgres and Redis.
type PostgresFlowSuite struct {
	suite.Suite
	ctx      context.Context
	pg       *containers.PostgresContainer
	rc       *containers.RedisContainer
	answers  *store.PostgresStore
	progress *progressService.Service
	service  *Service
}

func TestPostgresFlowSuite(t *testing.T) {
	suite.Run(t, new(PostgresFlowSuite))
}

func (s *PostgresFlowSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.rc = containers.GetManager().GetRedis(s.T())
}

func (s *PostgresFlowSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC))
	s.Require().NoError(s.pg.Truncate(s.ctx))
	s.Require().NoError(s.rc.FlushAll(s.ctx))

	cat := catalog.NewPostgresStore(s.pg.DB)
	seed, err := catalog.LoadSeed("../../catalog/testdata/catalog.yaml")
	s.Require().NoError(err)
	s.Require().NoError(catalog.Seed(s.ctx, cat, seed))

	runner := txcontext.NewSQLRunner(s.pg.DB, 0)
	s.answers = store.NewPostgres(s.pg.DB)
	s.progress = progressService.New(cat, s.answers, progressStore.NewPostgres(s.pg.DB),
		progressService.WithLogger(logger.Discard()),
		progressService.WithLocker(progressStore.NewAdvisoryLocks(s.pg.DB)),
		progressService.WithTxRunner(runner),
	)
	s.service = New(cat, s.answers, uniqueness.NewRedis(s.rc.Client), s.progress,
		WithLogger(logger.Discard()),
		WithTxRunner(runner),
	)
}

func (s *PostgresFlowSuite) TestSubmitPersistsAnswerAndStatus() {
	raw := `{"lastName": "Lovelace", "firstName": "Ada"}`
	res, err := s.service.Submit(s.ctx, appA, fullNameQ, raw)
	s.Require().NoError(err)
	s.Require().True(res.Valid())

	stored, err := s.answers.Find(s.ctx, appA, fullNameQ)
	s.Require().NoError(err)
	s.Equal(raw, stored.Payload)

	answered, err := s.answers.AnsweredQuestions(s.ctx, appA, []domain.QuestionID{fullNameQ, referenceCodeQ})
	s.Require().NoError(err)
	s.True(answered.Has(fullNameQ))
	s.False(answered.Has(referenceCodeQ))

	task, err := s.progress.TaskStatus(s.ctx, appA, personalTask)
	s.Require().NoError(err)
	s.Equal(progress.StatusInProgress, task.Status)
}

func (s *PostgresFlowSuite) TestConcurrentSubmitsCompleteTask() {
	answers := map[domain.QuestionID]string{
		fullNameQ:      `{"firstName":"Ada","lastName":"Lovelace"}`,
		referenceCodeQ: `{"referenceCode":"ADA001"}`,
		rolesQ:         `{"roles":["organiser"]}`,
	}
	var g errgroup.Group
	for q, raw := range answers {
		g.Go(func() error {
			res, err := s.service.Submit(s.ctx, appA, q, raw)
			if err != nil {
				return err
			}
			if !res.Valid() {
				return fmt.Errorf("question %s rejected: %v", q, res.Errors)
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	task, err := s.progress.TaskStatus(s.ctx, appA, personalTask)
	s.Require().NoError(err)
	s.Equal(progress.StatusCompleted, task.Status)

	stage, err := s.progress.StageStatus(s.ctx, appA, aboutYouStage)
	s.Require().NoError(err)
	s.Equal(progress.StatusCompleted, stage.Status)
}

func (s *PostgresFlowSuite) TestRecomputeOutsideSubmitTakesLock() {
	res, err := s.progress.RecomputeTask(s.ctx, appA, personalTask)
	s.Require().NoError(err)
	s.Equal(progress.StatusNotStarted, res.Record.Status)
}

func (s *PostgresFlowSuite) TestUniqueAcrossApplications() {
	res, err := s.service.Submit(s.ctx, appA, referenceCodeQ, `{"referenceCode":"ABC123"}`)
	s.Require().NoError(err)
	s.Require().True(res.Valid())

	res, err = s.service.Submit(s.ctx, appB, referenceCodeQ, `{"referenceCode":"ABC123"}`)
	s.Require().NoError(err)
	s.Require().Len(res.Errors, 1)
	s.Equal("unique", string(res.Errors[0].Kind))
}

func (s *PostgresFlowSuite) TestEmptyObjectDoesNotCountAsAnswered() {
	s.Require().NoError(s.answers.Save(s.ctx, &submission.Answer{
		ApplicationID: appA, QuestionID: rolesQ, Payload: `{}`, UpdatedAt: time.Now(),
	}))
	answered, err := s.answers.AnsweredQuestions(s.ctx, appA, []domain.QuestionID{rolesQ})
	s.Require().NoError(err)
	s.Empty(answered)
}
