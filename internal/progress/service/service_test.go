package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"formflow/internal/audit"
	"formflow/internal/catalog"
	"formflow/internal/platform/logger"
	"formflow/internal/progress"
	"formflow/internal/progress/store"
	"formflow/pkg/domain"
	dErrors "formflow/pkg/domain-errors"
	"formflow/pkg/requestcontext"
)

// =============================================================================
// Progress Service Test Suite
// =============================================================================
// Feature scenarios cover the status rules; this suite pins error translation
// and the side effects of a written change.

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	catalog  *catalog.InMemoryStore
	answers  *answerIndex
	records  *store.InMemory
	audit    *audit.InMemoryStore
	service  *Service
	appID    domain.ApplicationID
	stageID  domain.StageID
	taskID   domain.TaskID
	question domain.QuestionID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.catalog = catalog.NewInMemoryStore()
	s.answers = newAnswerIndex()
	s.records = store.NewInMemory()
	s.audit = audit.NewInMemoryStore()
	s.service = New(s.catalog, s.answers, s.records,
		WithLogger(logger.Discard()),
		WithAuditPublisher(audit.NewPublisher(s.audit)),
	)

	s.appID = domain.ApplicationID(uuid.New())
	s.stageID = domain.StageID(uuid.New())
	s.taskID = domain.TaskID(uuid.New())
	s.question = domain.QuestionID(uuid.New())
	s.Require().NoError(s.catalog.SaveStage(s.ctx, &catalog.Stage{ID: s.stageID, Name: "Stage"}))
	s.Require().NoError(s.catalog.SaveTask(s.ctx, &catalog.Task{ID: s.taskID, StageID: s.stageID, Name: "Task"}))
	s.Require().NoError(s.catalog.SaveQuestion(s.ctx, &catalog.Question{ID: s.question, TaskID: s.taskID, Slug: "bio", Content: "{}"}))
}

func (s *ServiceSuite) TestUnknownScopes() {
	_, err := s.service.RecomputeTask(s.ctx, s.appID, domain.TaskID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.RecomputeStage(s.ctx, s.appID, domain.StageID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.StageStatus(s.ctx, s.appID, domain.StageID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	err = s.service.RecomputeForQuestion(s.ctx, s.appID, domain.QuestionID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestStatusDefaultsToNotStarted() {
	rec, err := s.service.TaskStatus(s.ctx, s.appID, s.taskID)
	s.Require().NoError(err)
	s.Equal(progress.StatusNotStarted, rec.Status)
	s.True(rec.StartedAt.IsZero())
}

func (s *ServiceSuite) TestAnswerIndexFailure() {
	s.answers.err = errors.New("db down")
	_, err := s.service.RecomputeTask(s.ctx, s.appID, s.taskID)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestChangeEmitsAuditOnce() {
	s.answers.set(s.appID, s.question, `{"bio":"hello"}`)

	res, err := s.service.RecomputeTask(s.ctx, s.appID, s.taskID)
	s.Require().NoError(err)
	s.True(res.Changed)
	s.Equal(progress.StatusCompleted, res.Record.Status)
	s.Equal(s.now, res.Record.StartedAt)

	res, err = s.service.RecomputeTask(s.ctx, s.appID, s.taskID)
	s.Require().NoError(err)
	s.False(res.Changed)

	events, err := s.audit.ListByApplication(s.ctx, s.appID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionTaskStatusChanged, events[0].Action)
	s.Equal("completed", events[0].Decision)
	s.Equal(s.taskID.String(), events[0].Subject)
	s.Equal("created", events[0].Reason)
}

func (s *ServiceSuite) TestRecomputeForQuestionUpdatesStage() {
	s.answers.set(s.appID, s.question, `{"bio":"hello"}`)
	s.Require().NoError(s.service.RecomputeForQuestion(s.ctx, s.appID, s.question))

	rec, err := s.service.StageStatus(s.ctx, s.appID, s.stageID)
	s.Require().NoError(err)
	s.Equal(progress.StatusCompleted, rec.Status)
	s.Require().NotNil(rec.CompletedAt)
	s.Equal(s.now, *rec.CompletedAt)

	events, err := s.audit.ListByApplication(s.ctx, s.appID)
	s.Require().NoError(err)
	s.Len(events, 2)
}

func (s *ServiceSuite) TestEmptyStageIsNotStarted() {
	empty := domain.StageID(uuid.New())
	s.Require().NoError(s.catalog.SaveStage(s.ctx, &catalog.Stage{ID: empty, Name: "Empty"}))

	res, err := s.service.RecomputeStage(s.ctx, s.appID, empty)
	s.Require().NoError(err)
	s.Equal(progress.StatusNotStarted, res.Record.Status)
}

func (s *ServiceSuite) TestInterleavedRecomputesKeepNewestStatus() {
	second := domain.QuestionID(uuid.New())
	s.Require().NoError(s.catalog.SaveQuestion(s.ctx, &catalog.Question{ID: second, TaskID: s.taskID, Slug: "age", Order: 1, Content: "{}"}))

	gated := newGatedAnswerIndex(s.answers)
	svc := New(s.catalog, gated, s.records, WithLogger(logger.Discard()))

	s.answers.set(s.appID, s.question, `{"bio":"hello"}`)
	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.RecomputeTask(s.ctx, s.appID, s.taskID)
		firstDone <- err
	}()
	<-gated.reached

	// The second answer lands while the first recompute holds a stale snapshot.
	s.answers.set(s.appID, second, `{"age":"42"}`)
	secondDone := make(chan error, 1)
	go func() {
		_, err := svc.RecomputeTask(s.ctx, s.appID, s.taskID)
		secondDone <- err
	}()
	select {
	case err := <-secondDone:
		s.Failf("second recompute finished while the first held the application", "err: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(gated.release)
	s.Require().NoError(<-firstDone)
	s.Require().NoError(<-secondDone)

	rec, err := svc.TaskStatus(s.ctx, s.appID, s.taskID)
	s.Require().NoError(err)
	s.Equal(progress.StatusCompleted, rec.Status)
}

func (s *ServiceSuite) TestLockFailureIsUnavailable() {
	svc := New(s.catalog, s.answers, s.records, WithLogger(logger.Discard()), WithLocker(failingLocker{}))
	_, err := svc.RecomputeTask(s.ctx, s.appID, s.taskID)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}
