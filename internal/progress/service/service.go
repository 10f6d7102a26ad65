package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"formflow/internal/audit"
	"formflow/internal/catalog"
	"formflow/internal/progress"
	"formflow/internal/progress/metrics"
	"formflow/internal/progress/store"
	"formflow/pkg/domain"
	dErrors "formflow/pkg/domain-errors"
	"formflow/pkg/platform/sentinel"
	txcontext "formflow/pkg/platform/tx"
	"formflow/pkg/requestcontext"
)

// Catalog is the read side of the stage, task and question structure.
type Catalog interface {
	TaskByID(ctx context.Context, id domain.TaskID) (*catalog.Task, error)
	StageByID(ctx context.Context, id domain.StageID) (*catalog.Stage, error)
	QuestionByID(ctx context.Context, id domain.QuestionID) (*catalog.Question, error)
	TasksByStage(ctx context.Context, stageID domain.StageID) ([]*catalog.Task, error)
	QuestionsByTask(ctx context.Context, taskID domain.TaskID) ([]*catalog.Question, error)
}

// AnswerIndex reports which of the given questions have a non-empty stored
// answer for an application.
type AnswerIndex interface {
	AnsweredQuestions(ctx context.Context, applicationID domain.ApplicationID, questionIDs []domain.QuestionID) (progress.QuestionSet, error)
}

// Store persists status records. Find returns sentinel.ErrNotFound when no
// record exists yet.
type Store interface {
	Find(ctx context.Context, applicationID domain.ApplicationID, scope progress.Scope, scopeID string) (*progress.Record, error)
	Save(ctx context.Context, record *progress.Record) error
}

// Locker serializes recomputation for one application so a derivation made
// from an older answer set cannot overwrite a newer one.
type Locker interface {
	Lock(ctx context.Context, applicationID domain.ApplicationID) (unlock func(), err error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service recomputes and reads task and stage status.
type Service struct {
	catalog        Catalog
	answers        AnswerIndex
	store          Store
	locker         Locker
	tx             txcontext.Runner
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLocker replaces the in-process application lock, e.g. with Postgres
// advisory locks when several instances share a database.
func WithLocker(l Locker) Option {
	return func(s *Service) {
		s.locker = l
	}
}

// WithTxRunner runs each recomputation in a transaction. A transaction already
// in the context is joined.
func WithTxRunner(r txcontext.Runner) Option {
	return func(s *Service) {
		s.tx = r
	}
}

// New constructs a Service.
func New(cat Catalog, answers AnswerIndex, records Store, opts ...Option) *Service {
	s := &Service{
		catalog: cat,
		answers: answers,
		store:   records,
		locker:  store.NewApplicationLocks(),
		tx:      txcontext.NoopRunner{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is the outcome of one recomputation.
type Result struct {
	Record  progress.Record
	Changed bool
}

// RecomputeTask derives the task's status from its own questions and writes
// it only when it differs from the stored status.
func (s *Service) RecomputeTask(ctx context.Context, applicationID domain.ApplicationID, taskID domain.TaskID) (*Result, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRecompute(string(progress.ScopeTask), time.Since(start)) }()

	if _, err := s.catalog.TaskByID(ctx, taskID); err != nil {
		return nil, translateCatalogErr(err, "task not found")
	}
	total, err := s.taskQuestions(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return s.applyInTx(ctx, applicationID, progress.ScopeTask, taskID.String(), total)
}

// RecomputeStage derives the stage's status over the union of its tasks'
// questions. Member task statuses are not consulted.
func (s *Service) RecomputeStage(ctx context.Context, applicationID domain.ApplicationID, stageID domain.StageID) (*Result, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRecompute(string(progress.ScopeStage), time.Since(start)) }()

	tasks, err := s.catalog.TasksByStage(ctx, stageID)
	if err != nil {
		return nil, translateCatalogErr(err, "stage not found")
	}
	var total []domain.QuestionID
	for _, t := range tasks {
		ids, err := s.taskQuestions(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		total = append(total, ids...)
	}
	return s.applyInTx(ctx, applicationID, progress.ScopeStage, stageID.String(), total)
}

// RecomputeForQuestion recomputes the question's task and then the task's
// stage.
func (s *Service) RecomputeForQuestion(ctx context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID) error {
	q, err := s.catalog.QuestionByID(ctx, questionID)
	if err != nil {
		return translateCatalogErr(err, "question not found")
	}
	task, err := s.catalog.TaskByID(ctx, q.TaskID)
	if err != nil {
		return translateCatalogErr(err, "task not found")
	}
	if _, err := s.RecomputeTask(ctx, applicationID, task.ID); err != nil {
		return err
	}
	if _, err := s.RecomputeStage(ctx, applicationID, task.StageID); err != nil {
		return err
	}
	return nil
}

// TaskStatus returns the stored task record, or a NotStarted record when the
// task has never been recomputed.
func (s *Service) TaskStatus(ctx context.Context, applicationID domain.ApplicationID, taskID domain.TaskID) (*progress.Record, error) {
	if _, err := s.catalog.TaskByID(ctx, taskID); err != nil {
		return nil, translateCatalogErr(err, "task not found")
	}
	return s.stored(ctx, applicationID, progress.ScopeTask, taskID.String())
}

// StageStatus is TaskStatus for a stage.
func (s *Service) StageStatus(ctx context.Context, applicationID domain.ApplicationID, stageID domain.StageID) (*progress.Record, error) {
	if _, err := s.catalog.StageByID(ctx, stageID); err != nil {
		return nil, translateCatalogErr(err, "stage not found")
	}
	return s.stored(ctx, applicationID, progress.ScopeStage, stageID.String())
}

func (s *Service) stored(ctx context.Context, applicationID domain.ApplicationID, scope progress.Scope, scopeID string) (*progress.Record, error) {
	rec, err := s.store.Find(ctx, applicationID, scope, scopeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return &progress.Record{ApplicationID: applicationID, Scope: scope, ScopeID: scopeID, Status: progress.StatusNotStarted}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load status")
	}
	return rec, nil
}

func (s *Service) applyInTx(ctx context.Context, applicationID domain.ApplicationID, scope progress.Scope, scopeID string, total []domain.QuestionID) (*Result, error) {
	var res *Result
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.apply(ctx, applicationID, scope, scopeID, total)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// apply derives and stores the status while holding the application's lock,
// so the answered set it reads is never older than the record it replaces.
func (s *Service) apply(ctx context.Context, applicationID domain.ApplicationID, scope progress.Scope, scopeID string, total []domain.QuestionID) (*Result, error) {
	unlock, err := s.locker.Lock(ctx, applicationID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to lock progress")
	}
	defer unlock()

	answered, err := s.answers.AnsweredQuestions(ctx, applicationID, total)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load answers")
	}
	next := progress.DeriveStatus(progress.NewQuestionSet(total...), answered)

	prev, err := s.store.Find(ctx, applicationID, scope, scopeID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load status")
	}
	key := progress.Record{ApplicationID: applicationID, Scope: scope, ScopeID: scopeID}
	rec, write := progress.Transition(prev, key, next, requestcontext.Now(ctx))
	if !write {
		s.metrics.IncrementUnchanged(string(scope))
		return &Result{Record: rec}, nil
	}
	if err := s.store.Save(ctx, &rec); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save status")
	}

	s.metrics.IncrementTransition(string(scope), string(next))
	s.logger.InfoContext(ctx, "status changed",
		"application_id", applicationID.String(),
		"scope", string(scope),
		"scope_id", scopeID,
		"status", string(next),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emitAudit(ctx, scope, rec, prev)
	return &Result{Record: rec, Changed: true}, nil
}

func (s *Service) taskQuestions(ctx context.Context, taskID domain.TaskID) ([]domain.QuestionID, error) {
	questions, err := s.catalog.QuestionsByTask(ctx, taskID)
	if err != nil {
		return nil, translateCatalogErr(err, "task not found")
	}
	ids := make([]domain.QuestionID, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	return ids, nil
}

func (s *Service) emitAudit(ctx context.Context, scope progress.Scope, rec progress.Record, prev *progress.Record) {
	if s.auditPublisher == nil {
		return
	}
	action := audit.ActionTaskStatusChanged
	if scope == progress.ScopeStage {
		action = audit.ActionStageStatusChanged
	}
	reason := "created"
	if prev != nil {
		reason = "from " + string(prev.Status)
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:        action,
		ApplicationID: rec.ApplicationID,
		Subject:       rec.ScopeID,
		Decision:      string(rec.Status),
		Reason:        reason,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(action),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

func translateCatalogErr(err error, notFound string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFound)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load catalog")
}
