package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"formflow/internal/audit"
	"formflow/internal/catalog"
	"formflow/internal/form/answer"
	"formflow/internal/form/review"
	"formflow/internal/form/schema"
	"formflow/internal/form/validation"
	"formflow/internal/submission"
	"formflow/internal/submission/metrics"
	"formflow/internal/submission/uniqueness"
	"formflow/pkg/domain"
	dErrors "formflow/pkg/domain-errors"
	"formflow/pkg/platform/sentinel"
	textutil "formflow/pkg/platform/strings"
	txcontext "formflow/pkg/platform/tx"
	"formflow/pkg/requestcontext"
)

const reviewConcurrency = 8

// Catalog is the read side of the question structure.
type Catalog interface {
	QuestionByID(ctx context.Context, id domain.QuestionID) (*catalog.Question, error)
	TaskByID(ctx context.Context, id domain.TaskID) (*catalog.Task, error)
	QuestionsByTask(ctx context.Context, taskID domain.TaskID) ([]*catalog.Question, error)
}

// Store persists answers. Find returns sentinel.ErrNotFound when the question
// has not been answered.
type Store interface {
	Find(ctx context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID) (*submission.Answer, error)
	Save(ctx context.Context, a *submission.Answer) error
}

// ProgressRecomputer refreshes task and stage status after an answer changes.
type ProgressRecomputer interface {
	RecomputeForQuestion(ctx context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service accepts answers and builds task reviews.
type Service struct {
	catalog        Catalog
	answers        Store
	index          uniqueness.Index
	progress       ProgressRecomputer
	tx             txcontext.Runner
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

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

// WithTxRunner makes the answer write and the status recomputation one unit
// of work.
func WithTxRunner(r txcontext.Runner) Option {
	return func(s *Service) {
		s.tx = r
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New constructs a Service.
func New(cat Catalog, answers Store, index uniqueness.Index, progress ProgressRecomputer, opts ...Option) *Service {
	s := &Service{
		catalog:  cat,
		answers:  answers,
		index:    index,
		progress: progress,
		tx:       txcontext.NoopRunner{},
		logger:   slog.Default(),
		tracer:   otel.Tracer("formflow/internal/submission"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates raw against the question's schema. Field problems are
// returned in the result and nothing is stored. A valid answer replaces the
// previous one, claims its unique values and refreshes progress.
func (s *Service) Submit(ctx context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID, raw string) (_ *submission.SubmitResult, err error) {
	ctx, span := s.tracer.Start(ctx, "submission.Submit", trace.WithAttributes(
		attribute.String("application_id", applicationID.String()),
		attribute.String("question_id", questionID.String()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "submit failed")
			s.metrics.IncrementSubmission(metrics.OutcomeFailed)
		}
		span.End()
	}()

	q, err := s.catalog.QuestionByID(ctx, questionID)
	if err != nil {
		return nil, translateCatalogErr(err, "question not found")
	}
	fs, err := schema.Parse(q.Content)
	if err != nil {
		s.logger.ErrorContext(ctx, "stored question content is invalid",
			"question_id", questionID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeSchema, "question content is invalid")
	}
	ans, err := answer.Parse(raw)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "answer must be a JSON object")
	}

	engine := validation.NewEngine(validation.WithUniquenessChecker(uniqueness.ForApplication(s.index, applicationID)))
	items, err := s.validate(ctx, engine, questionID, fs, ans)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return s.reject(ctx, applicationID, questionID, items), nil
	}

	prev := s.previousUniqueValues(ctx, applicationID, questionID, fs)
	next := validation.UniqueValues(fs, ans)
	claimed, err := s.claim(ctx, applicationID, questionID, prev, next)
	if errors.Is(err, sentinel.ErrConflict) {
		// Another application claimed a value between the check and the claim.
		items, verr := s.validate(ctx, engine, questionID, fs, ans)
		if verr != nil {
			return nil, verr
		}
		if len(items) == 0 {
			return nil, dErrors.New(dErrors.CodeConflict, "answer conflicts with another application")
		}
		return s.reject(ctx, applicationID, questionID, items), nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to record unique values")
	}

	record := &submission.Answer{
		ApplicationID: applicationID,
		QuestionID:    questionID,
		Payload:       raw,
		UpdatedAt:     requestcontext.Now(ctx),
		UpdatedBy:     requestcontext.Applicant(ctx),
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.answers.Save(ctx, record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save answer")
		}
		return s.progress.RecomputeForQuestion(ctx, applicationID, questionID)
	})
	if err != nil {
		s.release(ctx, applicationID, questionID, claimed)
		return nil, err
	}
	s.release(ctx, applicationID, questionID, subtract(prev, next))

	s.metrics.IncrementSubmission(metrics.OutcomeAccepted)
	s.logger.InfoContext(ctx, "answer accepted",
		"application_id", applicationID.String(),
		"question_id", questionID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emitAudit(ctx, audit.Event{
		Action:        audit.ActionAnswerSubmitted,
		ApplicationID: applicationID,
		Subject:       questionID.String(),
		Decision:      "accepted",
	})
	return &submission.SubmitResult{Errors: []validation.ErrorItem{}}, nil
}

// Answer returns the stored answer for a question.
func (s *Service) Answer(ctx context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID) (*submission.Answer, error) {
	if _, err := s.catalog.QuestionByID(ctx, questionID); err != nil {
		return nil, translateCatalogErr(err, "question not found")
	}
	a, err := s.answers.Find(ctx, applicationID, questionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "answer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load answer")
	}
	return a, nil
}

// ReviewTask builds the review of every question of a task in catalog order.
// Questions whose stored content cannot be parsed are left out.
func (s *Service) ReviewTask(ctx context.Context, applicationID domain.ApplicationID, taskID domain.TaskID) (_ *submission.TaskReview, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "submission.ReviewTask", trace.WithAttributes(
		attribute.String("application_id", applicationID.String()),
		attribute.String("task_id", taskID.String()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "review failed")
		}
		span.End()
		s.metrics.ObserveReview(time.Since(start))
	}()

	task, err := s.catalog.TaskByID(ctx, taskID)
	if err != nil {
		return nil, translateCatalogErr(err, "task not found")
	}
	questions, err := s.catalog.QuestionsByTask(ctx, taskID)
	if err != nil {
		return nil, translateCatalogErr(err, "task not found")
	}

	payloads := make([]string, len(questions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reviewConcurrency)
	for i, q := range questions {
		g.Go(func() error {
			a, err := s.answers.Find(gctx, applicationID, q.ID)
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("load answer for question %s: %w", q.ID, err)
			}
			payloads[i] = a.Payload
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load answers")
	}

	out := &submission.TaskReview{TaskID: task.ID, TaskName: task.Name, Questions: []submission.QuestionReview{}}
	for i, q := range questions {
		fs, err := schema.Parse(q.Content)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping question with invalid content in review",
				"question_id", q.ID.String(),
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			continue
		}
		out.Questions = append(out.Questions, submission.QuestionReview{
			QuestionID: q.ID,
			Slug:       q.Slug,
			Heading:    fs.Heading,
			Sections:   review.Build(fs, payloads[i], QuestionURL(applicationID, q.Slug)),
		})
	}
	return out, nil
}

// QuestionURL is where the applicant changes an answer from the review page.
func QuestionURL(applicationID domain.ApplicationID, slug string) string {
	return "/applications/" + applicationID.String() + "/questions/" + slug
}

func (s *Service) validate(ctx context.Context, engine *validation.Engine, questionID domain.QuestionID, fs *schema.FormSchema, ans *answer.Value) ([]validation.ErrorItem, error) {
	items, err := engine.Validate(ctx, questionID, fs, ans)
	switch {
	case err == nil:
		return items, nil
	case errors.Is(err, schema.ErrInvalidPattern), errors.Is(err, schema.ErrMissingFormGroup):
		return nil, dErrors.Wrap(err, dErrors.CodeSchema, "question content is invalid")
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to check uniqueness")
	}
}

func (s *Service) reject(ctx context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID, items []validation.ErrorItem) *submission.SubmitResult {
	kinds := make([]string, 0, len(items))
	for _, item := range items {
		s.metrics.IncrementValidationError(string(item.Kind))
		kinds = append(kinds, string(item.Kind))
	}
	s.metrics.IncrementSubmission(metrics.OutcomeRejected)
	s.logger.InfoContext(ctx, "answer rejected",
		"application_id", applicationID.String(),
		"question_id", questionID.String(),
		"errors", len(items),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emitAudit(ctx, audit.Event{
		Action:        audit.ActionAnswerRejected,
		ApplicationID: applicationID,
		Subject:       questionID.String(),
		Decision:      "rejected",
		Reason:        strings.Join(textutil.DedupeAndTrim(kinds), ","),
	})
	return &submission.SubmitResult{Errors: items}
}

// previousUniqueValues reads the unique values of the answer being replaced.
// A missing or unreadable previous answer has none.
func (s *Service) previousUniqueValues(ctx context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID, fs *schema.FormSchema) []validation.FieldValue {
	prev, err := s.answers.Find(ctx, applicationID, questionID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to load previous answer",
				"question_id", questionID.String(),
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		return nil
	}
	return validation.UniqueValues(fs, answer.ParseLenient(prev.Payload))
}

// claim records next and returns the values that were not already held by
// the previous answer, so a failed write can give them back.
func (s *Service) claim(ctx context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID, prev, next []validation.FieldValue) ([]validation.FieldValue, error) {
	fresh := subtract(next, prev)
	var claimed []validation.FieldValue
	for _, fv := range next {
		if err := s.index.Claim(ctx, applicationID, questionID, fv.Field, fv.Value); err != nil {
			s.release(ctx, applicationID, questionID, intersect(claimed, fresh))
			return nil, err
		}
		claimed = append(claimed, fv)
	}
	return fresh, nil
}

func (s *Service) release(ctx context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID, values []validation.FieldValue) {
	for _, fv := range values {
		if err := s.index.Release(ctx, applicationID, questionID, fv.Field, fv.Value); err != nil {
			s.metrics.IncrementIndexFailure()
			s.logger.ErrorContext(ctx, "failed to release unique value",
				"question_id", questionID.String(),
				"field", fv.Field,
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(event.Action),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

func fieldKey(fv validation.FieldValue) string {
	return textutil.Fold(fv.Field) + "\x00" + textutil.Fold(fv.Value)
}

// subtract returns the values of a that are not in b.
func subtract(a, b []validation.FieldValue) []validation.FieldValue {
	drop := make(map[string]struct{}, len(b))
	for _, fv := range b {
		drop[fieldKey(fv)] = struct{}{}
	}
	var out []validation.FieldValue
	for _, fv := range a {
		if _, ok := drop[fieldKey(fv)]; !ok {
			out = append(out, fv)
		}
	}
	return out
}

func intersect(a, b []validation.FieldValue) []validation.FieldValue {
	return subtract(a, subtract(a, b))
}

func translateCatalogErr(err error, notFound string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFound)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load catalog")
}
