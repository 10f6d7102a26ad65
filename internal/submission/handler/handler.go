package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"formflow/internal/form/validation"
	"formflow/internal/platform/middleware"
	"formflow/internal/submission"
	"formflow/pkg/domain"
	dErrors "formflow/pkg/domain-errors"
	"formflow/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

const maxAnswerBytes = 1 << 20

// Service is the submission surface the handler needs.
type Service interface {
	Submit(ctx context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID, raw string) (*submission.SubmitResult, error)
	Answer(ctx context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID) (*submission.Answer, error)
	ReviewTask(ctx context.Context, applicationID domain.ApplicationID, taskID domain.TaskID) (*submission.TaskReview, error)
}

// Handler serves answer submission and task review.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a submission Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

type SubmitResponse struct {
	Valid  bool                   `json:"valid"`
	Errors []validation.ErrorItem `json:"errors,omitempty"`
}

type AnswerResponse struct {
	QuestionID domain.QuestionID `json:"questionId"`
	Answer     json.RawMessage   `json:"answer"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// Register registers the submission routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/applications/{applicationID}/questions/{questionID}/answer", h.handleSubmit)
	r.Get("/applications/{applicationID}/questions/{questionID}/answer", h.handleGetAnswer)
	r.Get("/applications/{applicationID}/tasks/{taskID}/review", h.handleReview)
}

// handleSubmit validates and stores one answer. Field errors are a 422 with
// the error list; the body is passed to the service verbatim.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	appID, questionID, ok := h.questionParams(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAnswerBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "answer is too large"))
			return
		}
		h.logger.WarnContext(ctx, "failed to read answer body",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "failed to read request body"))
		return
	}

	res, err := h.service.Submit(ctx, appID, questionID, string(body))
	if err != nil {
		h.logFailure(ctx, "failed to submit answer", err)
		httputil.WriteError(w, err)
		return
	}
	if !res.Valid() {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, SubmitResponse{Valid: false, Errors: res.Errors})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SubmitResponse{Valid: true})
}

func (h *Handler) handleGetAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, questionID, ok := h.questionParams(w, r)
	if !ok {
		return
	}
	a, err := h.service.Answer(ctx, appID, questionID)
	if err != nil {
		h.logFailure(ctx, "failed to load answer", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AnswerResponse{
		QuestionID: a.QuestionID,
		Answer:     json.RawMessage(a.Payload),
		UpdatedAt:  a.UpdatedAt,
	})
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, err := domain.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		h.reject(ctx, w, err)
		return
	}
	taskID, err := domain.ParseTaskID(chi.URLParam(r, "taskID"))
	if err != nil {
		h.reject(ctx, w, err)
		return
	}
	rev, err := h.service.ReviewTask(ctx, appID, taskID)
	if err != nil {
		h.logFailure(ctx, "failed to build review", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rev)
}

func (h *Handler) questionParams(w http.ResponseWriter, r *http.Request) (domain.ApplicationID, domain.QuestionID, bool) {
	appID, err := domain.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		h.reject(r.Context(), w, err)
		return domain.ApplicationID{}, domain.QuestionID{}, false
	}
	questionID, err := domain.ParseQuestionID(chi.URLParam(r, "questionID"))
	if err != nil {
		h.reject(r.Context(), w, err)
		return domain.ApplicationID{}, domain.QuestionID{}, false
	}
	return appID, questionID, true
}

func (h *Handler) reject(ctx context.Context, w http.ResponseWriter, err error) {
	h.logger.WarnContext(ctx, "invalid path parameter",
		"request_id", middleware.GetRequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}

// logFailure logs client errors at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput, dErrors.CodeNotFound, dErrors.CodeConflict:
		h.logger.WarnContext(ctx, msg, "request_id", middleware.GetRequestID(ctx), "error", err)
	default:
		h.logger.ErrorContext(ctx, msg, "request_id", middleware.GetRequestID(ctx), "error", err)
	}
}
