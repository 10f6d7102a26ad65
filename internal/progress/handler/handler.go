package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"formflow/internal/platform/middleware"
	"formflow/internal/progress"
	progressService "formflow/internal/progress/service"
	"formflow/pkg/domain"
	"formflow/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service is the progress surface the handler needs.
type Service interface {
	TaskStatus(ctx context.Context, applicationID domain.ApplicationID, taskID domain.TaskID) (*progress.Record, error)
	StageStatus(ctx context.Context, applicationID domain.ApplicationID, stageID domain.StageID) (*progress.Record, error)
	RecomputeTask(ctx context.Context, applicationID domain.ApplicationID, taskID domain.TaskID) (*progressService.Result, error)
}

// Handler serves task and stage status.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a progress Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// StatusResponse is the body of every status endpoint.
type StatusResponse struct {
	progress.Record
	Changed *bool `json:"changed,omitempty"`
}

// Register registers the progress routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/applications/{applicationID}/tasks/{taskID}/status", h.handleTaskStatus)
	r.Post("/applications/{applicationID}/tasks/{taskID}/status", h.handleRecomputeTask)
	r.Get("/applications/{applicationID}/stages/{stageID}/status", h.handleStageStatus)
}

func (h *Handler) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, taskID, ok := h.taskParams(w, r)
	if !ok {
		return
	}
	rec, err := h.service.TaskStatus(ctx, appID, taskID)
	if err != nil {
		h.fail(ctx, w, "failed to load task status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{Record: *rec})
}

func (h *Handler) handleRecomputeTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, taskID, ok := h.taskParams(w, r)
	if !ok {
		return
	}
	res, err := h.service.RecomputeTask(ctx, appID, taskID)
	if err != nil {
		h.fail(ctx, w, "failed to recompute task status", err)
		return
	}
	changed := res.Changed
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{Record: res.Record, Changed: &changed})
}

func (h *Handler) handleStageStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, err := domain.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		h.reject(ctx, w, err)
		return
	}
	stageID, err := domain.ParseStageID(chi.URLParam(r, "stageID"))
	if err != nil {
		h.reject(ctx, w, err)
		return
	}
	rec, err := h.service.StageStatus(ctx, appID, stageID)
	if err != nil {
		h.fail(ctx, w, "failed to load stage status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{Record: *rec})
}

func (h *Handler) taskParams(w http.ResponseWriter, r *http.Request) (domain.ApplicationID, domain.TaskID, bool) {
	appID, err := domain.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		h.reject(r.Context(), w, err)
		return domain.ApplicationID{}, domain.TaskID{}, false
	}
	taskID, err := domain.ParseTaskID(chi.URLParam(r, "taskID"))
	if err != nil {
		h.reject(r.Context(), w, err)
		return domain.ApplicationID{}, domain.TaskID{}, false
	}
	return appID, taskID, true
}

func (h *Handler) reject(ctx context.Context, w http.ResponseWriter, err error) {
	h.logger.WarnContext(ctx, "invalid path parameter",
		"request_id", middleware.GetRequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
