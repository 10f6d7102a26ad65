package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"formflow/internal/platform/logger"
	"formflow/internal/progress"
	"formflow/internal/progress/handler/mocks"
	progressService "formflow/internal/progress/service"
	"formflow/pkg/domain"
	dErrors "formflow/pkg/domain-errors"
	"formflow/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	appID   domain.ApplicationID
	taskID  domain.TaskID
	stageID domain.StageID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, logger.Discard()).Register(s.router)
	s.appID = domain.ApplicationID(uuid.New())
	s.taskID = domain.TaskID(uuid.New())
	s.stageID = domain.StageID(uuid.New())
}

func (s *HandlerSuite) taskPath() string {
	return "/applications/" + s.appID.String() + "/tasks/" + s.taskID.String() + "/status"
}

// =============================================================================
// Task status
// =============================================================================

func (s *HandlerSuite) TestTaskStatus() {
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.service.EXPECT().TaskStatus(gomock.Any(), s.appID, s.taskID).Return(&progress.Record{
		ApplicationID: s.appID,
		Scope:         progress.ScopeTask,
		ScopeID:       s.taskID.String(),
		Status:        progress.StatusInProgress,
		StartedAt:     started,
		UpdatedAt:     started,
	}, nil)

	rr := testutil.Do(s.router, testutil.NewRequest(s.T(), http.MethodGet, s.taskPath()))

	s.Equal(http.StatusOK, rr.Code)
	body := testutil.Decode[map[string]any](s.T(), rr)
	s.Equal("in_progress", body["status"])
	s.Equal("task", body["scope"])
	s.NotContains(body, "completed_at")
	s.NotContains(body, "changed")
}

func (s *HandlerSuite) TestTaskStatusNotFound() {
	s.service.EXPECT().TaskStatus(gomock.Any(), s.appID, s.taskID).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "task not found"))

	rr := testutil.Do(s.router, testutil.NewRequest(s.T(), http.MethodGet, s.taskPath()))

	testutil.AssertError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *HandlerSuite) TestInvalidIDs() {
	for _, path := range []string{
		"/applications/not-a-uuid/tasks/" + s.taskID.String() + "/status",
		"/applications/" + s.appID.String() + "/tasks/nope/status",
		"/applications/" + s.appID.String() + "/stages/nope/status",
	} {
		rr := testutil.Do(s.router, testutil.NewRequest(s.T(), http.MethodGet, path))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	}
}

// =============================================================================
// Recompute
// =============================================================================

func (s *HandlerSuite) TestRecomputeReportsChange() {
	s.service.EXPECT().RecomputeTask(gomock.Any(), s.appID, s.taskID).Return(&progressService.Result{
		Record:  progress.Record{ApplicationID: s.appID, Scope: progress.ScopeTask, ScopeID: s.taskID.String(), Status: progress.StatusCompleted},
		Changed: true,
	}, nil)

	rr := testutil.Do(s.router, testutil.NewRequest(s.T(), http.MethodPost, s.taskPath()))

	s.Equal(http.StatusOK, rr.Code)
	body := testutil.Decode[map[string]any](s.T(), rr)
	s.Equal("completed", body["status"])
	s.Equal(true, body["changed"])
}

func (s *HandlerSuite) TestRecomputeInternalErrorHidesDetail() {
	s.service.EXPECT().RecomputeTask(gomock.Any(), s.appID, s.taskID).
		Return(nil, dErrors.Wrap(errors.New("connection reset"), dErrors.CodeInternal, "failed to save status"))

	rr := testutil.Do(s.router, testutil.NewRequest(s.T(), http.MethodPost, s.taskPath()))

	testutil.AssertError(s.T(), rr, http.StatusInternalServerError, "internal_error")
	s.NotContains(rr.Body.String(), "connection reset")
}

// =============================================================================
// Stage status
// =============================================================================

func (s *HandlerSuite) TestStageStatus() {
	s.service.EXPECT().StageStatus(gomock.Any(), s.appID, s.stageID).Return(&progress.Record{
		ApplicationID: s.appID,
		Scope:         progress.ScopeStage,
		ScopeID:       s.stageID.String(),
		Status:        progress.StatusNotStarted,
	}, nil)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/applications/"+s.appID.String()+"/stages/"+s.stageID.String()+"/status")
	rr := testutil.Do(s.router, req)

	s.Equal(http.StatusOK, rr.Code)
	s.Equal("not_started", testutil.Decode[map[string]any](s.T(), rr)["status"])
}
