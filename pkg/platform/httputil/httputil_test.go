package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "formflow/pkg/domain-errors"
)

func TestWriteErrorEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantDesc   string
	}{
		{
			name:       "internal error omits description",
			err:        dErrors.New(dErrors.CodeInternal, "db failed"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
		{
			name:       "malformed answer",
			err:        dErrors.New(dErrors.CodeBadRequest, "answer is not valid JSON"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
			wantDesc:   "answer is not valid JSON",
		},
		{
			name:       "broken question keeps generic description",
			err:        dErrors.Wrap(errors.New("unexpected end of JSON input"), dErrors.CodeSchema, "question could not be loaded"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "invalid_question",
			wantDesc:   "question could not be loaded",
		},
		{
			name:       "index down",
			err:        dErrors.New(dErrors.CodeUnavailable, "uniqueness index unavailable"),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "unavailable",
			wantDesc:   "uniqueness index unavailable",
		},
		{
			name:       "uncoded error is internal",
			err:        errors.New("raw"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			var body map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body["error"])
			desc, ok := body["error_description"]
			assert.Equal(t, tt.wantDesc != "", ok)
			assert.Equal(t, tt.wantDesc, desc)
		})
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeBadRequest:   http.StatusBadRequest,
		dErrors.CodeInvalidInput: http.StatusBadRequest,
		dErrors.CodeValidation:   http.StatusUnprocessableEntity,
		dErrors.CodeNotFound:     http.StatusNotFound,
		dErrors.CodeConflict:     http.StatusConflict,
		dErrors.CodeTimeout:      http.StatusGatewayTimeout,
		dErrors.CodeUnavailable:  http.StatusServiceUnavailable,
		dErrors.CodeSchema:       http.StatusInternalServerError,
		dErrors.CodeInternal:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, StatusFor(code), string(code))
	}
}
