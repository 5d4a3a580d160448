package render

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/storyloom/internal/genai"
	"github.com/templui/storyloom/internal/service"
	"github.com/templui/storyloom/internal/studio"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", service.NewValidationError("title", "is required"), http.StatusBadRequest},
		{"busy", studio.ErrBusy, http.StatusConflict},
		{"already generated", fmt.Errorf("generate: %w", studio.ErrAlreadyGenerated), http.StatusConflict},
		{"locked", studio.ErrStoryLocked, http.StatusConflict},
		{"not found", service.ErrStoryNotFound, http.StatusNotFound},
		{"upstream http", fmt.Errorf("story: %w", &genai.HTTPError{StatusCode: 500, Message: "boom"}), http.StatusBadGateway},
		{"empty response", genai.ErrEmptyResponse, http.StatusBadGateway},
		{"remote write", &service.RemoteWriteError{Table: "stories", Err: errors.New("disk full")}, http.StatusBadGateway},
		{"generation failed", fmt.Errorf("%w: %w", studio.ErrGenerationFailed, errors.New("x")), http.StatusBadGateway},
		{"storage disabled", service.ErrStorageDisabled, http.StatusServiceUnavailable},
		{"unknown", errors.New("surprise"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := Classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestErrorHidesUpstreamDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/app/writer/story", nil)

	Error(rec, req, &genai.HTTPError{StatusCode: 403, Message: "API key leaked-secret invalid"})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "leaked-secret")
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestErrorIncludesValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, httptest.NewRequest(http.MethodPost, "/", nil), service.NewValidationError("content", "is required"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"validation failed","fields":{"content":"is required"}}`, rec.Body.String())
}

func TestDecode(t *testing.T) {
	var dst struct {
		Title string `json:"title"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"T"}`))
	require.NoError(t, Decode(req, &dst))
	assert.Equal(t, "T", dst.Title)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
	assert.ErrorIs(t, Decode(req, &dst), service.ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"other":1}`))
	assert.ErrorIs(t, Decode(req, &dst), service.ErrValidation)
}
