// Package render writes JSON responses and maps domain errors to HTTP status codes.
package render

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/storyloom/internal/ctxkeys"
	"github.com/templui/storyloom/internal/genai"
	"github.com/templui/storyloom/internal/repository"
	"github.com/templui/storyloom/internal/service"
	"github.com/templui/storyloom/internal/studio"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("render json failed", "error", err, "path", ctxkeys.URLPath(r.Context()))
	}
}

func Message(w http.ResponseWriter, r *http.Request, status int, msg string) {
	JSON(w, r, status, ErrorBody{Error: msg})
}

// Error logs err and writes the matching status with a client-safe message.
// Upstream failures are reported with a generic message only.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, body := Classify(err)
	Log(r, err, status)
	JSON(w, r, status, body)
}

// Log records a failed request at error level for 5xx and warn otherwise.
func Log(r *http.Request, err error, status int) {
	attrs := []any{"error", err, "status", status, "path", ctxkeys.URLPath(r.Context())}
	if userID := ctxkeys.UserID(r.Context()); userID != "" {
		attrs = append(attrs, "user_id", userID)
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", attrs...)
	} else {
		slog.Warn("request rejected", attrs...)
	}
}

// Classify returns the status code and response body for err.
func Classify(err error) (int, ErrorBody) {
	var validationErr *service.ValidationError
	var httpErr *genai.HTTPError
	var remoteErr *service.RemoteWriteError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, ErrorBody{Error: "validation failed", Fields: validationErr.Fields}
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, ErrorBody{Error: "validation failed"}
	case errors.Is(err, studio.ErrBusy):
		return http.StatusConflict, ErrorBody{Error: "a generation is already in progress"}
	case errors.Is(err, studio.ErrAlreadyGenerated):
		return http.StatusConflict, ErrorBody{Error: "this asset type was already generated for the story"}
	case errors.Is(err, studio.ErrStoryLocked):
		return http.StatusConflict, ErrorBody{Error: "the story is already saved, reset the studio to start over"}
	case errors.Is(err, studio.ErrNothingToSave):
		return http.StatusConflict, ErrorBody{Error: "generate at least one asset before saving"}
	case errors.Is(err, service.ErrEmailAlreadyExists):
		return http.StatusConflict, ErrorBody{Error: "email already registered"}
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorBody{Error: "invalid email or password"}
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, ErrorBody{Error: "authentication required"}
	case errors.Is(err, service.ErrStoryNotFound),
		errors.Is(err, service.ErrCatalogStoryNotFound),
		errors.Is(err, repository.ErrFileNotFound):
		return http.StatusNotFound, ErrorBody{Error: "not found"}
	case errors.Is(err, service.ErrStorageDisabled):
		return http.StatusServiceUnavailable, ErrorBody{Error: "file uploads are not configured"}
	case errors.As(err, &httpErr), errors.Is(err, genai.ErrEmptyResponse):
		return http.StatusBadGateway, ErrorBody{Error: "the writing assistant is unavailable, please try again"}
	case errors.Is(err, studio.ErrGenerationFailed), errors.As(err, &remoteErr):
		return http.StatusBadGateway, ErrorBody{Error: "could not save your work, please try again"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorBody{Error: "request timed out"}
	default:
		return http.StatusInternalServerError, ErrorBody{Error: "internal server error"}
	}
}

// Decode reads a JSON body into dst. Malformed input becomes a validation error.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		return service.NewValidationError("body", "malformed JSON: "+err.Error())
	}
	return nil
}

const maxBodyBytes = 1 << 20
