package genai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrEmptyResponse is returned when a 2xx response carries no candidate text.
var ErrEmptyResponse = errors.New("no text in generative service response")

// HTTPError is a non-2xx reply. Message is taken from the {"error":{"message"}}
// envelope when present.
type HTTPError struct {
	StatusCode int
	Message    string
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "http error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if msg == "" {
		msg = "Unknown error"
	}
	return fmt.Sprintf("API Error: %d - %s", e.StatusCode, msg)
}

func parseHTTPError(status int, raw []byte) *HTTPError {
	httpErr := &HTTPError{
		StatusCode: status,
		Body:       strings.TrimSpace(string(raw)),
	}

	var env struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err == nil {
		httpErr.Message = strings.TrimSpace(env.Error.Message)
		httpErr.Status = strings.TrimSpace(env.Error.Status)
	}

	return httpErr
}
