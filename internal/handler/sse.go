package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// eventStream writes Server-Sent Events. Headers are sent with the first
// event so a request that fails before producing any event can still get a
// regular JSON error response.
type eventStream struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	started bool
}

func newEventStream(w http.ResponseWriter) *eventStream {
	return &eventStream{w: w, rc: http.NewResponseController(w)}
}

func wantsEventStream(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

func (s *eventStream) start() {
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
	s.started = true
}

func (s *eventStream) send(event string, v any) {
	if !s.started {
		s.start()
	}

	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("sse encode failed", "error", err, "event", event)
		return
	}

	_, err = fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data)
	if err != nil {
		slog.Debug("sse write failed", "error", err, "event", event)
		return
	}

	err = s.rc.Flush()
	if err != nil && !errors.Is(err, http.ErrNotSupported) {
		slog.Debug("sse flush failed", "error", err, "event", event)
	}
}
