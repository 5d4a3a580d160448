package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/templui/storyloom/internal/metrics"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer (SSE flushing).
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Paths to skip logging
var skipLoggingPaths = []string{
	"/metrics",
	"/healthz",
	"/favicon.ico",
}

type routeKey struct{}

// matchedRoute carries the mux pattern from CaptureRoute back out to
// RequestLogging, which runs outside middleware that copy the request.
type matchedRoute struct {
	pattern string
}

// RequestLogging logs HTTP requests with method, path, status, and duration
// and records them in the request duration histogram. Place it before any
// middleware that can reject a request, and CaptureRoute directly around the
// mux so the matched route is known.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range skipLoggingPaths {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			written:        false,
		}
		route := &matchedRoute{}
		r = r.WithContext(context.WithValue(r.Context(), routeKey{}, route))

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		metrics.ObserveHTTP(r.Method, route.pattern, rw.statusCode, duration)

		level := slog.LevelInfo
		if rw.statusCode >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", route.pattern,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// CaptureRoute records the pattern the mux matched for RequestLogging.
func CaptureRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if route, ok := r.Context().Value(routeKey{}).(*matchedRoute); ok {
			route.pattern = r.Pattern
		}
	})
}
