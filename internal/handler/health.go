package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/storyloom/internal/db"
	"github.com/templui/storyloom/internal/kvstore"
	"github.com/templui/storyloom/internal/render"
)

const healthProbeKey = "healthz"

type healthHandler struct {
	db    *sqlx.DB
	store kvstore.Store
}

func NewHealthHandler(database *sqlx.DB, store kvstore.Store) *healthHandler {
	return &healthHandler{db: database, store: store}
}

type healthResponse struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks"`
	Duration string            `json:"duration"`
}

// Health pings the database and the key-value store.
func (h *healthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	start := time.Now()

	checks := map[string]string{"database": "ok", "kvstore": "ok"}
	status := http.StatusOK

	err := db.Health(ctx, h.db)
	if err != nil {
		slog.Error("health check failed", "component", "database", "error", err)
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}

	_, err = h.store.GetRaw(ctx, healthProbeKey)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		slog.Error("health check failed", "component", "kvstore", "error", err)
		checks["kvstore"] = "unavailable"
		status = http.StatusServiceUnavailable
	}

	resp := healthResponse{Status: "ok", Checks: checks, Duration: time.Since(start).String()}
	if status != http.StatusOK {
		resp.Status = "degraded"
	}
	render.JSON(w, r, status, resp)
}
