package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yegors/voxrelay/internal/bot"
	"github.com/yegors/voxrelay/internal/session"
	"github.com/yegors/voxrelay/pkg/logger"
)

// Handler serves the operational status API
type Handler struct {
	stats     *bot.Stats
	store     session.Store
	version   string
	startedAt time.Time
	logger    *logger.Logger
}

// NewHandler creates a status API handler
func NewHandler(stats *bot.Stats, store session.Store, version string, log *logger.Logger) *Handler {
	return &Handler{
		stats:     stats,
		store:     store,
		version:   version,
		startedAt: time.Now(),
		logger:    log.Named("api"),
	}
}

// Routes builds the status API router
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.GetHealth)
		r.Get("/stats", h.GetStats)
	})
	return r
}

// GetHealth reports process liveness, version, and uptime
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]interface{}{
		"status":         "ok",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	})
}

// GetStats reports pipeline counters and the session count
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Count()
	if err != nil {
		h.logger.Error("Failed to count sessions", logger.Error(err))
		http.Error(w, "failed to count sessions", http.StatusInternalServerError)
		return
	}

	snapshot := h.stats.Snapshot()
	h.writeJSON(w, map[string]interface{}{
		"sessions":                 sessions,
		"transcriptions_completed": snapshot.TranscriptionsCompleted,
		"transcriptions_failed":    snapshot.TranscriptionsFailed,
		"denied_events":            snapshot.DeniedEvents,
		"bytes_delivered":          snapshot.BytesDelivered,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", logger.Error(err))
	}
}
