package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/vidforge/vidforge/internal/repository"
	"github.com/vidforge/vidforge/pkg/capability"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	jobRepo repository.JobRepository
	caps    capability.Capabilities
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(jobRepo repository.JobRepository, caps capability.Capabilities) *HealthHandler {
	return &HealthHandler{jobRepo: jobRepo, caps: caps}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Queue     *repository.QueueStats `json:"queue,omitempty"`
	Tools     map[string]bool        `json:"tools,omitempty"`
}

// Live handles GET /health - liveness probe.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready - readiness probe.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.jobRepo.Stats(ctx)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "error",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Queue:     stats,
		Tools: map[string]bool{
			"acquire_tool": h.caps.HasAcquireTool(),
			"ffmpeg":       h.caps.HasFFmpeg(),
			"ffprobe":      h.caps.HasFFprobe(),
			"browser":      h.caps.HasBrowser(),
		},
	})
}
