package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vidforge/vidforge/internal/domain"
	"github.com/vidforge/vidforge/internal/service"
)

// AcquisitionHandler handles acquisition-related HTTP requests.
type AcquisitionHandler struct {
	svc    *service.AcquireService
	logger *slog.Logger
}

// NewAcquisitionHandler creates a new acquisition handler.
func NewAcquisitionHandler(svc *service.AcquireService, logger *slog.Logger) *AcquisitionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AcquisitionHandler{svc: svc, logger: logger}
}

// SubmitRequest is the JSON request body for acquisition submission.
type SubmitRequest struct {
	URL    string `json:"url"`
	UserID string `json:"user_id,omitempty"`
}

// SubmitResponse is the JSON response after submission.
type SubmitResponse struct {
	JobID    string `json:"job_id"`
	Platform string `json:"platform"`
	Status   string `json:"status"`
}

// JobResponse represents a job in get/list responses.
type JobResponse struct {
	JobID     string    `json:"job_id"`
	URL       string    `json:"url"`
	Platform  string    `json:"platform"`
	Status    string    `json:"status"`
	Attempts  int       `json:"attempts"`
	Error     string    `json:"error,omitempty"`
	Strategy  string    `json:"strategy,omitempty"`
	FilePath  string    `json:"file_path,omitempty"`
	ThumbPath string    `json:"thumb_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryResponse represents one finished acquisition record.
type HistoryResponse struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Platform   string    `json:"platform"`
	Strategy   string    `json:"strategy,omitempty"`
	FilePath   string    `json:"file_path,omitempty"`
	SizeBytes  int64     `json:"size_bytes"`
	Duration   float64   `json:"duration_seconds"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// Submit handles POST /api/v1/acquisitions
func (h *AcquisitionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.svc.Submit(r.Context(), req.URL, req.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedURL) {
			writeError(w, http.StatusBadRequest, "unsupported source URL")
			return
		}
		h.logger.Error("submit failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to submit acquisition")
		return
	}

	writeJSON(w, http.StatusAccepted, SubmitResponse{
		JobID:    string(resp.JobID),
		Platform: string(resp.Platform),
		Status:   string(resp.Status),
	})
}

// Get handles GET /api/v1/acquisitions/{jobID}
func (h *AcquisitionHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "missing job ID")
		return
	}

	job, err := h.svc.Job(r.Context(), domain.JobID(jobID))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		h.logger.Error("get failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get job")
		return
	}

	writeJSON(w, http.StatusOK, toJobResponse(job))
}

// List handles GET /api/v1/acquisitions
func (h *AcquisitionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)

	jobs, err := h.svc.Jobs(r.Context(), limit)
	if err != nil {
		h.logger.Error("list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	out := make([]JobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, toJobResponse(job))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": out})
}

// History handles GET /api/v1/history
func (h *AcquisitionHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)

	records, err := h.svc.History(r.Context(), limit)
	if err != nil {
		h.logger.Error("history failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}

	out := make([]HistoryResponse, 0, len(records))
	for _, acq := range records {
		out = append(out, HistoryResponse{
			ID:         acq.ID,
			URL:        acq.URL,
			Platform:   string(acq.Platform),
			Strategy:   acq.Strategy,
			FilePath:   acq.FilePath,
			SizeBytes:  acq.SizeBytes,
			Duration:   acq.Duration,
			Error:      acq.Err,
			FinishedAt: acq.FinishedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"acquisitions": out})
}

// ServeFile handles GET /api/v1/acquisitions/{jobID}/file
func (h *AcquisitionHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := h.svc.Job(r.Context(), domain.JobID(jobID))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get job")
		return
	}

	if job.Status != domain.JobStatusCompleted || job.Result == nil {
		writeError(w, http.StatusConflict, "job has no completed file")
		return
	}

	http.ServeFile(w, r, job.Result.FilePath)
}

func toJobResponse(job *domain.Job) JobResponse {
	resp := JobResponse{
		JobID:     string(job.ID),
		URL:       job.Request.URL,
		Platform:  string(job.Request.Platform),
		Status:    string(job.Status),
		Attempts:  job.Attempts,
		Error:     job.LastError,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
	if job.Result != nil {
		resp.Strategy = job.Result.Strategy
		resp.FilePath = job.Result.FilePath
		resp.ThumbPath = job.Result.ThumbPath
	}
	return resp
}

func parseLimit(r *http.Request, def int) int {
	limit := def
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}
	return limit
}
