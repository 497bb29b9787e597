package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/vidforge/vidforge/internal/service"
)

// maxCookieBody caps the accepted export size. Real exports are a few
// kilobytes; anything near the cap is not a cookie file.
const maxCookieBody = 1 << 20

// CookieHandler handles credential install and status requests.
type CookieHandler struct {
	svc    *service.CookieService
	logger *slog.Logger
}

// NewCookieHandler creates a new cookie handler.
func NewCookieHandler(svc *service.CookieService, logger *slog.Logger) *CookieHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CookieHandler{svc: svc, logger: logger}
}

// InstallResponse is returned after a credential install.
type InstallResponse struct {
	CookieCount int      `json:"cookie_count"`
	Resubmitted []string `json:"resubmitted_jobs,omitempty"`
}

// Install handles POST /api/v1/cookies. The body is the structured
// JSON export straight from a browser extension.
func (h *CookieHandler) Install(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCookieBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	result, err := h.svc.Install(r.Context(), body)
	if err != nil {
		h.logger.Warn("cookie install rejected", "error", err)
		writeError(w, http.StatusBadRequest, "invalid cookie export")
		return
	}

	resp := InstallResponse{CookieCount: result.CookieCount}
	for _, id := range result.Resubmitted {
		resp.Resubmitted = append(resp.Resubmitted, string(id))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Status handles GET /api/v1/cookies
func (h *CookieHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}
