package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// CollectionExpander lists item URLs from a profile or collection page.
type CollectionExpander interface {
	ListItems(ctx context.Context, handle string, count int, textFilter string, newestFirst bool) []string
}

// CollectionHandler handles collection expansion requests.
type CollectionHandler struct {
	expander CollectionExpander
	logger   *slog.Logger
}

// NewCollectionHandler creates a new collection handler.
func NewCollectionHandler(expander CollectionExpander, logger *slog.Logger) *CollectionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectionHandler{expander: expander, logger: logger}
}

// ExpandRequest is the JSON request body for collection expansion.
type ExpandRequest struct {
	Handle     string `json:"handle"`
	Count      int    `json:"count"`
	TextFilter string `json:"text_filter,omitempty"`
	// NewestFirst keeps page order; otherwise items come back
	// oldest-first for sequential processing.
	NewestFirst bool `json:"newest_first"`
}

// ExpandResponse lists the resolved item URLs.
type ExpandResponse struct {
	Items []string `json:"items"`
	Count int      `json:"count"`
}

// Expand handles POST /api/v1/collections/expand
func (h *CollectionHandler) Expand(w http.ResponseWriter, r *http.Request) {
	var req ExpandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Handle == "" {
		writeError(w, http.StatusBadRequest, "missing handle")
		return
	}
	if req.Count <= 0 {
		writeError(w, http.StatusBadRequest, "count must be positive")
		return
	}

	items := h.expander.ListItems(r.Context(), req.Handle, req.Count, req.TextFilter, req.NewestFirst)
	if items == nil {
		items = []string{}
	}
	writeJSON(w, http.StatusOK, ExpandResponse{Items: items, Count: len(items)})
}
