// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// SyncHandler handles the backend poller's pull and acknowledgment requests.
type SyncHandler struct {
	deps Dependencies
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(deps Dependencies) *SyncHandler {
	return &SyncHandler{deps: deps}
}

// HandleSyncData handles GET /api/client/sync-data?since=RFC3339 requests.
func (h *SyncHandler) HandleSyncData(w http.ResponseWriter, r *http.Request) {
	const op = "api.sync_data"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	var since *time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		since = &ts
	}
	writeJSON(w, http.StatusOK, h.deps.Pending(r.Context(), since))
}

// HandleAcknowledge handles POST /api/client/acknowledge requests.
func (h *SyncHandler) HandleAcknowledge(w http.ResponseWriter, r *http.Request) {
	const op = "api.acknowledge"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req acknowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	count, err := h.deps.Acknowledge(r.Context(), *req.CaptureIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, acknowledgeResponse{Message: "captures acknowledged", Count: count})
}

// HandleReload handles POST /api/client/reload-data requests.
func (h *SyncHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.reload_data"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	stats, err := h.deps.Reload(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{
		Message:       "data reloaded from disk",
		TotalCaptures: stats.TotalCaptures,
		LastSync:      stats.LastSync,
	})
}
