// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/pokeatlas/syncbridge/internal/domain/model"
)

// CaptureHandler handles capture ingestion and history requests.
type CaptureHandler struct {
	deps Dependencies
}

// NewCaptureHandler creates a new capture handler.
func NewCaptureHandler(deps Dependencies) *CaptureHandler {
	return &CaptureHandler{deps: deps}
}

// HandleAddCapture handles POST /api/client/add-capture requests.
func (h *CaptureHandler) HandleAddCapture(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_capture"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req addCaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	rec, duplicated, err := h.deps.AddCapture(r.Context(), req.PokemonID, req.PokemonName, model.Action(req.Action), req.Removed)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	msg := "capture buffered"
	if duplicated {
		msg = "duplicate capture ignored"
	}
	writeJSON(w, http.StatusOK, captureResponse{Message: msg, Capture: rec, Duplicated: duplicated})
}

// HandleAllCaptures handles GET /api/client/all-captures requests.
func (h *CaptureHandler) HandleAllCaptures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.AllCaptures(r.Context()))
}
