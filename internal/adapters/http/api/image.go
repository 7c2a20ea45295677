// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/pokeatlas/syncbridge/internal/domain/model"
	"github.com/pokeatlas/syncbridge/internal/domain/types"
)

// ImageHandler handles image resolution and cache mediation requests.
type ImageHandler struct {
	deps Dependencies
}

// NewImageHandler creates a new image handler.
func NewImageHandler(deps Dependencies) *ImageHandler {
	return &ImageHandler{deps: deps}
}

// imageResponse is the resolved reference for GET /api/client/image/{id}.
type imageResponse struct {
	PokemonID int             `json:"pokemon_id"`
	ImageType model.ImageType `json:"image_type"`
	URL       string          `json:"url"`
}

// preloadRequest mirrors the JSON body of POST /api/client/preload.
type preloadRequest struct {
	PokemonIDs []int    `json:"pokemon_ids"`
	ImageTypes []string `json:"image_types"`
}

type cacheStatsResponse struct {
	Backend types.ImageCacheStats `json:"backend"`
	Local   types.LocalCacheStats `json:"local"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// HandleImage handles GET /api/client/image/{id}?image_type= requests and
// the nested GET /api/client/image/{id}/info form. Resolution never fails;
// unknown ids and backend outages resolve to a placeholder reference.
func (h *ImageHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	const op = "api.image"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/client/image/")
	idStr, tail, nested := strings.Cut(rest, "/")
	if nested && tail != "info" {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if nested {
		info, err := h.deps.GetImageInfo(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusBadGateway, "upstream_error", WrapKind(op, ErrUpstream, err))
			return
		}
		writeJSON(w, http.StatusOK, info)
		return
	}

	imageType := model.ImageType(r.URL.Query().Get("image_type"))
	if imageType == "" {
		imageType = model.DefaultImageType
	}
	url := h.deps.GetImageURL(r.Context(), id, imageType)
	writeJSON(w, http.StatusOK, imageResponse{PokemonID: id, ImageType: imageType, URL: url})
}

// HandlePreload handles POST /api/client/preload requests.
func (h *ImageHandler) HandlePreload(w http.ResponseWriter, r *http.Request) {
	const op = "api.preload"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req preloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.PokemonIDs) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	imageTypes := make([]model.ImageType, 0, len(req.ImageTypes))
	for _, t := range req.ImageTypes {
		imageTypes = append(imageTypes, model.ImageType(t))
	}
	if err := h.deps.PreloadImages(r.Context(), req.PokemonIDs, imageTypes); err != nil {
		writeError(w, http.StatusBadGateway, "upstream_error", WrapKind(op, ErrUpstream, err))
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "preload requested"})
}

// HandleCacheStats handles GET /api/client/image-cache/stats requests.
func (h *ImageHandler) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	backend, local := h.deps.ImageCacheStats(r.Context())
	writeJSON(w, http.StatusOK, cacheStatsResponse{Backend: backend, Local: local})
}

// HandleCacheClear handles POST /api/client/image-cache/clear requests.
func (h *ImageHandler) HandleCacheClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	h.deps.ClearImageCache(r.Context())
	writeJSON(w, http.StatusOK, messageResponse{Message: "local image cache cleared"})
}
