// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/pokeatlas/syncbridge/internal/domain/model"
	"github.com/pokeatlas/syncbridge/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Capture buffer operations.
	AddCapture(ctx context.Context, pokemonID int, pokemonName string, action model.Action, removed bool) (model.CaptureRecord, bool, error)
	Pending(ctx context.Context, since *time.Time) types.SyncData
	AllCaptures(ctx context.Context) types.AllCaptures
	Acknowledge(ctx context.Context, captureIDs []string) (int, error)
	Reload(ctx context.Context) (types.Stats, error)
	Health(ctx context.Context) types.Health
	Stats(ctx context.Context) types.Stats

	// Image mediation operations.
	GetImageURL(ctx context.Context, pokemonID int, imageType model.ImageType) string
	GetImageInfo(ctx context.Context, pokemonID int) (types.PokemonImageInfo, error)
	PreloadImages(ctx context.Context, pokemonIDs []int, imageTypes []model.ImageType) error
	ImageCacheStats(ctx context.Context) (types.ImageCacheStats, types.LocalCacheStats)
	ClearImageCache(ctx context.Context)
}

// Server wires HTTP routes for the client sync API.
type Server struct {
	healthHandler  *HealthHandler
	captureHandler *CaptureHandler
	syncHandler    *SyncHandler
	imageHandler   *ImageHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(deps),
		captureHandler: NewCaptureHandler(deps),
		syncHandler:    NewSyncHandler(deps),
		imageHandler:   NewImageHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/api/client/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("/api/client/stats", MetricsMiddleware(s.healthHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/client/add-capture", MetricsMiddleware(s.captureHandler.HandleAddCapture, "add_capture"))
	mux.HandleFunc("/api/client/all-captures", MetricsMiddleware(s.captureHandler.HandleAllCaptures, "all_captures"))
	mux.HandleFunc("/api/client/sync-data", MetricsMiddleware(s.syncHandler.HandleSyncData, "sync_data"))
	mux.HandleFunc("/api/client/acknowledge", MetricsMiddleware(s.syncHandler.HandleAcknowledge, "acknowledge"))
	mux.HandleFunc("/api/client/reload-data", MetricsMiddleware(s.syncHandler.HandleReload, "reload_data"))
	mux.HandleFunc("/api/client/preload", MetricsMiddleware(s.imageHandler.HandlePreload, "preload"))
	mux.HandleFunc("/api/client/image-cache/stats", MetricsMiddleware(s.imageHandler.HandleCacheStats, "image_cache_stats"))
	mux.HandleFunc("/api/client/image-cache/clear", MetricsMiddleware(s.imageHandler.HandleCacheClear, "image_cache_clear"))
	mux.HandleFunc("/api/client/image/", MetricsMiddleware(s.imageHandler.HandleImage, "image"))
}

// addCaptureRequest mirrors the JSON body of POST /api/client/add-capture.
type addCaptureRequest struct {
	PokemonID   int    `json:"pokemon_id"`
	PokemonName string `json:"pokemon_name"`
	Action      string `json:"action"`
	Removed     bool   `json:"removed"`
}

func (a addCaptureRequest) validate() error {
	switch {
	case a.PokemonID <= 0:
		return errors.New("missing or invalid pokemon_id")
	case strings.TrimSpace(a.PokemonName) == "":
		return errors.New("missing pokemon_name")
	}
	return nil
}

// acknowledgeRequest mirrors the JSON body of POST /api/client/acknowledge.
// A pointer field distinguishes a missing capture_ids key from an empty list.
type acknowledgeRequest struct {
	CaptureIDs *[]string `json:"capture_ids"`
}

func (a acknowledgeRequest) validate() error {
	if a.CaptureIDs == nil {
		return errors.New("capture_ids must be a list of capture ids")
	}
	return nil
}

type captureResponse struct {
	Message    string              `json:"message"`
	Capture    model.CaptureRecord `json:"capture"`
	Duplicated bool                `json:"duplicated,omitempty"`
}

type acknowledgeResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type reloadResponse struct {
	Message       string     `json:"message"`
	TotalCaptures int        `json:"total_captures"`
	LastSync      *time.Time `json:"last_sync"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
