// Package types contains common read shapes shared across the application.
package types

import (
	"time"

	"github.com/pokeatlas/syncbridge/internal/domain/model"
)

// SyncData is the payload served to the backend poller: pending captures
// plus enough identity for the backend to acknowledge against this client.
type SyncData struct {
	UserID       string                `json:"user_id"`
	ClientURL    string                `json:"client_url"`
	Captures     []model.CaptureRecord `json:"captures"`
	LastSync     *time.Time            `json:"last_sync"`
	TotalPending int                   `json:"total_pending"`
}

// AllCaptures is the full-history payload used for full resyncs.
type AllCaptures struct {
	UserID        string                `json:"user_id"`
	ClientURL     string                `json:"client_url"`
	Captures      []model.CaptureRecord `json:"captures"`
	LastSync      *time.Time            `json:"last_sync"`
	TotalCaptures int                   `json:"total_captures"`
}

// Health is the static identity served on the health endpoint.
type Health struct {
	Status    string    `json:"status"`
	ClientID  string    `json:"client_id"`
	ClientURL string    `json:"client_url"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Stats summarizes the buffer state for observability consumers.
type Stats struct {
	TotalCaptures  int        `json:"total_captures"`
	PendingSync    int        `json:"pending_sync"`
	SyncedCaptures int        `json:"synced_captures"`
	LastSync       *time.Time `json:"last_sync"`
	ClientID       string     `json:"client_id"`
}

// ImageVariantInfo describes one variant's state on the image backend.
type ImageVariantInfo struct {
	Available        bool       `json:"available"`
	SizeBytes        int64      `json:"size_bytes"`
	DownloadAttempts int        `json:"download_attempts"`
	LastAttempt      *time.Time `json:"last_attempt,omitempty"`
}

// PokemonImageInfo is the backend's per-pokemon image metadata.
type PokemonImageInfo struct {
	PokemonID int                         `json:"pokemon_id"`
	Variants  map[string]ImageVariantInfo `json:"variants"`
}

// ImageCacheStats is the backend's aggregate cache statistics. The zero
// value doubles as the degraded response when the backend is unreachable.
type ImageCacheStats struct {
	TotalImages      int     `json:"total_images"`
	CachedImages     int     `json:"cached_images"`
	CacheSizeBytes   int64   `json:"cache_size_bytes"`
	HitRate          float64 `json:"hit_rate"`
	PendingDownloads int     `json:"pending_downloads"`
	FailedDownloads  int     `json:"failed_downloads"`
}

// LocalCacheStats describes the in-process image cache, derived purely
// from memory.
type LocalCacheStats struct {
	Size   int        `json:"size"`
	Oldest *time.Time `json:"oldest,omitempty"`
	Newest *time.Time `json:"newest,omitempty"`
}
