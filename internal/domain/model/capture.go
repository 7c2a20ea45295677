// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// DefaultUserID identifies the single local user this bridge buffers for.
const DefaultUserID = "user_1"

// Action categorizes a capture event.
type Action string

// Known actions. Unknown values are carried through verbatim so the
// backend can store actions this build does not know about yet.
const (
	ActionCapture Action = "capture"
	ActionRelease Action = "release"
)

// Metadata carries per-record annotations that travel with the event.
type Metadata struct {
	Removed       bool   `json:"removed"`
	ClientVersion string `json:"client_version"`
}

// CaptureRecord is a single buffered capture/release event.
// Fields mirror the wire schema of the sync endpoints.
type CaptureRecord struct {
	CaptureID   string    `json:"capture_id"`
	PokemonID   int       `json:"pokemon_id"`
	PokemonName string    `json:"pokemon_name"`
	Action      Action    `json:"action"`
	Timestamp   time.Time `json:"timestamp"`
	UserID      string    `json:"user_id"`
	Synced      bool      `json:"synced"`
	Metadata    Metadata  `json:"metadata"`
}

// CaptureID synthesizes the record identifier as
// {pokemon_id}_{unix_millis}_{action}. Two different events for the same
// pokemon within the same millisecond collide; this is a known limitation
// of the ID scheme and is kept as-is for backend compatibility.
func CaptureID(pokemonID int, ts time.Time, action Action) string {
	return fmt.Sprintf("%d_%d_%s", pokemonID, ts.UnixMilli(), action)
}

// NewCapture builds a CaptureRecord for the given event. An empty action
// defaults to ActionCapture.
func NewCapture(pokemonID int, pokemonName string, action Action, removed bool, clientVersion string, now time.Time) CaptureRecord {
	if action == "" {
		action = ActionCapture
	}
	return CaptureRecord{
		CaptureID:   CaptureID(pokemonID, now, action),
		PokemonID:   pokemonID,
		PokemonName: pokemonName,
		Action:      action,
		Timestamp:   now,
		UserID:      DefaultUserID,
		Synced:      false,
		Metadata: Metadata{
			Removed:       removed,
			ClientVersion: clientVersion,
		},
	}
}
