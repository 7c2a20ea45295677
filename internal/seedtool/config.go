package seedtool

import "time"

// Config holds configuration for the capture seeding run
type Config struct {
	BaseURL      string        // Base URL of the bridge
	NumCaptures  int           // Number of captures to generate
	DuplicatePct int           // Percentage of captures submitted twice back-to-back
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	LogFile      string        // Log file for seeding output
	Verbose      bool          // Enable verbose logging
}

// Capture represents a capture event to be submitted
type Capture struct {
	PokemonID   int    `json:"pokemon_id"`
	PokemonName string `json:"pokemon_name"`
	Action      string `json:"action"`
	Removed     bool   `json:"removed"`
}

// AddResponse represents the response from capture submission
type AddResponse struct {
	Message    string `json:"message"`
	Duplicated bool   `json:"duplicated"`
}

// BridgeStats mirrors the bridge's stats endpoint
type BridgeStats struct {
	TotalCaptures  int    `json:"total_captures"`
	PendingSync    int    `json:"pending_sync"`
	SyncedCaptures int    `json:"synced_captures"`
	ClientID       string `json:"client_id"`
}

// Stats holds seeding statistics
type Stats struct {
	CapturesGenerated  int
	CapturesSubmitted  int
	CapturesSuccessful int
	CapturesDuplicate  int
	CapturesFailed     int
	PendingReported    int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
