// Package dedupe implements the duplicate-capture window check.
//
// Rapid repeated UI events (a press listener plus a click listener firing
// for the same tap) must not produce two logical capture events, so an add
// is rejected as a duplicate when an unsynced record with the same
// (pokemon_id, action, removed) fingerprint exists inside the window.
package dedupe

import (
	"context"
	"time"

	"github.com/pokeatlas/syncbridge/internal/domain/model"
)

// DefaultWindow is how long a fingerprint blocks a repeated add.
const DefaultWindow = 5000 * time.Millisecond

// Matcher finds recent duplicates in an ordered capture log.
type Matcher interface {
	// FindDuplicate scans records (stored oldest first) for an unsynced
	// record with the same fingerprint created less than the window
	// before now. Returns the matched record and true on a hit.
	FindDuplicate(ctx context.Context, records []model.CaptureRecord, pokemonID int, action model.Action, removed bool, now time.Time) (model.CaptureRecord, bool)

	// Window returns the configured duplicate window.
	Window() time.Duration
}

// windowMatcher implements Matcher with a fixed time window and no state
// of its own; the capture log is the source of truth, so an acknowledged
// record stops blocking repeats immediately.
type windowMatcher struct {
	window time.Duration
}

// NewWindowMatcher creates a Matcher with configuration options.
func NewWindowMatcher(opts ...Option) Matcher {
	m := &windowMatcher{
		window: DefaultWindow,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *windowMatcher) FindDuplicate(ctx context.Context, records []model.CaptureRecord, pokemonID int, action model.Action, removed bool, now time.Time) (model.CaptureRecord, bool) {
	if action == "" {
		action = model.ActionCapture
	}

	// Newest records are appended last; scan backwards and stop at the
	// first record that already falls outside the window.
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if now.Sub(r.Timestamp) >= m.window {
			break
		}
		if r.Synced {
			continue
		}
		if r.PokemonID == pokemonID && r.Action == action && r.Metadata.Removed == removed {
			return r, true
		}
	}

	return model.CaptureRecord{}, false
}

func (m *windowMatcher) Window() time.Duration {
	return m.window
}
