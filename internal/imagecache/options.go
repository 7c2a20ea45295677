package imagecache

import (
	"time"

	"github.com/pokeatlas/syncbridge/pkg/logger"
)

// mediatorConfig collects cache construction parameters that are not
// fields on the Mediator itself.
type mediatorConfig struct {
	ttl time.Duration
	now func() time.Time
}

// Option applies a configuration option to the Mediator.
type Option func(*Mediator, *mediatorConfig)

// WithTTL sets the cache entry time-to-live. Non-positive values keep the
// default of 24 hours.
func WithTTL(ttl time.Duration) Option {
	return func(_ *Mediator, cfg *mediatorConfig) {
		if ttl > 0 {
			cfg.ttl = ttl
		}
	}
}

// WithClock replaces the cache's time source.
func WithClock(now func() time.Time) Option {
	return func(_ *Mediator, cfg *mediatorConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithBlobDir sets the directory blob files are written to. When unset
// the mediator creates and owns a temp directory.
func WithBlobDir(dir string) Option {
	return func(m *Mediator, _ *mediatorConfig) {
		m.blobDir = dir
	}
}

// WithLogger sets a custom logger for the mediator.
func WithLogger(log logger.Logger) Option {
	return func(m *Mediator, _ *mediatorConfig) {
		if log != nil {
			m.log = log
		}
	}
}
