// Package dedupe implements the duplicate-capture window check.
package dedupe

import "time"

// Option applies a configuration option to the windowMatcher.
type Option func(*windowMatcher)

// WithWindow sets the duplicate window. Non-positive values keep the
// default.
func WithWindow(window time.Duration) Option {
	return func(m *windowMatcher) {
		if window > 0 {
			m.window = window
		}
	}
}
