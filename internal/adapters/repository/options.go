package repository

import "time"

// Option applies a configuration option to the BoltStore.
type Option func(*BoltStore)

// WithPath sets the bolt database file path. An empty path selects
// memory-only mode with no persistence.
func WithPath(path string) Option {
	return func(s *BoltStore) {
		s.path = path
	}
}

// WithOpenTimeout bounds how long opening the database file may block on
// another process holding the file lock.
func WithOpenTimeout(timeout time.Duration) Option {
	return func(s *BoltStore) {
		if timeout > 0 {
			s.openTimeout = timeout
		}
	}
}
