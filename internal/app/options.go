package service

import (
	"time"

	repository "github.com/pokeatlas/syncbridge/internal/adapters/repository"
	"github.com/pokeatlas/syncbridge/internal/domain/dedupe"
	"github.com/pokeatlas/syncbridge/internal/imagecache"
	"github.com/pokeatlas/syncbridge/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithClientID sets the stable client identity advertised to the backend.
func WithClientID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.clientID = id
		}
	}
}

// WithClientURL sets the URL the backend polls this bridge on.
func WithClientURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.clientURL = url
		}
	}
}

// WithVersion sets the client build tag stamped into capture metadata.
func WithVersion(version string) Option {
	return func(s *Service) {
		if version != "" {
			s.version = version
		}
	}
}

// WithDataPath sets the capture store file. Empty means memory-only.
func WithDataPath(path string) Option {
	return func(s *Service) {
		s.dataPath = path
	}
}

// WithDedupeWindow sets the duplicate-capture window.
func WithDedupeWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.dedupeWindow = window
		}
	}
}

// WithBackendURL sets the sync backend to register with on startup.
// Empty disables registration.
func WithBackendURL(url string) Option {
	return func(s *Service) {
		s.backendURL = url
	}
}

// WithRegisterRetryInterval sets the registration retry cadence.
func WithRegisterRetryInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.registerRetry = interval
		}
	}
}

// WithImageBackendURL sets the image cache backend. Empty disables the
// image mediator; image lookups then always resolve to placeholders.
func WithImageBackendURL(url string) Option {
	return func(s *Service) {
		s.imageBackendURL = url
	}
}

// WithImageCacheTTL sets the local image cache time-to-live.
func WithImageCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.imageCacheTTL = ttl
		}
	}
}

// WithImageTimeout bounds each image backend round trip.
func WithImageTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.imageTimeout = timeout
		}
	}
}

// WithImageRetries sets the image backend retry budget.
func WithImageRetries(retries int) Option {
	return func(s *Service) {
		if retries >= 0 {
			s.imageRetries = retries
		}
	}
}

// WithStore injects a pre-built capture store. Used by tests.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithMatcher injects a pre-built dedupe matcher. Used by tests.
func WithMatcher(m dedupe.Matcher) Option {
	return func(s *Service) {
		if m != nil {
			s.matcher = m
		}
	}
}

// WithMediator injects a pre-built image mediator. Used by tests.
func WithMediator(m *imagecache.Mediator) Option {
	return func(s *Service) {
		if m != nil {
			s.mediator = m
		}
	}
}

// WithClock replaces the service time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
