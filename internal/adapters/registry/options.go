package registry

import (
	"net/http"
	"time"

	"github.com/pokeatlas/syncbridge/pkg/logger"
)

// Option applies a configuration option to the Registrar.
type Option func(*Registrar)

// WithRetryInterval sets how long Run waits between attempts.
func WithRetryInterval(interval time.Duration) Option {
	return func(r *Registrar) {
		if interval > 0 {
			r.retryInterval = interval
		}
	}
}

// WithCapabilities replaces the advertised capability set.
func WithCapabilities(capabilities []string) Option {
	return func(r *Registrar) {
		if len(capabilities) > 0 {
			r.capabilities = capabilities
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *Registrar) {
		if hc != nil {
			r.httpClient = hc
		}
	}
}

// WithLogger sets a custom logger for the registrar.
func WithLogger(log logger.Logger) Option {
	return func(r *Registrar) {
		if log != nil {
			r.log = log
		}
	}
}
