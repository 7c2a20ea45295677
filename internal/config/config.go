// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file and env.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":3001".
	Addr string `koanf:"addr"`

	// DataPath locates the capture database file. Empty keeps captures
	// in memory only.
	DataPath string `koanf:"data_path"`

	// ClientID is the stable identity advertised to the backend. Empty
	// generates a random one at startup.
	ClientID string `koanf:"client_id"`

	// ClientURL is the address the backend polls this bridge on.
	ClientURL string `koanf:"client_url"`

	// BackendURL is the sync backend base URL. Empty disables startup
	// registration.
	BackendURL string `koanf:"backend_url"`

	// ImageBackendURL is the image backend base URL. Empty disables the
	// image mediator; image lookups then serve placeholders.
	ImageBackendURL string `koanf:"image_backend_url"`

	// ClientVersion is stamped into capture metadata.
	ClientVersion string `koanf:"client_version"`

	// DedupeWindowMS bounds the duplicate-capture suppression window.
	DedupeWindowMS int `koanf:"dedupe_window_ms"`

	// ImageCacheTTLHours bounds how long a cached image stays valid.
	ImageCacheTTLHours int `koanf:"image_cache_ttl_hours"`

	// ImageTimeoutSeconds caps a single image backend request.
	ImageTimeoutSeconds int `koanf:"image_timeout_seconds"`

	// ImageRetries sets how many times a failed image request is retried.
	ImageRetries int `koanf:"image_retries"`

	// RegisterRetrySeconds sets the backend registration retry interval.
	RegisterRetrySeconds int `koanf:"register_retry_seconds"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":3001",
		DataPath:             "captures.db",
		ClientURL:            "http://localhost:3001",
		ClientVersion:        "1.0.0",
		DedupeWindowMS:       5000,
		ImageCacheTTLHours:   24,
		ImageTimeoutSeconds:  15,
		ImageRetries:         2,
		RegisterRetrySeconds: 30,
	}
}
