package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if SYNCBRIDGE_CONFIG is set
//  3. env (prefix SYNCBRIDGE_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("SYNCBRIDGE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SYNCBRIDGE_ADDR, SYNCBRIDGE_DATA_PATH, ...
	// Map env keys like SYNCBRIDGE_DATA_PATH -> data_path (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("SYNCBRIDGE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "syncbridge_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DedupeWindowMS <= 0:
		return fmt.Errorf("%w: dedupe_window_ms must be positive", ErrInvalidConfig)
	case c.ImageCacheTTLHours <= 0:
		return fmt.Errorf("%w: image_cache_ttl_hours must be positive", ErrInvalidConfig)
	case c.ImageTimeoutSeconds <= 0:
		return fmt.Errorf("%w: image_timeout_seconds must be positive", ErrInvalidConfig)
	case c.ImageRetries < 0:
		return fmt.Errorf("%w: image_retries must not be negative", ErrInvalidConfig)
	case c.RegisterRetrySeconds <= 0:
		return fmt.Errorf("%w: register_retry_seconds must be positive", ErrInvalidConfig)
	}
	return nil
}
