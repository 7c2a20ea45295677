// Package registry announces this client to the sync backend so its
// poll loop can discover the bridge's pull endpoints.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pokeatlas/syncbridge/pkg/logger"
	"github.com/pokeatlas/syncbridge/pkg/metrics"
)

// Default registrar configuration constants.
const (
	defaultRequestTimeout = 10 * time.Second
	defaultRetryInterval  = 30 * time.Second
	registerPath          = "/api/clients/register"
)

// registration is the body posted to the backend.
type registration struct {
	ClientID     string   `json:"client_id"`
	ClientURL    string   `json:"client_url"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

// Registrar posts this client's reachable URL and capabilities to the
// backend. Registration failure is never fatal: the bridge keeps serving
// its pull endpoints and the backend's own retry loop can still find it.
type Registrar struct {
	backendURL    string
	clientID      string
	clientURL     string
	version       string
	capabilities  []string
	retryInterval time.Duration
	httpClient    *http.Client
	log           logger.Logger
}

// New creates a Registrar targeting backendURL.
func New(backendURL, clientID, clientURL, version string, opts ...Option) *Registrar {
	r := &Registrar{
		backendURL:    strings.TrimRight(backendURL, "/"),
		clientID:      clientID,
		clientURL:     clientURL,
		version:       version,
		capabilities:  []string{"pull-sync", "acknowledge", "full-resync"},
		retryInterval: defaultRetryInterval,
		httpClient:    &http.Client{Timeout: defaultRequestTimeout},
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.log == nil {
		r.log = logger.Get().Named("registry")
	}

	return r
}

// Register performs a single registration attempt.
func (r *Registrar) Register(ctx context.Context) error {
	metrics.RecordRegistrationAttempt()

	body, err := json.Marshal(registration{
		ClientID:     r.clientID,
		ClientURL:    r.clientURL,
		Version:      r.version,
		Capabilities: r.capabilities,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.backendURL+registerPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		metrics.RecordRegistrationFailure()
		return fmt.Errorf("%w: %w", ErrRegister, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		metrics.RecordRegistrationFailure()
		return fmt.Errorf("%w: status %d", ErrRegister, resp.StatusCode)
	}

	r.log.Info(ctx, "registered with backend",
		logger.String("backend", r.backendURL),
		logger.String("client_id", r.clientID),
	)
	return nil
}

// Run registers in the background, retrying on the configured interval
// until the first success or until ctx is canceled.
func (r *Registrar) Run(ctx context.Context) {
	err := r.Register(ctx)
	if err == nil {
		return
	}
	r.log.Warn(ctx, "registration failed, will retry",
		logger.Duration("retry_in", r.retryInterval),
		logger.Error(err),
	)

	ticker := time.NewTicker(r.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Register(ctx); err == nil {
				return
			}
			r.log.Warn(ctx, "registration failed, will retry",
				logger.Duration("retry_in", r.retryInterval),
			)
		}
	}
}
