// Package imgbackend is the HTTP client for the backend image cache.
package imgbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pokeatlas/syncbridge/internal/domain/model"
	"github.com/pokeatlas/syncbridge/internal/domain/types"
	"github.com/pokeatlas/syncbridge/pkg/logger"
	"github.com/pokeatlas/syncbridge/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout    = 15 * time.Second
	defaultMaxRetries = 2
	baseRetryDelay    = 500 * time.Millisecond
)

// placeholderHeader marks a backend response as a synthesized stand-in
// rather than a real cached asset.
const placeholderHeader = "X-Placeholder"

// Image is a fetched image payload.
type Image struct {
	Data        []byte
	ContentType string
	// Placeholder is true when the backend signalled it has no real
	// asset yet and served a stand-in instead.
	Placeholder bool
}

// Client talks to the backend image cache endpoints.
type Client struct {
	baseURL    string
	maxRetries int
	httpClient *http.Client
	log        logger.Logger
}

// New creates a backend image client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRetries: defaultMaxRetries,
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        nil,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.log == nil {
		c.log = logger.Get().Named("imgbackend")
	}

	return c
}

// FetchImage retrieves the image payload for a pokemon/variant pair.
// Transient failures (network errors, 5xx) are retried with exponential
// backoff; 4xx responses fail immediately.
func (c *Client) FetchImage(ctx context.Context, pokemonID int, imageType model.ImageType) (Image, error) {
	query := url.Values{"image_type": []string{string(imageType)}}
	path := fmt.Sprintf("/pokemon/%d", pokemonID)

	var img Image
	err := c.doWithRetry(ctx, "image", func(ctx context.Context) (retryable bool, err error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
		if err != nil {
			return false, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return true, fmt.Errorf("%w: %w", ErrBackend, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return true, fmt.Errorf("%w: status %d", ErrStatus, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return false, fmt.Errorf("%w: status %d", ErrStatus, resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return true, fmt.Errorf("%w: %w", ErrBackend, err)
		}

		img = Image{
			Data:        data,
			ContentType: resp.Header.Get("Content-Type"),
			Placeholder: strings.EqualFold(resp.Header.Get(placeholderHeader), "true"),
		}
		return false, nil
	})
	return img, err
}

// ImageInfo fetches the backend's per-variant metadata for a pokemon.
func (c *Client) ImageInfo(ctx context.Context, pokemonID int) (types.PokemonImageInfo, error) {
	var info types.PokemonImageInfo
	err := c.getJSON(ctx, "info", fmt.Sprintf("/pokemon/%d/info", pokemonID), &info)
	return info, err
}

// preloadRequest mirrors the backend's POST /preload body.
type preloadRequest struct {
	PokemonIDs []int    `json:"pokemon_ids"`
	ImageTypes []string `json:"image_types,omitempty"`
}

// Preload asks the backend to warm its own cache for a batch of ids.
// Fire-and-forget from the caller's point of view: only request-level
// failures are reported, individual image failures stay on the backend.
func (c *Client) Preload(ctx context.Context, pokemonIDs []int, imageTypes []model.ImageType) error {
	typeNames := make([]string, 0, len(imageTypes))
	for _, it := range imageTypes {
		typeNames = append(typeNames, string(it))
	}

	body, err := json.Marshal(preloadRequest{PokemonIDs: pokemonIDs, ImageTypes: typeNames})
	if err != nil {
		return err
	}

	return c.doWithRetry(ctx, "preload", func(ctx context.Context) (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/preload", bytes.NewReader(body))
		if err != nil {
			return false, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return true, fmt.Errorf("%w: %w", ErrBackend, err)
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode >= http.StatusInternalServerError {
			return true, fmt.Errorf("%w: status %d", ErrStatus, resp.StatusCode)
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return false, fmt.Errorf("%w: status %d", ErrStatus, resp.StatusCode)
		}
		return false, nil
	})
}

// CacheStats fetches the backend's aggregate cache statistics.
func (c *Client) CacheStats(ctx context.Context) (types.ImageCacheStats, error) {
	var stats types.ImageCacheStats
	err := c.getJSON(ctx, "cache_stats", "/cache/stats", &stats)
	return stats, err
}

// getJSON performs a retried GET and decodes result into dest.
func (c *Client) getJSON(ctx context.Context, operation, path string, dest any) error {
	return c.doWithRetry(ctx, operation, func(ctx context.Context) (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return false, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return true, fmt.Errorf("%w: %w", ErrBackend, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return true, fmt.Errorf("%w: status %d", ErrStatus, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return false, fmt.Errorf("%w: status %d", ErrStatus, resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return false, fmt.Errorf("%w: %w", ErrBackend, err)
		}
		return false, nil
	})
}

// doWithRetry runs attempt up to maxRetries+1 times with exponential
// backoff, honoring context cancellation between attempts.
func (c *Client) doWithRetry(ctx context.Context, operation string, attempt func(ctx context.Context) (retryable bool, err error)) error {
	start := time.Now()
	defer func() {
		metrics.RecordImageBackendLatency(float64(time.Since(start).Nanoseconds()) / 1e6)
	}()

	var lastErr error
	for try := 0; try <= c.maxRetries; try++ {
		if ctx.Err() != nil {
			metrics.RecordImageBackendRequest(operation, "canceled")
			return ctx.Err()
		}

		if try > 0 {
			delay := baseRetryDelay * time.Duration(1<<(try-1)) // 500ms, 1s
			c.log.Debug(ctx, "retrying backend request",
				logger.String("operation", operation),
				logger.Int("attempt", try),
				logger.Duration("delay", delay),
			)
			metrics.RecordImageBackendRetry()
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				metrics.RecordImageBackendRequest(operation, "canceled")
				return ctx.Err()
			}
		}

		retryable, err := attempt(ctx)
		if err == nil {
			metrics.RecordImageBackendRequest(operation, "ok")
			return nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	metrics.RecordImageBackendRequest(operation, "error")
	c.log.Warn(ctx, "backend request failed",
		logger.String("operation", operation),
		logger.Error(lastErr),
	)
	return lastErr
}
