package seedtool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitCaptures submits captures concurrently using worker pools
func submitCaptures(ctx context.Context, config *Config, captures []Capture, stats *Stats) error {
	log.Printf("submitting %d captures with %d workers...", len(captures), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/api/client/add-capture"

	// Counters for statistics
	var (
		successful int64
		duplicate  int64
		failed     int64
		submitted  int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	captureChan := make(chan Capture, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for capture := range captureChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleCapture(ctx, client, url, capture)

					// Update counters
					atomic.AddInt64(&submitted, 1)
					switch result {
					case "success":
						atomic.AddInt64(&successful, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&submitted)
						succ := atomic.LoadInt64(&successful)
						dup := atomic.LoadInt64(&duplicate)
						fail := atomic.LoadInt64(&failed)

						log.Printf("progress: %d/%d submitted (success: %d, duplicate: %d, failed: %d)",
							total, len(captures), succ, dup, fail)
					}
				}
			}
		}()
	}

	// Send captures to workers
	go func() {
		defer close(captureChan)
		for _, capture := range captures {
			select {
			case <-ctx.Done():
				return
			case captureChan <- capture:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Update stats
	stats.CapturesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.CapturesSuccessful = int(atomic.LoadInt64(&successful))
	stats.CapturesDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.CapturesFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`capture submission completed:
   Successful: %d
   Duplicate: %d
   Failed: %d
`, stats.CapturesSuccessful, stats.CapturesDuplicate, stats.CapturesFailed)

	return nil
}

// submitSingleCapture submits a single capture and returns the result
func submitSingleCapture(ctx context.Context, client *HTTPClient, url string, capture Capture) string {
	resp, err := client.Post(ctx, url, capture)
	if err != nil {
		return "failed"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	if resp.StatusCode != StatusOK {
		return "failed"
	}

	var ack AddResponse
	if err := json.Unmarshal(body, &ack); err == nil && ack.Duplicated {
		return "duplicate"
	}
	return "success"
}
