package seedtool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pokeatlas/syncbridge/pkg/logger"
)

// Run executes the complete seeding pass.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting capture seeding",
		logger.String("baseURL", config.BaseURL),
		logger.Int("captures", config.NumCaptures),
		logger.Int("duplicatePct", config.DuplicatePct),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check bridge health
	if err := checkBridgeHealth(ctx, config); err != nil {
		return fmt.Errorf("bridge health check failed: %w", err)
	}

	// Step 2: Generate captures
	captures := generateCaptures(ctx, config, stats)

	// Step 3: Submit captures concurrently
	if err := submitCaptures(ctx, config, captures, stats); err != nil {
		return fmt.Errorf("capture submission failed: %w", err)
	}

	// Step 4: Let the bridge settle before reading stats back
	logger.Get().Info(ctx, "waiting for the bridge to settle")
	time.Sleep(SettleDelay)

	// Step 5: Verify the bridge's own accounting
	if err := verifySeeding(ctx, config, stats); err != nil {
		return fmt.Errorf("seed verification failed: %w", err)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "seeding completed successfully")
	return nil
}

// checkBridgeHealth verifies the bridge is running.
func checkBridgeHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking bridge health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/api/client/health"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to bridge: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("bridge health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "bridge is healthy")
	return nil
}

// fetchBridgeStats reads the bridge's stats endpoint.
func fetchBridgeStats(ctx context.Context, config *Config) (BridgeStats, error) {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/api/client/stats"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return BridgeStats{}, fmt.Errorf("failed to fetch stats: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return BridgeStats{}, fmt.Errorf("failed to read stats response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return BridgeStats{}, fmt.Errorf("stats request failed with status: %d", resp.StatusCode)
	}

	var bridgeStats BridgeStats
	if err := json.Unmarshal(body, &bridgeStats); err != nil {
		return BridgeStats{}, fmt.Errorf("failed to parse stats response: %w", err)
	}
	return bridgeStats, nil
}

// displayFinalStats prints the final seeding statistics.
func displayFinalStats(stats *Stats) {
	var successRate, capturesPerSecond float64

	if stats.CapturesSubmitted > 0 {
		successRate = float64(stats.CapturesSuccessful) / float64(stats.CapturesSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		capturesPerSecond = float64(stats.CapturesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("capturesGenerated", stats.CapturesGenerated),
		logger.Int("capturesSubmitted", stats.CapturesSubmitted),
		logger.Int("capturesSuccessful", stats.CapturesSuccessful),
		logger.Int("capturesDuplicate", stats.CapturesDuplicate),
		logger.Int("capturesFailed", stats.CapturesFailed),
		logger.Int("pendingReported", stats.PendingReported),
		logger.String("duration", stats.Duration.String()),
		logger.Any("successRate", successRate),
		logger.Any("capturesPerSecond", capturesPerSecond))
}
