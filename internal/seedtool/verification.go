package seedtool

import (
	"context"
	"fmt"
	"log"
)

// verifySeeding compares the bridge's accounting against what was submitted.
func verifySeeding(ctx context.Context, config *Config, stats *Stats) error {
	log.Println("verifying seeded captures...")

	bridgeStats, err := fetchBridgeStats(ctx, config)
	if err != nil {
		return err
	}

	stats.PendingReported = bridgeStats.PendingSync

	log.Printf("bridge reports: total=%d pending=%d synced=%d client=%s",
		bridgeStats.TotalCaptures, bridgeStats.PendingSync, bridgeStats.SyncedCaptures, bridgeStats.ClientID)

	// Every successful submission should be visible in the bridge's totals.
	// The bridge may have held captures before the run, so totals are a floor.
	if bridgeStats.TotalCaptures < stats.CapturesSuccessful {
		return fmt.Errorf("bridge reports %d captures but %d were accepted",
			bridgeStats.TotalCaptures, stats.CapturesSuccessful)
	}

	// Intentional double-taps must not have inflated the store.
	if stats.CapturesDuplicate == 0 && config.DuplicatePct > 0 && stats.CapturesSubmitted > stats.CapturesGenerated/2 {
		log.Printf("warning: duplicate rate %d%% requested but no duplicates reported; dedup window may not have been hit", config.DuplicatePct)
	}

	log.Println("seed verification completed")
	return nil
}
