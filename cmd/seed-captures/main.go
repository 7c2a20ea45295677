package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/pokeatlas/syncbridge/internal/seedtool"
)

// Default configuration constants.
const (
	defaultNumCaptures  = 200
	defaultDuplicatePct = 10
	defaultWorkers      = 4
	defaultTimeout      = 30 * time.Second
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:3001", "Base URL of the bridge")
		numCaptures  = flag.Int("captures", defaultNumCaptures, "Number of captures to generate and submit")
		duplicatePct = flag.Int("duplicates", defaultDuplicatePct, "Percentage of captures submitted twice back-to-back")
		workers      = flag.Int("workers", defaultWorkers, "Number of concurrent workers")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile      = flag.String("log", "", "Log file for seeding output (default: seed_log_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seedtool.ShowHelp()
		return
	}

	// Setup logging
	if err := seedtool.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	// Create seeding configuration
	config := &seedtool.Config{
		BaseURL:      *baseURL,
		NumCaptures:  *numCaptures,
		DuplicatePct: *duplicatePct,
		Workers:      *workers,
		Timeout:      *timeout,
		LogFile:      *logFile,
		Verbose:      *verbose,
	}

	// Run the seeding pass
	if err := seedtool.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seeding failed: " + err.Error() + "\n")
		return
	}
}
