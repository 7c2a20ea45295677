package seedtool

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/pokeatlas/syncbridge/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the capture seeding tool.
func ShowHelp() {
	os.Stdout.WriteString(`Capture Seeding Tool
====================

A concurrent tool for loading the sync bridge with capture events.

Usage:
  go run cmd/seed-captures/main.go [options]

Options:
  -url string
        Base URL of the bridge (default "http://localhost:3001")
  -captures int
        Number of captures to generate and submit (default 200)
  -duplicates int
        Percentage of captures submitted twice back-to-back (default 10)
  -workers int
        Number of concurrent workers (default 4)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for seeding output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed with default settings
  go run cmd/seed-captures/main.go

  # Seed a larger run against a remote bridge
  go run cmd/seed-captures/main.go -captures 2000 -workers 8 -url http://bridge:3001

  # Exercise the dedup window hard
  go run cmd/seed-captures/main.go -captures 500 -duplicates 50
`)
}
