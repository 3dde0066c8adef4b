package matchsim

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/polo/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging sends log output to the console and to logFile. If logFile is
// empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		logFile = "match_sim_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.InitWithFormat(logger.FormatText, io.MultiWriter(os.Stdout, file)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the match simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Water Polo Match Simulator
==========================

Plays a randomly generated match against a running scorer, replays request
ids concurrently, then checks the scoreboard, the exclusion table and the CSV
export against an offline derivation of the same match.

The scorer is reset before the run.

Usage:
  go run ./cmd/match-sim [options]

Options:
  -url string
        Base URL of the scorer (default "http://localhost:9080")
  -periods int
        Number of periods (default 4)
  -events int
        Records per period after the center ball (default 40)
  -workers int
        Concurrent workers replaying duplicates (default CPU cores)
  -duplicates float
        Share of records replayed with the same request id (default 0.1)
  -keypad float
        Share of records sent as raw keypad digits (default 0.3)
  -locale string
        Export locale to verify: en or ja (default "en")
  -seed uint
        Generator seed, 0 for random
  -timeout duration
        HTTP request timeout (default 10s)
  -output string
        Write the generated plan to this file
  -log string
        Log file (default: match_sim_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message
`)
}
