package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/polo/internal/matchsim"
)

// Default configuration constants.
const (
	defaultPeriods         = 4
	defaultEventsPerPeriod = 40
	defaultDuplicateRatio  = 0.1
	defaultKeypadRatio     = 0.3
	defaultRunTimeout      = 5 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the scorer")
		periods    = flag.Int("periods", defaultPeriods, "Number of periods")
		events     = flag.Int("events", defaultEventsPerPeriod, "Records per period after the center ball")
		workers    = flag.Int("workers", runtime.NumCPU(), "Concurrent workers replaying duplicates")
		duplicates = flag.Float64("duplicates", defaultDuplicateRatio, "Share of records replayed with the same request id")
		keypad     = flag.Float64("keypad", defaultKeypadRatio, "Share of records sent as raw keypad digits")
		locale     = flag.String("locale", "en", "Export locale to verify: en or ja")
		seed       = flag.Uint64("seed", 0, "Generator seed, 0 for random")
		timeout    = flag.Duration("timeout", matchsim.DefaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Write the generated plan to this file")
		logFile    = flag.String("log", "", "Log file (default: match_sim_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		matchsim.ShowHelp()
		return
	}

	if err := matchsim.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &matchsim.Config{
		BaseURL:         *baseURL,
		Periods:         *periods,
		EventsPerPeriod: *events,
		Workers:         *workers,
		DuplicateRatio:  *duplicates,
		KeypadRatio:     *keypad,
		Locale:          *locale,
		Seed:            *seed,
		Timeout:         *timeout,
		OutputFile:      *outputFile,
		LogFile:         *logFile,
		Verbose:         *verbose,
	}

	if err := matchsim.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
