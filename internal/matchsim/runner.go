package matchsim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/polo/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run plays a generated match against the scorer and verifies the result.
// The scorer is reset first; whatever it held is lost.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(config.BaseURL, config.Timeout)

	logger.Get().Info(ctx, "starting match simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("periods", config.Periods),
		logger.Int("eventsPerPeriod", config.EventsPerPeriod),
		logger.Int("workers", config.Workers),
		logger.String("locale", config.Locale),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate the match
	plan, err := Generate(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("match generation failed: %w", err)
	}

	// Step 3: Start from an empty sheet with the plan's header
	if err := prepareMatch(ctx, client, plan); err != nil {
		return fmt.Errorf("match setup failed: %w", err)
	}

	// Step 4: Submit the records in order
	if err := submitSteps(ctx, client, config, plan, stats); err != nil {
		return fmt.Errorf("record submission failed: %w", err)
	}

	// Step 5: Replay request ids concurrently
	if err := replayDuplicates(ctx, client, config, plan, stats); err != nil {
		return fmt.Errorf("duplicate replay failed: %w", err)
	}

	// Step 6: Verify results
	exp, err := Expect(plan)
	if err != nil {
		return fmt.Errorf("expectation failed: %w", err)
	}
	if err := verifyResults(ctx, client, config, exp); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 7: Save the plan for replay
	if config.OutputFile != "" {
		if err := savePlan(ctx, config.OutputFile, plan); err != nil {
			logger.Get().Warn(ctx, "failed to save plan", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "simulation completed successfully", logger.String("runId", plan.RunID))
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	resp, err := client.Do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return err
	}
	// The service answers with Prometheus metrics.
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

func prepareMatch(ctx context.Context, client *HTTPClient, plan *Plan) error {
	if err := client.JSON(ctx, http.MethodPost, "/reset", nil, nil, StatusOK); err != nil {
		return err
	}
	header := map[string]string{
		"matchDate": plan.MatchDate,
		"teamNameA": plan.TeamWhite,
		"teamNameB": plan.TeamBlue,
	}
	return client.JSON(ctx, http.MethodPut, "/match", header, nil, StatusOK)
}

// savePlan writes the plan as indented JSON.
func savePlan(ctx context.Context, filename string, plan *Plan) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	logger.Get().Info(ctx, "plan saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.StepsSubmitted+stats.DuplicatesSent) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("stepsGenerated", stats.StepsGenerated),
		logger.Int("stepsSubmitted", stats.StepsSubmitted),
		logger.Int("stepsFailed", stats.StepsFailed),
		logger.Int("duplicatesSent", stats.DuplicatesSent),
		logger.Int("duplicatesAcked", stats.DuplicatesAcked),
		logger.Int("duplicatesMissed", stats.DuplicatesMissed),
		logger.String("duration", stats.Duration.String()),
		logger.Any("requestsPerSecond", perSecond))
}
