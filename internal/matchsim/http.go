package matchsim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/polo/pkg/logger"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Do sends a request with an optional JSON body.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.client.Do(req)
}

// JSON sends a request and decodes a JSON response, failing on any status
// other than want.
func (c *HTTPClient) JSON(ctx context.Context, method, path string, body, out any, want int) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	data, err := readResponseBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitSteps posts the plan in order. Record ids follow arrival order, so
// adds are sequential.
func submitSteps(ctx context.Context, client *HTTPClient, config *Config, plan *Plan, stats *Stats) error {
	logger.Get().Info(ctx, "submitting steps", logger.Int("steps", len(plan.Steps)))

	for i, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled during submission: %w", err)
		}
		var res AddResponse
		err := client.JSON(ctx, http.MethodPost, "/records", step, &res, StatusCreated)
		stats.StepsSubmitted++
		if err != nil {
			stats.StepsFailed++
			return fmt.Errorf("step %d (%s %s): %w", i, step.Kind, step.Clock+step.Keypad, err)
		}
		if config.Verbose {
			logger.Get().Debug(ctx, "step accepted",
				logger.Int("step", i),
				logger.String("kind", step.Kind),
				logger.Int("period", res.Scoreboard.Period),
				logger.Int("white", res.Scoreboard.ScoreWhite),
				logger.Int("blue", res.Scoreboard.ScoreBlue))
		}
	}
	return nil
}

// replayDuplicates re-sends a share of the steps concurrently with their
// original request ids. Every replay must be acknowledged as a duplicate.
func replayDuplicates(ctx context.Context, client *HTTPClient, config *Config, plan *Plan, stats *Stats) error {
	var replays []Step
	for i, step := range plan.Steps {
		if float64(i%100) < config.DuplicateRatio*100 {
			replays = append(replays, step)
		}
	}
	if len(replays) == 0 {
		return nil
	}
	workers := max(1, min(config.Workers, len(replays)))
	logger.Get().Info(ctx, "replaying duplicate requests",
		logger.Int("requests", len(replays)),
		logger.Int("workers", workers))

	var acked, missed int64
	ch := make(chan Step, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for step := range ch {
				var res AddResponse
				switch err := client.JSON(ctx, http.MethodPost, "/records", step, &res, StatusOK); {
				case err != nil:
					atomic.AddInt64(&missed, 1)
				case res.Duplicate:
					atomic.AddInt64(&acked, 1)
				default:
					atomic.AddInt64(&missed, 1)
				}
			}
		}()
	}
	go func() {
		defer close(ch)
		for _, step := range replays {
			select {
			case <-ctx.Done():
				return
			case ch <- step:
			}
		}
	}()
	wg.Wait()

	stats.DuplicatesSent = len(replays)
	stats.DuplicatesAcked = int(acked)
	stats.DuplicatesMissed = int(missed)
	if acked != int64(len(replays)) {
		return fmt.Errorf("%d of %d replays were not acknowledged as duplicates", int64(len(replays))-acked, len(replays))
	}
	return nil
}
