package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

const (
	healthRetries    = 5
	healthFirstDelay = 5 * time.Second
	healthRetryDelay = 3 * time.Second
)

// Health performs a single readiness probe against the backend.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health probe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

// WaitHealthy probes the backend until it responds, retrying a bounded
// number of times: a first retry after 5s, then every 3s, five retries in
// total. Returns the last probe error once the retries are exhausted, at
// which point the backend is considered unreachable.
func (c *Client) WaitHealthy(ctx context.Context) error {
	b := backoff.WithContext(backoff.WithMaxRetries(&probeSchedule{}, healthRetries), ctx)
	attempt := 0
	return backoff.RetryNotify(
		func() error { return c.Health(ctx) },
		b,
		func(err error, next time.Duration) {
			attempt++
			log.Warn().
				Err(err).
				Int("attempt", attempt).
				Dur("retry_in", next).
				Msg("backend not ready")
		},
	)
}

// probeSchedule is the fixed retry schedule for the readiness probe: one
// longer initial delay to let the backend boot, then short constant waits.
type probeSchedule struct {
	started bool
}

func (s *probeSchedule) NextBackOff() time.Duration {
	if !s.started {
		s.started = true
		return healthFirstDelay
	}
	return healthRetryDelay
}

func (s *probeSchedule) Reset() {
	s.started = false
}
