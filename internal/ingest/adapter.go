// Package ingest implements the source adapters that pull raw content
// from upstream endpoints and push normalized events onto the ingestion
// queue. Both adapters share one contract: run until the context is
// cancelled, retry transient upstream failures with backoff, and block
// on a full queue rather than drop.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
	"github.com/AmolDerickSoans/polyfloat-news/internal/queue"
)

// Default retry/backoff parameters shared by both adapters.
const (
	defaultRetryDelay  = 1 * time.Second
	defaultMaxDelay    = 10 * time.Second
	defaultBackoffMult = 2.0
)

// Adapter is a source adapter. Run produces RawEvents onto its output
// queue until ctx is cancelled.
type Adapter interface {
	Run(ctx context.Context)
}

// EventQueue is the adapter-facing side of the ingestion queue.
type EventQueue = queue.Queue[models.RawEvent]

// errRateLimited marks a 429 response; the caller doubles the next
// backoff on top of the normal exponential growth.
var errRateLimited = errors.New("rate limited by upstream")

// fetch performs one GET with a bounded per-request timeout (set on the
// client) and returns the body on a 200 response.
func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// backoffSleep waits for the current delay, then returns the next delay:
// exponential growth capped at max, doubled once more after a rate-limit
// response.
func backoffSleep(ctx context.Context, delay time.Duration, rateLimited bool) (time.Duration, error) {
	select {
	case <-ctx.Done():
		return delay, ctx.Err()
	case <-time.After(delay):
	}

	next := time.Duration(float64(delay) * defaultBackoffMult)
	if rateLimited {
		next *= 2
	}
	if next > defaultMaxDelay {
		next = defaultMaxDelay
	}
	return next, nil
}

// sleepRemainder holds a sweep loop to a constant cadence: it sleeps out
// whatever is left of the interval after the sweep's own work.
func sleepRemainder(ctx context.Context, started time.Time, interval time.Duration) error {
	elapsed := time.Since(started)
	if elapsed >= interval {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(interval - elapsed):
		return nil
	}
}
