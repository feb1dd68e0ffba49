package ingest

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/AmolDerickSoans/polyfloat-news/internal/logging"
	"github.com/AmolDerickSoans/polyfloat-news/internal/metrics"
)

// HealthChecker probes each pool endpoint on a fixed interval,
// independent of the scrape cycle. Results are logged and exposed for
// observability only; an unhealthy endpoint stays in rotation and
// failover remains per-request.
type HealthChecker struct {
	pool     *Pool
	client   *http.Client
	interval time.Duration
	logger   *logging.Logger

	mu     sync.RWMutex
	status map[string]bool
}

// NewHealthChecker creates a checker over the given pool.
func NewHealthChecker(pool *Pool, interval time.Duration, logger *logging.Logger) *HealthChecker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &HealthChecker{
		pool:     pool,
		client:   &http.Client{Timeout: 5 * time.Second},
		interval: interval,
		logger:   logger.With(logging.Stage("health")),
		status:   make(map[string]bool),
	}
}

// Run probes until ctx is cancelled.
func (h *HealthChecker) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.probe(ctx)
		}
	}
}

// Status returns the latest probe result per endpoint.
func (h *HealthChecker) Status() map[string]bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]bool, len(h.status))
	for k, v := range h.status {
		out[k] = v
	}
	return out
}

func (h *HealthChecker) probe(ctx context.Context) {
	healthy := 0
	endpoints := h.pool.Endpoints()

	for _, endpoint := range endpoints {
		ok := h.probeOne(ctx, endpoint)

		h.mu.Lock()
		h.status[endpoint] = ok
		h.mu.Unlock()

		gauge := 0.0
		if ok {
			gauge = 1.0
			healthy++
		} else {
			h.logger.Warn("endpoint unhealthy", logging.Endpoint(endpoint))
		}
		metrics.EndpointHealthy.WithLabelValues(endpoint).Set(gauge)
	}

	h.logger.Info("endpoint health probe complete",
		logging.Count(healthy),
		"total", len(endpoints),
	)
}

func (h *HealthChecker) probeOne(ctx context.Context, endpoint string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
