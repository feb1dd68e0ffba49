package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/AmolDerickSoans/polyfloat-news/internal/logging"
	"github.com/AmolDerickSoans/polyfloat-news/internal/metrics"
	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
)

// TimelineConfig configures the timeline adapter.
type TimelineConfig struct {
	Endpoints      []string
	Accounts       []string
	SweepInterval  time.Duration
	AccountDelay   time.Duration
	RequestTimeout time.Duration
	MaxRetries     int
	ItemLimit      int
}

// TimelineAdapter scrapes account timelines from a pool of mirror
// endpoints. Endpoint selection is round-robin per request with reactive
// failover; a fixed delay between accounts within one sweep keeps the
// request rate down.
type TimelineAdapter struct {
	cfg    TimelineConfig
	pool   *Pool
	client *http.Client
	out    *EventQueue
	logger *logging.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewTimelineAdapter creates a timeline adapter writing to out.
func NewTimelineAdapter(cfg TimelineConfig, out *EventQueue, logger *logging.Logger) *TimelineAdapter {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 60 * time.Second
	}
	if cfg.AccountDelay <= 0 {
		cfg.AccountDelay = 1500 * time.Millisecond
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.ItemLimit <= 0 {
		cfg.ItemLimit = 20
	}

	return &TimelineAdapter{
		cfg:    cfg,
		pool:   NewPool(cfg.Endpoints),
		client: &http.Client{Timeout: cfg.RequestTimeout},
		out:    out,
		logger: logger.With(logging.Stage("timeline")),
		seen:   make(map[string]struct{}),
	}
}

// Pool exposes the endpoint pool for health checking.
func (a *TimelineAdapter) Pool() *Pool {
	return a.pool
}

// Run sweeps all configured accounts every interval until ctx is
// cancelled.
func (a *TimelineAdapter) Run(ctx context.Context) {
	a.logger.Info("timeline adapter started",
		slog.Int("accounts", len(a.cfg.Accounts)),
		slog.Int("endpoints", a.pool.Size()),
	)

	for {
		started := time.Now()
		a.sweep(ctx)
		if err := sleepRemainder(ctx, started, a.cfg.SweepInterval); err != nil {
			a.logger.Info("timeline adapter stopped")
			return
		}
		if ctx.Err() != nil {
			a.logger.Info("timeline adapter stopped")
			return
		}
	}
}

// sweep scrapes every account once, with the fixed inter-account delay.
func (a *TimelineAdapter) sweep(ctx context.Context) {
	for i, account := range a.cfg.Accounts {
		if ctx.Err() != nil {
			return
		}

		events, err := a.scrapeAccount(ctx, account)
		if err != nil {
			metrics.ScrapeErrors.WithLabelValues(string(models.SourceTimeline)).Inc()
			a.logger.Warn("account scrape failed",
				logging.Account(account), logging.Error(err))
		} else {
			a.enqueue(ctx, events)
		}

		// Rate limit between accounts; skip the delay after the last.
		if i < len(a.cfg.Accounts)-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(a.cfg.AccountDelay):
			}
		}
	}
}

// scrapeAccount fetches one account's timeline, failing over across the
// endpoint pool with exponential backoff, up to pool_size*max_retries
// attempts total.
func (a *TimelineAdapter) scrapeAccount(ctx context.Context, account string) ([]models.RawEvent, error) {
	maxAttempts := a.pool.Size() * a.cfg.MaxRetries
	delay := defaultRetryDelay
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			var err error
			delay, err = backoffSleep(ctx, delay, errors.Is(lastErr, errRateLimited))
			if err != nil {
				return nil, err
			}
		}

		endpoint := a.pool.Next()
		body, err := fetch(ctx, a.client, fmt.Sprintf("%s/%s", endpoint, account))
		if err != nil {
			lastErr = err
			a.logger.Debug("endpoint attempt failed",
				logging.Endpoint(endpoint), logging.Account(account), logging.Error(err))
			continue
		}

		events := parseTimeline(body, account)
		if len(events) > a.cfg.ItemLimit {
			events = events[:a.cfg.ItemLimit]
		}
		return events, nil
	}

	return nil, fmt.Errorf("all %d attempts failed: %w", maxAttempts, lastErr)
}

// enqueue pushes events the adapter has not emitted before. Put blocks
// when the queue is full; that backpressure is deliberate.
func (a *TimelineAdapter) enqueue(ctx context.Context, events []models.RawEvent) {
	for _, ev := range events {
		if a.alreadySeen(ev.URL) {
			continue
		}
		if err := a.out.Put(ctx, ev); err != nil {
			return
		}
		metrics.ItemsScraped.WithLabelValues(string(models.SourceTimeline)).Inc()
	}
}

// alreadySeen records the URL and reports whether it was present. This
// is a best-effort process-local filter; authoritative dedup happens in
// the processing stage against the store.
func (a *TimelineAdapter) alreadySeen(url string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.seen[url]; ok {
		return true
	}
	a.seen[url] = struct{}{}
	return false
}

// selectorStrategy is one way of locating post structure in timeline
// markup. Strategies are tried in order; the first whose container
// selector matches anything wins.
type selectorStrategy struct {
	container string
	content   string
	date      string
	link      string
}

var timelineSelectors = []selectorStrategy{
	{container: "div.timeline-item", content: "div.tweet-content", date: "span.tweet-date", link: "a.tweet-link"},
	{container: "article.timeline-entry", content: "div.post-content", date: "time", link: "a.post-link"},
}

// parseTimeline extracts posts from semi-structured timeline markup.
// Items missing text or a permalink are skipped individually; a parse
// failure never fails the whole batch.
func parseTimeline(html []byte, account string) []models.RawEvent {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}

	for _, sel := range timelineSelectors {
		items := doc.Find(sel.container)
		if items.Length() == 0 {
			continue
		}

		var events []models.RawEvent
		items.Each(func(_ int, item *goquery.Selection) {
			text := strings.TrimSpace(item.Find(sel.content).Text())
			if text == "" {
				return
			}

			href, ok := item.Find(sel.link).Attr("href")
			if !ok || href == "" {
				return
			}
			if strings.HasPrefix(href, "/") {
				href = "https://x.com" + href
			}

			publishedAt := ""
			dateNode := item.Find(sel.date)
			if title, ok := dateNode.Attr("title"); ok {
				publishedAt = title
			} else if title, ok := dateNode.Find("a").Attr("title"); ok {
				publishedAt = title
			}

			events = append(events, models.RawEvent{
				Source:        models.SourceTimeline,
				SourceAccount: "@" + account,
				Content:       text,
				URL:           href,
				PublishedAt:   publishedAt,
			})
		})
		return events
	}

	return nil
}
