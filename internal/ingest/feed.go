package ingest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/AmolDerickSoans/polyfloat-news/internal/logging"
	"github.com/AmolDerickSoans/polyfloat-news/internal/metrics"
	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
)

// FeedConfig configures the feed adapter.
type FeedConfig struct {
	URLs           []string
	SweepInterval  time.Duration
	RequestTimeout time.Duration
	MaxRetries     int
	ItemLimit      int
}

// FeedAdapter fetches a fixed list of syndicated feeds. Each sweep
// fetches all feeds concurrently; each fetch is retried independently
// with its own backoff, and the sweep cadence is held constant by
// sleeping the cycle remainder.
type FeedAdapter struct {
	cfg    FeedConfig
	client *http.Client
	parser *gofeed.Parser
	out    *EventQueue
	logger *logging.Logger
}

// NewFeedAdapter creates a feed adapter writing to out.
func NewFeedAdapter(cfg FeedConfig, out *EventQueue, logger *logging.Logger) *FeedAdapter {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 120 * time.Second
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

	return &FeedAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		parser: gofeed.NewParser(),
		out:    out,
		logger: logger.With(logging.Stage("feed")),
	}
}

// Run sweeps all feeds every interval until ctx is cancelled.
func (a *FeedAdapter) Run(ctx context.Context) {
	a.logger.Info("feed adapter started", slog.Int("feeds", len(a.cfg.URLs)))

	for {
		started := time.Now()
		a.sweep(ctx)
		if err := sleepRemainder(ctx, started, a.cfg.SweepInterval); err != nil {
			a.logger.Info("feed adapter stopped")
			return
		}
		if ctx.Err() != nil {
			a.logger.Info("feed adapter stopped")
			return
		}
	}
}

// sweep fetches every feed concurrently. A failed feed is logged and
// abandoned for this sweep; it never fails the others.
func (a *FeedAdapter) sweep(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)

	for _, url := range a.cfg.URLs {
		url := url
		g.Go(func() error {
			events, err := a.fetchFeed(gctx, url)
			if err != nil {
				metrics.ScrapeErrors.WithLabelValues(string(models.SourceFeed)).Inc()
				a.logger.Warn("feed fetch failed", logging.URL(url), logging.Error(err))
				return nil
			}
			for _, ev := range events {
				if err := a.out.Put(gctx, ev); err != nil {
					return nil
				}
				metrics.ItemsScraped.WithLabelValues(string(models.SourceFeed)).Inc()
			}
			return nil
		})
	}

	_ = g.Wait()
}

// fetchFeed retrieves and parses one feed with per-feed retry/backoff.
func (a *FeedAdapter) fetchFeed(ctx context.Context, url string) ([]models.RawEvent, error) {
	delay := defaultRetryDelay
	var lastErr error

	for attempt := 0; attempt <= a.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			var err error
			delay, err = backoffSleep(ctx, delay, errors.Is(lastErr, errRateLimited))
			if err != nil {
				return nil, err
			}
		}

		body, err := fetch(ctx, a.client, url)
		if err != nil {
			lastErr = err
			continue
		}

		feed, err := a.parser.ParseString(string(body))
		if err != nil {
			// Malformed feed content is a shape failure, not worth
			// retrying within the sweep.
			return nil, err
		}

		return a.feedEvents(feed), nil
	}

	return nil, lastErr
}

// feedEvents converts parsed feed entries to raw events. Entries without
// a link are skipped individually.
func (a *FeedAdapter) feedEvents(feed *gofeed.Feed) []models.RawEvent {
	items := feed.Items
	if len(items) > a.cfg.ItemLimit {
		items = items[:a.cfg.ItemLimit]
	}

	account := feed.Title
	if account == "" {
		account = "Unknown"
	}

	var events []models.RawEvent
	for _, item := range items {
		if item.Link == "" {
			continue
		}
		content := item.Description
		if content == "" {
			content = item.Content
		}
		if content == "" {
			continue
		}
		events = append(events, models.RawEvent{
			Source:        models.SourceFeed,
			SourceAccount: account,
			Title:         item.Title,
			Content:       content,
			URL:           item.Link,
			PublishedAt:   item.Published,
		})
	}
	return events
}
