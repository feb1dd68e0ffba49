// Package processor is the pipeline's single consumer of the ingestion
// queue: it normalizes timestamps, computes stable identity, dedups
// against the store, enriches via the classifier, scores impact,
// persists, and forwards downstream. It runs with parallelism of one so
// dedup checks serialize against the store without extra locking.
package processor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/AmolDerickSoans/polyfloat-news/internal/classifier"
	"github.com/AmolDerickSoans/polyfloat-news/internal/logging"
	"github.com/AmolDerickSoans/polyfloat-news/internal/metrics"
	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
	"github.com/AmolDerickSoans/polyfloat-news/internal/queue"
	"github.com/AmolDerickSoans/polyfloat-news/internal/store"
)

// timestampLayouts are the known upstream formats, tried in order: RSS
// pubDate, the timeline date title attribute, then ISO fallbacks.
var timestampLayouts = []string{
	time.RFC1123Z,
	"Jan 2, 2006 · 3:04 PM UTC",
	time.RFC3339,
	time.RFC822Z,
}

// Config configures the processor.
type Config struct {
	Retention     time.Duration
	PurgeInterval time.Duration
}

// Processor consumes raw events and produces persisted, enriched news
// items on the distribution queue.
type Processor struct {
	cfg    Config
	in     *queue.Queue[models.RawEvent]
	out    *queue.Queue[models.NewsItem]
	store  store.NewsStore
	logger *logging.Logger

	// now is swappable for tests.
	now func() time.Time
}

// New creates a processor between the two queues.
func New(cfg Config, in *queue.Queue[models.RawEvent], out *queue.Queue[models.NewsItem], st store.NewsStore, logger *logging.Logger) *Processor {
	if cfg.Retention <= 0 {
		cfg.Retention = 7 * 24 * time.Hour
	}
	if cfg.PurgeInterval <= 0 {
		cfg.PurgeInterval = 24 * time.Hour
	}
	return &Processor{
		cfg:    cfg,
		in:     in,
		out:    out,
		store:  st,
		logger: logger.With(logging.Stage("processor")),
		now:    time.Now,
	}
}

// Run consumes the ingestion queue until ctx is cancelled. No single bad
// item may terminate the loop.
func (p *Processor) Run(ctx context.Context) {
	p.logger.Info("processor started")

	for {
		raw, err := p.in.Get(ctx)
		if err != nil {
			p.logger.Info("processor stopped")
			return
		}

		if err := p.process(ctx, raw); err != nil {
			p.logger.Error("failed to process item",
				logging.URL(raw.URL), logging.Error(err))
		}
	}
}

// process handles one raw event end to end.
func (p *Processor) process(ctx context.Context, raw models.RawEvent) error {
	item := p.convert(raw)

	exists, err := p.store.ExistsByURL(ctx, item.URL)
	if err != nil {
		return err
	}
	if exists {
		metrics.ItemsDeduped.Inc()
		p.logger.Debug("duplicate URL dropped", logging.URL(item.URL))
		return nil
	}

	p.enrich(item)
	item.ImpactScore = impactScore(item, p.now())

	if err := p.store.Insert(ctx, item); err != nil {
		if errors.Is(err, store.ErrDuplicateURL) {
			// Lost a race against a concurrent insert; the URL is
			// persisted either way.
			metrics.ItemsDeduped.Inc()
			p.logger.Debug("duplicate URL at insert", logging.URL(item.URL))
			return nil
		}
		return err
	}
	metrics.ItemsProcessed.Inc()

	// Forwarding is best-effort: a full distribution queue must not
	// stall ingestion.
	if !p.out.TryPut(*item) {
		p.logger.Warn("distribution queue full, event not forwarded",
			logging.ItemID(item.ID))
	}

	p.logger.Info("processed news item",
		logging.ItemID(item.ID),
		logging.URL(item.URL),
		logging.Impact(item.ImpactScore),
		logging.Category(string(item.Category)),
	)
	return nil
}

// convert folds a raw event into a news item with normalized timestamp
// and stable identity.
func (p *Processor) convert(raw models.RawEvent) *models.NewsItem {
	return &models.NewsItem{
		ID:            models.ItemID(raw.Source, raw.URL),
		Source:        raw.Source,
		SourceAccount: raw.SourceAccount,
		Title:         raw.Title,
		Content:       raw.Content,
		URL:           raw.URL,
		PublishedAt:   p.parsePublishedAt(raw.PublishedAt),
	}
}

// parsePublishedAt tries the known layouts in order; total failure
// substitutes "now" rather than rejecting the item.
func (p *Processor) parsePublishedAt(value string) float64 {
	if value != "" {
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return float64(t.UnixNano()) / 1e9
			}
		}
		p.logger.Debug("unparseable timestamp", slog.String("value", value))
	}
	return float64(p.now().UnixNano()) / 1e9
}

// enrich attaches classifier output to the item.
func (p *Processor) enrich(item *models.NewsItem) {
	result := classifier.Classify(item.Text())
	item.Tickers = result.Tickers
	item.People = result.People
	item.Category = result.Category
	item.Tags = result.Tags
	item.Markets = result.Markets
}

// RunPurge deletes items older than the retention window on a fixed
// schedule, independent of the consume loop.
func (p *Processor) RunPurge(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.purge(ctx)
		}
	}
}

func (p *Processor) purge(ctx context.Context) {
	cutoff := p.now().Add(-p.cfg.Retention)
	deleted, err := p.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("retention purge failed", logging.Error(err))
		return
	}
	if deleted > 0 {
		metrics.ItemsPurged.Add(float64(deleted))
		p.logger.Info("purged old news items", slog.Int64("deleted", deleted))
	}
}
