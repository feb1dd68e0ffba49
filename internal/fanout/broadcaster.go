package fanout

import (
	"context"
	"time"

	"github.com/AmolDerickSoans/polyfloat-news/internal/logging"
	"github.com/AmolDerickSoans/polyfloat-news/internal/metrics"
	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
	"github.com/AmolDerickSoans/polyfloat-news/internal/queue"
)

// FilterLookup fetches a user's subscription filter. A (nil, nil) result
// means no filter on record, which matches everything.
type FilterLookup interface {
	GetFilter(ctx context.Context, userID string) (*models.SubscriptionFilter, error)
}

// Broadcaster is the single consumer of the distribution queue. For each
// event it evaluates every live subscriber's filter and delivers only on
// match.
type Broadcaster struct {
	in       *queue.Queue[models.NewsItem]
	registry *Registry
	filters  FilterLookup
	sink     AlertSink
	logger   *logging.Logger

	keepAliveInterval time.Duration
}

// NewBroadcaster creates a broadcaster consuming from in. sink may be
// nil when no side-channel alerting is configured.
func NewBroadcaster(in *queue.Queue[models.NewsItem], registry *Registry, filters FilterLookup, sink AlertSink, keepAlive time.Duration, logger *logging.Logger) *Broadcaster {
	if keepAlive <= 0 {
		keepAlive = 30 * time.Second
	}
	return &Broadcaster{
		in:                in,
		registry:          registry,
		filters:           filters,
		sink:              sink,
		logger:            logger.With(logging.Stage("broadcaster")),
		keepAliveInterval: keepAlive,
	}
}

// Run consumes the distribution queue until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	b.logger.Info("broadcaster started")

	for {
		item, err := b.in.Get(ctx)
		if err != nil {
			b.logger.Info("broadcaster stopped")
			return
		}
		b.dispatch(ctx, &item)
	}
}

// dispatch matches one event against every connected subscriber and
// broadcasts to the matching subset.
func (b *Broadcaster) dispatch(ctx context.Context, item *models.NewsItem) {
	connected := b.registry.ConnectedIDs()
	if len(connected) == 0 {
		return
	}

	var matched []string
	for _, userID := range connected {
		filter, err := b.filters.GetFilter(ctx, userID)
		if err != nil {
			// Fail open: a filter-store hiccup must not silently mute
			// a subscriber.
			b.logger.Warn("filter lookup failed, delivering anyway",
				logging.UserID(userID), logging.Error(err))
			matched = append(matched, userID)
			continue
		}
		if Matches(filter, item) {
			matched = append(matched, userID)
			b.publishAlert(ctx, filter, item)
		}
	}

	if len(matched) == 0 {
		return
	}

	envelope := models.Envelope{
		Type:      models.MessageTypeNewsItem,
		Data:      item,
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
	}
	b.registry.Broadcast(envelope, matched)
	metrics.BroadcastsTotal.Inc()

	b.logger.Info("broadcast news item",
		logging.ItemID(item.ID), logging.Count(len(matched)))
}

// publishAlert forwards a matched event to the side-channel sink when
// the subscriber's filter asks for it. Sink failures never affect
// websocket delivery.
func (b *Broadcaster) publishAlert(ctx context.Context, filter *models.SubscriptionFilter, item *models.NewsItem) {
	if b.sink == nil || filter == nil || !filter.HasAlertChannel(AlertChannelNats) {
		return
	}
	if err := b.sink.Publish(ctx, filter.UserID, item); err != nil {
		b.logger.Warn("alert sink publish failed",
			logging.UserID(filter.UserID), logging.Error(err))
	}
}

// RunKeepAlive broadcasts a keep-alive frame to all connections on a
// fixed interval until ctx is cancelled.
func (b *Broadcaster) RunKeepAlive(ctx context.Context) {
	ticker := time.NewTicker(b.keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.registry.Broadcast(models.Envelope{
				Type:      models.MessageTypeKeepAlive,
				Timestamp: float64(time.Now().UnixNano()) / 1e9,
			}, nil)
		}
	}
}
