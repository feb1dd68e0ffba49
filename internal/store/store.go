// Package store persists news items and subscription filters in
// PostgreSQL. The unique constraint on news.url is the pipeline's only
// cross-stage consistency guarantee: it stands in for a lock around
// "insert if URL absent".
package store

import (
	"context"
	"errors"
	"time"

	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
)

// ErrDuplicateURL is returned by Insert when a row with the same URL
// already exists. Callers treat it as a successful dedup, not a failure.
var ErrDuplicateURL = errors.New("news item with this URL already exists")

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// NewsQuery is the filter set for the read-only query surface.
type NewsQuery struct {
	Category  string
	Source    string
	MinImpact float64
	Limit     int
	Offset    int
}

// NewsStore is the persistence contract required by the processing stage
// and the query surface.
type NewsStore interface {
	Insert(ctx context.Context, item *models.NewsItem) error
	ExistsByURL(ctx context.Context, url string) (bool, error)
	List(ctx context.Context, q NewsQuery) ([]*models.NewsItem, int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// SubscriptionStore is the contract the fan-out stage and the CRUD
// surface need. GetFilter returns (nil, nil) when no filter exists for
// the user; the fan-out stage interprets absence as match-everything.
type SubscriptionStore interface {
	GetFilter(ctx context.Context, userID string) (*models.SubscriptionFilter, error)
	Upsert(ctx context.Context, filter *models.SubscriptionFilter) error
	Delete(ctx context.Context, userID string) error
	ListFilters(ctx context.Context) ([]*models.SubscriptionFilter, error)
}
