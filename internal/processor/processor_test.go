package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmolDerickSoans/polyfloat-news/internal/logging"
	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
	"github.com/AmolDerickSoans/polyfloat-news/internal/queue"
	"github.com/AmolDerickSoans/polyfloat-news/internal/store"
)

// mockNewsStore is a mock implementation of store.NewsStore
type mockNewsStore struct {
	insertFunc          func(ctx context.Context, item *models.NewsItem) error
	existsByURLFunc     func(ctx context.Context, url string) (bool, error)
	listFunc            func(ctx context.Context, q store.NewsQuery) ([]*models.NewsItem, int, error)
	deleteOlderThanFunc func(ctx context.Context, cutoff time.Time) (int64, error)
	statsFunc           func(ctx context.Context) (*models.Stats, error)
}

func (m *mockNewsStore) Insert(ctx context.Context, item *models.NewsItem) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, item)
	}
	return nil
}

func (m *mockNewsStore) ExistsByURL(ctx context.Context, url string) (bool, error) {
	if m.existsByURLFunc != nil {
		return m.existsByURLFunc(ctx, url)
	}
	return false, nil
}

func (m *mockNewsStore) List(ctx context.Context, q store.NewsQuery) ([]*models.NewsItem, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, q)
	}
	return nil, 0, nil
}

func (m *mockNewsStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.deleteOlderThanFunc != nil {
		return m.deleteOlderThanFunc(ctx, cutoff)
	}
	return 0, nil
}

func (m *mockNewsStore) Stats(ctx context.Context) (*models.Stats, error) {
	if m.statsFunc != nil {
		return m.statsFunc(ctx)
	}
	return &models.Stats{}, nil
}

func newTestProcessor(st store.NewsStore) (*Processor, *queue.Queue[models.NewsItem]) {
	in := queue.New[models.RawEvent]("test-in", 10)
	out := queue.New[models.NewsItem]("test-out", 10)
	return New(Config{}, in, out, st, logging.Default()), out
}

func TestProcess_EnrichesAndForwards(t *testing.T) {
	var inserted *models.NewsItem
	st := &mockNewsStore{
		insertFunc: func(ctx context.Context, item *models.NewsItem) error {
			inserted = item
			return nil
		},
	}
	p, out := newTestProcessor(st)

	now := time.Now()
	p.now = func() time.Time { return now }

	raw := models.RawEvent{
		Source:        models.SourceTimeline,
		SourceAccount: "@newswire",
		Content:       "BREAKING: Fed Chair Jerome Powell cuts rates",
		URL:           "https://x.com/newswire/status/1",
	}

	require.NoError(t, p.process(context.Background(), raw))
	require.NotNil(t, inserted)

	assert.Equal(t, models.ItemID(models.SourceTimeline, raw.URL), inserted.ID)
	assert.Contains(t, inserted.People, "Jerome Powell")
	assert.Equal(t, models.CategoryEconomics, inserted.Category)
	assert.Contains(t, inserted.Tags, "breaking")

	// timeline source 5, Powell 10, "breaking" 10, published now 10:
	// (5*0.2 + 10*0.3 + 10*0.3 + 10*0.2) * 10
	assert.InDelta(t, 90.0, inserted.ImpactScore, 0.001)

	got, err := out.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, inserted.ID, got.ID)
}

func TestProcess_DuplicateURLDropped(t *testing.T) {
	insertCalls := 0
	st := &mockNewsStore{
		existsByURLFunc: func(ctx context.Context, url string) (bool, error) {
			return true, nil
		},
		insertFunc: func(ctx context.Context, item *models.NewsItem) error {
			insertCalls++
			return nil
		},
	}
	p, out := newTestProcessor(st)

	raw := models.RawEvent{Source: models.SourceFeed, URL: "https://example.com/1", Content: "seen before"}
	require.NoError(t, p.process(context.Background(), raw))

	assert.Equal(t, 0, insertCalls)
	assert.Equal(t, 0, out.Len())
}

func TestProcess_InsertRaceTreatedAsDuplicate(t *testing.T) {
	st := &mockNewsStore{
		insertFunc: func(ctx context.Context, item *models.NewsItem) error {
			return store.ErrDuplicateURL
		},
	}
	p, out := newTestProcessor(st)

	raw := models.RawEvent{Source: models.SourceFeed, URL: "https://example.com/1", Content: "raced"}
	require.NoError(t, p.process(context.Background(), raw))
	assert.Equal(t, 0, out.Len())
}

func TestProcess_StoreErrorPropagates(t *testing.T) {
	st := &mockNewsStore{
		existsByURLFunc: func(ctx context.Context, url string) (bool, error) {
			return false, errors.New("connection reset")
		},
	}
	p, _ := newTestProcessor(st)

	raw := models.RawEvent{Source: models.SourceFeed, URL: "https://example.com/1", Content: "x"}
	assert.Error(t, p.process(context.Background(), raw))
}

func TestProcess_Idempotent(t *testing.T) {
	persisted := make(map[string]bool)
	st := &mockNewsStore{
		existsByURLFunc: func(ctx context.Context, url string) (bool, error) {
			return persisted[url], nil
		},
		insertFunc: func(ctx context.Context, item *models.NewsItem) error {
			persisted[item.URL] = true
			return nil
		},
	}
	p, out := newTestProcessor(st)

	raw := models.RawEvent{Source: models.SourceFeed, URL: "https://example.com/1", Content: "only once"}
	require.NoError(t, p.process(context.Background(), raw))
	require.NoError(t, p.process(context.Background(), raw))

	assert.Len(t, persisted, 1)
	assert.Equal(t, 1, out.Len())
}

func TestProcess_FullDistributionQueueDoesNotFail(t *testing.T) {
	st := &mockNewsStore{}
	in := queue.New[models.RawEvent]("test-in", 10)
	out := queue.New[models.NewsItem]("test-out", 1)
	p := New(Config{}, in, out, st, logging.Default())

	require.True(t, out.TryPut(models.NewsItem{ID: "occupying"}))

	raw := models.RawEvent{Source: models.SourceFeed, URL: "https://example.com/1", Content: "dropped downstream"}
	require.NoError(t, p.process(context.Background(), raw))
	assert.Equal(t, 1, out.Len())
}

func TestParsePublishedAt(t *testing.T) {
	p, _ := newTestProcessor(&mockNewsStore{})
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{
			name:  "feed pubDate",
			value: "Tue, 07 Jan 2025 15:04:05 +0000",
			want:  time.Date(2025, 1, 7, 15, 4, 5, 0, time.UTC),
		},
		{
			name:  "timeline title attribute",
			value: "Jan 2, 2025 · 3:04 PM UTC",
			want:  time.Date(2025, 1, 2, 15, 4, 0, 0, time.UTC),
		},
		{
			name:  "rfc3339",
			value: "2025-01-02T15:04:05Z",
			want:  time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC),
		},
		{
			name:  "unparseable falls back to now",
			value: "yesterday-ish",
			want:  fixed,
		},
		{
			name:  "empty falls back to now",
			value: "",
			want:  fixed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.parsePublishedAt(tt.value)
			assert.InDelta(t, float64(tt.want.UnixNano())/1e9, got, 0.001)
		})
	}
}

func TestPurge(t *testing.T) {
	var gotCutoff time.Time
	st := &mockNewsStore{
		deleteOlderThanFunc: func(ctx context.Context, cutoff time.Time) (int64, error) {
			gotCutoff = cutoff
			return 3, nil
		},
	}

	in := queue.New[models.RawEvent]("test-in", 1)
	out := queue.New[models.NewsItem]("test-out", 1)
	p := New(Config{Retention: 7 * 24 * time.Hour}, in, out, st, logging.Default())

	fixed := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	p.purge(context.Background())
	assert.Equal(t, fixed.Add(-7*24*time.Hour), gotCutoff)
}
