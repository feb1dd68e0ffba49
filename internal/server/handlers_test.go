package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmolDerickSoans/polyfloat-news/internal/fanout"
	"github.com/AmolDerickSoans/polyfloat-news/internal/logging"
	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
	"github.com/AmolDerickSoans/polyfloat-news/internal/ratelimit"
	"github.com/AmolDerickSoans/polyfloat-news/internal/store"
)

// mockNewsStore is a mock implementation of store.NewsStore
type mockNewsStore struct {
	listFunc            func(ctx context.Context, q store.NewsQuery) ([]*models.NewsItem, int, error)
	statsFunc           func(ctx context.Context) (*models.Stats, error)
	deleteOlderThanFunc func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockNewsStore) Insert(ctx context.Context, item *models.NewsItem) error { return nil }

func (m *mockNewsStore) ExistsByURL(ctx context.Context, url string) (bool, error) {
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

// mockSubscriptionStore is a mock implementation of store.SubscriptionStore
type mockSubscriptionStore struct {
	getFilterFunc   func(ctx context.Context, userID string) (*models.SubscriptionFilter, error)
	upsertFunc      func(ctx context.Context, filter *models.SubscriptionFilter) error
	deleteFunc      func(ctx context.Context, userID string) error
	listFiltersFunc func(ctx context.Context) ([]*models.SubscriptionFilter, error)
}

func (m *mockSubscriptionStore) GetFilter(ctx context.Context, userID string) (*models.SubscriptionFilter, error) {
	if m.getFilterFunc != nil {
		return m.getFilterFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockSubscriptionStore) Upsert(ctx context.Context, filter *models.SubscriptionFilter) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, filter)
	}
	return nil
}

func (m *mockSubscriptionStore) Delete(ctx context.Context, userID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, userID)
	}
	return nil
}

func (m *mockSubscriptionStore) ListFilters(ctx context.Context) ([]*models.SubscriptionFilter, error) {
	if m.listFiltersFunc != nil {
		return m.listFiltersFunc(ctx)
	}
	return nil, nil
}

func newTestRouter(news *mockNewsStore, subs *mockSubscriptionStore) http.Handler {
	logger := logging.Default()
	registry := fanout.NewRegistry(logger)
	h := NewHandler(news, subs, registry, nil, "test", logger)
	ws := NewWSHandler(registry, logger)
	return NewRouter(h, ws, &ratelimit.NoOpRateLimiter{}, logger)
}

func TestNewsEndpoint(t *testing.T) {
	var gotQuery store.NewsQuery
	news := &mockNewsStore{
		listFunc: func(ctx context.Context, q store.NewsQuery) ([]*models.NewsItem, int, error) {
			gotQuery = q
			return []*models.NewsItem{{ID: "timeline_abc", ImpactScore: 80}}, 1, nil
		},
	}
	router := newTestRouter(news, &mockSubscriptionStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/news?category=crypto&min_impact=50&limit=10&offset=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "crypto", gotQuery.Category)
	assert.Equal(t, 50.0, gotQuery.MinImpact)
	assert.Equal(t, 10, gotQuery.Limit)
	assert.Equal(t, 5, gotQuery.Offset)

	var resp NewsListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "timeline_abc", resp.Items[0].ID)
	assert.Equal(t, 1, resp.Total)
}

func TestNewsEndpoint_BadQuery(t *testing.T) {
	router := newTestRouter(&mockNewsStore{}, &mockSubscriptionStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/news?min_impact=high", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNewsEndpoint_LimitCapped(t *testing.T) {
	var gotQuery store.NewsQuery
	news := &mockNewsStore{
		listFunc: func(ctx context.Context, q store.NewsQuery) ([]*models.NewsItem, int, error) {
			gotQuery = q
			return nil, 0, nil
		},
	}
	router := newTestRouter(news, &mockSubscriptionStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/news?limit=10000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxListLimit, gotQuery.Limit)
}

func TestNewsEndpoint_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(&mockNewsStore{}, &mockSubscriptionStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/news", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, DELETE", rec.Header().Get("Allow"))
}

func TestNewsPurge(t *testing.T) {
	var gotCutoff time.Time
	news := &mockNewsStore{
		deleteOlderThanFunc: func(ctx context.Context, cutoff time.Time) (int64, error) {
			gotCutoff = cutoff
			return 3, nil
		},
	}
	router := newTestRouter(news, &mockSubscriptionStore{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/news?older_than=168h", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.WithinDuration(t, time.Now().Add(-168*time.Hour), gotCutoff, time.Minute)

	var resp map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp["deleted"])
}

func TestNewsPurge_BadDuration(t *testing.T) {
	router := newTestRouter(&mockNewsStore{}, &mockSubscriptionStore{})

	for _, raw := range []string{"", "yesterday", "-24h"} {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/news?older_than="+raw, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "older_than=%q", raw)
	}
}

func TestStatsEndpoint(t *testing.T) {
	news := &mockNewsStore{
		statsFunc: func(ctx context.Context) (*models.Stats, error) {
			return &models.Stats{TotalNewsItems: 42, ItemsLast24h: 7, AverageImpact: 55.5}, nil
		},
	}
	router := newTestRouter(news, &mockSubscriptionStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 42, stats.TotalNewsItems)
	assert.Equal(t, "test", stats.Version)
	assert.Equal(t, 0, stats.ActiveConnections)
}

func TestStatsEndpoint_TrendingKeywords(t *testing.T) {
	news := &mockNewsStore{
		listFunc: func(ctx context.Context, q store.NewsQuery) ([]*models.NewsItem, int, error) {
			return []*models.NewsItem{
				{Title: "Bitcoin ETF approved by regulators"},
				{Title: "Bitcoin rally continues"},
			}, 2, nil
		},
	}
	router := newTestRouter(news, &mockSubscriptionStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Contains(t, stats.TrendingKeywords, "bitcoin")
}

func TestSubscriptionUpsert(t *testing.T) {
	var saved *models.SubscriptionFilter
	subs := &mockSubscriptionStore{
		upsertFunc: func(ctx context.Context, filter *models.SubscriptionFilter) error {
			saved = filter
			return nil
		},
	}
	router := newTestRouter(&mockNewsStore{}, subs)

	body := `{"user_id":"alice","categories":["crypto"],"keywords":["bitcoin"],"timeline_accounts":[],"feed_sources":[],"impact_threshold":0,"alert_channels":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, saved)
	assert.Equal(t, "alice", saved.UserID)
	assert.Equal(t, models.DefaultImpactThreshold, saved.ImpactThreshold)
	assert.Equal(t, []string{"terminal"}, saved.AlertChannels)
}

func TestSubscriptionUpsert_MissingUserID(t *testing.T) {
	router := newTestRouter(&mockNewsStore{}, &mockSubscriptionStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions", strings.NewReader(`{"keywords":["x"]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubscriptionGet_NotFound(t *testing.T) {
	router := newTestRouter(&mockNewsStore{}, &mockSubscriptionStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/ghost", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubscriptionDelete(t *testing.T) {
	deleted := ""
	subs := &mockSubscriptionStore{
		deleteFunc: func(ctx context.Context, userID string) error {
			deleted = userID
			return nil
		},
	}
	router := newTestRouter(&mockNewsStore{}, subs)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/subscriptions/alice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "alice", deleted)
}

func TestSubscriptionDelete_NotFound(t *testing.T) {
	subs := &mockSubscriptionStore{
		deleteFunc: func(ctx context.Context, userID string) error {
			return store.ErrNotFound
		},
	}
	router := newTestRouter(&mockNewsStore{}, subs)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/subscriptions/ghost", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(&mockNewsStore{}, &mockSubscriptionStore{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(&mockNewsStore{}, &mockSubscriptionStore{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
