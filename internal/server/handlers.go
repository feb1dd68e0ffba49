package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AmolDerickSoans/polyfloat-news/internal/classifier"
	"github.com/AmolDerickSoans/polyfloat-news/internal/fanout"
	"github.com/AmolDerickSoans/polyfloat-news/internal/ingest"
	"github.com/AmolDerickSoans/polyfloat-news/internal/logging"
	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
	"github.com/AmolDerickSoans/polyfloat-news/internal/store"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200

	trendingSample = 100
	trendingMax    = 10
)

// ErrorResponse is the JSON error body returned by all API endpoints.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewsListResponse is the paginated body for GET /api/v1/news.
type NewsListResponse struct {
	Items  []*models.NewsItem `json:"items"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// Handler wires HTTP routes to the store and the live pipeline state.
type Handler struct {
	news     store.NewsStore
	subs     store.SubscriptionStore
	registry *fanout.Registry
	health   *ingest.HealthChecker
	logger   *logging.Logger
	started  time.Time
	version  string
}

// NewHandler creates a Handler instance. health may be nil when no
// timeline endpoints are configured.
func NewHandler(news store.NewsStore, subs store.SubscriptionStore, registry *fanout.Registry, health *ingest.HealthChecker, version string, logger *logging.Logger) *Handler {
	return &Handler{
		news:     news,
		subs:     subs,
		registry: registry,
		health:   health,
		logger:   logger,
		started:  time.Now(),
		version:  version,
	}
}

// News handles GET /api/v1/news and DELETE /api/v1/news.
func (h *Handler) News(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listNews(w, r)
	case http.MethodDelete:
		h.purgeNews(w, r)
	default:
		h.methodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

func (h *Handler) listNews(w http.ResponseWriter, r *http.Request) {
	q, err := parseNewsQuery(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	items, total, err := h.news.List(r.Context(), q)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "news list failed", logging.Error(err))
		h.writeError(w, http.StatusInternalServerError, "news_unavailable", "failed to list news items")
		return
	}
	if items == nil {
		items = []*models.NewsItem{}
	}

	h.writeJSON(w, http.StatusOK, NewsListResponse{
		Items:  items,
		Total:  total,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
}

// purgeNews deletes items published before now minus older_than.
func (h *Handler) purgeNews(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("older_than")
	if raw == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "older_than is required")
		return
	}
	age, err := time.ParseDuration(raw)
	if err != nil || age <= 0 {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "older_than must be a positive duration")
		return
	}

	deleted, err := h.news.DeleteOlderThan(r.Context(), time.Now().Add(-age))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "news purge failed", logging.Error(err))
		h.writeError(w, http.StatusInternalServerError, "purge_failed", "failed to purge news items")
		return
	}

	h.logger.InfoContext(r.Context(), "news purged",
		slog.Int64("deleted", deleted), slog.String("older_than", raw))
	h.writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func parseNewsQuery(r *http.Request) (store.NewsQuery, error) {
	q := store.NewsQuery{
		Category: r.URL.Query().Get("category"),
		Source:   r.URL.Query().Get("source"),
		Limit:    defaultListLimit,
	}

	if v := r.URL.Query().Get("min_impact"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return q, errors.New("min_impact must be a number")
		}
		q.MinImpact = f
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return q, errors.New("limit must be a positive integer")
		}
		if n > maxListLimit {
			n = maxListLimit
		}
		q.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return q, errors.New("offset must be a non-negative integer")
		}
		q.Offset = n
	}
	return q, nil
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}

	stats, err := h.news.Stats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "stats query failed", logging.Error(err))
		h.writeError(w, http.StatusInternalServerError, "stats_unavailable", "failed to compute stats")
		return
	}

	stats.ActiveConnections = h.registry.Count()
	stats.UptimeSeconds = time.Since(h.started).Seconds()
	stats.Version = h.version
	if h.health != nil {
		stats.Endpoints = h.health.Status()
	}
	stats.TrendingKeywords = h.trendingKeywords(r)

	h.writeJSON(w, http.StatusOK, stats)
}

// trendingKeywords extracts keywords from the most recent item titles.
// Best effort; a failing list just leaves the field empty.
func (h *Handler) trendingKeywords(r *http.Request) []string {
	items, _, err := h.news.List(r.Context(), store.NewsQuery{Limit: trendingSample})
	if err != nil || len(items) == 0 {
		return nil
	}
	titles := make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, item.Title)
	}
	return classifier.Keywords(strings.Join(titles, " "), trendingMax)
}

// Subscriptions handles GET/POST /api/v1/subscriptions.
func (h *Handler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listSubscriptions(w, r)
	case http.MethodPost:
		h.upsertSubscription(w, r)
	default:
		h.methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *Handler) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	filters, err := h.subs.ListFilters(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "subscription list failed", logging.Error(err))
		h.writeError(w, http.StatusInternalServerError, "subscriptions_unavailable", "failed to list subscriptions")
		return
	}
	if filters == nil {
		filters = []*models.SubscriptionFilter{}
	}
	h.writeJSON(w, http.StatusOK, filters)
}

func (h *Handler) upsertSubscription(w http.ResponseWriter, r *http.Request) {
	var filter models.SubscriptionFilter
	if err := decodeJSON(r.Body, &filter); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if filter.UserID == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "user_id is required")
		return
	}
	if filter.ImpactThreshold <= 0 {
		filter.ImpactThreshold = models.DefaultImpactThreshold
	}
	if len(filter.AlertChannels) == 0 {
		filter.AlertChannels = []string{"terminal"}
	}

	if err := h.subs.Upsert(r.Context(), &filter); err != nil {
		h.logger.ErrorContext(r.Context(), "subscription upsert failed",
			logging.UserID(filter.UserID), logging.Error(err))
		h.writeError(w, http.StatusInternalServerError, "subscription_upsert_failed", "failed to save subscription")
		return
	}
	h.writeJSON(w, http.StatusOK, &filter)
}

// SubscriptionByID handles GET/DELETE /api/v1/subscriptions/{userId}.
func (h *Handler) SubscriptionByID(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimPrefix(r.URL.Path, "/api/v1/subscriptions/")
	if userID == "" || strings.ContainsRune(userID, '/') {
		h.writeError(w, http.StatusBadRequest, "invalid_user_id", "user id must be provided")
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.getSubscription(w, r, userID)
	case http.MethodDelete:
		h.deleteSubscription(w, r, userID)
	default:
		h.methodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

func (h *Handler) getSubscription(w http.ResponseWriter, r *http.Request, userID string) {
	filter, err := h.subs.GetFilter(r.Context(), userID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "subscription lookup failed",
			logging.UserID(userID), logging.Error(err))
		h.writeError(w, http.StatusInternalServerError, "subscription_lookup_failed", "failed to look up subscription")
		return
	}
	if filter == nil {
		h.writeError(w, http.StatusNotFound, "subscription_not_found", "subscription not found")
		return
	}
	h.writeJSON(w, http.StatusOK, filter)
}

func (h *Handler) deleteSubscription(w http.ResponseWriter, r *http.Request, userID string) {
	if err := h.subs.Delete(r.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "subscription_not_found", "subscription not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "subscription delete failed",
			logging.UserID(userID), logging.Error(err))
		h.writeError(w, http.StatusInternalServerError, "subscription_delete_failed", "failed to delete subscription")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /healthz for liveness probes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /readyz. It reports ready only once the store
// answers queries.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}
	if _, err := h.news.Stats(r.Context()); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "store_unavailable", "store is not reachable")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method is not allowed")
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
