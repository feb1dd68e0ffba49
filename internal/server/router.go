package server

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AmolDerickSoans/polyfloat-news/internal/logging"
	"github.com/AmolDerickSoans/polyfloat-news/internal/middleware"
	"github.com/AmolDerickSoans/polyfloat-news/internal/ratelimit"
)

// NewRouter constructs the HTTP surface: the JSON API, the websocket
// endpoint, probes and Prometheus metrics. limiter applies to the API
// routes only; probes, metrics and the websocket upgrade are exempt.
func NewRouter(h *Handler, ws *WSHandler, limiter ratelimit.RateLimiter, logger *logging.Logger) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/api/v1/news", h.News)
	api.HandleFunc("/api/v1/stats", h.Stats)
	api.HandleFunc("/api/v1/subscriptions", h.Subscriptions)
	api.HandleFunc("/api/v1/subscriptions/", h.SubscriptionByID)

	mux := http.NewServeMux()
	mux.Handle("/api/", rateLimited(api, limiter, logger))
	mux.Handle("/ws", ws)
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	cors := middleware.CORS(middleware.DefaultCORSConfig())
	return middleware.RequestID(cors(mux))
}

// rateLimited rejects requests over the per-client budget with 429.
// Limiter errors fail open so a Redis outage does not take the API down.
func rateLimited(next http.Handler, limiter ratelimit.RateLimiter, logger *logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		allowed, err := limiter.Allow(r.Context(), key)
		if err != nil {
			logger.WarnContext(r.Context(), "rate limit check failed", logging.Error(err))
			allowed = true
		}
		if !allowed {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"code":"rate_limited","message":"too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
