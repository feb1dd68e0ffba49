package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/AmolDerickSoans/polyfloat-news/internal/config"
	"github.com/AmolDerickSoans/polyfloat-news/internal/fanout"
	"github.com/AmolDerickSoans/polyfloat-news/internal/ingest"
	"github.com/AmolDerickSoans/polyfloat-news/internal/logging"
	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
	"github.com/AmolDerickSoans/polyfloat-news/internal/processor"
	"github.com/AmolDerickSoans/polyfloat-news/internal/queue"
	"github.com/AmolDerickSoans/polyfloat-news/internal/ratelimit"
	"github.com/AmolDerickSoans/polyfloat-news/internal/server"
	"github.com/AmolDerickSoans/polyfloat-news/internal/store"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "path to config file")
	migrationsPath := flag.String("migrations", "file://migrations", "migration source URL")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(logger)

	// Run database migrations
	logger.Info("running database migrations")
	m, err := migrate.New(*migrationsPath, cfg.Database.ConnString())
	if err != nil {
		logger.Error("failed to initialize migrations", logging.Error(err))
		os.Exit(1)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("failed to run migrations", logging.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.NewPostgresStore(ctx, cfg.Database.ConnString())
	if err != nil {
		logger.Error("failed to connect to postgres", logging.Error(err))
		os.Exit(1)
	}
	defer st.Close()

	ingestQueue := queue.New[models.RawEvent]("ingest", cfg.Pipeline.IngestQueueSize)
	distQueue := queue.New[models.NewsItem]("distribution", cfg.Pipeline.DistQueueSize)

	registry := fanout.NewRegistry(logger)

	var sink fanout.AlertSink
	if cfg.Nats.Enabled {
		natsSink, err := fanout.NewNatsSink(cfg.Nats.URL)
		if err != nil {
			logger.Error("failed to connect to NATS", logging.Error(err))
			os.Exit(1)
		}
		defer natsSink.Close()
		sink = natsSink
	}

	var limiter ratelimit.RateLimiter
	if cfg.Redis.Enabled {
		limiter, err = ratelimit.NewRedisRateLimiter(
			cfg.Redis.URL, cfg.Redis.RateLimitRequests, cfg.Redis.RateLimitWindow, false)
		if err != nil {
			logger.Error("failed to connect to redis", logging.Error(err))
			os.Exit(1)
		}
	} else {
		limiter = &ratelimit.NoOpRateLimiter{}
	}
	defer limiter.Close()

	var wg sync.WaitGroup

	// Ingestion adapters
	timeline := ingest.NewTimelineAdapter(ingest.TimelineConfig{
		Endpoints:      cfg.Timeline.Endpoints,
		Accounts:       cfg.Timeline.Accounts,
		SweepInterval:  cfg.Timeline.SweepInterval,
		AccountDelay:   cfg.Timeline.AccountDelay,
		RequestTimeout: cfg.Timeline.RequestTimeout,
		MaxRetries:     cfg.Timeline.MaxRetries,
		ItemLimit:      cfg.Timeline.ItemLimit,
	}, ingestQueue, logger)
	runStage(ctx, &wg, timeline.Run)

	health := ingest.NewHealthChecker(timeline.Pool(), cfg.Timeline.HealthInterval, logger)
	runStage(ctx, &wg, health.Run)

	if len(cfg.Feeds.URLs) > 0 {
		feeds := ingest.NewFeedAdapter(ingest.FeedConfig{
			URLs:           cfg.Feeds.URLs,
			SweepInterval:  cfg.Feeds.SweepInterval,
			RequestTimeout: cfg.Feeds.RequestTimeout,
			MaxRetries:     cfg.Feeds.MaxRetries,
			ItemLimit:      cfg.Feeds.ItemLimit,
		}, ingestQueue, logger)
		runStage(ctx, &wg, feeds.Run)
	}

	// Processing stage
	proc := processor.New(processor.Config{
		Retention:     cfg.Pipeline.Retention,
		PurgeInterval: cfg.Pipeline.PurgeInterval,
	}, ingestQueue, distQueue, st, logger)
	runStage(ctx, &wg, proc.Run)
	runStage(ctx, &wg, proc.RunPurge)

	// Fan-out stage
	broadcaster := fanout.NewBroadcaster(distQueue, registry, st, sink, cfg.Fanout.KeepAliveInterval, logger)
	runStage(ctx, &wg, broadcaster.Run)
	runStage(ctx, &wg, broadcaster.RunKeepAlive)

	// HTTP surface
	handler := server.NewHandler(st, st, registry, health, version, logger)
	wsHandler := server.NewWSHandler(registry, logger)
	router := server.NewRouter(handler, wsHandler, limiter, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("newsd listening", logging.Endpoint(srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", logging.Error(err))
			cancel()
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", logging.Error(err))
	}

	cancel()
	wg.Wait()
	logger.Info("stopped")
}

func runStage(ctx context.Context, wg *sync.WaitGroup, fn func(context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		fn(ctx)
	}()
}
