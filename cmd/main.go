package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lofmon/internal/adapters/config"
	"lofmon/internal/adapters/errors/noop"
	"lofmon/internal/adapters/errors/sentry"
	"lofmon/internal/adapters/jisilu"
	adapterredis "lofmon/internal/adapters/redis"
	"lofmon/internal/domain/account"
	"lofmon/internal/domain/feed"
	"lofmon/internal/domain/holding"
	"lofmon/internal/metrics"
	repoRedis "lofmon/internal/repository/redis"
	"lofmon/internal/services/market"
	"lofmon/internal/workers"
	"lofmon/pkg/cache"
	"lofmon/pkg/errors"
	"lofmon/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	metrics.Register()

	redisClient, err := adapterredis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Stores and repositories
	store := cache.NewRedisStore(redisClient.Client())
	holdingRepo := repoRedis.NewHoldingRepository(redisClient.Client())
	accountRepo := repoRedis.NewAccountRepository(redisClient.Client())

	// Domain services
	holdingService := holding.NewService(holdingRepo)
	accountService := account.NewService(accountRepo)
	normalizer := feed.NewNormalizer(feed.NewKeywordClassifier(), feed.NewHeuristicEstimator())
	feedClient := jisilu.NewClient(cfg.Feed)
	marketService := market.NewService(feedClient, store, normalizer, cfg.Feed.CacheTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := holdingService.Load(ctx); err != nil {
		log.Warnf("Holdings unavailable at startup, starting empty: %v", err)
	}
	if err := accountService.Load(ctx); err != nil {
		log.Warnf("Trading accounts unavailable at startup, starting empty: %v", err)
	}

	// Background workers
	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(workers.NewOpportunityRefreshWorker(
		marketService, cfg.Workers.OpportunityRefreshInterval, cfg.Workers.OpportunityRefreshEnabled))
	scheduler.RegisterWorker(workers.NewHoldingStatusWorker(
		holdingService, cfg.Workers.HoldingStatusInterval, cfg.Workers.HoldingStatusEnabled))
	scheduler.RegisterWorker(workers.NewCacheSweepWorker(
		store, cfg.Workers.CacheSweepInterval, cfg.Workers.CacheSweepEnabled))

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}

	if cfg.Metrics.Enabled {
		go func() {
			log.Infof("Metrics server listening on %s", cfg.Metrics.Addr)
			if err := metrics.StartServer(cfg.Metrics.Addr); err != nil {
				log.Errorf("Metrics server error: %v", err)
			}
		}()
	}

	log.Info("System initialized successfully")

	waitForShutdown(ctx, cancel, scheduler, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// waitForShutdown blocks until a termination signal, then stops workers and
// flushes the error tracker.
func waitForShutdown(ctx context.Context, cancel context.CancelFunc, scheduler *workers.Scheduler, tracker errors.Tracker, log *logger.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infof("Received signal %v, shutting down...", sig)
	case <-ctx.Done():
		log.Info("Context cancelled, shutting down...")
	}

	cancel()

	if err := scheduler.Stop(); err != nil {
		log.Warnf("Worker shutdown incomplete: %v", err)
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := tracker.Flush(flushCtx); err != nil {
		log.Warnf("Error tracker flush failed: %v", err)
	}

	log.Info("Shutdown complete")
}
