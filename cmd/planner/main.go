package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/delivery-planner/internal/cache"
	"github.com/rickgao/delivery-planner/internal/config"
	"github.com/rickgao/delivery-planner/internal/database"
	"github.com/rickgao/delivery-planner/internal/dispatch"
	"github.com/rickgao/delivery-planner/internal/eta"
	"github.com/rickgao/delivery-planner/internal/geo"
	"github.com/rickgao/delivery-planner/internal/planner"
	"github.com/rickgao/delivery-planner/internal/server"
	"github.com/rickgao/delivery-planner/internal/store"
	"github.com/rickgao/delivery-planner/internal/stream"
	"github.com/rickgao/delivery-planner/internal/travel"
	"github.com/rickgao/delivery-planner/internal/version"
)

const appName = "delivery-planner"

func main() {
	configPath := flag.String("config", "", "path to config file (defaults are used when empty)")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting planner",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadAndValidate(*configPath)
		if err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"strategy", cfg.Planner.Strategy,
		"cache", cfg.Cache.Backend,
		"postgres", cfg.Database.Enabled(),
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("planner failed", "error", err)
		os.Exit(1)
	}
	logger.Info("planner stopped")
}

func run(ctx context.Context, cfg *config.PlannerConfig, logger *slog.Logger) error {
	checks := make(map[string]server.Check)

	est, closeCache, err := buildEstimator(ctx, cfg, logger, checks)
	if err != nil {
		return err
	}
	defer closeCache()

	plans, closeStore, err := buildStore(ctx, cfg, logger, checks)
	if err != nil {
		return err
	}
	defer closeStore()

	hub := stream.NewHub(cfg.Stream.BufferSize, logger)

	p, err := planner.New(est, planner.Config{
		Strategy:  cfg.Planner.Strategy,
		BeamWidth: cfg.Planner.BeamWidth,
	},
		planner.WithStore(plans),
		planner.WithPublisher(hub),
		planner.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create planner: %w", err)
	}

	dispatcher := dispatch.New(dispatch.Config{
		Concurrency: cfg.Dispatch.Concurrency,
		Timeout:     cfg.Dispatch.Timeout,
	}, p, logger)

	srv := server.New(server.Config{
		Port:         cfg.Server.Port,
		RateLimit:    cfg.Server.RateLimit,
		RateWindow:   cfg.Server.RateWindow,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		MetricsPath:  cfg.Metrics.Path,
		Stream: stream.Config{
			PingInterval: cfg.Stream.PingInterval,
			WriteTimeout: cfg.Stream.WriteTimeout,
		},
	}, server.Deps{
		Planner:    p,
		Dispatcher: dispatcher,
		Hub:        hub,
		Checks:     checks,
	}, logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	logger.Info("planner running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	// Closing the hub first ends open websocket feeds so Shutdown does not
	// wait on them.
	hub.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("server shutdown incomplete", "error", err)
	}

	stats := dispatcher.Stats()
	logger.Info("dispatch totals",
		"cycles", stats.Cycles,
		"planned", stats.Planned,
		"failed", stats.Failed,
	)
	return nil
}

// buildEstimator chains Haversine distance, average speed and the
// configured travel-time cache.
func buildEstimator(ctx context.Context, cfg *config.PlannerConfig, logger *slog.Logger, checks map[string]server.Check) (travel.TimeEstimator, func(), error) {
	speed, err := eta.NewAverageSpeed(cfg.Planner.AverageSpeedKmh)
	if err != nil {
		return nil, nil, fmt.Errorf("create eta estimator: %w", err)
	}
	svc := travel.NewService(geo.Haversine{}, speed)

	var c cache.Cache
	var closer io.Closer
	switch cfg.Cache.Backend {
	case "none":
		return svc, func() {}, nil
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:      cfg.Cache.Redis.Addr,
			Password:  cfg.Cache.Redis.Password,
			DB:        cfg.Cache.Redis.DB,
			KeyPrefix: appName + ":travel:",
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		checks["cache"] = func(ctx context.Context) (string, error) {
			if err := rc.Ping(ctx); err != nil {
				return "", err
			}
			return "redis", nil
		}
		c, closer = rc, rc
	default:
		mc := cache.NewMemoryCache(time.Minute)
		checks["cache"] = func(context.Context) (string, error) {
			return fmt.Sprintf("memory (%d entries)", mc.Stats().Size), nil
		}
		c, closer = mc, mc
	}

	closeFn := func() {
		st := c.Stats()
		logger.Info("travel cache closed", "hits", st.Hits, "misses", st.Misses)
		if err := closer.Close(); err != nil {
			logger.Warn("close cache", "error", err)
		}
	}
	return travel.NewCached(svc, c, cfg.Cache.TTL), closeFn, nil
}

// buildStore connects to Postgres when configured, otherwise plans are
// kept in memory.
func buildStore(ctx context.Context, cfg *config.PlannerConfig, logger *slog.Logger, checks map[string]server.Check) (store.Store, func(), error) {
	if !cfg.Database.Enabled() {
		mem := store.NewMemory()
		checks["store"] = func(context.Context) (string, error) {
			return fmt.Sprintf("memory (%d plans)", mem.Len()), nil
		}
		logger.Info("using in-memory plan store")
		return mem, func() {}, nil
	}

	db := cfg.Database.Postgres
	logger.Info("connecting to database",
		"host", db.Host,
		"port", db.Port,
		"database", db.Name,
	)
	pool, err := database.Connect(ctx, db, appName+"-"+cfg.Instance.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	pg := store.NewPostgres(pool, logger)
	if err := pg.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	logger.Info("database connected")

	checks["store"] = func(ctx context.Context) (string, error) {
		if err := pg.Ping(ctx); err != nil {
			return "", err
		}
		return "postgres", nil
	}
	return pg, pool.Close, nil
}
