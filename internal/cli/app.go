// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yomira-harvester/internal/catalog"
	"github.com/taibuivan/yomira-harvester/internal/harvest"
	"github.com/taibuivan/yomira-harvester/internal/platform/config"
	"github.com/taibuivan/yomira-harvester/internal/platform/constants"
	"github.com/taibuivan/yomira-harvester/internal/platform/metrics"
	"github.com/taibuivan/yomira-harvester/internal/platform/migration"
	pgstore "github.com/taibuivan/yomira-harvester/internal/platform/postgres"
	redisstore "github.com/taibuivan/yomira-harvester/internal/platform/redis"
	"github.com/taibuivan/yomira-harvester/internal/session"
)

// # Setup

// newLogger builds the JSON logger every command writes to.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String(constants.FieldApp, constants.AppName))
}

// setup loads the configuration and the logger shared by every command.
func setup(opts *RootOptions, w io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "load configuration", err)
	}

	if opts.Debug {
		cfg.Debug = true
	}

	logger := newLogger(w, cfg.Debug)
	slog.SetDefault(logger)

	logger.Debug("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("state_backend", cfg.StateBackend),
		slog.String("category", cfg.CatalogCategory),
	)

	return cfg, logger, nil
}

// # State Backends

// openRedis connects when the configuration needs Redis and returns nil otherwise.
func openRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*redis.Client, error) {
	if !cfg.UsesRedis() {
		return nil, nil
	}

	client, err := redisstore.NewClient(ctx, cfg.RedisURL, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "connect to redis", err)
	}
	return client, nil
}

func newCursorStore(cfg *config.Config, client redis.Cmdable) harvest.CursorStore {
	if cfg.StateBackend == config.BackendRedis {
		return harvest.NewRedisCursorStore(client)
	}
	return harvest.NewFileCursorStore(cfg.CursorPath())
}

func newTokenStore(cfg *config.Config, client redis.Cmdable) session.TokenStore {
	if cfg.StateBackend == config.BackendRedis {
		return session.NewRedisTokenStore(client)
	}
	return session.NewFileTokenStore(cfg.TokenPath())
}

// # Harvester Wiring

// harvester is the fully wired scan engine and the resources it owns.
type harvester struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	pool    *pgxpool.Pool
	redis   *redis.Client
	records *harvest.PostgresRepository
	tracker *harvest.Tracker
	scanner *harvest.Scanner
}

// openHarvester connects every dependency, applies migrations and loads the cursor.
func openHarvester(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *harvester, err error) {
	h := &harvester{cfg: cfg, logger: logger, metrics: metrics.New()}
	defer func() {
		if err != nil {
			h.Close()
		}
	}()

	// 1. Record store
	h.pool, err = pgstore.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "connect to postgres", err)
	}

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
		return nil, WrapExitError(ExitCommandError, "run migrations", err)
	}

	// 2. Durable state
	h.redis, err = openRedis(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// 3. Remote catalog and credentials
	options := catalog.Options{
		BaseURL:   cfg.CatalogBaseURL,
		Category:  cfg.CatalogCategory,
		Sort:      cfg.CatalogSort,
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		ProxyURL:  cfg.ProxyURL,
		Timeout:   cfg.RequestTimeout,
		RPS:       cfg.RequestRPS,
		Burst:     cfg.RequestBurst,
		Metrics:   h.metrics,
		Logger:    logger,
	}

	authenticator, err := catalog.NewAuthenticator(options)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "configure catalog sign-in", err)
	}

	credentials := session.NewService(authenticator, newTokenStore(cfg, h.redis), cfg.Username, cfg.Password, h.metrics, logger)

	client, err := catalog.NewClient(options, credentials)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "configure catalog client", err)
	}

	// 4. Dedup gateway over the record store
	h.records = harvest.NewPostgresRepository(h.pool)
	gateway, err := harvest.NewGateway(h.records, harvest.Mapper{StripTag: cfg.StripTag, Kind: cfg.RecordKind}, cfg.KnownCacheSize, h.metrics)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "configure dedup gateway", err)
	}

	// 5. Cursor
	h.tracker = harvest.NewTracker(newCursorStore(cfg, h.redis), h.metrics)
	state, err := h.tracker.Load(ctx)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load cursor", err)
	}

	logger.Info("cursor_loaded",
		slog.Int("position", state.Position),
		slog.Int("last_total_pages", state.LastKnownTotalPages),
	)

	h.scanner = harvest.NewScanner(client, gateway, h.tracker, h.metrics, logger)
	return h, nil
}

// Close releases the pool and the Redis client.
func (h *harvester) Close() {
	if h.redis != nil {
		if err := h.redis.Close(); err != nil {
			h.logger.Error("redis_close_failed", slog.Any("error", err))
		}
	}
	if h.pool != nil {
		h.pool.Close()
	}
}

// checkRedis returns a readiness probe, or nil when Redis is not in use.
func (h *harvester) checkRedis() func(context.Context) error {
	if h.redis == nil {
		return nil
	}
	return func(ctx context.Context) error {
		return redisstore.Ping(ctx, h.redis)
	}
}
