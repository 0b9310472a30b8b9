// Package app assembles the provider chain, directory and logo fetcher from
// configuration. Commands share it so the CLI and the server behave alike.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"stocks/internal/board"
	"stocks/internal/config"
	"stocks/internal/directory"
	"stocks/internal/httpx"
	"stocks/internal/logo"
	"stocks/internal/provider"
	"stocks/internal/provider/cache"
	"stocks/internal/provider/iex"
	"stocks/internal/provider/ratelimit"
)

type App struct {
	Config    config.Config
	Directory *directory.Directory
	Provider  provider.Provider
	// Logos downloads logo images. Always set; the board only uses it when
	// Config.Logo.DownloadImages is true.
	Logos  *logo.Fetcher
	Logger *slog.Logger

	rdb *redis.Client
}

// NewLogger returns a text logger on w, at debug level when debug is set.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// New builds the application from cfg. The IEX token must be configured.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.RequireToken(); err != nil {
		return nil, err
	}
	dir, err := directory.New(cfg.Companies)
	if err != nil {
		return nil, fmt.Errorf("directory: %w", err)
	}

	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

	client, err := iex.NewClient(cfg.IEX.Token,
		iex.WithBaseURL(cfg.IEX.BaseURL),
		iex.WithHTTPClient(httpClient),
		iex.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("iex client: %w", err)
	}

	a := &App{Config: cfg, Directory: dir, Logger: logger}

	var store cache.Store
	if cfg.IEX.CacheTTLSeconds > 0 {
		if cfg.Redis.Addr != "" {
			rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				return nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
			}
			a.rdb = rdb
			store = cache.NewRedisStore(rdb, cfg.Redis.Namespace, logger)
			logger.Info("quote cache", "store", "redis", "addr", cfg.Redis.Addr, "ttl_sec", cfg.IEX.CacheTTLSeconds)
		} else {
			store = cache.NewMemoryStore(uint(max(cfg.IEX.CacheMaxItems, 1)))
			logger.Debug("quote cache", "store", "memory", "max_items", cfg.IEX.CacheMaxItems, "ttl_sec", cfg.IEX.CacheTTLSeconds)
		}
	}
	a.Provider = Decorate(client, cfg.IEX, store, logger)

	a.Logos = logo.NewFetcher(
		logo.WithHTTPClient(httpClient),
		logo.WithMaxBytes(cfg.Logo.MaxBytes),
		logo.WithCacheItems(uint(max(cfg.Logo.CacheMaxItems, 0))),
		logo.WithLogger(logger),
	)
	return a, nil
}

// Decorate wraps p with the rate limiter and cache that cfg enables.
// A token bucket is preferred when an RPM is set, otherwise a minimum
// interval. The cache sits outside the limiter so hits cost no quota.
func Decorate(p provider.Provider, cfg config.IEX, store cache.Store, logger *slog.Logger) provider.Provider {
	if cfg.MaxRequestsPerMinute > 0 {
		p = &ratelimit.TokenBucketProvider{P: p, TB: ratelimit.PerMinute(cfg.MaxRequestsPerMinute, cfg.Burst)}
	} else if cfg.MinRequestIntervalSec > 0 {
		p = &ratelimit.MinInterval{P: p, Interval: time.Duration(cfg.MinRequestIntervalSec) * time.Second}
	}
	if store != nil && cfg.CacheTTLSeconds > 0 {
		p = &cache.Provider{P: p, Store: store, TTL: time.Duration(cfg.CacheTTLSeconds) * time.Second, Logger: logger}
	}
	return p
}

// BoardOptions returns the board options matching the configuration.
func (a *App) BoardOptions() []board.Option {
	opts := []board.Option{board.WithLogger(a.Logger)}
	if a.Config.Logo.DownloadImages {
		opts = append(opts, board.WithLogoLoader(a.Logos))
	}
	return opts
}

// Close releases the Redis connection, if any.
func (a *App) Close() error {
	if a.rdb == nil {
		return nil
	}
	err := a.rdb.Close()
	if errors.Is(err, redis.ErrClosed) {
		return nil
	}
	return err
}
