package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"stocks/internal/provider"
)

// Store persists encoded results with an expiry. Implementations are
// best-effort: a failed Get is a miss and a failed Set is ignored.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// Provider caches successful quote and logo results per symbol for a TTL.
// Errors are never cached. A nil Store or TTL <= 0 makes it a passthrough.
type Provider struct {
	P      provider.Provider
	Store  Store
	TTL    time.Duration
	Logger *slog.Logger
}

func (c *Provider) Name() string { return c.P.Name() }

func (c *Provider) FetchQuote(ctx context.Context, symbol string) (provider.Quote, error) {
	return fetch(ctx, c, "quote", symbol, c.P.FetchQuote)
}

func (c *Provider) FetchLogo(ctx context.Context, symbol string) (provider.Logo, error) {
	return fetch(ctx, c, "logo", symbol, c.P.FetchLogo)
}

func fetch[T any](ctx context.Context, c *Provider, kind, symbol string, next func(context.Context, string) (T, error)) (T, error) {
	if c.Store == nil || c.TTL <= 0 {
		return next(ctx, symbol)
	}

	key := kind + ":" + strings.ToUpper(strings.TrimSpace(symbol))
	if b, ok := c.Store.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			c.logDebug(ctx, "cache hit", "key", key)
			return v, nil
		}
		// Corrupted entry; drop it so the fetch below repopulates.
		c.Store.Delete(ctx, key)
	}

	v, err := next(ctx, symbol)
	if err != nil {
		return v, err
	}
	if b, err := json.Marshal(v); err == nil {
		c.Store.Set(ctx, key, b, c.TTL)
	}
	return v, nil
}

func (c *Provider) logDebug(ctx context.Context, msg string, args ...any) {
	if c.Logger != nil {
		c.Logger.DebugContext(ctx, msg, args...)
	}
}
