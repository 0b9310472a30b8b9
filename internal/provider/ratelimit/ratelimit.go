package ratelimit

import (
	"context"
	"sync"
	"time"

	"stocks/internal/provider"
)

// MinInterval wraps a provider and enforces a minimum time between the
// start of consecutive calls, shared across quote and logo fetches.
// Concurrent callers reserve successive slots, or return early if the
// context is canceled.
type MinInterval struct {
	P        provider.Provider
	Interval time.Duration

	mu   sync.Mutex
	next time.Time
}

func (m *MinInterval) Name() string { return m.P.Name() }

func (m *MinInterval) FetchQuote(ctx context.Context, symbol string) (provider.Quote, error) {
	if err := m.wait(ctx); err != nil {
		return provider.Quote{}, err
	}
	return m.P.FetchQuote(ctx, symbol)
}

func (m *MinInterval) FetchLogo(ctx context.Context, symbol string) (provider.Logo, error) {
	if err := m.wait(ctx); err != nil {
		return provider.Logo{}, err
	}
	return m.P.FetchLogo(ctx, symbol)
}

func (m *MinInterval) wait(ctx context.Context) error {
	if m.Interval <= 0 {
		return nil
	}
	m.mu.Lock()
	now := time.Now()
	slot := m.next
	if slot.Before(now) {
		slot = now
	}
	m.next = slot.Add(m.Interval)
	m.mu.Unlock()

	return sleep(ctx, time.Until(slot))
}

// sleep blocks for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
