package cache_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"
	"stocks/internal/provider"
	"stocks/internal/provider/cache"
)

// countingProvider returns fixed results and records how often it was hit.
type countingProvider struct {
	mu     sync.Mutex
	quotes int
	logos  int
	err    error
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) FetchQuote(_ context.Context, symbol string) (provider.Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quotes++
	if p.err != nil {
		return provider.Quote{}, p.err
	}
	return provider.Quote{CompanyName: "Apple Inc.", Symbol: symbol, Price: 150.25, Change: -1.5}, nil
}

func (p *countingProvider) FetchLogo(_ context.Context, symbol string) (provider.Logo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logos++
	if p.err != nil {
		return provider.Logo{}, p.err
	}
	return provider.Logo{ImageURL: "https://example.com/" + symbol + ".png"}, nil
}

func TestProvider_MemoryStore_HitsAfterFirstFetch(t *testing.T) {
	t.Parallel()

	// Arrange
	inner := &countingProvider{}
	p := &cache.Provider{P: inner, Store: cache.NewMemoryStore(10), TTL: time.Minute}

	// Act: fetch the same symbol repeatedly, with varying case
	for _, s := range []string{"AAPL", "aapl", " AAPL "} {
		q, err := p.FetchQuote(t.Context(), s)
		require.NoError(t, err)
		require.Equal(t, 150.25, q.Price)
		_, err = p.FetchLogo(t.Context(), s)
		require.NoError(t, err)
	}

	// Assert: one upstream call per kind
	require.Equal(t, 1, inner.quotes)
	require.Equal(t, 1, inner.logos)
	require.Equal(t, "counting", p.Name())
}

func TestProvider_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	inner := &countingProvider{err: &provider.NetworkError{Op: "quote", Symbol: "AAPL", StatusCode: 503}}
	p := &cache.Provider{P: inner, Store: cache.NewMemoryStore(10), TTL: time.Minute}

	for range 3 {
		_, err := p.FetchQuote(t.Context(), "AAPL")
		require.True(t, provider.IsNetwork(err))
	}
	require.Equal(t, 3, inner.quotes)
}

func TestProvider_PassthroughWhenDisabled(t *testing.T) {
	t.Parallel()

	inner := &countingProvider{}
	for _, p := range []*cache.Provider{
		{P: inner, Store: cache.NewMemoryStore(10), TTL: 0},
		{P: inner, Store: nil, TTL: time.Minute},
	} {
		_, err := p.FetchQuote(t.Context(), "AAPL")
		require.NoError(t, err)
		_, err = p.FetchQuote(t.Context(), "AAPL")
		require.NoError(t, err)
	}
	require.Equal(t, 4, inner.quotes)
}

func TestProvider_RedisStore_MissThenSet(t *testing.T) {
	t.Parallel()

	// Arrange: redis mock expecting a miss followed by a write
	rdb, mock := redismock.NewClientMock()
	want := provider.Quote{CompanyName: "Apple Inc.", Symbol: "AAPL", Price: 150.25, Change: -1.5}
	b, err := json.Marshal(want)
	require.NoError(t, err)
	mock.ExpectGet("stocks:quote:AAPL").RedisNil()
	mock.ExpectSet("stocks:quote:AAPL", b, 30*time.Second).SetVal("OK")

	inner := &countingProvider{}
	p := &cache.Provider{P: inner, Store: cache.NewRedisStore(rdb, "", nil), TTL: 30 * time.Second}

	// Act
	got, err := p.FetchQuote(t.Context(), "AAPL")

	// Assert
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, 1, inner.quotes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProvider_RedisStore_Hit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("quotes:logo:MSFT").SetVal(`{"imageUrl":"https://example.com/msft.png"}`)

	inner := &countingProvider{}
	p := &cache.Provider{P: inner, Store: cache.NewRedisStore(rdb, "quotes", nil), TTL: time.Minute}

	logo, err := p.FetchLogo(t.Context(), "msft")

	require.NoError(t, err)
	require.Equal(t, provider.Logo{ImageURL: "https://example.com/msft.png"}, logo)
	require.Zero(t, inner.logos)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProvider_RedisStore_CorruptedEntryIsReplaced(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	want := provider.Logo{ImageURL: "https://example.com/KOSS.png"}
	b, err := json.Marshal(want)
	require.NoError(t, err)
	mock.ExpectGet("stocks:logo:KOSS").SetVal("invalid json")
	mock.ExpectDel("stocks:logo:KOSS").SetVal(1)
	mock.ExpectSet("stocks:logo:KOSS", b, time.Minute).SetVal("OK")

	inner := &countingProvider{}
	p := &cache.Provider{P: inner, Store: cache.NewRedisStore(rdb, "stocks", nil), TTL: time.Minute}

	got, err := p.FetchLogo(t.Context(), "KOSS")

	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, 1, inner.logos)
	require.NoError(t, mock.ExpectationsWereMet())
}
