package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// stubProvider is an in-memory MarketProvider that counts calls.
type stubProvider struct {
	name       string
	bars       []types.OHLCV
	quote      types.Quote
	err        error
	barCalls   int
	quoteCalls int
}

func (s *stubProvider) GetBars(_ context.Context, _ string, _ types.Interval, limit int) ([]types.OHLCV, error) {
	s.barCalls++
	if s.err != nil {
		return nil, s.err
	}
	return LimitBars(s.bars, limit), nil
}

func (s *stubProvider) GetQuote(context.Context, string) (*types.Quote, error) {
	s.quoteCalls++
	if s.err != nil {
		return nil, s.err
	}
	quote := s.quote
	return &quote, nil
}

func (s *stubProvider) GetName() string { return s.name }

func TestCachedProvider_BarsHitCache(t *testing.T) {
	stub := &stubProvider{name: "Stub", bars: dailyBars(100)}
	cached := NewCachedProvider(stub)

	first, err := cached.GetBars(context.Background(), "AAPL", types.IntervalDaily, 50)
	require.NoError(t, err)
	assert.Len(t, first, 50)

	second, err := cached.GetBars(context.Background(), "AAPL", types.IntervalDaily, 20)
	require.NoError(t, err)
	assert.Len(t, second, 20)

	// One upstream fetch serves both limits.
	assert.Equal(t, 1, stub.barCalls)
	assert.Equal(t, 1, cached.GetCacheSize())
}

func TestCachedProvider_SeparateKeysPerInterval(t *testing.T) {
	stub := &stubProvider{name: "Stub", bars: dailyBars(10)}
	cached := NewCachedProvider(stub)

	_, err := cached.GetBars(context.Background(), "AAPL", types.IntervalDaily, 0)
	require.NoError(t, err)
	_, err = cached.GetBars(context.Background(), "AAPL", types.IntervalWeekly, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, stub.barCalls)
	assert.Equal(t, 2, cached.GetCacheSize())
}

func TestCachedProvider_QuoteTTL(t *testing.T) {
	stub := &stubProvider{name: "Stub", quote: types.Quote{Symbol: "AAPL", Price: 185}}
	cached := NewCachedProviderWithTTL(stub, 0, 30*time.Millisecond)

	_, err := cached.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	_, err = cached.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, stub.quoteCalls)

	time.Sleep(40 * time.Millisecond)
	_, err = cached.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, stub.quoteCalls)
}

func TestCachedProvider_ClearCache(t *testing.T) {
	stub := &stubProvider{name: "Stub", bars: dailyBars(10), quote: types.Quote{Symbol: "AAPL"}}
	cached := NewCachedProvider(stub)

	_, err := cached.GetBars(context.Background(), "AAPL", types.IntervalDaily, 0)
	require.NoError(t, err)
	_, err = cached.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	cached.ClearCache()
	assert.Equal(t, 0, cached.GetCacheSize())

	_, err = cached.GetBars(context.Background(), "AAPL", types.IntervalDaily, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.barCalls)
}

func TestCachedProvider_GetName(t *testing.T) {
	cached := NewCachedProvider(&stubProvider{name: "Stub"})
	assert.Equal(t, "Cached Stub", cached.GetName())
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	cache := NewMemoryCacheWithTTL(20 * time.Millisecond)
	cache.Set("k", dailyBars(3))

	_, ok := cache.Get("k")
	assert.True(t, ok)

	time.Sleep(30 * time.Millisecond)
	_, ok = cache.Get("k")
	assert.False(t, ok)
}

func TestMemoryCache_CopiesData(t *testing.T) {
	cache := NewMemoryCache()
	original := dailyBars(3)
	cache.Set("k", original)

	got, ok := cache.Get("k")
	require.True(t, ok)
	got[0].Close = -1

	again, _ := cache.Get("k")
	assert.Equal(t, original[0].Close, again[0].Close)
}
