package data

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// Default cache lifetimes. Historical bars move slowly; quotes are kept just
// long enough to stay inside the free-tier request budget.
const (
	DefaultBarTTL   = 5 * time.Minute
	DefaultQuoteTTL = time.Minute
)

type barEntry struct {
	data     []types.OHLCV
	storedAt time.Time
}

// MemoryCache implements BarCache using in-memory storage with an optional
// TTL. A zero TTL never expires.
type MemoryCache struct {
	cache map[string]barEntry
	ttl   time.Duration
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache without expiry
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithTTL(0)
}

// NewMemoryCacheWithTTL creates a new in-memory cache whose entries expire
// after ttl
func NewMemoryCacheWithTTL(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: make(map[string]barEntry),
		ttl:   ttl,
	}
}

// Get retrieves data from cache if available and fresh
func (c *MemoryCache) Get(key string) ([]types.OHLCV, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.cache[key]
	if !exists {
		return nil, false
	}
	if c.ttl > 0 && time.Since(entry.storedAt) > c.ttl {
		return nil, false
	}

	// Return a copy to prevent external modifications
	result := make([]types.OHLCV, len(entry.data))
	copy(result, entry.data)
	return result, true
}

// Set stores data in cache
func (c *MemoryCache) Set(key string, data []types.OHLCV) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	cached := make([]types.OHLCV, len(data))
	copy(cached, data)
	c.cache[key] = barEntry{data: cached, storedAt: time.Now()}
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string]barEntry)
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

type quoteEntry struct {
	quote    types.Quote
	storedAt time.Time
}

// CachedProvider wraps a MarketProvider with bar and quote caching.
type CachedProvider struct {
	provider MarketProvider
	bars     BarCache
	quoteTTL time.Duration

	quoteMu sync.RWMutex
	quotes  map[string]quoteEntry
}

// NewCachedProvider creates a cached provider with the default lifetimes.
func NewCachedProvider(provider MarketProvider) *CachedProvider {
	return NewCachedProviderWithTTL(provider, DefaultBarTTL, DefaultQuoteTTL)
}

// NewCachedProviderWithTTL creates a cached provider with explicit lifetimes.
// A zero barTTL caches bars forever, which suits immutable local files.
func NewCachedProviderWithTTL(provider MarketProvider, barTTL, quoteTTL time.Duration) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		bars:     NewMemoryCacheWithTTL(barTTL),
		quoteTTL: quoteTTL,
		quotes:   make(map[string]quoteEntry),
	}
}

// GetName returns the name of the underlying provider with cache indication
func (p *CachedProvider) GetName() string {
	return "Cached " + p.provider.GetName()
}

// GetBars loads bars with caching. The full series is fetched and cached per
// symbol and interval; the limit is applied to the cached copy, so repeated
// requests with different limits hit the same entry.
func (p *CachedProvider) GetBars(ctx context.Context, symbol string, interval types.Interval, limit int) ([]types.OHLCV, error) {
	key := fmt.Sprintf("%s|%s", symbol, interval)

	if cached, exists := p.bars.Get(key); exists {
		return LimitBars(cached, limit), nil
	}

	data, err := p.provider.GetBars(ctx, symbol, interval, 0)
	if err != nil {
		return nil, err
	}
	p.bars.Set(key, data)

	slog.Debug("loaded and cached bars",
		"provider", p.provider.GetName(), "symbol", symbol,
		"interval", interval, "bars", len(data))
	return LimitBars(data, limit), nil
}

// GetQuote fetches the latest quote, serving a cached copy while it is fresh.
func (p *CachedProvider) GetQuote(ctx context.Context, symbol string) (*types.Quote, error) {
	p.quoteMu.RLock()
	entry, exists := p.quotes[symbol]
	p.quoteMu.RUnlock()
	if exists && time.Since(entry.storedAt) <= p.quoteTTL {
		quote := entry.quote
		return &quote, nil
	}

	quote, err := p.provider.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	p.quoteMu.Lock()
	p.quotes[symbol] = quoteEntry{quote: *quote, storedAt: time.Now()}
	p.quoteMu.Unlock()
	return quote, nil
}

// ClearCache clears all cached bars and quotes.
func (p *CachedProvider) ClearCache() {
	p.bars.Clear()
	p.quoteMu.Lock()
	p.quotes = make(map[string]quoteEntry)
	p.quoteMu.Unlock()
}

// GetCacheSize returns the number of cached bar series.
func (p *CachedProvider) GetCacheSize() int {
	return p.bars.Size()
}
