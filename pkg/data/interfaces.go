package data

import (
	"context"
	"time"

	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// BarProvider loads historical OHLCV bars for a symbol.
type BarProvider interface {
	// GetBars returns up to limit bars in ascending timestamp order. A limit
	// of 0 means the provider's natural maximum.
	GetBars(ctx context.Context, symbol string, interval types.Interval, limit int) ([]types.OHLCV, error)

	// GetName returns the name of the data provider
	GetName() string
}

// QuoteProvider fetches the latest quote for a symbol.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (*types.Quote, error)
	GetName() string
}

// MarketProvider combines bar and quote access; the router and every remote
// provider implement both.
type MarketProvider interface {
	BarProvider
	QuoteProvider
}

// BarCache caches loaded bar series.
type BarCache interface {
	// Get retrieves data from cache if available
	Get(key string) ([]types.OHLCV, bool)

	// Set stores data in cache
	Set(key string, data []types.OHLCV)

	// Clear removes all cached data
	Clear()

	// Size returns the number of cached entries
	Size() int
}

// DataFilter filters and validates bar series.
type DataFilter interface {
	// FilterByPeriod filters data to the trailing period
	FilterByPeriod(data []types.OHLCV, period time.Duration) []types.OHLCV

	// FilterByDateRange filters data to a specific date range
	FilterByDateRange(data []types.OHLCV, start, end time.Time) []types.OHLCV

	// ValidateTimeSequence ensures data is in chronological order
	ValidateTimeSequence(data []types.OHLCV) error
}

// CSVColumnMapping defines the column positions for different CSV formats
type CSVColumnMapping struct {
	TimestampCol int
	OpenCol      int
	HighCol      int
	LowCol       int
	CloseCol     int
	VolumeCol    int
	MinColumns   int
	DateFormat   string
}

// DefaultCSVFormat covers the common "timestamp,open,high,low,close,volume"
// layout with datetime timestamps.
var DefaultCSVFormat = CSVColumnMapping{
	TimestampCol: 0,
	OpenCol:      1,
	HighCol:      2,
	LowCol:       3,
	CloseCol:     4,
	VolumeCol:    5,
	MinColumns:   6,
	DateFormat:   "2006-01-02 15:04:05",
}

// DailyCSVFormat is the same layout with date-only timestamps, as exported by
// most equity data downloads.
var DailyCSVFormat = CSVColumnMapping{
	TimestampCol: 0,
	OpenCol:      1,
	HighCol:      2,
	LowCol:       3,
	CloseCol:     4,
	VolumeCol:    5,
	MinColumns:   6,
	DateFormat:   "2006-01-02",
}
