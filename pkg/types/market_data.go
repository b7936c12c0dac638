package types

import (
	"strings"
	"time"
)

// OHLCV is a single bar of market data: one time-bucketed price sample.
// Bars are immutable once produced by a data source; callers own the slice
// for the duration of a computation.
type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// Quote is the latest traded snapshot for a symbol.
type Quote struct {
	Symbol        string
	Price         float64
	Open          float64
	High          float64
	Low           float64
	PrevClose     float64
	Change        float64
	ChangePercent float64
	Volume        float64
	Timestamp     time.Time
}

// Interval identifies the bar granularity of a series.
type Interval string

const (
	IntervalDaily  Interval = "daily"
	IntervalWeekly Interval = "weekly"
	Interval1h     Interval = "60min"
	Interval15m    Interval = "15min"
	Interval5m     Interval = "5min"
)

// AssetClass distinguishes symbols routed to different data providers.
type AssetClass string

const (
	AssetEquity AssetClass = "equity"
	AssetCrypto AssetClass = "crypto"
)

// ClassifySymbol guesses the asset class from the symbol format. Crypto pairs
// follow the exchange convention of a quote-currency suffix (BTCUSDT); plain
// tickers are treated as equities.
func ClassifySymbol(symbol string) AssetClass {
	s := strings.ToUpper(symbol)
	for _, suffix := range []string{"USDT", "USDC", "PERP"} {
		if len(s) > len(suffix) && strings.HasSuffix(s, suffix) {
			return AssetCrypto
		}
	}
	return AssetEquity
}
