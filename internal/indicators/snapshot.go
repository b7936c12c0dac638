package indicators

import (
	"time"

	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// Default lookbacks used by the snapshot and the analysis endpoints.
const (
	DefaultShortSMAPeriod  = 20
	DefaultMediumSMAPeriod = 50
	DefaultLongSMAPeriod   = 200
	DefaultFastEMAPeriod   = 12
	DefaultSlowEMAPeriod   = 26
	DefaultRSIPeriod       = 14
	DefaultSignalPeriod    = 9
	DefaultBBPeriod        = 20
	DefaultBBStdDev        = 2.0
)

// MACDValue holds the latest MACD line, signal line, and histogram
type MACDValue struct {
	Line      float64 `json:"line"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// BandValue holds the latest Bollinger band triple and the price position
// within the bands
type BandValue struct {
	Upper    float64 `json:"upper"`
	Middle   float64 `json:"middle"`
	Lower    float64 `json:"lower"`
	PercentB float64 `json:"percentB"`
}

// Snapshot is the latest computed value of every standard indicator for one
// symbol. Nil fields mean the series is too short for that indicator; absent
// values are never zero-filled.
type Snapshot struct {
	Symbol    string     `json:"symbol"`
	Timestamp time.Time  `json:"timestamp"`
	Close     float64    `json:"close"`
	SMA20     *float64   `json:"sma20,omitempty"`
	SMA50     *float64   `json:"sma50,omitempty"`
	SMA200    *float64   `json:"sma200,omitempty"`
	EMA12     *float64   `json:"ema12,omitempty"`
	EMA26     *float64   `json:"ema26,omitempty"`
	RSI14     *float64   `json:"rsi14,omitempty"`
	MACD      *MACDValue `json:"macd,omitempty"`
	Bollinger *BandValue `json:"bollingerBands,omitempty"`
}

// BuildSnapshot computes the latest value of every standard indicator over the
// series. The series is validated once up front; indicators whose lookback
// exceeds the series length are left nil.
func BuildSnapshot(symbol string, data []types.OHLCV) (*Snapshot, error) {
	if err := validateSeries(data); err != nil {
		return nil, err
	}

	snap := &Snapshot{Symbol: symbol}
	if len(data) > 0 {
		last := data[len(data)-1]
		snap.Timestamp = last.Timestamp
		snap.Close = last.Close
	}

	snap.SMA20 = latestValue(NewSMA(DefaultShortSMAPeriod), data)
	snap.SMA50 = latestValue(NewSMA(DefaultMediumSMAPeriod), data)
	snap.SMA200 = latestValue(NewSMA(DefaultLongSMAPeriod), data)
	snap.EMA12 = latestValue(NewEMA(DefaultFastEMAPeriod), data)
	snap.EMA26 = latestValue(NewEMA(DefaultSlowEMAPeriod), data)
	snap.RSI14 = latestValue(NewRSI(DefaultRSIPeriod), data)

	macd := NewMACD(DefaultFastEMAPeriod, DefaultSlowEMAPeriod, DefaultSignalPeriod)
	if line, signal, histogram, err := macd.Calculate(data); err == nil {
		snap.MACD = &MACDValue{Line: line, Signal: signal, Histogram: histogram}
	}

	bb := NewBollingerBands(DefaultBBPeriod, DefaultBBStdDev)
	if upper, middle, lower, percentB, err := bb.Calculate(data); err == nil {
		snap.Bollinger = &BandValue{Upper: upper, Middle: middle, Lower: lower, PercentB: percentB}
	}

	return snap, nil
}

func latestValue(indicator TechnicalIndicator, data []types.OHLCV) *float64 {
	value, err := indicator.Calculate(data)
	if err != nil {
		return nil
	}
	return &value
}
