package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func barsAt(times ...time.Time) []OHLCV {
	out := make([]OHLCV, len(times))
	for i, ts := range times {
		out[i] = OHLCV{Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000, Timestamp: ts}
	}
	return out
}

func TestSeriesOrdered(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		data []OHLCV
		want bool
	}{
		{"empty", nil, true},
		{"single", barsAt(day), true},
		{"ascending", barsAt(day, day.AddDate(0, 0, 1), day.AddDate(0, 0, 2)), true},
		{"duplicate timestamp", barsAt(day, day), false},
		{"descending", barsAt(day.AddDate(0, 0, 1), day), false},
		{"out of order in the middle", barsAt(day, day.AddDate(0, 0, 2), day.AddDate(0, 0, 1)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SeriesOrdered(tt.data))
		})
	}
}

func TestCloses(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	data := barsAt(day, day.AddDate(0, 0, 1))
	data[0].Close = 101.5
	data[1].Close = 103.25

	assert.Equal(t, []float64{101.5, 103.25}, Closes(data))
	assert.Empty(t, Closes(nil))
}

func TestLastN(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	data := barsAt(day, day.AddDate(0, 0, 1), day.AddDate(0, 0, 2))

	assert.Len(t, LastN(data, 2), 2)
	assert.Equal(t, data[1].Timestamp, LastN(data, 2)[0].Timestamp)
	assert.Equal(t, data, LastN(data, 5))
	assert.Nil(t, LastN(data, 0))
	assert.Nil(t, LastN(data, -1))
}

func TestClassifySymbol(t *testing.T) {
	tests := []struct {
		symbol string
		want   AssetClass
	}{
		{"AAPL", AssetEquity},
		{"MSFT", AssetEquity},
		{"BTCUSDT", AssetCrypto},
		{"ethusdt", AssetCrypto},
		{"SOLUSDC", AssetCrypto},
		{"BTCPERP", AssetCrypto},
		{"USDT", AssetEquity}, // bare suffix is not a pair
		{"T", AssetEquity},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySymbol(tt.symbol))
		})
	}
}
