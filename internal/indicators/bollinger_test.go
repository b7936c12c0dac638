package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ducminhle1904/stock-insight/internal/errors"
	"github.com/ducminhle1904/stock-insight/pkg/types"
)

func TestNewBollingerBands(t *testing.T) {
	bb := NewBollingerBands(20, 2.0)

	assert.NotNil(t, bb)
	assert.Equal(t, 20, bb.period)
	assert.Equal(t, 2.0, bb.stdDevMultiple)
}

func TestBollingerBands_Series_KnownVector(t *testing.T) {
	bb := NewBollingerBands(5, 2.0)
	data := barsFromCloses(10, 11, 12, 13, 14)

	bands, err := bb.Series(data)
	require.NoError(t, err)
	require.Equal(t, 1, bands.Len())

	// mean = 12, population variance = (4+1+0+1+4)/5 = 2
	sigma := math.Sqrt(2.0)
	assert.InDelta(t, 12.0, bands.Middle[0].Value, 1e-9)
	assert.InDelta(t, 12.0+2*sigma, bands.Upper[0].Value, 1e-9)
	assert.InDelta(t, 12.0-2*sigma, bands.Lower[0].Value, 1e-9)
}

func TestBollingerBands_Series_SharedTimestamps(t *testing.T) {
	bb := NewBollingerBands(20, 2.0)
	data := generateTestData(60)

	bands, err := bb.Series(data)
	require.NoError(t, err)
	require.Equal(t, 41, bands.Len()) // n−p+1

	for i := 0; i < bands.Len(); i++ {
		assert.Equal(t, bands.Middle[i].Timestamp, bands.Upper[i].Timestamp)
		assert.Equal(t, bands.Middle[i].Timestamp, bands.Lower[i].Timestamp)
	}
}

func TestBollingerBands_Series_MiddleIsSMA(t *testing.T) {
	bb := NewBollingerBands(20, 2.0)
	sma := NewSMA(20)
	data := generateTestData(60)

	bands, err := bb.Series(data)
	require.NoError(t, err)

	smaPoints, err := sma.Series(data)
	require.NoError(t, err)

	require.Equal(t, len(smaPoints), bands.Len())
	for i := range smaPoints {
		assert.InDelta(t, smaPoints[i].Value, bands.Middle[i].Value, 1e-9)
	}
}

func TestBollingerBands_Series_InsufficientData(t *testing.T) {
	bb := NewBollingerBands(20, 2.0)
	data := generateTestData(10)

	bands, err := bb.Series(data)
	require.NoError(t, err)
	assert.Equal(t, 0, bands.Len())
}

func TestBollingerBands_Series_UnorderedTimestamps(t *testing.T) {
	bb := NewBollingerBands(5, 2.0)
	data := generateTestData(10)
	data[7].Timestamp = data[6].Timestamp.Add(-time.Minute)

	_, err := bb.Series(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestBollingerBands_Calculate_KnownVector(t *testing.T) {
	bb := NewBollingerBands(5, 2.0)
	data := barsFromCloses(10, 11, 12, 13, 14)

	upper, middle, lower, bbPercent, err := bb.Calculate(data)
	require.NoError(t, err)

	sigma := math.Sqrt(2.0)
	assert.InDelta(t, 12.0, middle, 1e-9)
	assert.InDelta(t, 12.0+2*sigma, upper, 1e-9)
	assert.InDelta(t, 12.0-2*sigma, lower, 1e-9)

	expectedPercent := ((14.0 - lower) / (upper - lower)) * 100
	assert.InDelta(t, expectedPercent, bbPercent, 1e-9)
}

func TestBollingerBands_Calculate_InsufficientData(t *testing.T) {
	bb := NewBollingerBands(20, 2.0)
	data := generateTestData(10)

	_, _, _, _, err := bb.Calculate(data)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient data")
}

func TestBollingerBands_Calculate_FlatData(t *testing.T) {
	bb := NewBollingerBands(5, 2.0)
	data := generateFlatData(10)

	upper, middle, lower, bbPercent, err := bb.Calculate(data)
	require.NoError(t, err)

	// Zero volatility collapses the bands onto the middle.
	assert.Equal(t, middle, upper)
	assert.Equal(t, middle, lower)
	assert.Equal(t, 50.0, bbPercent)
}

func TestBollingerBands_Calculate_VolatileData(t *testing.T) {
	bb := NewBollingerBands(10, 2.0)
	data := generateVolatileData(30)

	upper, middle, lower, _, err := bb.Calculate(data)
	require.NoError(t, err)

	assert.Greater(t, upper, middle)
	assert.Less(t, lower, middle)
}

func TestBollingerBands_GetName(t *testing.T) {
	bb := NewBollingerBands(20, 2.0)
	assert.Equal(t, "BOLLINGER_BANDS", bb.GetName())
}

func TestBollingerBands_GetRequiredPeriods(t *testing.T) {
	bb := NewBollingerBands(20, 2.0)
	assert.Equal(t, 20, bb.GetRequiredPeriods())
}

func BenchmarkBollingerBands_Series(b *testing.B) {
	bb := NewBollingerBands(20, 2.0)
	data := generateTestData(500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = bb.Series(data)
	}
}

// Helper function for volatile data
func generateVolatileData(count int) []types.OHLCV {
	data := make([]types.OHLCV, count)
	basePrice := 100.0

	for i := 0; i < count; i++ {
		change := (float64(i%2)*2 - 1) * 20.0 // -20 or +20
		price := basePrice + change

		data[i] = types.OHLCV{
			Timestamp: time.Now().Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      price + 5.0,
			Low:       price - 5.0,
			Close:     price,
			Volume:    1000.0,
		}
	}

	return data
}
