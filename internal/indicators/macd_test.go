package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMACD(t *testing.T) {
	macd := NewMACD(12, 26, 9)

	assert.NotNil(t, macd)
	assert.Equal(t, 12, macd.fastPeriod)
	assert.Equal(t, 26, macd.slowPeriod)
	assert.Equal(t, 9, macd.signalPeriod)
}

func TestMACD_Calculate_InsufficientData(t *testing.T) {
	macd := NewMACD(12, 26, 9)
	data := generateTestData(33) // needs slow+signal−1 = 34

	_, _, _, err := macd.Calculate(data)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient data")
}

func TestMACD_Calculate_FlatData(t *testing.T) {
	macd := NewMACD(12, 26, 9)
	data := generateFlatData(60)

	line, signal, histogram, err := macd.Calculate(data)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, line, 1e-9)
	assert.InDelta(t, 0.0, signal, 1e-9)
	assert.InDelta(t, 0.0, histogram, 1e-9)
}

func TestMACD_Calculate_LineMatchesEMASpread(t *testing.T) {
	macd := NewMACD(12, 26, 9)
	data := generateTestData(120)

	line, _, _, err := macd.Calculate(data)
	require.NoError(t, err)

	fast, err := NewEMA(12).Calculate(data)
	require.NoError(t, err)
	slow, err := NewEMA(26).Calculate(data)
	require.NoError(t, err)

	assert.InDelta(t, fast-slow, line, 1e-9)
}

func TestMACD_Calculate_RisingTrend(t *testing.T) {
	macd := NewMACD(12, 26, 9)
	data := generateRisingData(120)

	line, _, _, err := macd.Calculate(data)
	require.NoError(t, err)

	// In a sustained uptrend the fast EMA sits above the slow EMA.
	assert.Greater(t, line, 0.0)
}

func TestMACD_Calculate_HistogramIsSpread(t *testing.T) {
	macd := NewMACD(12, 26, 9)
	data := generateTestData(120)

	line, signal, histogram, err := macd.Calculate(data)
	require.NoError(t, err)
	assert.InDelta(t, line-signal, histogram, 1e-9)
}

func TestMACD_IsBullishCrossover(t *testing.T) {
	macd := NewMACD(12, 26, 9)

	assert.True(t, macd.IsBullishCrossover(1.0, 0.5, -0.2, 0.1))
	assert.False(t, macd.IsBullishCrossover(0.3, 0.5, -0.2, 0.1)) // still below
	assert.False(t, macd.IsBullishCrossover(1.0, 0.5, 0.8, 0.1))  // already above
}

func TestMACD_GetName(t *testing.T) {
	macd := NewMACD(12, 26, 9)
	assert.Equal(t, "MACD", macd.GetName())
}

func TestMACD_GetRequiredPeriods(t *testing.T) {
	macd := NewMACD(12, 26, 9)
	assert.Equal(t, 34, macd.GetRequiredPeriods())
}

func TestEMAValues_Alignment(t *testing.T) {
	values := []float64{10, 11, 12, 13, 14}

	result := emaValues(values, 3) // alpha = 0.5
	require.Len(t, result, 3)

	// seed = 11, then 12, then 13 (same recurrence as the EMA indicator)
	assert.InDelta(t, 11.0, result[0], 1e-9)
	assert.InDelta(t, 12.0, result[1], 1e-9)
	assert.InDelta(t, 13.0, result[2], 1e-9)
}

func TestEMAValues_TooShort(t *testing.T) {
	assert.Nil(t, emaValues([]float64{1, 2}, 3))
}

func BenchmarkMACD_Calculate(b *testing.B) {
	macd := NewMACD(12, 26, 9)
	data := generateTestData(500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _, _ = macd.Calculate(data)
	}
}
