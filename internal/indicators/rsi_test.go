package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRSI(t *testing.T) {
	rsi := NewRSI(14)

	assert.NotNil(t, rsi)
	assert.Equal(t, 14, rsi.period)
}

func TestRSI_Calculate_InsufficientData(t *testing.T) {
	rsi := NewRSI(14)
	data := generateTestData(14) // needs period+1 bars

	_, err := rsi.Calculate(data)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient data")
}

func TestRSI_Calculate_AllGains(t *testing.T) {
	rsi := NewRSI(5)
	data := generateRisingData(10)

	value, err := rsi.Calculate(data)
	require.NoError(t, err)
	assert.Equal(t, 100.0, value)
}

func TestRSI_Calculate_AllLosses(t *testing.T) {
	rsi := NewRSI(5)
	data := barsFromCloses(20, 19, 18, 17, 16, 15, 14)

	value, err := rsi.Calculate(data)
	require.NoError(t, err)
	assert.Equal(t, 0.0, value)
}

func TestRSI_Calculate_FlatData(t *testing.T) {
	rsi := NewRSI(5)
	data := generateFlatData(10)

	// No losses at all reads as maximally overbought.
	value, err := rsi.Calculate(data)
	require.NoError(t, err)
	assert.Equal(t, 100.0, value)
}

func TestRSI_Calculate_KnownVector(t *testing.T) {
	rsi := NewRSI(4)
	data := barsFromCloses(10, 11, 10, 12, 11)

	// changes: +1, −1, +2, −1 → avgGain = 3/4, avgLoss = 2/4
	// RS = 1.5, RSI = 100 − 100/2.5 = 60
	value, err := rsi.Calculate(data)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, value, 1e-9)
}

func TestRSI_Calculate_WithinBounds(t *testing.T) {
	rsi := NewRSI(14)
	data := generateTestData(100)

	for i := 15; i < len(data); i++ {
		value, err := rsi.Calculate(data[:i+1])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, value, 0.0)
		assert.LessOrEqual(t, value, 100.0)
	}
}

func TestRSI_OversoldOverbought(t *testing.T) {
	rsi := NewRSI(14)

	assert.True(t, rsi.IsOversold(25))
	assert.False(t, rsi.IsOversold(35))
	assert.True(t, rsi.IsOverbought(75))
	assert.False(t, rsi.IsOverbought(65))
}

func TestRSI_GetName(t *testing.T) {
	rsi := NewRSI(14)
	assert.Equal(t, "RSI", rsi.GetName())
}

func TestRSI_GetRequiredPeriods(t *testing.T) {
	rsi := NewRSI(14)
	assert.Equal(t, 15, rsi.GetRequiredPeriods())
}

func TestRSI_InterfaceCompliance(t *testing.T) {
	var _ TechnicalIndicator = NewRSI(14)
}

func BenchmarkRSI_Calculate(b *testing.B) {
	rsi := NewRSI(14)
	data := generateTestData(100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = rsi.Calculate(data)
	}
}
