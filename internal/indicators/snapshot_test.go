package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ducminhle1904/stock-insight/internal/errors"
)

func TestBuildSnapshot_FullSeries(t *testing.T) {
	data := generateTestData(250)

	snap, err := BuildSnapshot("AAPL", data)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", snap.Symbol)
	assert.Equal(t, data[249].Timestamp, snap.Timestamp)
	assert.Equal(t, data[249].Close, snap.Close)

	require.NotNil(t, snap.SMA20)
	require.NotNil(t, snap.SMA50)
	require.NotNil(t, snap.SMA200)
	require.NotNil(t, snap.EMA12)
	require.NotNil(t, snap.EMA26)
	require.NotNil(t, snap.RSI14)
	require.NotNil(t, snap.MACD)
	require.NotNil(t, snap.Bollinger)

	assert.InDelta(t, snap.MACD.Line-snap.MACD.Signal, snap.MACD.Histogram, 1e-9)
	assert.GreaterOrEqual(t, *snap.RSI14, 0.0)
	assert.LessOrEqual(t, *snap.RSI14, 100.0)
}

func TestBuildSnapshot_ShortSeries(t *testing.T) {
	data := generateTestData(30)

	snap, err := BuildSnapshot("AAPL", data)
	require.NoError(t, err)

	// Only the indicators whose lookback fits are populated.
	assert.NotNil(t, snap.SMA20)
	assert.Nil(t, snap.SMA50)
	assert.Nil(t, snap.SMA200)
	assert.NotNil(t, snap.EMA12)
	assert.NotNil(t, snap.EMA26)
	assert.NotNil(t, snap.RSI14)
	assert.Nil(t, snap.MACD) // needs 34 bars
	assert.NotNil(t, snap.Bollinger)
}

func TestBuildSnapshot_EmptySeries(t *testing.T) {
	snap, err := BuildSnapshot("AAPL", nil)
	require.NoError(t, err)

	assert.Nil(t, snap.SMA20)
	assert.Nil(t, snap.MACD)
	assert.Nil(t, snap.Bollinger)
	assert.True(t, snap.Timestamp.IsZero())
}

func TestBuildSnapshot_UnorderedSeries(t *testing.T) {
	data := generateTestData(50)
	data[10], data[20] = data[20], data[10]

	_, err := BuildSnapshot("AAPL", data)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
