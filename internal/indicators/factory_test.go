package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndicatorFactory_CreateIndicator(t *testing.T) {
	factory := NewIndicatorFactory()

	sma, err := factory.CreateIndicator(IndicatorTypeSMA, map[string]interface{}{"period": 20})
	require.NoError(t, err)
	assert.Equal(t, "SMA", sma.GetName())

	ema, err := factory.CreateIndicator(IndicatorTypeEMA, map[string]interface{}{"period": 12})
	require.NoError(t, err)
	assert.Equal(t, "EMA", ema.GetName())

	rsi, err := factory.CreateIndicator(IndicatorTypeRSI, map[string]interface{}{"period": 14})
	require.NoError(t, err)
	assert.Equal(t, "RSI", rsi.GetName())
}

func TestIndicatorFactory_MissingParameter(t *testing.T) {
	factory := NewIndicatorFactory()

	_, err := factory.CreateIndicator(IndicatorTypeSMA, map[string]interface{}{})
	assert.Error(t, err)

	_, err = factory.CreateIndicator(IndicatorTypeSMA, map[string]interface{}{"period": "20"})
	assert.Error(t, err)
}

func TestIndicatorFactory_UnknownType(t *testing.T) {
	factory := NewIndicatorFactory()

	_, err := factory.CreateIndicator(IndicatorType("VWAP"), nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown indicator type")
}

func TestParseIndicatorType(t *testing.T) {
	cases := []struct {
		input    string
		expected IndicatorType
	}{
		{"sma", IndicatorTypeSMA},
		{"EMA", IndicatorTypeEMA},
		{"rsi", IndicatorTypeRSI},
		{"macd", IndicatorTypeMACD},
		{"bb", IndicatorTypeBollingerBands},
		{"BOLLINGER_BANDS", IndicatorTypeBollingerBands},
	}

	for _, tc := range cases {
		parsed, err := ParseIndicatorType(tc.input)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, parsed)
	}

	_, err := ParseIndicatorType("fibonacci")
	assert.Error(t, err)
}
