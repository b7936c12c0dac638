package indicators

import (
	"fmt"
	"strings"
)

// IndicatorType represents the type of technical indicator
type IndicatorType string

const (
	IndicatorTypeSMA            IndicatorType = "SMA"
	IndicatorTypeEMA            IndicatorType = "EMA"
	IndicatorTypeRSI            IndicatorType = "RSI"
	IndicatorTypeMACD           IndicatorType = "MACD"
	IndicatorTypeBollingerBands IndicatorType = "BOLLINGER_BANDS"
)

// IndicatorFactory creates technical indicators based on type and parameters
type IndicatorFactory struct{}

// NewIndicatorFactory creates a new indicator factory
func NewIndicatorFactory() *IndicatorFactory {
	return &IndicatorFactory{}
}

// CreateIndicator creates a single-value technical indicator of the specified
// type. MACD and Bollinger Bands expose multi-value Calculate signatures and
// are constructed directly rather than through the factory.
func (f *IndicatorFactory) CreateIndicator(indicatorType IndicatorType, params map[string]interface{}) (TechnicalIndicator, error) {
	switch indicatorType {
	case IndicatorTypeSMA:
		period, ok := params["period"].(int)
		if !ok {
			return nil, fmt.Errorf("sma requires 'period' parameter")
		}
		return NewSMA(period), nil

	case IndicatorTypeEMA:
		period, ok := params["period"].(int)
		if !ok {
			return nil, fmt.Errorf("ema requires 'period' parameter")
		}
		return NewEMA(period), nil

	case IndicatorTypeRSI:
		period, ok := params["period"].(int)
		if !ok {
			return nil, fmt.Errorf("rsi requires 'period' parameter")
		}
		return NewRSI(period), nil

	default:
		return nil, fmt.Errorf("unknown indicator type: %s", indicatorType)
	}
}

// GetAvailableIndicators returns a list of available indicator types
func (f *IndicatorFactory) GetAvailableIndicators() []IndicatorType {
	return []IndicatorType{
		IndicatorTypeSMA,
		IndicatorTypeEMA,
		IndicatorTypeRSI,
		IndicatorTypeMACD,
		IndicatorTypeBollingerBands,
	}
}

// ParseIndicatorType parses a string into an IndicatorType
func ParseIndicatorType(s string) (IndicatorType, error) {
	switch strings.ToUpper(s) {
	case "SMA":
		return IndicatorTypeSMA, nil
	case "EMA":
		return IndicatorTypeEMA, nil
	case "RSI":
		return IndicatorTypeRSI, nil
	case "MACD":
		return IndicatorTypeMACD, nil
	case "BOLLINGER_BANDS", "BB":
		return IndicatorTypeBollingerBands, nil
	default:
		return "", fmt.Errorf("unknown indicator type: %s", s)
	}
}
