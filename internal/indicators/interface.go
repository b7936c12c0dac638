package indicators

import (
	"time"

	"github.com/ducminhle1904/stock-insight/internal/errors"
	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// TechnicalIndicator is the latest-value contract shared by all indicators.
// Series output (the charting contract) is exposed per indicator because the
// result shapes differ.
type TechnicalIndicator interface {
	Calculate(data []types.OHLCV) (float64, error)
	GetName() string
	GetRequiredPeriods() int
}

// Point is one indicator output sample. Output granularity matches the input
// series minus the indicator's warm-up offset.
type Point struct {
	Timestamp time.Time
	Value     float64
}

// BandSeries holds three parallel point sequences aligned by timestamp,
// representing a volatility envelope.
type BandSeries struct {
	Upper  []Point
	Middle []Point
	Lower  []Point
}

// Len returns the number of aligned band points.
func (b *BandSeries) Len() int {
	return len(b.Middle)
}

// validateSeries rejects out-of-order or duplicate-timestamp input. A series
// that is merely too short is not an error; the indicator yields no points.
func validateSeries(data []types.OHLCV) error {
	if !types.SeriesOrdered(data) {
		return errors.NewValidationError("indicators", "validate series",
			"series timestamps must be strictly increasing")
	}
	return nil
}

// validatePeriod rejects non-positive lookback periods.
func validatePeriod(name string, period int) error {
	if period < 1 {
		return errors.NewValidationError("indicators", "validate period",
			name+" period must be at least 1")
	}
	return nil
}
