package indicators

import (
	"errors"
	"math"

	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// BollingerBands represents the Bollinger Bands indicator
type BollingerBands struct {
	period         int
	stdDevMultiple float64
}

// NewBollingerBands creates a new BollingerBands instance with the given
// period and standard deviation multiplier
func NewBollingerBands(period int, stdDev float64) *BollingerBands {
	return &BollingerBands{
		period:         period,
		stdDevMultiple: stdDev,
	}
}

// Series computes the full band series. The middle band is SMA(period); the
// standard deviation is the population form (divide by p, not p−1); upper and
// lower are middle ± multiplier·σ. All three series share identical
// timestamps and the same p−1 warm-up as the SMA.
func (bb *BollingerBands) Series(data []types.OHLCV) (*BandSeries, error) {
	if err := validatePeriod("Bollinger Bands", bb.period); err != nil {
		return nil, err
	}
	if err := validateSeries(data); err != nil {
		return nil, err
	}

	middle := smaSeries(data, bb.period)
	bands := &BandSeries{
		Upper:  make([]Point, len(middle)),
		Middle: middle,
		Lower:  make([]Point, len(middle)),
	}

	for i, mid := range middle {
		// The window ending at input index i+period−1 produced middle[i].
		window := data[i : i+bb.period]
		sigma := populationStdDev(window, mid.Value)
		bands.Upper[i] = Point{Timestamp: mid.Timestamp, Value: mid.Value + bb.stdDevMultiple*sigma}
		bands.Lower[i] = Point{Timestamp: mid.Timestamp, Value: mid.Value - bb.stdDevMultiple*sigma}
	}
	return bands, nil
}

func populationStdDev(window []types.OHLCV, mean float64) float64 {
	variance := 0.0
	for _, bar := range window {
		diff := bar.Close - mean
		variance += diff * diff
	}
	variance /= float64(len(window))
	return math.Sqrt(variance)
}

// Calculate computes the latest upper, middle, and lower bands, and the BB%
// (price position within the bands, 0 = lower band, 100 = upper band)
func (bb *BollingerBands) Calculate(data []types.OHLCV) (upper, middle, lower, bbPercent float64, err error) {
	if len(data) < bb.period {
		return 0, 0, 0, 0, errors.New("insufficient data for Bollinger Bands calculation")
	}

	window := data[len(data)-bb.period:]
	sum := 0.0
	for _, bar := range window {
		sum += bar.Close
	}
	middle = sum / float64(bb.period)
	sigma := populationStdDev(window, middle)

	upper = middle + bb.stdDevMultiple*sigma
	lower = middle - bb.stdDevMultiple*sigma

	currentPrice := data[len(data)-1].Close
	if upper == lower {
		bbPercent = 50
	} else {
		bbPercent = ((currentPrice - lower) / (upper - lower)) * 100
	}
	return upper, middle, lower, bbPercent, nil
}

// GetName returns the indicator name
func (bb *BollingerBands) GetName() string {
	return "BOLLINGER_BANDS"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (bb *BollingerBands) GetRequiredPeriods() int {
	return bb.period
}
