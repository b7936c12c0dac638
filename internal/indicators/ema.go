package indicators

import (
	"errors"

	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// EMA represents the Exponential Moving Average technical indicator
type EMA struct {
	period int
	alpha  float64
}

// NewEMA creates a new EMA indicator
func NewEMA(period int) *EMA {
	return &EMA{
		period: period,
		alpha:  2.0 / float64(period+1), // Standard EMA alpha calculation
	}
}

// Series computes the full EMA series. The seed is the SMA over the first
// `period` closes and is not itself emitted: the first output point is at bar
// index `period`, and an input of n bars yields n−p points. Values follow the
// recurrence ema[i] = (close[i]−ema[i−1])·α + ema[i−1] with α = 2/(p+1).
// No alternative seeding is used so results stay reproducible across callers.
func (e *EMA) Series(data []types.OHLCV) ([]Point, error) {
	if err := validatePeriod("EMA", e.period); err != nil {
		return nil, err
	}
	if err := validateSeries(data); err != nil {
		return nil, err
	}
	return emaSeries(data, e.period, e.alpha), nil
}

func emaSeries(data []types.OHLCV, period int, alpha float64) []Point {
	if len(data) <= period {
		// The seed alone produces no output.
		return []Point{}
	}

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += data[i].Close
	}
	ema := seed / float64(period)

	points := make([]Point, 0, len(data)-period)
	for i := period; i < len(data); i++ {
		ema = (data[i].Close-ema)*alpha + ema
		points = append(points, Point{Timestamp: data[i].Timestamp, Value: ema})
	}
	return points
}

// Calculate calculates the latest EMA value by running the recurrence over
// the whole series.
func (e *EMA) Calculate(data []types.OHLCV) (float64, error) {
	if len(data) < e.period {
		return 0, errors.New("insufficient data for EMA calculation")
	}

	seed := 0.0
	for i := 0; i < e.period; i++ {
		seed += data[i].Close
	}
	ema := seed / float64(e.period)

	for i := e.period; i < len(data); i++ {
		ema = (data[i].Close-ema)*e.alpha + ema
	}
	return ema, nil
}

// GetName returns the indicator name
func (e *EMA) GetName() string {
	return "EMA"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (e *EMA) GetRequiredPeriods() int {
	return e.period
}
