package indicators

import (
	"errors"

	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// SMA represents the Simple Moving Average technical indicator
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator
func NewSMA(period int) *SMA {
	return &SMA{period: period}
}

// Series computes the full SMA series. For an input of n bars and period p the
// output has n−p+1 points; point i (0-indexed from p−1) is the arithmetic mean
// of the closes in the trailing window of size p ending at bar i. A series
// shorter than the period yields no points, which is not an error.
func (s *SMA) Series(data []types.OHLCV) ([]Point, error) {
	if err := validatePeriod("SMA", s.period); err != nil {
		return nil, err
	}
	if err := validateSeries(data); err != nil {
		return nil, err
	}
	return smaSeries(data, s.period), nil
}

// smaSeries is the unvalidated core shared with the Bollinger middle band.
// Rolling-sum form, O(n).
func smaSeries(data []types.OHLCV, period int) []Point {
	if len(data) < period {
		return []Point{}
	}

	points := make([]Point, 0, len(data)-period+1)
	sum := 0.0
	for i, bar := range data {
		sum += bar.Close
		if i >= period {
			sum -= data[i-period].Close
		}
		if i >= period-1 {
			points = append(points, Point{
				Timestamp: bar.Timestamp,
				Value:     sum / float64(period),
			})
		}
	}
	return points
}

// Calculate calculates the latest SMA value
func (s *SMA) Calculate(data []types.OHLCV) (float64, error) {
	if len(data) < s.period {
		return 0, errors.New("insufficient data for SMA calculation")
	}

	sum := 0.0
	for i := len(data) - s.period; i < len(data); i++ {
		sum += data[i].Close
	}
	return sum / float64(s.period), nil
}

// GetName returns the indicator name
func (s *SMA) GetName() string {
	return "SMA"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (s *SMA) GetRequiredPeriods() int {
	return s.period
}
