package indicators

import (
	"errors"

	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// MACD calculates the Moving Average Convergence Divergence indicator
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD instance with specified fast, slow, and signal periods
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

// Calculate computes the latest MACD line, signal line, and histogram. The
// signal line is the EMA of the MACD series, so the full history feeds the
// computation rather than a single bar.
func (m *MACD) Calculate(data []types.OHLCV) (macdLine, signalLine, histogram float64, err error) {
	if len(data) < m.GetRequiredPeriods() {
		return 0, 0, 0, errors.New("insufficient data for MACD calculation")
	}

	prices := types.Closes(data)
	fastEMA := emaValues(prices, m.fastPeriod)
	slowEMA := emaValues(prices, m.slowPeriod)

	// Both recurrences are defined from index slowPeriod−1 onward.
	offset := m.slowPeriod - m.fastPeriod
	macdSeries := make([]float64, len(slowEMA))
	for i := range slowEMA {
		macdSeries[i] = fastEMA[i+offset] - slowEMA[i]
	}

	signalSeries := emaValues(macdSeries, m.signalPeriod)

	macdLine = macdSeries[len(macdSeries)-1]
	signalLine = signalSeries[len(signalSeries)-1]
	histogram = macdLine - signalLine
	return macdLine, signalLine, histogram, nil
}

// IsBullishCrossover returns true when the MACD line crosses the signal line
// from below
func (m *MACD) IsBullishCrossover(macdLine, signalLine, prevMACD, prevSignal float64) bool {
	return prevMACD <= prevSignal && macdLine > signalLine
}

// GetName returns the indicator name
func (m *MACD) GetName() string {
	return "MACD"
}

// GetRequiredPeriods returns the minimum number of periods needed for a
// defined signal line
func (m *MACD) GetRequiredPeriods() int {
	return m.slowPeriod + m.signalPeriod - 1
}

// emaValues computes the EMA recurrence over raw values. The result is
// aligned to input index period−1: result[0] is the SMA seed, and each later
// entry applies ema = (value−prev)·α + prev with α = 2/(period+1).
func emaValues(values []float64, period int) []float64 {
	if len(values) < period {
		return nil
	}

	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)

	alpha := 2.0 / float64(period+1)
	result := make([]float64, len(values)-period+1)
	result[0] = seed
	ema := seed
	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*alpha + ema
		result[i-period+1] = ema
	}
	return result
}
