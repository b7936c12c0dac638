package screener

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ducminhle1904/stock-insight/internal/errors"
	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// stubBars serves canned series per symbol and tracks call concurrency.
type stubBars struct {
	mu          sync.Mutex
	series      map[string][]types.OHLCV
	failing     map[string]error
	delay       time.Duration
	inFlight    int
	maxInFlight int
}

func (s *stubBars) GetBars(_ context.Context, symbol string, _ types.Interval, _ int) ([]types.OHLCV, error) {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > s.maxInFlight {
		s.maxInFlight = s.inFlight
	}
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if err, ok := s.failing[symbol]; ok {
		return nil, err
	}
	bars, ok := s.series[symbol]
	if !ok {
		return nil, apperrors.NewNotFoundError("stub", "get bars", "no data for symbol: "+symbol)
	}
	return bars, nil
}

func (s *stubBars) GetName() string { return "Stub" }

// flatBars builds count daily bars pinned at price.
func flatBars(price float64, volume float64, count int) []types.OHLCV {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]types.OHLCV, count)
	for i := range bars {
		bars[i] = types.OHLCV{
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    volume,
			Timestamp: base.AddDate(0, 0, i),
		}
	}
	return bars
}

// trendBars builds count daily bars stepping by delta per bar.
func trendBars(start, delta, volume float64, count int) []types.OHLCV {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]types.OHLCV, count)
	price := start
	for i := range bars {
		bars[i] = types.OHLCV{
			Open:      price,
			High:      price + 0.5,
			Low:       price - 0.5,
			Close:     price,
			Volume:    volume,
			Timestamp: base.AddDate(0, 0, i),
		}
		price += delta
	}
	return bars
}

func TestScreener_Run_PriceBounds(t *testing.T) {
	provider := &stubBars{series: map[string][]types.OHLCV{
		"CHEAP":  flatBars(50, 1000, 250),
		"PRICEY": flatBars(150, 1000, 250),
	}}
	s := New(provider, 2, nil)

	result, err := s.Run(context.Background(), []string{"CHEAP", "PRICEY"}, Criteria{MinPrice: 100})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Scanned)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "PRICEY", result.Matches[0].Symbol)
	assert.Equal(t, 150.0, result.Matches[0].Close)
	assert.Empty(t, result.Errors)
}

func TestScreener_Run_RSIBounds(t *testing.T) {
	provider := &stubBars{series: map[string][]types.OHLCV{
		"RISING":  trendBars(100, 0.5, 1000, 250),
		"FALLING": trendBars(250, -0.5, 1000, 250),
	}}
	s := New(provider, 2, nil)

	maxRSI := 30.0
	result, err := s.Run(context.Background(), []string{"RISING", "FALLING"}, Criteria{MaxRSI: &maxRSI})
	require.NoError(t, err)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, "FALLING", result.Matches[0].Symbol)
	require.NotNil(t, result.Matches[0].Snapshot.RSI14)
	assert.LessOrEqual(t, *result.Matches[0].Snapshot.RSI14, maxRSI)
}

func TestScreener_Run_AvgVolume(t *testing.T) {
	provider := &stubBars{series: map[string][]types.OHLCV{
		"THIN":   flatBars(100, 500, 250),
		"LIQUID": flatBars(100, 2_000_000, 250),
	}}
	s := New(provider, 2, nil)

	result, err := s.Run(context.Background(), []string{"THIN", "LIQUID"}, Criteria{MinAvgVolume: 1_000_000})
	require.NoError(t, err)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, "LIQUID", result.Matches[0].Symbol)
	assert.InDelta(t, 2_000_000, result.Matches[0].AvgVolume, 1e-9)
}

func TestScreener_Run_TrendFilters(t *testing.T) {
	provider := &stubBars{series: map[string][]types.OHLCV{
		"UP":   trendBars(100, 0.5, 1000, 250),
		"DOWN": trendBars(250, -0.5, 1000, 250),
	}}
	s := New(provider, 2, nil)

	result, err := s.Run(context.Background(), []string{"UP", "DOWN"},
		Criteria{AboveSMA50: true, AboveSMA200: true})
	require.NoError(t, err)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, "UP", result.Matches[0].Symbol)
}

func TestScreener_Run_ShortHistoryFailsIndicatorCriteria(t *testing.T) {
	provider := &stubBars{series: map[string][]types.OHLCV{
		"YOUNG": trendBars(100, 0.5, 1000, 30),
	}}
	s := New(provider, 1, nil)

	// 30 bars cannot produce an SMA(200); the symbol must not pass, but it
	// is not an error either.
	result, err := s.Run(context.Background(), []string{"YOUNG"}, Criteria{AboveSMA200: true})
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.Scanned)
}

func TestScreener_Run_CollectsPerSymbolErrors(t *testing.T) {
	provider := &stubBars{
		series:  map[string][]types.OHLCV{"GOOD": flatBars(100, 1000, 250)},
		failing: map[string]error{"BAD": errors.New("provider exploded")},
	}
	s := New(provider, 2, nil)

	result, err := s.Run(context.Background(), []string{"GOOD", "BAD"}, Criteria{})
	require.NoError(t, err)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, "GOOD", result.Matches[0].Symbol)
	assert.Contains(t, result.Errors["BAD"], "provider exploded")
	assert.Equal(t, 2, result.Scanned)
}

func TestScreener_Run_BoundedConcurrency(t *testing.T) {
	series := map[string][]types.OHLCV{}
	universe := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	for _, sym := range universe {
		series[sym] = flatBars(100, 1000, 250)
	}
	provider := &stubBars{series: series, delay: 5 * time.Millisecond}

	s := New(provider, 2, nil)
	_, err := s.Run(context.Background(), universe, Criteria{})
	require.NoError(t, err)

	provider.mu.Lock()
	defer provider.mu.Unlock()
	assert.LessOrEqual(t, provider.maxInFlight, 2)
}

func TestScreener_Run_SortedMatches(t *testing.T) {
	provider := &stubBars{series: map[string][]types.OHLCV{
		"ZETA":  flatBars(100, 1000, 250),
		"ALPHA": flatBars(100, 1000, 250),
		"MID":   flatBars(100, 1000, 250),
	}}
	s := New(provider, 3, nil)

	result, err := s.Run(context.Background(), []string{"ZETA", "ALPHA", "MID"}, Criteria{})
	require.NoError(t, err)
	require.Len(t, result.Matches, 3)
	assert.Equal(t, "ALPHA", result.Matches[0].Symbol)
	assert.Equal(t, "MID", result.Matches[1].Symbol)
	assert.Equal(t, "ZETA", result.Matches[2].Symbol)
}

func TestScreener_Run_EmptyUniverse(t *testing.T) {
	s := New(&stubBars{}, 1, nil)
	_, err := s.Run(context.Background(), nil, Criteria{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCriteria_Validate(t *testing.T) {
	lo, hi := 70.0, 30.0
	tests := []struct {
		name     string
		criteria Criteria
		wantErr  bool
	}{
		{"empty criteria", Criteria{}, false},
		{"price bounds ok", Criteria{MinPrice: 10, MaxPrice: 100}, false},
		{"inverted price bounds", Criteria{MinPrice: 100, MaxPrice: 10}, true},
		{"negative price", Criteria{MinPrice: -1}, true},
		{"inverted rsi bounds", Criteria{MinRSI: &lo, MaxRSI: &hi}, true},
		{"sma50 both directions", Criteria{AboveSMA50: true, BelowSMA50: true}, true},
		{"sma200 both directions", Criteria{AboveSMA200: true, BelowSMA200: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.criteria.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
