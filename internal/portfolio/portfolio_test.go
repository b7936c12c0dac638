package portfolio

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ducminhle1904/stock-insight/internal/errors"
	"github.com/ducminhle1904/stock-insight/internal/store"
	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// stubQuotes returns fixed prices per symbol and errors for unknown symbols.
type stubQuotes struct {
	prices map[string]float64
	calls  int
}

func (s *stubQuotes) GetQuote(_ context.Context, symbol string) (*types.Quote, error) {
	s.calls++
	price, ok := s.prices[symbol]
	if !ok {
		return nil, errors.New("no quote")
	}
	return &types.Quote{Symbol: symbol, Price: price, Timestamp: time.Now()}, nil
}

func (s *stubQuotes) GetName() string { return "Stub" }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "insight.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func addLot(t *testing.T, s *store.Store, symbol string, qty, cost float64) {
	t.Helper()
	require.NoError(t, s.AddLot(context.Background(), &store.Lot{
		Symbol:       symbol,
		Quantity:     qty,
		CostPerShare: cost,
	}))
}

func TestValuer_Snapshot(t *testing.T) {
	s := newTestStore(t)
	addLot(t, s, "VOO", 10, 400)
	addLot(t, s, "VOO", 5, 430)
	addLot(t, s, "AAPL", 20, 150)

	quotes := &stubQuotes{prices: map[string]float64{"VOO": 450, "AAPL": 180}}
	v := NewValuer(s, quotes, nil)

	sum, err := v.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, sum.Positions, 2)

	// Positions are sorted by symbol.
	aapl, voo := sum.Positions[0], sum.Positions[1]
	assert.Equal(t, "AAPL", aapl.Symbol)
	assert.Equal(t, "VOO", voo.Symbol)

	// VOO: 15 shares, cost 10*400 + 5*430 = 6150, value 15*450 = 6750.
	assert.Equal(t, "15", voo.Quantity.String())
	assert.Equal(t, "6150", voo.CostBasis.String())
	assert.Equal(t, "410", voo.AvgCost.String())
	assert.Equal(t, "6750", voo.MarketValue.String())
	assert.Equal(t, "600", voo.UnrealizedPL.String())
	assert.True(t, voo.Priced)
	assert.Len(t, voo.Lots, 2)

	// AAPL: cost 3000, value 3600.
	assert.Equal(t, "3000", aapl.CostBasis.String())
	assert.Equal(t, "3600", aapl.MarketValue.String())
	assert.InDelta(t, 20.0, aapl.UnrealizedPct.InexactFloat64(), 1e-9)

	// Totals: cost 9150, value 10350, P/L 1200.
	assert.Equal(t, "9150", sum.TotalCost.String())
	assert.Equal(t, "10350", sum.TotalValue.String())
	assert.Equal(t, "1200", sum.TotalPL.String())

	// Weights sum to 100.
	weightSum := aapl.Weight.Add(voo.Weight)
	assert.InDelta(t, 100.0, weightSum.InexactFloat64(), 1e-9)

	// VOO is 65.2% of the book, well past the 25% threshold.
	assert.Contains(t, sum.Concentration, "VOO")
	assert.Contains(t, sum.Concentration, "AAPL")
}

func TestValuer_Snapshot_MissingQuoteCarriedAtCost(t *testing.T) {
	s := newTestStore(t)
	addLot(t, s, "OBSCURE", 10, 50)

	quotes := &stubQuotes{prices: map[string]float64{}}
	v := NewValuer(s, quotes, nil)

	sum, err := v.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, sum.Positions, 1)

	pos := sum.Positions[0]
	assert.False(t, pos.Priced)
	assert.Equal(t, "500", pos.MarketValue.String())
	assert.True(t, pos.UnrealizedPL.IsZero())
}

func TestValuer_Snapshot_Empty(t *testing.T) {
	s := newTestStore(t)
	v := NewValuer(s, &stubQuotes{}, nil)

	sum, err := v.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sum.Positions)
	assert.True(t, sum.TotalValue.IsZero())
	assert.Empty(t, sum.Concentration)
}

func TestValuer_Snapshot_ExactDecimalArithmetic(t *testing.T) {
	s := newTestStore(t)
	// 0.1 + 0.2 style fractions that drift under float64 accumulation.
	addLot(t, s, "FRAC", 0.1, 3)
	addLot(t, s, "FRAC", 0.2, 3)

	quotes := &stubQuotes{prices: map[string]float64{"FRAC": 3}}
	v := NewValuer(s, quotes, nil)

	sum, err := v.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, sum.Positions, 1)
	assert.Equal(t, "0.3", sum.Positions[0].Quantity.String())
	assert.Equal(t, "0.9", sum.Positions[0].MarketValue.String())
	assert.True(t, sum.Positions[0].UnrealizedPL.IsZero())
}

func TestValuer_PositionFor(t *testing.T) {
	s := newTestStore(t)
	addLot(t, s, "VOO", 10, 400)

	quotes := &stubQuotes{prices: map[string]float64{"VOO": 450}}
	v := NewValuer(s, quotes, nil)

	pos, err := v.PositionFor(context.Background(), "voo")
	require.NoError(t, err)
	assert.Equal(t, "VOO", pos.Symbol)
	assert.Equal(t, "500", pos.UnrealizedPL.String())

	_, err = v.PositionFor(context.Background(), "NONE")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
