package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ducminhle1904/stock-insight/internal/store"
)

func closedEntry(symbol string, side store.TradeSide, qty, entry, exit, fees float64) store.JournalEntry {
	opened := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	closed := opened.Add(48 * time.Hour)
	return store.JournalEntry{
		Symbol:     symbol,
		Side:       side,
		Quantity:   qty,
		EntryPrice: entry,
		ExitPrice:  &exit,
		Fees:       fees,
		Tags:       []string{"test"},
		OpenedAt:   opened,
		ClosedAt:   &closed,
	}
}

func openEntry(symbol string, qty, entry float64) store.JournalEntry {
	return store.JournalEntry{
		Symbol:     symbol,
		Side:       store.SideLong,
		Quantity:   qty,
		EntryPrice: entry,
		OpenedAt:   time.Date(2024, 3, 6, 14, 30, 0, 0, time.UTC),
	}
}

func TestComputeTradeStats_MixedTrades(t *testing.T) {
	// Realized: AAPL +498.00, MSFT -101.00, TSLA short +99.50.
	entries := []store.JournalEntry{
		closedEntry("AAPL", store.SideLong, 100, 50, 55, 2),
		closedEntry("MSFT", store.SideLong, 50, 20, 18, 1),
		closedEntry("TSLA", store.SideShort, 10, 100, 90, 0.5),
		openEntry("NVDA", 5, 400),
	}

	stats := ComputeTradeStats(entries)

	assert.Equal(t, 4, stats.TotalTrades)
	assert.Equal(t, 1, stats.OpenTrades)
	assert.Equal(t, 3, stats.ClosedTrades)
	assert.Equal(t, 2, stats.WinningTrades)
	assert.Equal(t, 1, stats.LosingTrades)
	assert.InDelta(t, 66.6667, stats.WinRate, 0.001)
	assert.InDelta(t, 496.50, stats.NetPL, 1e-9)
	assert.InDelta(t, 597.50, stats.GrossProfit, 1e-9)
	assert.InDelta(t, 101.00, stats.GrossLoss, 1e-9)
	assert.InDelta(t, 5.9158, stats.ProfitFactor, 0.001)
	assert.InDelta(t, 298.75, stats.AvgWin, 1e-9)
	assert.InDelta(t, 101.00, stats.AvgLoss, 1e-9)
	assert.InDelta(t, 165.50, stats.Expectancy, 1e-9)
	assert.InDelta(t, 3.50, stats.TotalFees, 1e-9)
	assert.InDelta(t, 498.00, stats.BestTrade, 1e-9)
	assert.InDelta(t, -101.00, stats.WorstTrade, 1e-9)
}

func TestComputeTradeStats_BreakevenIsNeitherWinNorLoss(t *testing.T) {
	entries := []store.JournalEntry{
		closedEntry("AAPL", store.SideLong, 100, 50, 50, 0),
	}

	stats := ComputeTradeStats(entries)

	assert.Equal(t, 1, stats.ClosedTrades)
	assert.Equal(t, 0, stats.WinningTrades)
	assert.Equal(t, 0, stats.LosingTrades)
	assert.Zero(t, stats.WinRate)
	assert.Zero(t, stats.NetPL)
	assert.Zero(t, stats.ProfitFactor)
}

func TestComputeTradeStats_Empty(t *testing.T) {
	stats := ComputeTradeStats(nil)

	assert.Equal(t, 0, stats.TotalTrades)
	assert.Zero(t, stats.WinRate)
	assert.Zero(t, stats.NetPL)
	assert.Zero(t, stats.BestTrade)
	assert.Zero(t, stats.WorstTrade)
}

func TestComputeTradeStats_OpenTradesContributeFeesOnly(t *testing.T) {
	open := openEntry("NVDA", 5, 400)
	open.Fees = 2.5

	stats := ComputeTradeStats([]store.JournalEntry{open})

	assert.Equal(t, 1, stats.TotalTrades)
	assert.Equal(t, 1, stats.OpenTrades)
	assert.Equal(t, 0, stats.ClosedTrades)
	assert.Zero(t, stats.NetPL)
	assert.InDelta(t, 2.5, stats.TotalFees, 1e-9)
}

func TestComputeTradeStats_AllWinnersHasZeroProfitFactor(t *testing.T) {
	entries := []store.JournalEntry{
		closedEntry("AAPL", store.SideLong, 10, 50, 55, 0),
	}

	stats := ComputeTradeStats(entries)

	// No losses means the ratio is undefined; reported as zero.
	assert.Equal(t, 1, stats.WinningTrades)
	assert.Zero(t, stats.ProfitFactor)
	assert.InDelta(t, 100.0, stats.WinRate, 1e-9)
}
