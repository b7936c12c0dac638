package reporting

import (
	"github.com/ducminhle1904/stock-insight/internal/store"
)

// TradeStats aggregates realized performance over journal entries. Only
// closed trades contribute to the P/L figures; open trades are counted but
// otherwise ignored.
type TradeStats struct {
	TotalTrades   int     `json:"totalTrades"`
	OpenTrades    int     `json:"openTrades"`
	ClosedTrades  int     `json:"closedTrades"`
	WinningTrades int     `json:"winningTrades"`
	LosingTrades  int     `json:"losingTrades"`
	WinRate       float64 `json:"winRate"` // percent of closed trades
	NetPL         float64 `json:"netPL"`
	GrossProfit   float64 `json:"grossProfit"`
	GrossLoss     float64 `json:"grossLoss"` // reported as a positive magnitude
	ProfitFactor  float64 `json:"profitFactor"`
	AvgWin        float64 `json:"avgWin"`
	AvgLoss       float64 `json:"avgLoss"` // positive magnitude
	Expectancy    float64 `json:"expectancy"`
	TotalFees     float64 `json:"totalFees"`
	BestTrade     float64 `json:"bestTrade"`
	WorstTrade    float64 `json:"worstTrade"`
}

// ComputeTradeStats folds journal entries into aggregate statistics.
func ComputeTradeStats(entries []store.JournalEntry) *TradeStats {
	stats := &TradeStats{TotalTrades: len(entries)}

	for _, e := range entries {
		stats.TotalFees += e.Fees
		if !e.Closed() {
			stats.OpenTrades++
			continue
		}

		stats.ClosedTrades++
		pl := e.RealizedPL()
		stats.NetPL += pl

		if stats.ClosedTrades == 1 {
			stats.BestTrade = pl
			stats.WorstTrade = pl
		} else {
			if pl > stats.BestTrade {
				stats.BestTrade = pl
			}
			if pl < stats.WorstTrade {
				stats.WorstTrade = pl
			}
		}

		switch {
		case pl > 0:
			stats.WinningTrades++
			stats.GrossProfit += pl
		case pl < 0:
			stats.LosingTrades++
			stats.GrossLoss += -pl
		}
	}

	if stats.ClosedTrades > 0 {
		stats.WinRate = float64(stats.WinningTrades) / float64(stats.ClosedTrades) * 100
		stats.Expectancy = stats.NetPL / float64(stats.ClosedTrades)
	}
	if stats.WinningTrades > 0 {
		stats.AvgWin = stats.GrossProfit / float64(stats.WinningTrades)
	}
	if stats.LosingTrades > 0 {
		stats.AvgLoss = stats.GrossLoss / float64(stats.LosingTrades)
	}
	if stats.GrossLoss > 0 {
		stats.ProfitFactor = stats.GrossProfit / stats.GrossLoss
	}

	return stats
}
