package advisor

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/ducminhle1904/stock-insight/internal/errors"
	"github.com/ducminhle1904/stock-insight/internal/indicators"
	"github.com/ducminhle1904/stock-insight/internal/portfolio"
	"github.com/ducminhle1904/stock-insight/internal/store"
	"github.com/ducminhle1904/stock-insight/pkg/reporting"
	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// SymbolCommentary analyzes one symbol from its latest quote and indicator
// snapshot.
func (a *Advisor) SymbolCommentary(ctx context.Context, quote *types.Quote, snapshot *indicators.Snapshot) (*Commentary, error) {
	if snapshot == nil {
		return nil, apperrors.NewValidationError("advisor", "symbol commentary", "indicator snapshot is required")
	}

	prompt := fmt.Sprintf(`Analyze the stock %s from the data below.

Latest quote:
%s

Indicator snapshot (nulls mean not enough history):
%s

Cover trend (price vs the moving averages), momentum (RSI, MACD), and
volatility (Bollinger position). Call out divergences between them.`,
		snapshot.Symbol, mustJSON(quote), mustJSON(snapshot))

	return a.generate(ctx, prompt)
}

// PortfolioReview analyzes the valued portfolio: allocation, concentration,
// and unrealized performance.
func (a *Advisor) PortfolioReview(ctx context.Context, summary *portfolio.Summary) (*Commentary, error) {
	if summary == nil {
		return nil, apperrors.NewValidationError("advisor", "portfolio review", "portfolio summary is required")
	}

	prompt := fmt.Sprintf(`Review this portfolio valuation.

%s

Weights are percentages of total market value; positions listed under
"concentration" already exceed the concentration threshold. Focus on
allocation balance, the unrealized P/L picture, and what to rebalance first.`,
		mustJSON(summary))

	return a.generate(ctx, prompt)
}

// JournalCoaching reviews trading statistics and recent trades and coaches on
// process rather than outcomes.
func (a *Advisor) JournalCoaching(ctx context.Context, stats *reporting.TradeStats, recent []store.JournalEntry) (*Commentary, error) {
	if stats == nil {
		return nil, apperrors.NewValidationError("advisor", "journal coaching", "trade stats are required")
	}

	prompt := fmt.Sprintf(`Coach this trader using their journal statistics and
most recent trades.

Aggregate statistics:
%s

Recent trades (newest first):
%s

Judge the process, not single outcomes: stop-loss discipline, win rate versus
payoff ratio, position consistency, and any repeated mistake visible in the
notes and tags.`,
		mustJSON(stats), mustJSON(recent))

	return a.generate(ctx, prompt)
}

// mustJSON renders a prompt payload. Inputs are our own structs, which always
// marshal.
func mustJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}
