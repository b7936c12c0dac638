// Package portfolio values the lot-based holdings persisted in the store
// against live quotes. Cost and P/L arithmetic is done in decimals so that
// repeated valuation never accumulates float drift.
package portfolio

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/ducminhle1904/stock-insight/internal/errors"
	"github.com/ducminhle1904/stock-insight/internal/store"
	"github.com/ducminhle1904/stock-insight/pkg/data"
)

// DefaultMaxWeight is the portfolio weight (percent of market value) above
// which a position is flagged as concentrated.
const DefaultMaxWeight = 25.0

// Position aggregates every lot of one symbol.
type Position struct {
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	CostBasis    decimal.Decimal `json:"costBasis"`
	AvgCost      decimal.Decimal `json:"avgCost"`
	LastPrice    decimal.Decimal `json:"lastPrice"`
	MarketValue  decimal.Decimal `json:"marketValue"`
	UnrealizedPL decimal.Decimal `json:"unrealizedPL"`
	// UnrealizedPct is the unrealized P/L as a percentage of cost basis.
	UnrealizedPct decimal.Decimal `json:"unrealizedPct"`
	// Weight is this position's share of total market value, in percent.
	Weight decimal.Decimal `json:"weight"`
	// Priced is false when no quote was available and the position is
	// carried at cost.
	Priced bool        `json:"priced"`
	Lots   []store.Lot `json:"lots"`
}

// Summary is the valued portfolio.
type Summary struct {
	Positions     []Position      `json:"positions"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	TotalPL       decimal.Decimal `json:"totalPL"`
	TotalPLPct    decimal.Decimal `json:"totalPLPct"`
	Concentration []string        `json:"concentration"`
	AsOf          time.Time       `json:"asOf"`
}

// Valuer loads lots from the store and prices them with a quote provider.
type Valuer struct {
	store     *store.Store
	quotes    data.QuoteProvider
	maxWeight decimal.Decimal
	logger    *slog.Logger
}

// NewValuer builds a Valuer with the default concentration threshold.
func NewValuer(st *store.Store, quotes data.QuoteProvider, logger *slog.Logger) *Valuer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Valuer{
		store:     st,
		quotes:    quotes,
		maxWeight: decimal.NewFromFloat(DefaultMaxWeight),
		logger:    logger,
	}
}

// Snapshot values every held symbol as of now. Symbols whose quote lookup
// fails are carried at cost and flagged unpriced rather than failing the
// whole snapshot.
func (v *Valuer) Snapshot(ctx context.Context) (*Summary, error) {
	lots, err := v.store.ListLots(ctx, "")
	if err != nil {
		return nil, err
	}

	bySymbol := map[string][]store.Lot{}
	for _, lot := range lots {
		bySymbol[lot.Symbol] = append(bySymbol[lot.Symbol], lot)
	}
	symbols := make([]string, 0, len(bySymbol))
	for sym := range bySymbol {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	summary := &Summary{
		Positions:     []Position{},
		Concentration: []string{},
		AsOf:          time.Now().UTC(),
	}
	for _, sym := range symbols {
		pos := buildPosition(sym, bySymbol[sym])
		if v.quotes != nil {
			quote, err := v.quotes.GetQuote(ctx, sym)
			if err != nil {
				v.logger.Warn("quote unavailable, carrying position at cost",
					"symbol", sym, "error", err)
			} else {
				pos.reprice(decimal.NewFromFloat(quote.Price))
			}
		}
		summary.Positions = append(summary.Positions, pos)
	}

	summary.finalize(v.maxWeight)
	return summary, nil
}

// PositionFor values the single symbol's holding.
func (v *Valuer) PositionFor(ctx context.Context, symbol string) (*Position, error) {
	lots, err := v.store.ListLots(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(lots) == 0 {
		return nil, apperrors.NewNotFoundError("portfolio", "position", "no lots held for symbol: "+symbol)
	}

	pos := buildPosition(lots[0].Symbol, lots)
	if v.quotes != nil {
		quote, err := v.quotes.GetQuote(ctx, pos.Symbol)
		if err != nil {
			v.logger.Warn("quote unavailable, carrying position at cost",
				"symbol", pos.Symbol, "error", err)
		} else {
			pos.reprice(decimal.NewFromFloat(quote.Price))
		}
	}
	return &pos, nil
}

// buildPosition folds lots into an at-cost position.
func buildPosition(symbol string, lots []store.Lot) Position {
	pos := Position{Symbol: symbol, Lots: lots}
	for _, lot := range lots {
		qty := decimal.NewFromFloat(lot.Quantity)
		cost := decimal.NewFromFloat(lot.CostPerShare)
		pos.Quantity = pos.Quantity.Add(qty)
		pos.CostBasis = pos.CostBasis.Add(qty.Mul(cost))
	}
	if !pos.Quantity.IsZero() {
		pos.AvgCost = pos.CostBasis.Div(pos.Quantity)
	}
	// Until a quote arrives the position is carried at cost.
	pos.LastPrice = pos.AvgCost
	pos.MarketValue = pos.CostBasis
	return pos
}

// reprice marks the position to market.
func (p *Position) reprice(last decimal.Decimal) {
	p.Priced = true
	p.LastPrice = last
	p.MarketValue = p.Quantity.Mul(last)
	p.UnrealizedPL = p.MarketValue.Sub(p.CostBasis)
	if !p.CostBasis.IsZero() {
		p.UnrealizedPct = p.UnrealizedPL.Div(p.CostBasis).Mul(decimal.NewFromInt(100))
	}
}

// finalize fills totals, weights and concentration flags.
func (s *Summary) finalize(maxWeight decimal.Decimal) {
	for _, pos := range s.Positions {
		s.TotalCost = s.TotalCost.Add(pos.CostBasis)
		s.TotalValue = s.TotalValue.Add(pos.MarketValue)
	}
	s.TotalPL = s.TotalValue.Sub(s.TotalCost)
	if !s.TotalCost.IsZero() {
		s.TotalPLPct = s.TotalPL.Div(s.TotalCost).Mul(decimal.NewFromInt(100))
	}

	hundred := decimal.NewFromInt(100)
	for i := range s.Positions {
		if s.TotalValue.IsZero() {
			continue
		}
		s.Positions[i].Weight = s.Positions[i].MarketValue.Div(s.TotalValue).Mul(hundred)
		if s.Positions[i].Weight.GreaterThan(maxWeight) {
			s.Concentration = append(s.Concentration, s.Positions[i].Symbol)
		}
	}
}
