package data

import (
	"context"

	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// Router dispatches market-data calls to the provider responsible for the
// symbol's asset class: plain tickers go to the equity provider, exchange
// pairs (BTCUSDT) to the crypto provider.
type Router struct {
	equity MarketProvider
	crypto MarketProvider
}

// NewRouter creates a router over an equity and a crypto provider. A nil
// crypto provider routes everything to the equity provider.
func NewRouter(equity, crypto MarketProvider) *Router {
	return &Router{
		equity: equity,
		crypto: crypto,
	}
}

// GetName returns the name of the data provider
func (r *Router) GetName() string {
	return "Provider Router"
}

// GetBars routes a bar request by symbol class.
func (r *Router) GetBars(ctx context.Context, symbol string, interval types.Interval, limit int) ([]types.OHLCV, error) {
	return r.pick(symbol).GetBars(ctx, symbol, interval, limit)
}

// GetQuote routes a quote request by symbol class.
func (r *Router) GetQuote(ctx context.Context, symbol string) (*types.Quote, error) {
	return r.pick(symbol).GetQuote(ctx, symbol)
}

func (r *Router) pick(symbol string) MarketProvider {
	if r.crypto != nil && types.ClassifySymbol(symbol) == types.AssetCrypto {
		return r.crypto
	}
	return r.equity
}
