package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/stock-insight/pkg/types"
)

func TestRouter_DispatchByAssetClass(t *testing.T) {
	equity := &stubProvider{name: "Equity", bars: dailyBars(5), quote: types.Quote{Symbol: "AAPL"}}
	crypto := &stubProvider{name: "Crypto", bars: dailyBars(5), quote: types.Quote{Symbol: "BTCUSDT"}}
	router := NewRouter(equity, crypto)

	_, err := router.GetBars(context.Background(), "AAPL", types.IntervalDaily, 0)
	require.NoError(t, err)
	_, err = router.GetQuote(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	_, err = router.GetBars(context.Background(), "ETHUSDT", types.IntervalDaily, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, equity.barCalls)
	assert.Equal(t, 1, crypto.barCalls)
	assert.Equal(t, 1, crypto.quoteCalls)
	assert.Zero(t, equity.quoteCalls)
}

func TestRouter_NilCryptoFallsBack(t *testing.T) {
	equity := &stubProvider{name: "Equity", bars: dailyBars(5)}
	router := NewRouter(equity, nil)

	_, err := router.GetBars(context.Background(), "BTCUSDT", types.IntervalDaily, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, equity.barCalls)
}

func TestClassifySymbol(t *testing.T) {
	assert.Equal(t, types.AssetCrypto, types.ClassifySymbol("BTCUSDT"))
	assert.Equal(t, types.AssetCrypto, types.ClassifySymbol("ethusdc"))
	assert.Equal(t, types.AssetEquity, types.ClassifySymbol("AAPL"))
	assert.Equal(t, types.AssetEquity, types.ClassifySymbol("USDT")) // bare suffix is not a pair
}
