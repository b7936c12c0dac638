package data

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"

	"github.com/ducminhle1904/stock-insight/internal/errors"
	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// BybitConfig holds the configuration for the Bybit provider. Market data
// endpoints work without credentials; keys are only needed if an account
// endpoint is ever used.
type BybitConfig struct {
	APIKey    string
	APISecret string
	Testnet   bool
	Category  string // "spot" (default), "linear", "inverse"
}

// BybitProvider serves crypto bars and quotes from the Bybit v5 market API.
type BybitProvider struct {
	client   *bybit_api.Client
	category string
}

// NewBybitProvider creates a provider for Bybit market data.
func NewBybitProvider(config BybitConfig) *BybitProvider {
	baseURL := bybit_api.MAINNET
	if config.Testnet {
		baseURL = bybit_api.TESTNET
	}

	client := bybit_api.NewBybitHttpClient(
		config.APIKey,
		config.APISecret,
		bybit_api.WithBaseURL(baseURL),
	)

	category := config.Category
	if category == "" {
		category = "spot"
	}

	return &BybitProvider{
		client:   client,
		category: category,
	}
}

// GetName returns the name of the data provider
func (p *BybitProvider) GetName() string {
	return "Bybit"
}

// GetBars fetches kline data for a crypto symbol, ascending by timestamp.
func (p *BybitProvider) GetBars(ctx context.Context, symbol string, interval types.Interval, limit int) ([]types.OHLCV, error) {
	bybitInterval, err := toBybitInterval(interval)
	if err != nil {
		return nil, err
	}
	if limit == 0 || limit > 1000 {
		limit = 1000
	}

	params := map[string]interface{}{
		"category": p.category,
		"symbol":   symbol,
		"interval": bybitInterval,
		"limit":    limit,
	}

	result, err := p.client.NewUtaBybitServiceWithParams(params).GetMarketKline(ctx)
	if err != nil {
		return nil, errors.NewProviderError("bybit", "get klines", err)
	}

	data, err := parseBybitKlines(result)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.NewNotFoundError("bybit", "get klines",
			fmt.Sprintf("no kline data returned for %s", symbol))
	}

	// Bybit returns newest first.
	sort.Slice(data, func(i, j int) bool {
		return data[i].Timestamp.Before(data[j].Timestamp)
	})
	return data, nil
}

// GetQuote fetches the latest ticker for a crypto symbol.
func (p *BybitProvider) GetQuote(ctx context.Context, symbol string) (*types.Quote, error) {
	params := map[string]interface{}{
		"category": p.category,
		"symbol":   symbol,
	}

	result, err := p.client.NewUtaBybitServiceWithParams(params).GetMarketTickers(ctx)
	if err != nil {
		return nil, errors.NewProviderError("bybit", "get tickers", err)
	}
	return parseBybitTicker(result, symbol)
}

func toBybitInterval(interval types.Interval) (string, error) {
	switch interval {
	case types.IntervalDaily:
		return "D", nil
	case types.IntervalWeekly:
		return "W", nil
	case types.Interval1h:
		return "60", nil
	case types.Interval15m:
		return "15", nil
	case types.Interval5m:
		return "5", nil
	}
	return "", errors.NewValidationError("bybit", "map interval",
		fmt.Sprintf("unsupported interval %q", interval))
}

func decodeBybitResult(response interface{}, out any) error {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return errors.NewProviderError("bybit", "decode response",
			fmt.Errorf("invalid response type %T", response))
	}
	if serverResp.RetCode != 0 {
		return errors.NewProviderError("bybit", "decode response",
			fmt.Errorf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode))
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return errors.NewProviderError("bybit", "decode response", err)
	}
	if err := json.Unmarshal(resultBytes, out); err != nil {
		return errors.NewProviderError("bybit", "decode response", err)
	}
	return nil
}

func parseBybitKlines(response interface{}) ([]types.OHLCV, error) {
	var klineResult struct {
		Symbol   string     `json:"symbol"`
		Category string     `json:"category"`
		List     [][]string `json:"list"`
	}
	if err := decodeBybitResult(response, &klineResult); err != nil {
		return nil, err
	}

	var data []types.OHLCV
	for _, item := range klineResult.List {
		// Format: [startTime, open, high, low, close, volume, turnover]
		if len(item) < 7 {
			continue
		}
		ms, err := strconv.ParseInt(item[0], 10, 64)
		if err != nil {
			continue
		}
		data = append(data, types.OHLCV{
			Timestamp: time.UnixMilli(ms).UTC(),
			Open:      parseFloat(item[1]),
			High:      parseFloat(item[2]),
			Low:       parseFloat(item[3]),
			Close:     parseFloat(item[4]),
			Volume:    parseFloat(item[5]),
		})
	}
	return data, nil
}

func parseBybitTicker(response interface{}, symbol string) (*types.Quote, error) {
	var tickerResult struct {
		Category string `json:"category"`
		List     []struct {
			Symbol       string `json:"symbol"`
			LastPrice    string `json:"lastPrice"`
			PrevPrice24h string `json:"prevPrice24h"`
			HighPrice24h string `json:"highPrice24h"`
			LowPrice24h  string `json:"lowPrice24h"`
			Volume24h    string `json:"volume24h"`
			Price24hPcnt string `json:"price24hPcnt"`
		} `json:"list"`
	}
	if err := decodeBybitResult(response, &tickerResult); err != nil {
		return nil, err
	}
	if len(tickerResult.List) == 0 {
		return nil, errors.NewNotFoundError("bybit", "get tickers",
			fmt.Sprintf("no ticker data found for %s", symbol))
	}

	t := tickerResult.List[0]
	last := parseFloat(t.LastPrice)
	prev := parseFloat(t.PrevPrice24h)

	return &types.Quote{
		Symbol:        t.Symbol,
		Price:         last,
		Open:          prev,
		High:          parseFloat(t.HighPrice24h),
		Low:           parseFloat(t.LowPrice24h),
		PrevClose:     prev,
		Change:        last - prev,
		ChangePercent: parseFloat(t.Price24hPcnt) * 100,
		Volume:        parseFloat(t.Volume24h),
		Timestamp:     time.Now().UTC(),
	}, nil
}
