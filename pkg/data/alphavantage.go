package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	stderrors "errors"

	"github.com/ducminhle1904/stock-insight/internal/errors"
	"github.com/ducminhle1904/stock-insight/pkg/types"
)

const defaultAlphaVantageURL = "https://www.alphavantage.co/query"

// RetryConfig holds configuration for retrying provider calls
type RetryConfig struct {
	MaxRetries    int           `json:"maxRetries"`
	InitialDelay  time.Duration `json:"initialDelay"`
	MaxDelay      time.Duration `json:"maxDelay"`
	BackoffFactor float64       `json:"backoffFactor"`
}

// DefaultRetryConfig returns a default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
	}
}

// AlphaVantageProvider fetches equity bars and quotes from the Alpha Vantage
// HTTP API.
type AlphaVantageProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retry      RetryConfig
}

// NewAlphaVantageProvider creates a provider using the given API key.
func NewAlphaVantageProvider(apiKey string) *AlphaVantageProvider {
	return &AlphaVantageProvider{
		apiKey:     apiKey,
		baseURL:    defaultAlphaVantageURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		retry:      DefaultRetryConfig(),
	}
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func (p *AlphaVantageProvider) WithBaseURL(baseURL string) *AlphaVantageProvider {
	p.baseURL = baseURL
	return p
}

// WithRetryConfig overrides the retry behavior.
func (p *AlphaVantageProvider) WithRetryConfig(cfg RetryConfig) *AlphaVantageProvider {
	p.retry = cfg
	return p
}

// GetName returns the name of the data provider
func (p *AlphaVantageProvider) GetName() string {
	return "Alpha Vantage"
}

// Alpha Vantage serializes every numeric field as a string.
type avBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type avSeriesResponse struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`

	Daily      map[string]avBar `json:"Time Series (Daily)"`
	Weekly     map[string]avBar `json:"Weekly Time Series"`
	Intraday60 map[string]avBar `json:"Time Series (60min)"`
	Intraday15 map[string]avBar `json:"Time Series (15min)"`
	Intraday5  map[string]avBar `json:"Time Series (5min)"`
}

type avGlobalQuote struct {
	Symbol           string `json:"01. symbol"`
	Open             string `json:"02. open"`
	High             string `json:"03. high"`
	Low              string `json:"04. low"`
	Price            string `json:"05. price"`
	Volume           string `json:"06. volume"`
	LatestTradingDay string `json:"07. latest trading day"`
	PreviousClose    string `json:"08. previous close"`
	Change           string `json:"09. change"`
	ChangePercent    string `json:"10. change percent"`
}

type avQuoteResponse struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`

	GlobalQuote avGlobalQuote `json:"Global Quote"`
}

// GetBars fetches the bar series for a symbol, ascending by timestamp.
func (p *AlphaVantageProvider) GetBars(ctx context.Context, symbol string, interval types.Interval, limit int) ([]types.OHLCV, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("apikey", p.apiKey)

	switch interval {
	case types.IntervalDaily:
		query.Set("function", "TIME_SERIES_DAILY")
	case types.IntervalWeekly:
		query.Set("function", "TIME_SERIES_WEEKLY")
	case types.Interval1h, types.Interval15m, types.Interval5m:
		query.Set("function", "TIME_SERIES_INTRADAY")
		query.Set("interval", string(interval))
	default:
		return nil, errors.NewValidationError("alphavantage", "get bars",
			fmt.Sprintf("unsupported interval %q", interval))
	}
	// The compact payload stops at 100 bars.
	if limit == 0 || limit > 100 {
		query.Set("outputsize", "full")
	}

	var parsed avSeriesResponse
	if err := p.getJSON(ctx, query, &parsed); err != nil {
		return nil, err
	}
	if err := p.apiFailure(parsed.ErrorMessage, parsed.Note, parsed.Information); err != nil {
		return nil, err
	}

	series, dateFormat := parsed.series(interval)
	if len(series) == 0 {
		return nil, errors.NewNotFoundError("alphavantage", "get bars",
			fmt.Sprintf("no %s series returned for %s", interval, symbol))
	}

	data := make([]types.OHLCV, 0, len(series))
	for date, bar := range series {
		timestamp, err := time.Parse(dateFormat, date)
		if err != nil {
			continue
		}
		ohlcv, err := bar.toOHLCV(timestamp)
		if err != nil {
			continue
		}
		data = append(data, ohlcv)
	}
	sort.Slice(data, func(i, j int) bool {
		return data[i].Timestamp.Before(data[j].Timestamp)
	})

	return LimitBars(data, limit), nil
}

// GetQuote fetches the latest global quote for a symbol.
func (p *AlphaVantageProvider) GetQuote(ctx context.Context, symbol string) (*types.Quote, error) {
	query := url.Values{}
	query.Set("function", "GLOBAL_QUOTE")
	query.Set("symbol", symbol)
	query.Set("apikey", p.apiKey)

	var parsed avQuoteResponse
	if err := p.getJSON(ctx, query, &parsed); err != nil {
		return nil, err
	}
	if err := p.apiFailure(parsed.ErrorMessage, parsed.Note, parsed.Information); err != nil {
		return nil, err
	}

	gq := parsed.GlobalQuote
	if gq.Symbol == "" {
		return nil, errors.NewNotFoundError("alphavantage", "get quote",
			fmt.Sprintf("no quote returned for %s", symbol))
	}

	quote := &types.Quote{
		Symbol:        gq.Symbol,
		Price:         parseFloat(gq.Price),
		Open:          parseFloat(gq.Open),
		High:          parseFloat(gq.High),
		Low:           parseFloat(gq.Low),
		PrevClose:     parseFloat(gq.PreviousClose),
		Change:        parseFloat(gq.Change),
		ChangePercent: parseFloat(strings.TrimSuffix(gq.ChangePercent, "%")),
		Volume:        parseFloat(gq.Volume),
		Timestamp:     time.Now().UTC(),
	}
	if day, err := time.Parse("2006-01-02", gq.LatestTradingDay); err == nil {
		quote.Timestamp = day
	}
	return quote, nil
}

// getJSON performs the HTTP round trip with the provider's retry policy.
func (p *AlphaVantageProvider) getJSON(ctx context.Context, query url.Values, out any) error {
	endpoint := p.baseURL + "?" + query.Encode()

	var lastErr error
	delay := p.retry.InitialDelay
	for attempt := 0; attempt <= p.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errors.WrapError(ctx.Err(), errors.ErrorCategoryTimeout, "alphavantage", "request")
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * p.retry.BackoffFactor)
			if delay > p.retry.MaxDelay {
				delay = p.retry.MaxDelay
			}
		}

		err := p.doRequest(ctx, endpoint, out)
		if err == nil {
			return nil
		}
		lastErr = err

		var appErr *errors.AppError
		if stderrors.As(err, &appErr) && !appErr.IsRetryable() {
			return err
		}
	}
	return lastErr
}

func (p *AlphaVantageProvider) doRequest(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.NewProviderError("alphavantage", "build request", err).WithRetryable(false)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return errors.WrapError(err, errors.ErrorCategoryNetwork, "alphavantage", "request")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return errors.NewRateLimitError("alphavantage", "request", "HTTP 429 from Alpha Vantage")
	case resp.StatusCode >= 500:
		return errors.NewProviderError("alphavantage", "request",
			fmt.Errorf("HTTP %d from Alpha Vantage", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return errors.NewProviderError("alphavantage", "request",
			fmt.Errorf("HTTP %d from Alpha Vantage", resp.StatusCode)).WithRetryable(false)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapError(err, errors.ErrorCategoryNetwork, "alphavantage", "read response")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.NewProviderError("alphavantage", "decode response", err).WithRetryable(false)
	}
	return nil
}

// apiFailure maps Alpha Vantage's in-band failure fields to errors. The free
// tier reports throttling as a "Note"/"Information" payload with HTTP 200.
func (p *AlphaVantageProvider) apiFailure(errorMessage, note, information string) error {
	if errorMessage != "" {
		return errors.NewProviderError("alphavantage", "api call",
			fmt.Errorf("alpha vantage: %s", errorMessage)).WithRetryable(false)
	}
	if note != "" {
		return errors.NewRateLimitError("alphavantage", "api call", note)
	}
	if information != "" {
		return errors.NewRateLimitError("alphavantage", "api call", information)
	}
	return nil
}

func (r *avSeriesResponse) series(interval types.Interval) (map[string]avBar, string) {
	const day = "2006-01-02"
	const intraday = "2006-01-02 15:04:05"

	switch interval {
	case types.IntervalDaily:
		return r.Daily, day
	case types.IntervalWeekly:
		return r.Weekly, day
	case types.Interval1h:
		return r.Intraday60, intraday
	case types.Interval15m:
		return r.Intraday15, intraday
	case types.Interval5m:
		return r.Intraday5, intraday
	}
	return nil, day
}

func (b avBar) toOHLCV(timestamp time.Time) (types.OHLCV, error) {
	open, err1 := strconv.ParseFloat(b.Open, 64)
	high, err2 := strconv.ParseFloat(b.High, 64)
	low, err3 := strconv.ParseFloat(b.Low, 64)
	closePrice, err4 := strconv.ParseFloat(b.Close, 64)
	volume, err5 := strconv.ParseFloat(b.Volume, 64)
	for _, err := range []error{err1, err2, err3, err4, err5} {
		if err != nil {
			return types.OHLCV{}, err
		}
	}
	return types.OHLCV{
		Timestamp: timestamp,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
	}, nil
}

func parseFloat(s string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return value
}
