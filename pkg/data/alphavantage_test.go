package data

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	stderrors "errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ducminhle1904/stock-insight/internal/errors"
	"github.com/ducminhle1904/stock-insight/pkg/types"
)

const avDailyPayload = `{
	"Meta Data": {"2. Symbol": "AAPL"},
	"Time Series (Daily)": {
		"2024-01-04": {"1. open": "182.15", "2. high": "183.09", "3. low": "180.88", "4. close": "181.91", "5. volume": "71983600"},
		"2024-01-02": {"1. open": "187.15", "2. high": "188.44", "3. low": "183.89", "4. close": "185.64", "5. volume": "82488700"},
		"2024-01-03": {"1. open": "184.22", "2. high": "185.88", "3. low": "183.43", "4. close": "184.25", "5. volume": "58414500"}
	}
}`

const avQuotePayload = `{
	"Global Quote": {
		"01. symbol": "AAPL",
		"02. open": "182.15",
		"03. high": "183.09",
		"04. low": "180.88",
		"05. price": "181.91",
		"06. volume": "71983600",
		"07. latest trading day": "2024-01-04",
		"08. previous close": "184.25",
		"09. change": "-2.34",
		"10. change percent": "-1.2700%"
	}
}`

func newAVServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *AlphaVantageProvider) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider := NewAlphaVantageProvider("test-key").
		WithBaseURL(server.URL).
		WithRetryConfig(RetryConfig{MaxRetries: 0})
	return server, provider
}

func TestAlphaVantage_GetBars(t *testing.T) {
	var gotQuery string
	_, provider := newAVServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(avDailyPayload))
	})

	data, err := provider.GetBars(context.Background(), "AAPL", types.IntervalDaily, 0)
	require.NoError(t, err)

	// Ascending regardless of the unordered JSON map.
	require.Len(t, data, 3)
	assert.Equal(t, 185.64, data[0].Close)
	assert.Equal(t, 184.25, data[1].Close)
	assert.Equal(t, 181.91, data[2].Close)
	assert.NoError(t, ValidateBars(data))

	assert.Contains(t, gotQuery, "function=TIME_SERIES_DAILY")
	assert.Contains(t, gotQuery, "symbol=AAPL")
	assert.Contains(t, gotQuery, "apikey=test-key")
	assert.Contains(t, gotQuery, "outputsize=full")
}

func TestAlphaVantage_GetBars_Limit(t *testing.T) {
	_, provider := newAVServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(avDailyPayload))
	})

	data, err := provider.GetBars(context.Background(), "AAPL", types.IntervalDaily, 2)
	require.NoError(t, err)

	require.Len(t, data, 2)
	assert.Equal(t, 184.25, data[0].Close)
}

func TestAlphaVantage_GetQuote(t *testing.T) {
	_, provider := newAVServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "function=GLOBAL_QUOTE")
		w.Write([]byte(avQuotePayload))
	})

	quote, err := provider.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 181.91, quote.Price)
	assert.Equal(t, 184.25, quote.PrevClose)
	assert.InDelta(t, -2.34, quote.Change, 1e-9)
	assert.InDelta(t, -1.27, quote.ChangePercent, 1e-9)
	assert.Equal(t, 2024, quote.Timestamp.Year())
}

func TestAlphaVantage_RateLimitNote(t *testing.T) {
	_, provider := newAVServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	})

	_, err := provider.GetBars(context.Background(), "AAPL", types.IntervalDaily, 0)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorCategoryRateLimit, appErr.Category)
	assert.True(t, appErr.IsRetryable())
}

func TestAlphaVantage_ErrorMessage(t *testing.T) {
	_, provider := newAVServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Error Message": "Invalid API call. Please retry or visit the documentation."}`))
	})

	_, err := provider.GetBars(context.Background(), "BOGUS", types.IntervalDaily, 0)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorCategoryProvider, appErr.Category)
	assert.False(t, appErr.IsRetryable())
}

func TestAlphaVantage_EmptySeries(t *testing.T) {
	_, provider := newAVServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Meta Data": {}}`))
	})

	_, err := provider.GetBars(context.Background(), "AAPL", types.IntervalDaily, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAlphaVantage_ServerErrorRetries(t *testing.T) {
	attempts := 0
	_, provider := newAVServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(avDailyPayload))
	})
	provider.WithRetryConfig(RetryConfig{MaxRetries: 2, InitialDelay: 1, MaxDelay: 1, BackoffFactor: 1})

	data, err := provider.GetBars(context.Background(), "AAPL", types.IntervalDaily, 0)
	require.NoError(t, err)
	assert.Len(t, data, 3)
	assert.Equal(t, 2, attempts)
}

func TestAlphaVantage_UnsupportedInterval(t *testing.T) {
	provider := NewAlphaVantageProvider("k")

	_, err := provider.GetBars(context.Background(), "AAPL", types.Interval("monthly"), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
