package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getHealth(t *testing.T, h *HealthChecker) (int, HealthStatus) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var status HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	return rec.Code, status
}

func TestHealthChecker_Healthy(t *testing.T) {
	h := NewHealthChecker()
	h.RecordQuote("AAPL", 195.20)

	code, status := getHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "AAPL", status.LastSymbol)
	assert.Equal(t, 195.20, status.LastPrice)
	assert.True(t, status.ProviderOK)
	assert.True(t, status.StoreOK)
	assert.NotEmpty(t, status.Uptime)
}

func TestHealthChecker_DegradedOnProviderFailure(t *testing.T) {
	h := NewHealthChecker()
	h.SetProviderStatus(false)

	code, status := getHealth(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", status.Status)
}

func TestHealthChecker_DegradedOnStoreFailure(t *testing.T) {
	h := NewHealthChecker()
	h.SetStoreStatus(false)

	code, status := getHealth(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", status.Status)
}

func TestHealthChecker_UnhealthyOnErrors(t *testing.T) {
	h := NewHealthChecker()
	h.AddError("provider quota exhausted")

	code, status := getHealth(t, h)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "unhealthy", status.Status)
	assert.Contains(t, status.Errors, "provider quota exhausted")

	h.ClearErrors()
	code, status = getHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", status.Status)
}

func TestHealthChecker_ErrorListCapped(t *testing.T) {
	h := NewHealthChecker()
	for i := 0; i < maxRecordedErrors+5; i++ {
		h.AddError("error")
	}

	_, status := getHealth(t, h)
	assert.Len(t, status.Errors, maxRecordedErrors)
}

func TestMetricsHandler_Serves(t *testing.T) {
	RecordAPIRequest("/api/v1/quotes/{symbol}", http.MethodGet, http.StatusOK, 25*time.Millisecond)
	RecordProviderRequest("alphavantage", "ok")
	UpdateQuotePrice("AAPL", 195.20)
	RecordAlertTriggered("price_above")
	RecordScreenerRun(120 * time.Millisecond)
	RecordLLMRequest("ok")
	RecordError("provider")

	rec := httptest.NewRecorder()
	NewMetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "insight_api_requests_total")
	assert.Contains(t, body, "insight_provider_requests_total")
	assert.Contains(t, body, "insight_quote_price")
	assert.Contains(t, body, "insight_alerts_triggered_total")
	assert.Contains(t, body, "insight_llm_requests_total")
	assert.Contains(t, body, "insight_errors_total")
}
