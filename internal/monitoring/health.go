package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// maxRecordedErrors caps the error ring surfaced in the health payload.
const maxRecordedErrors = 10

type HealthChecker struct {
	mu            sync.RWMutex
	lastQuoteTime time.Time
	lastSymbol    string
	lastPrice     float64
	providerOK    bool
	storeOK       bool
	errors        []string
}

type HealthStatus struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	LastQuoteTime time.Time `json:"last_quote_time"`
	LastSymbol    string    `json:"last_symbol,omitempty"`
	LastPrice     float64   `json:"last_price,omitempty"`
	ProviderOK    bool      `json:"provider_ok"`
	StoreOK       bool      `json:"store_ok"`
	Uptime        string    `json:"uptime"`
	Errors        []string  `json:"errors,omitempty"`
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		providerOK: true,
		storeOK:    true,
		errors:     make([]string, 0),
	}
}

// RecordQuote marks a successful market data round trip.
func (h *HealthChecker) RecordQuote(symbol string, price float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastQuoteTime = time.Now()
	h.lastSymbol = symbol
	h.lastPrice = price
	h.providerOK = true
}

// SetProviderStatus flags market data availability.
func (h *HealthChecker) SetProviderStatus(ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.providerOK = ok
}

// SetStoreStatus flags database availability.
func (h *HealthChecker) SetStoreStatus(ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.storeOK = ok
}

// AddError appends to the surfaced error list, keeping the most recent few.
func (h *HealthChecker) AddError(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, message)
	if len(h.errors) > maxRecordedErrors {
		h.errors = h.errors[len(h.errors)-maxRecordedErrors:]
	}
}

// ClearErrors resets the surfaced error list.
func (h *HealthChecker) ClearErrors() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = h.errors[:0]
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	code := http.StatusOK
	if !h.providerOK || !h.storeOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	if len(h.errors) > 0 {
		status = "unhealthy"
		code = http.StatusInternalServerError
	}

	health := HealthStatus{
		Status:        status,
		Timestamp:     time.Now(),
		LastQuoteTime: h.lastQuoteTime,
		LastSymbol:    h.lastSymbol,
		LastPrice:     h.lastPrice,
		ProviderOK:    h.providerOK,
		StoreOK:       h.storeOK,
		Uptime:        time.Since(startTime).String(),
		Errors:        h.errors,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(health)
}
