// Package screener scans a symbol universe against indicator-based criteria
// using a bounded worker pool.
package screener

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	apperrors "github.com/ducminhle1904/stock-insight/internal/errors"
	"github.com/ducminhle1904/stock-insight/internal/indicators"
	"github.com/ducminhle1904/stock-insight/pkg/data"
	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// barsPerScan is how much daily history each symbol is evaluated over. 250
// bars covers the SMA(200) warmup with margin.
const barsPerScan = 250

// avgVolumeWindow is the lookback for the average-volume criterion.
const avgVolumeWindow = 20

// Criteria describes which symbols pass the screen. Zero-valued price and
// volume bounds are unset; pointer bounds are unset when nil.
type Criteria struct {
	MinPrice     float64  `json:"minPrice,omitempty"`
	MaxPrice     float64  `json:"maxPrice,omitempty"`
	MinAvgVolume float64  `json:"minAvgVolume,omitempty"`
	MinRSI       *float64 `json:"minRSI,omitempty"`
	MaxRSI       *float64 `json:"maxRSI,omitempty"`
	AboveSMA50   bool     `json:"aboveSMA50,omitempty"`
	BelowSMA50   bool     `json:"belowSMA50,omitempty"`
	AboveSMA200  bool     `json:"aboveSMA200,omitempty"`
	BelowSMA200  bool     `json:"belowSMA200,omitempty"`
	MinPercentB  *float64 `json:"minPercentB,omitempty"`
	MaxPercentB  *float64 `json:"maxPercentB,omitempty"`
}

// Validate rejects contradictory criteria.
func (c Criteria) Validate() error {
	switch {
	case c.MinPrice < 0 || c.MaxPrice < 0 || c.MinAvgVolume < 0:
		return apperrors.NewValidationError("screener", "validate criteria", "price and volume bounds must not be negative")
	case c.MaxPrice > 0 && c.MinPrice > c.MaxPrice:
		return apperrors.NewValidationError("screener", "validate criteria", "minPrice must not exceed maxPrice")
	case c.MinRSI != nil && c.MaxRSI != nil && *c.MinRSI > *c.MaxRSI:
		return apperrors.NewValidationError("screener", "validate criteria", "minRSI must not exceed maxRSI")
	case c.MinPercentB != nil && c.MaxPercentB != nil && *c.MinPercentB > *c.MaxPercentB:
		return apperrors.NewValidationError("screener", "validate criteria", "minPercentB must not exceed maxPercentB")
	case c.AboveSMA50 && c.BelowSMA50:
		return apperrors.NewValidationError("screener", "validate criteria", "aboveSMA50 and belowSMA50 are mutually exclusive")
	case c.AboveSMA200 && c.BelowSMA200:
		return apperrors.NewValidationError("screener", "validate criteria", "aboveSMA200 and belowSMA200 are mutually exclusive")
	}
	return nil
}

// Match is one symbol that passed the screen.
type Match struct {
	Symbol    string               `json:"symbol"`
	Close     float64              `json:"close"`
	AvgVolume float64              `json:"avgVolume"`
	Snapshot  *indicators.Snapshot `json:"snapshot"`
}

// Result is the outcome of one screening run. Per-symbol failures are
// collected rather than aborting the scan.
type Result struct {
	Matches  []Match           `json:"matches"`
	Errors   map[string]string `json:"errors,omitempty"`
	Scanned  int               `json:"scanned"`
	Duration time.Duration     `json:"duration"`
}

// Screener fans symbol evaluations out over a fixed worker count.
type Screener struct {
	provider data.BarProvider
	workers  int
	logger   *slog.Logger
}

// New builds a Screener. workers <= 0 selects one worker per CPU.
func New(provider data.BarProvider, workers int, logger *slog.Logger) *Screener {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Screener{provider: provider, workers: workers, logger: logger}
}

type symbolResult struct {
	symbol string
	match  *Match
	err    error
}

// Run evaluates every symbol in the universe against the criteria.
func (s *Screener) Run(ctx context.Context, universe []string, criteria Criteria) (*Result, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	if len(universe) == 0 {
		return nil, apperrors.NewValidationError("screener", "run", "symbol universe must not be empty")
	}

	start := time.Now()
	jobs := make(chan string)
	results := make(chan symbolResult, len(universe))

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				match, err := s.evaluate(ctx, symbol, criteria)
				select {
				case results <- symbolResult{symbol: symbol, match: match, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

feed:
	for _, symbol := range universe {
		select {
		case jobs <- symbol:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	result := &Result{Matches: []Match{}, Errors: map[string]string{}}
	for r := range results {
		result.Scanned++
		switch {
		case r.err != nil:
			s.logger.Warn("screen failed for symbol", "symbol", r.symbol, "error", r.err)
			result.Errors[r.symbol] = r.err.Error()
		case r.match != nil:
			result.Matches = append(result.Matches, *r.match)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrorCategoryTimeout, "screener", "run")
	}

	sort.Slice(result.Matches, func(i, j int) bool {
		return result.Matches[i].Symbol < result.Matches[j].Symbol
	})
	result.Duration = time.Since(start)
	return result, nil
}

// evaluate fetches history for one symbol and applies the criteria. A nil
// match with nil error means the symbol simply did not pass.
func (s *Screener) evaluate(ctx context.Context, symbol string, criteria Criteria) (*Match, error) {
	bars, err := s.provider.GetBars(ctx, symbol, types.IntervalDaily, barsPerScan)
	if err != nil {
		return nil, err
	}

	snapshot, err := indicators.BuildSnapshot(symbol, bars)
	if err != nil {
		return nil, err
	}

	avgVolume := averageVolume(bars, avgVolumeWindow)
	if !passes(snapshot, avgVolume, criteria) {
		return nil, nil
	}
	return &Match{
		Symbol:    snapshot.Symbol,
		Close:     snapshot.Close,
		AvgVolume: avgVolume,
		Snapshot:  snapshot,
	}, nil
}

// passes applies each bound. A criterion that needs an indicator the history
// was too short to produce fails the symbol.
func passes(snap *indicators.Snapshot, avgVolume float64, c Criteria) bool {
	if c.MinPrice > 0 && snap.Close < c.MinPrice {
		return false
	}
	if c.MaxPrice > 0 && snap.Close > c.MaxPrice {
		return false
	}
	if c.MinAvgVolume > 0 && avgVolume < c.MinAvgVolume {
		return false
	}

	if c.MinRSI != nil || c.MaxRSI != nil {
		if snap.RSI14 == nil {
			return false
		}
		if c.MinRSI != nil && *snap.RSI14 < *c.MinRSI {
			return false
		}
		if c.MaxRSI != nil && *snap.RSI14 > *c.MaxRSI {
			return false
		}
	}

	if c.AboveSMA50 || c.BelowSMA50 {
		if snap.SMA50 == nil {
			return false
		}
		if c.AboveSMA50 && snap.Close <= *snap.SMA50 {
			return false
		}
		if c.BelowSMA50 && snap.Close >= *snap.SMA50 {
			return false
		}
	}
	if c.AboveSMA200 || c.BelowSMA200 {
		if snap.SMA200 == nil {
			return false
		}
		if c.AboveSMA200 && snap.Close <= *snap.SMA200 {
			return false
		}
		if c.BelowSMA200 && snap.Close >= *snap.SMA200 {
			return false
		}
	}

	if c.MinPercentB != nil || c.MaxPercentB != nil {
		if snap.Bollinger == nil {
			return false
		}
		pb := snap.Bollinger.PercentB
		if c.MinPercentB != nil && pb < *c.MinPercentB {
			return false
		}
		if c.MaxPercentB != nil && pb > *c.MaxPercentB {
			return false
		}
	}
	return true
}

func averageVolume(bars []types.OHLCV, window int) float64 {
	if len(bars) == 0 {
		return 0
	}
	if window > len(bars) {
		window = len(bars)
	}
	var sum float64
	for _, bar := range bars[len(bars)-window:] {
		sum += bar.Volume
	}
	return sum / float64(window)
}
