package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ducminhle1904/stock-insight/internal/errors"
	"github.com/ducminhle1904/stock-insight/internal/indicators"
	"github.com/ducminhle1904/stock-insight/internal/monitoring"
	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// DefaultAnalysisBars is the history window used when /analysis is called
// without a limit. It leaves headroom over the 200-day SMA lookback.
const DefaultAnalysisBars = 250

const maxBarLimit = 5000

func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := normalizeSymbol(r.PathValue("symbol"))

	quote, err := s.provider.GetQuote(r.Context(), symbol)
	if err != nil {
		monitoring.RecordProviderRequest(s.provider.GetName(), "error")
		s.respondError(w, r, err)
		return
	}
	monitoring.RecordProviderRequest(s.provider.GetName(), "ok")
	monitoring.UpdateQuotePrice(symbol, quote.Price)
	s.health.RecordQuote(symbol, quote.Price)

	respondJSON(w, http.StatusOK, toQuoteDTO(quote))
}

func (s *Server) handleGetBars(w http.ResponseWriter, r *http.Request) {
	symbol := normalizeSymbol(r.PathValue("symbol"))
	interval, err := parseInterval(r.URL.Query().Get("interval"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"), 0)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	bars, err := s.provider.GetBars(r.Context(), symbol, interval, limit)
	if err != nil {
		monitoring.RecordProviderRequest(s.provider.GetName(), "error")
		s.respondError(w, r, err)
		return
	}
	monitoring.RecordProviderRequest(s.provider.GetName(), "ok")

	respondJSON(w, http.StatusOK, map[string]any{
		"symbol":   symbol,
		"interval": interval,
		"bars":     toBarDTOs(bars),
	})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol := normalizeSymbol(r.PathValue("symbol"))
	interval, err := parseInterval(r.URL.Query().Get("interval"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"), DefaultAnalysisBars)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	bars, err := s.provider.GetBars(r.Context(), symbol, interval, limit)
	if err != nil {
		monitoring.RecordProviderRequest(s.provider.GetName(), "error")
		s.respondError(w, r, err)
		return
	}
	monitoring.RecordProviderRequest(s.provider.GetName(), "ok")

	snapshot, err := indicators.BuildSnapshot(symbol, bars)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := analysisResponse{
		Symbol:   symbol,
		Interval: interval,
		Bars:     len(bars),
		Snapshot: snapshot,
		Series:   buildAnalysisSeries(bars),
	}

	// The quote is garnish on top of the bar series; a realtime outage
	// should not take the whole analysis down with it.
	if quote, qErr := s.provider.GetQuote(r.Context(), symbol); qErr == nil {
		dto := toQuoteDTO(quote)
		resp.Quote = &dto
		monitoring.UpdateQuotePrice(symbol, quote.Price)
		s.health.RecordQuote(symbol, quote.Price)
	} else {
		s.logger.Debug("analysis quote unavailable", "symbol", symbol, "error", qErr)
	}

	respondJSON(w, http.StatusOK, resp)
}

// buildAnalysisSeries computes the chart overlays. Series that need more
// history than the request returned come back empty rather than failing.
func buildAnalysisSeries(bars []types.OHLCV) analysisSeries {
	series := analysisSeries{
		SMA20:  seriesOrEmpty(indicators.NewSMA(indicators.DefaultShortSMAPeriod), bars),
		SMA50:  seriesOrEmpty(indicators.NewSMA(indicators.DefaultMediumSMAPeriod), bars),
		SMA200: seriesOrEmpty(indicators.NewSMA(indicators.DefaultLongSMAPeriod), bars),
		EMA12:  seriesOrEmpty(indicators.NewEMA(indicators.DefaultFastEMAPeriod), bars),
		EMA26:  seriesOrEmpty(indicators.NewEMA(indicators.DefaultSlowEMAPeriod), bars),
	}
	bb := indicators.NewBollingerBands(indicators.DefaultBBPeriod, indicators.DefaultBBStdDev)
	if bands, err := bb.Series(bars); err == nil {
		series.Bollinger = toBandsDTO(bands)
	}
	return series
}

type seriesCalculator interface {
	Series(data []types.OHLCV) ([]indicators.Point, error)
}

func seriesOrEmpty(calc seriesCalculator, bars []types.OHLCV) []pointDTO {
	points, err := calc.Series(bars)
	if err != nil {
		return []pointDTO{}
	}
	return toPointDTOs(points)
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func parseInterval(raw string) (types.Interval, error) {
	if raw == "" {
		return types.IntervalDaily, nil
	}
	switch interval := types.Interval(raw); interval {
	case types.IntervalDaily, types.IntervalWeekly, types.Interval1h, types.Interval15m, types.Interval5m:
		return interval, nil
	default:
		return "", errors.NewValidationError("server", "parse_interval",
			fmt.Sprintf("unsupported interval %q", raw))
	}
}

func parseLimit(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, errors.NewValidationError("server", "parse_limit",
			fmt.Sprintf("limit must be a non-negative integer, got %q", raw))
	}
	if limit > maxBarLimit {
		limit = maxBarLimit
	}
	return limit, nil
}
