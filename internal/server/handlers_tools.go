package server

import (
	"net/http"
	"time"

	"github.com/ducminhle1904/stock-insight/internal/errors"
	"github.com/ducminhle1904/stock-insight/internal/indicators"
	"github.com/ducminhle1904/stock-insight/internal/monitoring"
	"github.com/ducminhle1904/stock-insight/internal/options"
	"github.com/ducminhle1904/stock-insight/internal/risk"
	"github.com/ducminhle1904/stock-insight/internal/screener"
	"github.com/ducminhle1904/stock-insight/internal/store"
	"github.com/ducminhle1904/stock-insight/pkg/reporting"
	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// defaultCoachingEntries bounds how many recent trades go into the coaching
// prompt.
const defaultCoachingEntries = 10

func (s *Server) handlePositionSize(w http.ResponseWriter, r *http.Request) {
	var req risk.SizingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	assessment, err := s.risk.Assess(req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, assessment)
}

func (s *Server) handleScreenerRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Universe []string          `json:"universe"`
		Criteria screener.Criteria `json:"criteria"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.screener.Run(r.Context(), req.Universe, req.Criteria)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	monitoring.RecordScreenerRun(result.Duration)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleOptionsAnalyze(w http.ResponseWriter, r *http.Request) {
	var contract options.Contract
	if err := decodeJSON(w, r, &contract); err != nil {
		s.respondError(w, r, err)
		return
	}
	analysis, err := options.Analyze(contract)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, analysis)
}

// Advisor routes. All of them answer 503 until a Gemini key is configured.

func (s *Server) advisorReady(w http.ResponseWriter, r *http.Request) bool {
	if s.advisor == nil {
		respondJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error: "advisor is not configured: set GEMINI_API_KEY and restart",
		})
		return false
	}
	return true
}

func (s *Server) handleAdvisorCommentary(w http.ResponseWriter, r *http.Request) {
	if !s.advisorReady(w, r) {
		return
	}
	var req struct {
		Symbol string `json:"symbol"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	symbol := normalizeSymbol(req.Symbol)
	if symbol == "" {
		s.respondError(w, r, errors.NewValidationError("server", "advisor_commentary", "symbol must not be empty"))
		return
	}

	quote, err := s.provider.GetQuote(r.Context(), symbol)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	bars, err := s.provider.GetBars(r.Context(), symbol, types.IntervalDaily, DefaultAnalysisBars)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	snapshot, err := indicators.BuildSnapshot(symbol, bars)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	commentary, err := s.advisor.SymbolCommentary(r.Context(), quote, snapshot)
	if err != nil {
		monitoring.RecordLLMRequest("error")
		s.respondError(w, r, err)
		return
	}
	monitoring.RecordLLMRequest("ok")
	respondJSON(w, http.StatusOK, commentary)
}

func (s *Server) handleAdvisorPortfolioReview(w http.ResponseWriter, r *http.Request) {
	if !s.advisorReady(w, r) {
		return
	}
	summary, err := s.valuer.Snapshot(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	commentary, err := s.advisor.PortfolioReview(r.Context(), summary)
	if err != nil {
		monitoring.RecordLLMRequest("error")
		s.respondError(w, r, err)
		return
	}
	monitoring.RecordLLMRequest("ok")
	respondJSON(w, http.StatusOK, commentary)
}

func (s *Server) handleAdvisorJournalCoaching(w http.ResponseWriter, r *http.Request) {
	if !s.advisorReady(w, r) {
		return
	}
	var req struct {
		Recent int `json:"recent,omitempty"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Recent <= 0 {
		req.Recent = defaultCoachingEntries
	}

	entries, err := s.store.ListEntries(r.Context(), store.JournalFilter{})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	stats := reporting.ComputeTradeStats(entries)
	if len(entries) > req.Recent {
		entries = entries[:req.Recent] // ListEntries returns newest-first
	}

	commentary, err := s.advisor.JournalCoaching(r.Context(), stats, entries)
	if err != nil {
		monitoring.RecordLLMRequest("error")
		s.respondError(w, r, err)
		return
	}
	monitoring.RecordLLMRequest("ok")
	respondJSON(w, http.StatusOK, commentary)
}

// Reports.

func (s *Server) handleJournalWorkbook(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListEntries(r.Context(), store.JournalFilter{})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	// Portfolio valuation is best effort; the workbook renders without it.
	summary, err := s.valuer.Snapshot(r.Context())
	if err != nil {
		s.logger.Warn("journal workbook without portfolio valuation", "error", err)
		summary = nil
	}

	workbook, err := reporting.BuildJournalWorkbook(entries, summary)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer workbook.Close()

	filename := "journal-" + time.Now().UTC().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := workbook.Write(w); err != nil {
		s.logger.Error("journal workbook write failed", "error", err)
		monitoring.RecordError("report_write")
	}
}
