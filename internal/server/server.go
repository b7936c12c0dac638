// Package server exposes the analysis platform over HTTP: REST endpoints for
// quotes, indicators, risk sizing, screening, the journal and portfolio
// stores, plus a websocket quote stream for charting frontends.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ducminhle1904/stock-insight/internal/advisor"
	"github.com/ducminhle1904/stock-insight/internal/alerts"
	"github.com/ducminhle1904/stock-insight/internal/monitoring"
	"github.com/ducminhle1904/stock-insight/internal/portfolio"
	"github.com/ducminhle1904/stock-insight/internal/risk"
	"github.com/ducminhle1904/stock-insight/internal/screener"
	"github.com/ducminhle1904/stock-insight/internal/store"
	"github.com/ducminhle1904/stock-insight/pkg/data"
)

const (
	// DefaultStreamInterval is how often the websocket hub refreshes
	// subscribed quotes.
	DefaultStreamInterval = 5 * time.Second

	readHeaderTimeout = 10 * time.Second
	shutdownGrace     = 10 * time.Second
)

// Config holds the listener settings. StreamInterval tunes the websocket
// quote refresh; zero means DefaultStreamInterval.
type Config struct {
	Addr           string
	CORSOrigin     string
	StreamInterval time.Duration
}

// Deps carries the wired application services. Advisor and Scheduler may be
// nil; their routes answer 503 until configured.
type Deps struct {
	Store     *store.Store
	Provider  data.MarketProvider
	Screener  *screener.Screener
	Valuer    *portfolio.Valuer
	Advisor   *advisor.Advisor
	Scheduler *alerts.Scheduler
	Health    *monitoring.HealthChecker
	Logger    *slog.Logger
}

// Server is the HTTP front of the platform.
type Server struct {
	cfg        Config
	corsOrigin string

	store     *store.Store
	provider  data.MarketProvider
	screener  *screener.Screener
	valuer    *portfolio.Valuer
	advisor   *advisor.Advisor
	scheduler *alerts.Scheduler
	risk      *risk.Calculator
	health    *monitoring.HealthChecker
	logger    *slog.Logger

	hub     *QuoteHub
	httpSrv *http.Server
}

// New assembles the server and its route table.
func New(cfg Config, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Health == nil {
		deps.Health = monitoring.NewHealthChecker()
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}

	s := &Server{
		cfg:        cfg,
		corsOrigin: cfg.CORSOrigin,
		store:      deps.Store,
		provider:   deps.Provider,
		screener:   deps.Screener,
		valuer:     deps.Valuer,
		advisor:    deps.Advisor,
		scheduler:  deps.Scheduler,
		risk:       risk.NewCalculator(),
		health:     deps.Health,
		logger:     deps.Logger,
	}
	s.hub = NewQuoteHub(deps.Provider, cfg.StreamInterval, deps.Logger)
	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler returns the full route table, CORS and instrumentation included.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Operational endpoints. /metrics stays outside the instrumentation
	// wrapper so scrapes do not count themselves.
	mux.Handle("GET /api/v1/health", s.wrap("/health", s.health.ServeHTTP))
	mux.Handle("GET /api/v1/metrics", monitoring.NewMetricsHandler())

	// Market data and analysis.
	mux.Handle("GET /api/v1/quotes/{symbol}", s.wrap("/quotes/:symbol", s.handleGetQuote))
	mux.Handle("GET /api/v1/bars/{symbol}", s.wrap("/bars/:symbol", s.handleGetBars))
	mux.Handle("GET /api/v1/analysis/{symbol}", s.wrap("/analysis/:symbol", s.handleGetAnalysis))

	// Risk and analytics tools.
	mux.Handle("POST /api/v1/risk/position-size", s.wrap("/risk/position-size", s.handlePositionSize))
	mux.Handle("POST /api/v1/screener/run", s.wrap("/screener/run", s.handleScreenerRun))
	mux.Handle("POST /api/v1/options/analyze", s.wrap("/options/analyze", s.handleOptionsAnalyze))
	mux.Handle("POST /api/v1/advisor/commentary", s.wrap("/advisor/commentary", s.handleAdvisorCommentary))
	mux.Handle("POST /api/v1/advisor/portfolio-review", s.wrap("/advisor/portfolio-review", s.handleAdvisorPortfolioReview))
	mux.Handle("POST /api/v1/advisor/journal-coaching", s.wrap("/advisor/journal-coaching", s.handleAdvisorJournalCoaching))

	// Watchlists.
	mux.Handle("GET /api/v1/watchlists", s.wrap("/watchlists", s.handleListWatchlists))
	mux.Handle("POST /api/v1/watchlists", s.wrap("/watchlists", s.handleCreateWatchlist))
	mux.Handle("GET /api/v1/watchlists/{id}", s.wrap("/watchlists/:id", s.handleGetWatchlist))
	mux.Handle("DELETE /api/v1/watchlists/{id}", s.wrap("/watchlists/:id", s.handleDeleteWatchlist))
	mux.Handle("POST /api/v1/watchlists/{id}/symbols", s.wrap("/watchlists/:id/symbols", s.handleAddWatchlistSymbol))
	mux.Handle("DELETE /api/v1/watchlists/{id}/symbols/{symbol}", s.wrap("/watchlists/:id/symbols", s.handleRemoveWatchlistSymbol))

	// Trade journal.
	mux.Handle("GET /api/v1/journal", s.wrap("/journal", s.handleListJournal))
	mux.Handle("POST /api/v1/journal", s.wrap("/journal", s.handleCreateJournal))
	mux.Handle("GET /api/v1/journal/stats", s.wrap("/journal/stats", s.handleJournalStats))
	mux.Handle("GET /api/v1/journal/{id}", s.wrap("/journal/:id", s.handleGetJournal))
	mux.Handle("PUT /api/v1/journal/{id}", s.wrap("/journal/:id", s.handleUpdateJournal))
	mux.Handle("DELETE /api/v1/journal/{id}", s.wrap("/journal/:id", s.handleDeleteJournal))
	mux.Handle("POST /api/v1/journal/{id}/close", s.wrap("/journal/:id/close", s.handleCloseJournal))

	// Portfolio.
	mux.Handle("GET /api/v1/portfolio", s.wrap("/portfolio", s.handleListLots))
	mux.Handle("GET /api/v1/portfolio/summary", s.wrap("/portfolio/summary", s.handlePortfolioSummary))
	mux.Handle("POST /api/v1/portfolio/lots", s.wrap("/portfolio/lots", s.handleAddLot))
	mux.Handle("DELETE /api/v1/portfolio/lots/{id}", s.wrap("/portfolio/lots/:id", s.handleDeleteLot))

	// Alerts.
	mux.Handle("GET /api/v1/alerts", s.wrap("/alerts", s.handleListAlerts))
	mux.Handle("POST /api/v1/alerts", s.wrap("/alerts", s.handleCreateAlert))
	mux.Handle("DELETE /api/v1/alerts/{id}", s.wrap("/alerts/:id", s.handleDeleteAlert))
	mux.Handle("POST /api/v1/alerts/run", s.wrap("/alerts/run", s.handleRunAlerts))

	// Settings.
	mux.Handle("GET /api/v1/settings", s.wrap("/settings", s.handleListSettings))
	mux.Handle("PUT /api/v1/settings/{key}", s.wrap("/settings/:key", s.handlePutSetting))
	mux.Handle("DELETE /api/v1/settings/{key}", s.wrap("/settings/:key", s.handleDeleteSetting))

	// Reports.
	mux.Handle("GET /api/v1/reports/journal.xlsx", s.wrap("/reports/journal.xlsx", s.handleJournalWorkbook))

	// Websocket upgrades need the raw ResponseWriter, so the stream skips the
	// instrumentation wrapper.
	mux.HandleFunc("GET /ws/quotes", s.hub.HandleWS)

	return s.cors(mux)
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	s.hub.Start()
	s.logger.Info("http server listening", "addr", s.cfg.Addr)
	return s.httpSrv.ListenAndServe()
}

// Shutdown stops the quote stream and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, shutdownGrace)
		defer cancel()
	}
	return s.httpSrv.Shutdown(ctx)
}
