// Stock Insight one-shot analyzer. Fetches market data for a symbol and
// renders the indicator snapshot, optional position sizing and optional
// AI commentary as console tables. Can also screen a universe, value the
// portfolio, print journal statistics, and export the journal workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/joho/godotenv"

	"github.com/ducminhle1904/stock-insight/internal/advisor"
	"github.com/ducminhle1904/stock-insight/internal/indicators"
	"github.com/ducminhle1904/stock-insight/internal/logger"
	"github.com/ducminhle1904/stock-insight/internal/portfolio"
	"github.com/ducminhle1904/stock-insight/internal/risk"
	"github.com/ducminhle1904/stock-insight/internal/screener"
	"github.com/ducminhle1904/stock-insight/internal/store"
	"github.com/ducminhle1904/stock-insight/pkg/data"
	"github.com/ducminhle1904/stock-insight/pkg/reporting"
	"github.com/ducminhle1904/stock-insight/pkg/types"
)

func main() {
	var (
		symbol   = flag.String("symbol", "", "Symbol to analyze (e.g. AAPL, BTCUSDT)")
		interval = flag.String("interval", "daily", "Bar interval: daily, weekly, 60min, 15min, 5min")
		barCount = flag.Int("bars", 250, "Number of bars to fetch")
		csvDir   = flag.String("csv-dir", "data", "Directory with CSV bar files, used when no Alpha Vantage key is set")
		dbPath   = flag.String("db", "data/insight.db", "Path to the SQLite database")
		envFile  = flag.String("env", ".env", "Path to environment file")

		capital = flag.Float64("capital", 0, "Account capital; enables position sizing together with -entry and -stop")
		riskPct = flag.Float64("risk", 0.02, "Risk per trade as a fraction of capital")
		entry   = flag.Float64("entry", 0, "Planned entry price")
		stop    = flag.Float64("stop", 0, "Stop-loss price")
		cash    = flag.Float64("cash", 0, "Available cash, defaults to -capital")

		screen      = flag.String("screen", "", "Comma-separated universe to screen instead of single-symbol analysis")
		minPrice    = flag.Float64("min-price", 0, "Screener: minimum close price")
		minVolume   = flag.Float64("min-volume", 0, "Screener: minimum 20-day average volume")
		maxRSI      = flag.Float64("max-rsi", 0, "Screener: maximum RSI(14), 0 disables")
		aboveSMA200 = flag.Bool("above-sma200", false, "Screener: require close above SMA(200)")
		workers     = flag.Int("workers", 0, "Screener worker count, 0 uses one per CPU")

		showPortfolio = flag.Bool("portfolio", false, "Print the portfolio valuation from the database")
		journalStats  = flag.Bool("journal-stats", false, "Print journal statistics from the database")

		commentary = flag.Bool("commentary", false, "Ask Gemini for commentary (requires GEMINI_API_KEY)")
		jsonOut    = flag.String("json", "", "Write the result as JSON to this file")
		xlsxOut    = flag.String("xlsx", "", "Write the journal workbook to this .xlsx file")
	)
	flag.Parse()

	// Load environment variables
	if err := loadEnvFile(*envFile); err != nil {
		log.Printf("Warning: Could not load .env file (%v), checking environment variables...", err)
	}

	// Tables own stdout here; structured logs stay at warn unless asked.
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	appLogger := logger.Init("insight-analyze", logger.ParseLevel(level))
	ctx := context.Background()
	provider := buildProvider(*csvDir)
	reporter := reporting.NewConsoleReporter()

	switch {
	case *screen != "":
		criteria := screener.Criteria{
			MinPrice:     *minPrice,
			MinAvgVolume: *minVolume,
			AboveSMA200:  *aboveSMA200,
		}
		if *maxRSI > 0 {
			criteria.MaxRSI = maxRSI
		}
		runScreen(ctx, provider, reporter, appLogger, splitUniverse(*screen), criteria, *workers, *jsonOut)

	case *showPortfolio:
		runPortfolio(ctx, provider, reporter, appLogger, *dbPath, *jsonOut)

	case *journalStats || *xlsxOut != "":
		runJournal(ctx, provider, reporter, appLogger, *dbPath, *journalStats, *xlsxOut)

	case *symbol != "":
		sizing := sizingRequest(*symbol, *capital, *riskPct, *entry, *stop, *cash)
		runAnalysis(ctx, provider, reporter, analysisOptions{
			Symbol:     strings.ToUpper(strings.TrimSpace(*symbol)),
			Interval:   parseInterval(*interval),
			Bars:       *barCount,
			Sizing:     sizing,
			Commentary: *commentary,
			JSONPath:   *jsonOut,
		})

	default:
		fmt.Println("❌ Nothing to do: pass -symbol, -screen, -portfolio or -journal-stats")
		flag.Usage()
		os.Exit(2)
	}
}

// analysisOptions collects everything the single-symbol path needs.
type analysisOptions struct {
	Symbol     string
	Interval   types.Interval
	Bars       int
	Sizing     *risk.SizingRequest
	Commentary bool
	JSONPath   string
}

// analysisExport is the -json payload for the single-symbol path.
type analysisExport struct {
	Symbol     string               `json:"symbol"`
	Interval   types.Interval       `json:"interval"`
	Snapshot   *indicators.Snapshot `json:"snapshot"`
	Assessment *risk.Assessment     `json:"assessment,omitempty"`
	Commentary *advisor.Commentary  `json:"commentary,omitempty"`
}

func runAnalysis(ctx context.Context, provider data.MarketProvider, reporter *reporting.ConsoleReporter, opts analysisOptions) {
	fmt.Printf("📊 Analyzing %s (%s, %d bars)...\n\n", opts.Symbol, opts.Interval, opts.Bars)

	bars, err := provider.GetBars(ctx, opts.Symbol, opts.Interval, opts.Bars)
	if err != nil {
		log.Fatalf("❌ Failed to fetch bars for %s: %v", opts.Symbol, err)
	}

	snap, err := indicators.BuildSnapshot(opts.Symbol, bars)
	if err != nil {
		log.Fatalf("❌ Failed to compute indicators for %s: %v", opts.Symbol, err)
	}

	// The quote is garnish; analysis stands on bars alone.
	quote, err := provider.GetQuote(ctx, opts.Symbol)
	if err != nil {
		fmt.Printf("⚠️  No live quote for %s: %v\n\n", opts.Symbol, err)
		quote = nil
	}

	reporter.PrintAnalysis(quote, snap)

	export := &analysisExport{Symbol: opts.Symbol, Interval: opts.Interval, Snapshot: snap}

	if opts.Sizing != nil {
		assessment, err := risk.NewCalculator().Assess(*opts.Sizing)
		if err != nil {
			log.Fatalf("❌ Position sizing failed: %v", err)
		}
		reporter.PrintAssessment(assessment)
		export.Assessment = assessment
	}

	if opts.Commentary {
		export.Commentary = fetchCommentary(ctx, quote, snap)
	}

	writeJSONExport(export, opts.JSONPath)
}

func runScreen(ctx context.Context, provider data.MarketProvider, reporter *reporting.ConsoleReporter, appLogger *slog.Logger, universe []string, criteria screener.Criteria, workers int, jsonPath string) {
	fmt.Printf("🔍 Screening %d symbols...\n\n", len(universe))

	s := screener.New(provider, workers, appLogger)
	result, err := s.Run(ctx, universe, criteria)
	if err != nil {
		log.Fatalf("❌ Screener run failed: %v", err)
	}

	reporter.PrintScreenerResult(result)
	writeJSONExport(result, jsonPath)
}

func runPortfolio(ctx context.Context, provider data.MarketProvider, reporter *reporting.ConsoleReporter, appLogger *slog.Logger, dbPath, jsonPath string) {
	st := openStore(dbPath)
	defer st.Close()

	summary, err := portfolio.NewValuer(st, provider, appLogger).Snapshot(ctx)
	if err != nil {
		log.Fatalf("❌ Portfolio valuation failed: %v", err)
	}

	reporter.PrintPortfolio(summary)
	writeJSONExport(summary, jsonPath)
}

func runJournal(ctx context.Context, provider data.MarketProvider, reporter *reporting.ConsoleReporter, appLogger *slog.Logger, dbPath string, printStats bool, xlsxPath string) {
	st := openStore(dbPath)
	defer st.Close()

	entries, err := st.ListEntries(ctx, store.JournalFilter{})
	if err != nil {
		log.Fatalf("❌ Failed to load journal entries: %v", err)
	}

	if printStats {
		reporter.PrintTradeStats(reporting.ComputeTradeStats(entries))
	}

	if xlsxPath != "" {
		// The portfolio sheet is optional; a valuation failure degrades it
		// to a note row rather than blocking the export.
		summary, err := portfolio.NewValuer(st, provider, appLogger).Snapshot(ctx)
		if err != nil {
			appLogger.Warn("portfolio valuation failed, exporting without it", "error", err)
			summary = nil
		}
		if err := reporting.WriteJournalXLSX(entries, summary, xlsxPath); err != nil {
			log.Fatalf("❌ Failed to write %s: %v", xlsxPath, err)
		}
		fmt.Printf("💾 Journal workbook saved to %s\n", xlsxPath)
	}
}

// sizingRequest builds the position-sizing input when the sizing flags are
// present; entry and stop together opt in.
func sizingRequest(symbol string, capital, riskPct, entry, stop, cash float64) *risk.SizingRequest {
	if entry == 0 && stop == 0 {
		return nil
	}
	if cash == 0 {
		cash = capital
	}
	return &risk.SizingRequest{
		Symbol:        strings.ToUpper(strings.TrimSpace(symbol)),
		Capital:       capital,
		RiskPerTrade:  riskPct,
		EntryPrice:    entry,
		StopLossPrice: stop,
		AvailableCash: cash,
	}
}

func fetchCommentary(ctx context.Context, quote *types.Quote, snap *indicators.Snapshot) *advisor.Commentary {
	if os.Getenv("GEMINI_API_KEY") == "" {
		fmt.Println("⚠️  Skipping commentary: GEMINI_API_KEY is not set")
		return nil
	}

	adv, err := advisor.New(ctx, os.Getenv("GEMINI_MODEL"))
	if err != nil {
		log.Fatalf("❌ Failed to initialize advisor: %v", err)
	}

	commentary, err := adv.SymbolCommentary(ctx, quote, snap)
	if err != nil {
		log.Fatalf("❌ Commentary request failed: %v", err)
	}

	printCommentary(commentary)
	return commentary
}

func printCommentary(c *advisor.Commentary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("🤖 ADVISOR")
	t.SetStyle(table.StyleRounded)

	t.AppendRow(table.Row{"📝 Summary", c.Summary})
	if len(c.Signals) > 0 {
		t.AppendSeparator()
		for _, s := range c.Signals {
			t.AppendRow(table.Row{"📶 Signal", s})
		}
	}
	if len(c.Risks) > 0 {
		t.AppendSeparator()
		for _, r := range c.Risks {
			t.AppendRow(table.Row{"⚠️ Risk", r})
		}
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"💡 Suggestion", c.Suggestion})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 14, WidthMax: 14, Align: text.AlignLeft},
		{Number: 2, WidthMin: 40, WidthMax: 72, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

// buildProvider assembles the same provider chain as the server, minus the
// cache: a one-shot process never hits it.
func buildProvider(csvDir string) data.MarketProvider {
	var equity data.MarketProvider
	if key := os.Getenv("ALPHA_VANTAGE_API_KEY"); key != "" {
		equity = data.NewAlphaVantageProvider(key)
	} else {
		equity = data.NewCSVProvider(csvDir)
	}

	crypto := data.NewBybitProvider(data.BybitConfig{Category: "spot"})
	return data.NewRouter(equity, crypto)
}

func openStore(dbPath string) *store.Store {
	st, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("❌ Failed to open database %s: %v", dbPath, err)
	}
	return st
}

func parseInterval(s string) types.Interval {
	switch types.Interval(strings.ToLower(strings.TrimSpace(s))) {
	case types.IntervalDaily:
		return types.IntervalDaily
	case types.IntervalWeekly:
		return types.IntervalWeekly
	case types.Interval1h:
		return types.Interval1h
	case types.Interval15m:
		return types.Interval15m
	case types.Interval5m:
		return types.Interval5m
	default:
		log.Fatalf("❌ Unsupported interval %q (use daily, weekly, 60min, 15min or 5min)", s)
		return types.IntervalDaily
	}
}

func splitUniverse(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.ToUpper(strings.TrimSpace(part)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func writeJSONExport(v any, path string) {
	if path == "" {
		return
	}
	if err := reporting.WriteJSON(v, path); err != nil {
		log.Fatalf("❌ Failed to write %s: %v", path, err)
	}
	fmt.Printf("💾 Result saved to %s\n", path)
}

func loadEnvFile(envFile string) error {
	if _, err := os.Stat(envFile); err == nil {
		return godotenv.Load(envFile)
	}
	return fmt.Errorf("env file %s not found", envFile)
}
