package reporting

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/stock-insight/internal/indicators"
	"github.com/ducminhle1904/stock-insight/internal/portfolio"
	"github.com/ducminhle1904/stock-insight/internal/risk"
	"github.com/ducminhle1904/stock-insight/internal/screener"
	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// ConsoleReporter renders analysis output as rounded tables on a writer,
// stdout by default.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a console reporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{out: os.Stdout}
}

// NewConsoleReporterWithWriter creates a console reporter writing to w.
func NewConsoleReporterWithWriter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: w}
}

// PrintAnalysis renders the quote and indicator snapshot for one symbol.
func (r *ConsoleReporter) PrintAnalysis(quote *types.Quote, snap *indicators.Snapshot) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("ANALYSIS: %s", snap.Symbol)
	t.SetStyle(table.StyleRounded)

	if quote != nil {
		t.AppendRows([]table.Row{
			{"💰 Last Price", fmt.Sprintf("$%.2f", quote.Price)},
			{"📈 Change", fmt.Sprintf("%+.2f (%+.2f%%)", quote.Change, quote.ChangePercent)},
			{"📊 Day Range", fmt.Sprintf("$%.2f - $%.2f", quote.Low, quote.High)},
			{"🔄 Volume", fmt.Sprintf("%.0f", quote.Volume)},
		})
		t.AppendSeparator()
	}

	t.AppendRows([]table.Row{
		{"📉 Close", fmt.Sprintf("$%.2f", snap.Close)},
		{"📏 SMA 20", fmtIndicator(snap.SMA20)},
		{"📏 SMA 50", fmtIndicator(snap.SMA50)},
		{"📏 SMA 200", fmtIndicator(snap.SMA200)},
		{"📏 EMA 12", fmtIndicator(snap.EMA12)},
		{"📏 EMA 26", fmtIndicator(snap.EMA26)},
		{"⚡ RSI 14", fmtIndicator(snap.RSI14)},
	})

	if snap.MACD != nil {
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"📐 MACD Line", fmt.Sprintf("%.4f", snap.MACD.Line)},
			{"📐 MACD Signal", fmt.Sprintf("%.4f", snap.MACD.Signal)},
			{"📐 MACD Histogram", fmt.Sprintf("%.4f", snap.MACD.Histogram)},
		})
	}

	if snap.Bollinger != nil {
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"🎯 BB Upper", fmt.Sprintf("$%.2f", snap.Bollinger.Upper)},
			{"🎯 BB Middle", fmt.Sprintf("$%.2f", snap.Bollinger.Middle)},
			{"🎯 BB Lower", fmt.Sprintf("$%.2f", snap.Bollinger.Lower)},
			{"🎯 %B", fmt.Sprintf("%.3f", snap.Bollinger.PercentB)},
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 20, WidthMax: 30, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Fprintln(r.out)
}

// PrintAssessment renders a position-sizing assessment.
func (r *ConsoleReporter) PrintAssessment(a *risk.Assessment) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("POSITION SIZING")
	t.SetStyle(table.StyleRounded)

	ps := a.PositionSizing
	t.AppendRows([]table.Row{
		{"🎯 Shares", fmt.Sprintf("%d", ps.RecommendedShares)},
		{"💰 Dollar Amount", fmt.Sprintf("$%.2f", ps.RecommendedDollarAmount)},
		{"📉 Risk Amount", fmt.Sprintf("$%.2f (%.2f%%)", ps.RiskAmount, ps.RiskPercentage)},
		{"📊 Position Size", fmt.Sprintf("%.2f%% of capital", ps.PositionPercentage)},
		{"🛑 Stop Distance", fmt.Sprintf("$%.2f (%.2f%%)", ps.StopLossDistance.Dollars, ps.StopLossDistance.Percentage)},
		{"⚖️ Risk Level", string(a.RiskLevel)},
		{"📐 Reward:Risk", fmt.Sprintf("%.1f : 1", a.RiskMetrics.RiskRewardRatio)},
	})

	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"✅ Best Case", fmtScenario(a.ScenarioAnalysis.BestCase)},
		{"📊 Expected Case", fmtScenario(a.ScenarioAnalysis.ExpectedCase)},
		{"❌ Worst Case", fmtScenario(a.ScenarioAnalysis.WorstCase)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 50, Align: text.AlignLeft},
	})

	t.Render()

	for _, w := range a.Warnings {
		fmt.Fprintf(r.out, "⚠️  %s\n", w)
	}
	for _, adv := range a.Advice {
		fmt.Fprintf(r.out, "💡 %s\n", adv)
	}
	fmt.Fprintln(r.out)
}

// PrintScreenerResult renders screener matches with per-symbol errors below.
func (r *ConsoleReporter) PrintScreenerResult(result *screener.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("SCREENER: %d/%d matched", len(result.Matches), result.Scanned)
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Symbol", "Close", "Avg Volume", "RSI 14", "SMA 50", "SMA 200", "%B"})
	for _, m := range result.Matches {
		row := table.Row{
			m.Symbol,
			fmt.Sprintf("$%.2f", m.Close),
			fmt.Sprintf("%.0f", m.AvgVolume),
			fmtIndicatorPlain(m.Snapshot.RSI14),
			fmtIndicator(m.Snapshot.SMA50),
			fmtIndicator(m.Snapshot.SMA200),
		}
		if m.Snapshot.Bollinger != nil {
			row = append(row, fmt.Sprintf("%.3f", m.Snapshot.Bollinger.PercentB))
		} else {
			row = append(row, "n/a")
		}
		t.AppendRow(row)
	}

	t.Render()

	if len(result.Errors) > 0 {
		symbols := make([]string, 0, len(result.Errors))
		for s := range result.Errors {
			symbols = append(symbols, s)
		}
		sort.Strings(symbols)
		for _, s := range symbols {
			fmt.Fprintf(r.out, "⚠️  %s: %s\n", s, result.Errors[s])
		}
	}
	fmt.Fprintln(r.out)
}

// PrintPortfolio renders the portfolio summary with per-position rows and a
// totals footer.
func (r *ConsoleReporter) PrintPortfolio(summary *portfolio.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("PORTFOLIO")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Symbol", "Qty", "Avg Cost", "Last", "Value", "P/L", "P/L %", "Weight"})
	for _, p := range summary.Positions {
		last := "$" + p.LastPrice.StringFixed(2)
		if !p.Priced {
			last = "at cost"
		}
		t.AppendRow(table.Row{
			p.Symbol,
			p.Quantity.String(),
			"$" + p.AvgCost.StringFixed(2),
			last,
			"$" + p.MarketValue.StringFixed(2),
			"$" + p.UnrealizedPL.StringFixed(2),
			p.UnrealizedPct.StringFixed(2) + "%",
			p.Weight.StringFixed(1) + "%",
		})
	}

	t.AppendFooter(table.Row{
		"TOTAL", "",
		"$" + summary.TotalCost.StringFixed(2),
		"",
		"$" + summary.TotalValue.StringFixed(2),
		"$" + summary.TotalPL.StringFixed(2),
		summary.TotalPLPct.StringFixed(2) + "%",
		"",
	})

	t.Render()

	for _, symbol := range summary.Concentration {
		fmt.Fprintf(r.out, "⚠️  Concentration: %s exceeds the position weight ceiling\n", symbol)
	}
	fmt.Fprintln(r.out)
}

// PrintTradeStats renders journal performance statistics.
func (r *ConsoleReporter) PrintTradeStats(stats *TradeStats) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("JOURNAL STATS")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"🔄 Total Trades", fmt.Sprintf("%d (%d open, %d closed)", stats.TotalTrades, stats.OpenTrades, stats.ClosedTrades)},
		{"✅ Winners", fmt.Sprintf("%d", stats.WinningTrades)},
		{"❌ Losers", fmt.Sprintf("%d", stats.LosingTrades)},
		{"🎯 Win Rate", fmt.Sprintf("%.1f%%", stats.WinRate)},
	})

	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"💰 Net P/L", fmt.Sprintf("$%.2f", stats.NetPL)},
		{"📈 Gross Profit", fmt.Sprintf("$%.2f", stats.GrossProfit)},
		{"📉 Gross Loss", fmt.Sprintf("$%.2f", stats.GrossLoss)},
		{"💹 Profit Factor", fmt.Sprintf("%.2f", stats.ProfitFactor)},
		{"📊 Avg Win / Loss", fmt.Sprintf("$%.2f / $%.2f", stats.AvgWin, stats.AvgLoss)},
		{"📊 Expectancy", fmt.Sprintf("$%.2f per trade", stats.Expectancy)},
		{"🏆 Best / Worst", fmt.Sprintf("$%.2f / $%.2f", stats.BestTrade, stats.WorstTrade)},
		{"💸 Total Fees", fmt.Sprintf("$%.2f", stats.TotalFees)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 40, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Fprintln(r.out)
}

func fmtIndicator(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func fmtIndicatorPlain(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *v)
}

func fmtScenario(s risk.Scenario) string {
	return fmt.Sprintf("%+.2f (%+.1f%%) - %s", s.ProfitLoss, s.ReturnPercentage, s.Rationale)
}
