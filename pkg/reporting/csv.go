package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ducminhle1904/stock-insight/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

// WriteJournalCSV writes journal entries to a CSV file with a trailing
// summary row. An .xlsx path delegates to the Excel writer.
func WriteJournalCSV(entries []store.JournalEntry, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return WriteJournalXLSX(entries, nil, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{
		"Symbol",
		"Side",
		"Quantity",
		"Entry_Price",
		"Exit_Price",
		"Stop_Loss",
		"Target",
		"Fees",
		"PnL_$",
		"Win_Loss",
		"Opened_At",
		"Closed_At",
		"Tags",
		"Notes",
	}); err != nil {
		return err
	}

	for _, e := range entries {
		row := []string{
			e.Symbol,
			string(e.Side),
			strconv.FormatFloat(e.Quantity, 'f', -1, 64),
			fmt.Sprintf("%.4f", e.EntryPrice),
			fmtOptionalPrice(e.ExitPrice),
			fmtOptionalPrice(e.StopLoss),
			fmtOptionalPrice(e.Target),
			fmt.Sprintf("%.2f", e.Fees),
			"",
			"",
			e.OpenedAt.Format(timeLayout),
			"",
			strings.Join(e.Tags, "|"),
			e.Notes,
		}
		if e.Closed() {
			pl := e.RealizedPL()
			row[8] = fmt.Sprintf("%.2f", pl)
			row[9] = winLossMark(pl)
			row[11] = e.ClosedAt.Format(timeLayout)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	stats := ComputeTradeStats(entries)
	summary := fmt.Sprintf("SUMMARY: net_pnl=$%.2f; win_rate=%.1f%%; profit_factor=%.2f; total_trades=%d",
		stats.NetPL, stats.WinRate, stats.ProfitFactor, stats.TotalTrades)

	summaryRow := make([]string, 14)
	summaryRow[13] = summary
	return w.Write(summaryRow)
}

func fmtOptionalPrice(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.4f", *v)
}

func winLossMark(pl float64) string {
	if pl < 0 {
		return "L"
	}
	return "W"
}
