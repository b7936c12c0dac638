package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/stock-insight/internal/portfolio"
	"github.com/ducminhle1904/stock-insight/internal/store"
)

// ExcelStyles holds the style ids used across workbook sheets.
type ExcelStyles struct {
	HeaderStyle   int
	CurrencyStyle int
	PercentStyle  int
	BaseStyle     int
	GainStyle     int
	LossStyle     int
	SummaryStyle  int
}

// WriteJournalXLSX writes the journal workbook to disk. The portfolio
// summary is optional; without it the Portfolio sheet carries a note row.
func WriteJournalXLSX(entries []store.JournalEntry, summary *portfolio.Summary, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx, err := BuildJournalWorkbook(entries, summary)
	if err != nil {
		return err
	}
	defer fx.Close()

	return fx.SaveAs(path)
}

// BuildJournalWorkbook assembles the three-sheet report workbook
// (Journal, Portfolio, Stats). The caller owns the returned file and is
// responsible for closing it after SaveAs or Write.
func BuildJournalWorkbook(entries []store.JournalEntry, summary *portfolio.Summary) (*excelize.File, error) {
	fx := excelize.NewFile()

	const journalSheet = "Journal"
	const portfolioSheet = "Portfolio"
	const statsSheet = "Stats"

	fx.SetSheetName(fx.GetSheetName(0), journalSheet)
	fx.NewSheet(portfolioSheet)
	fx.NewSheet(statsSheet)

	styles, err := createExcelStyles(fx)
	if err != nil {
		fx.Close()
		return nil, err
	}

	if err := writeJournalSheet(fx, journalSheet, entries, styles); err != nil {
		fx.Close()
		return nil, err
	}
	if err := writePortfolioSheet(fx, portfolioSheet, summary, styles); err != nil {
		fx.Close()
		return nil, err
	}
	if err := writeStatsSheet(fx, statsSheet, ComputeTradeStats(entries), styles); err != nil {
		fx.Close()
		return nil, err
	}

	return fx, nil
}

func createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	lightBorder := []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}

	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.CurrencyStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    7,
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    lightBorder,
	})
	if err != nil {
		return styles, err
	}

	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    9,
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    lightBorder,
	})
	if err != nil {
		return styles, err
	}

	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{
		Border: lightBorder,
	})
	if err != nil {
		return styles, err
	}

	styles.GainStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    7,
		Font:      &excelize.Font{Color: "008000"},
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    lightBorder,
	})
	if err != nil {
		return styles, err
	}

	styles.LossStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    7,
		Font:      &excelize.Font{Color: "FF0000"},
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    lightBorder,
	})
	if err != nil {
		return styles, err
	}

	styles.SummaryStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"F0F0F0"},
			Pattern: 1,
		},
		Border: lightBorder,
	})
	if err != nil {
		return styles, err
	}

	return styles, nil
}

func writeJournalSheet(fx *excelize.File, sheet string, entries []store.JournalEntry, styles ExcelStyles) error {
	widths := []float64{10, 8, 10, 12, 12, 12, 12, 10, 14, 6, 19, 19, 20, 30}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		fx.SetColWidth(sheet, col, col, w)
	}

	headers := []string{
		"Symbol", "Side", "Quantity", "Entry", "Exit", "Stop", "Target",
		"Fees", "PnL", "W/L", "Opened", "Closed", "Tags", "Notes",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	row := 2
	for _, e := range entries {
		setCell := func(col int, value interface{}, style int) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			fx.SetCellValue(sheet, cell, value)
			fx.SetCellStyle(sheet, cell, cell, style)
		}

		setCell(1, e.Symbol, styles.BaseStyle)
		setCell(2, string(e.Side), styles.BaseStyle)
		setCell(3, e.Quantity, styles.BaseStyle)
		setCell(4, e.EntryPrice, styles.CurrencyStyle)
		setOptionalCell(fx, sheet, 5, row, e.ExitPrice, styles)
		setOptionalCell(fx, sheet, 6, row, e.StopLoss, styles)
		setOptionalCell(fx, sheet, 7, row, e.Target, styles)
		setCell(8, e.Fees, styles.CurrencyStyle)

		if e.Closed() {
			pl := e.RealizedPL()
			plStyle := styles.GainStyle
			if pl < 0 {
				plStyle = styles.LossStyle
			}
			setCell(9, pl, plStyle)
			setCell(10, winLossMark(pl), styles.BaseStyle)
			setCell(12, e.ClosedAt.Format(timeLayout), styles.BaseStyle)
		} else {
			setCell(9, "", styles.BaseStyle)
			setCell(10, "open", styles.BaseStyle)
			setCell(12, "", styles.BaseStyle)
		}

		setCell(11, e.OpenedAt.Format(timeLayout), styles.BaseStyle)
		setCell(13, strings.Join(e.Tags, ", "), styles.BaseStyle)
		setCell(14, e.Notes, styles.BaseStyle)
		row++
	}

	return nil
}

func writePortfolioSheet(fx *excelize.File, sheet string, summary *portfolio.Summary, styles ExcelStyles) error {
	widths := []float64{10, 12, 12, 12, 14, 14, 10, 10}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		fx.SetColWidth(sheet, col, col, w)
	}

	headers := []string{
		"Symbol", "Quantity", "Avg Cost", "Last", "Market Value",
		"Unrealized PnL", "PnL %", "Weight %",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	if summary == nil || len(summary.Positions) == 0 {
		cell, _ := excelize.CoordinatesToCellName(1, 2)
		fx.SetCellValue(sheet, cell, "No holdings")
		fx.SetCellStyle(sheet, cell, cell, styles.BaseStyle)
		return nil
	}

	row := 2
	for _, p := range summary.Positions {
		setCell := func(col int, value interface{}, style int) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			fx.SetCellValue(sheet, cell, value)
			fx.SetCellStyle(sheet, cell, cell, style)
		}

		plStyle := styles.GainStyle
		if p.UnrealizedPL.IsNegative() {
			plStyle = styles.LossStyle
		}

		setCell(1, p.Symbol, styles.BaseStyle)
		setCell(2, p.Quantity.InexactFloat64(), styles.BaseStyle)
		setCell(3, p.AvgCost.InexactFloat64(), styles.CurrencyStyle)
		setCell(4, p.LastPrice.InexactFloat64(), styles.CurrencyStyle)
		setCell(5, p.MarketValue.InexactFloat64(), styles.CurrencyStyle)
		setCell(6, p.UnrealizedPL.InexactFloat64(), plStyle)
		setCell(7, p.UnrealizedPct.InexactFloat64()/100, styles.PercentStyle)
		setCell(8, p.Weight.InexactFloat64()/100, styles.PercentStyle)
		row++
	}

	totals := []struct {
		col   int
		value interface{}
	}{
		{1, "TOTAL"},
		{3, summary.TotalCost.InexactFloat64()},
		{5, summary.TotalValue.InexactFloat64()},
		{6, summary.TotalPL.InexactFloat64()},
		{7, summary.TotalPLPct.InexactFloat64() / 100},
	}
	for _, tc := range totals {
		cell, _ := excelize.CoordinatesToCellName(tc.col, row)
		fx.SetCellValue(sheet, cell, tc.value)
		fx.SetCellStyle(sheet, cell, cell, styles.SummaryStyle)
	}

	return nil
}

func writeStatsSheet(fx *excelize.File, sheet string, stats *TradeStats, styles ExcelStyles) error {
	fx.SetColWidth(sheet, "A", "A", 20)
	fx.SetColWidth(sheet, "B", "B", 16)

	for i, h := range []string{"Metric", "Value"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	rows := []struct {
		label string
		value interface{}
		style int
	}{
		{"Total Trades", stats.TotalTrades, styles.BaseStyle},
		{"Open Trades", stats.OpenTrades, styles.BaseStyle},
		{"Closed Trades", stats.ClosedTrades, styles.BaseStyle},
		{"Winning Trades", stats.WinningTrades, styles.BaseStyle},
		{"Losing Trades", stats.LosingTrades, styles.BaseStyle},
		{"Win Rate", stats.WinRate / 100, styles.PercentStyle},
		{"Net PnL", stats.NetPL, styles.CurrencyStyle},
		{"Gross Profit", stats.GrossProfit, styles.CurrencyStyle},
		{"Gross Loss", stats.GrossLoss, styles.CurrencyStyle},
		{"Profit Factor", stats.ProfitFactor, styles.BaseStyle},
		{"Avg Win", stats.AvgWin, styles.CurrencyStyle},
		{"Avg Loss", stats.AvgLoss, styles.CurrencyStyle},
		{"Expectancy", stats.Expectancy, styles.CurrencyStyle},
		{"Total Fees", stats.TotalFees, styles.CurrencyStyle},
		{"Best Trade", stats.BestTrade, styles.CurrencyStyle},
		{"Worst Trade", stats.WorstTrade, styles.CurrencyStyle},
	}

	for i, sr := range rows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+2)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+2)
		fx.SetCellValue(sheet, labelCell, sr.label)
		fx.SetCellStyle(sheet, labelCell, labelCell, styles.BaseStyle)
		fx.SetCellValue(sheet, valueCell, sr.value)
		fx.SetCellStyle(sheet, valueCell, valueCell, sr.style)
	}

	return nil
}

func setOptionalCell(fx *excelize.File, sheet string, col, row int, v *float64, styles ExcelStyles) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	if v == nil {
		fx.SetCellValue(sheet, cell, "")
		fx.SetCellStyle(sheet, cell, cell, styles.BaseStyle)
		return
	}
	fx.SetCellValue(sheet, cell, *v)
	fx.SetCellStyle(sheet, cell, cell, styles.CurrencyStyle)
}
