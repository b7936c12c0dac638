package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ducminhle1904/stock-insight/internal/errors"
	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// CSVProvider serves bars from local CSV files. Files live under the data
// directory as <SYMBOL>_<interval>.csv, e.g. AAPL_daily.csv.
type CSVProvider struct {
	dataDir string
	format  CSVColumnMapping
}

// NewCSVProvider creates a CSV provider reading from dataDir with the default
// column format.
func NewCSVProvider(dataDir string) *CSVProvider {
	return &CSVProvider{
		dataDir: dataDir,
		format:  DefaultCSVFormat,
	}
}

// NewCSVProviderWithFormat creates a CSV provider with a custom column format.
func NewCSVProviderWithFormat(dataDir string, format CSVColumnMapping) *CSVProvider {
	return &CSVProvider{
		dataDir: dataDir,
		format:  format,
	}
}

// GetName returns the name of the data provider
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// GetBars loads bars for a symbol from the matching file in the data
// directory.
func (p *CSVProvider) GetBars(_ context.Context, symbol string, interval types.Interval, limit int) ([]types.OHLCV, error) {
	path := p.FilePath(symbol, interval)
	data, err := p.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return LimitBars(data, limit), nil
}

// GetQuote synthesizes a quote from the trailing bars of the daily file, so
// offline setups still get price/change fields.
func (p *CSVProvider) GetQuote(ctx context.Context, symbol string) (*types.Quote, error) {
	data, err := p.GetBars(ctx, symbol, types.IntervalDaily, 2)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.NewNotFoundError("csv-provider", "get quote",
			fmt.Sprintf("no bars available for %s", symbol))
	}

	last := data[len(data)-1]
	quote := &types.Quote{
		Symbol:    strings.ToUpper(symbol),
		Price:     last.Close,
		Open:      last.Open,
		High:      last.High,
		Low:       last.Low,
		Volume:    last.Volume,
		Timestamp: last.Timestamp,
	}
	if len(data) > 1 {
		prev := data[len(data)-2]
		quote.PrevClose = prev.Close
		quote.Change = last.Close - prev.Close
		if prev.Close != 0 {
			quote.ChangePercent = quote.Change / prev.Close * 100
		}
	}
	return quote, nil
}

// FilePath returns the expected file location for a symbol and interval.
func (p *CSVProvider) FilePath(symbol string, interval types.Interval) string {
	name := fmt.Sprintf("%s_%s.csv", strings.ToUpper(symbol), interval)
	return filepath.Join(p.dataDir, name)
}

// LoadFile parses one CSV file into a bar series. Malformed rows are logged
// and skipped rather than failing the whole load.
func (p *CSVProvider) LoadFile(filename string) ([]types.OHLCV, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("csv-provider", "load file",
				fmt.Sprintf("no data file at %s", filename))
		}
		return nil, errors.NewStorageError("csv-provider", "load file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, errors.NewStorageError("csv-provider", "read header", err)
	}

	var data []types.OHLCV
	lineNum := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.NewStorageError("csv-provider", "read rows",
				fmt.Errorf("error reading CSV at line %d: %w", lineNum, err))
		}
		lineNum++

		bar, ok := p.parseRecord(record, lineNum)
		if !ok {
			continue
		}
		data = append(data, bar)
	}

	return data, nil
}

func (p *CSVProvider) parseRecord(record []string, lineNum int) (types.OHLCV, bool) {
	if len(record) < p.format.MinColumns {
		slog.Warn("skipping CSV row with insufficient columns",
			"line", lineNum, "expected", p.format.MinColumns, "got", len(record))
		return types.OHLCV{}, false
	}

	timestamp, err := time.Parse(p.format.DateFormat, record[p.format.TimestampCol])
	if err != nil {
		slog.Warn("skipping CSV row with invalid timestamp",
			"line", lineNum, "value", record[p.format.TimestampCol])
		return types.OHLCV{}, false
	}

	fields := [5]float64{}
	cols := [5]int{p.format.OpenCol, p.format.HighCol, p.format.LowCol, p.format.CloseCol, p.format.VolumeCol}
	for i, col := range cols {
		value, err := strconv.ParseFloat(record[col], 64)
		if err != nil {
			slog.Warn("skipping CSV row with invalid number",
				"line", lineNum, "column", col, "value", record[col])
			return types.OHLCV{}, false
		}
		fields[i] = value
	}

	bar := types.OHLCV{
		Timestamp: timestamp,
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
		Close:     fields[3],
		Volume:    fields[4],
	}

	if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
		slog.Warn("skipping CSV row with non-positive price", "line", lineNum)
		return types.OHLCV{}, false
	}
	if bar.High < bar.Open || bar.High < bar.Close || bar.High < bar.Low {
		slog.Warn("skipping CSV row where high is below other prices", "line", lineNum)
		return types.OHLCV{}, false
	}
	if bar.Low > bar.Open || bar.Low > bar.Close {
		slog.Warn("skipping CSV row where low is above other prices", "line", lineNum)
		return types.OHLCV{}, false
	}

	return bar, true
}
