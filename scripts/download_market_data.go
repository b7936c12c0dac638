package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Standalone downloader for the CSV provider. Writes <SYMBOL>_<interval>.csv
// files in the "timestamp,open,high,low,close,volume" layout the application
// reads. Crypto symbols come from the public Bybit kline API; equities from
// Alpha Vantage (ALPHA_VANTAGE_API_KEY required).

// Bar is one candle normalized from either source.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// BybitResponse represents the kline API response structure
type BybitResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		Symbol   string     `json:"symbol"`
		Category string     `json:"category"`
		List     [][]string `json:"list"`
	} `json:"result"`
	Time int64 `json:"time"`
}

// AlphaVantageBar mirrors Alpha Vantage's string-typed OHLCV fields.
type AlphaVantageBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// AlphaVantageResponse covers the series payloads plus the in-band failure
// fields the free tier uses for throttling.
type AlphaVantageResponse struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`

	Daily  map[string]AlphaVantageBar `json:"Time Series (Daily)"`
	Weekly map[string]AlphaVantageBar `json:"Weekly Time Series"`
}

func main() {
	var (
		symbols  = flag.String("symbols", "BTCUSDT", "Comma-separated list of symbols (e.g. AAPL,MSFT,BTCUSDT)")
		interval = flag.String("interval", "daily", "Bar interval (daily, weekly, 60min, 15min, 5min; equities support daily/weekly only)")
		category = flag.String("category", "spot", "Bybit market category (spot, linear, inverse)")
		outdir   = flag.String("outdir", "data", "Directory to write CSV files")

		startDate = flag.String("start", "", "Start date (YYYY-MM-DD)")
		endDate   = flag.String("end", "", "End date (YYYY-MM-DD)")
		limit     = flag.Int("limit", 1000, "Number of klines per Bybit request (max 1000)")
	)

	flag.Parse()

	if *limit > 1000 {
		*limit = 1000 // Bybit max limit
	}

	symList := []string{}
	for _, s := range strings.Split(*symbols, ",") {
		ss := strings.ToUpper(strings.TrimSpace(s))
		if ss != "" {
			symList = append(symList, ss)
		}
	}
	if len(symList) == 0 {
		log.Fatal("No symbols given")
	}

	// Default to 1 year of data
	end := time.Now()
	start := end.AddDate(-1, 0, 0)

	if *startDate != "" {
		parsedStart, err := time.Parse("2006-01-02", *startDate)
		if err != nil {
			log.Fatalf("Invalid start date format: %v", err)
		}
		start = parsedStart
	}
	if *endDate != "" {
		parsedEnd, err := time.Parse("2006-01-02", *endDate)
		if err != nil {
			log.Fatalf("Invalid end date format: %v", err)
		}
		end = parsedEnd
	}

	if err := os.MkdirAll(*outdir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	fmt.Println("🚀 Market Data Downloader")
	fmt.Println("=========================")
	fmt.Printf("🎯 Symbols: %s\n", strings.Join(symList, ", "))
	fmt.Printf("⏱️  Interval: %s\n", *interval)
	fmt.Printf("📅 Date Range: %s to %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	fmt.Printf("📁 Output: %s\n", *outdir)
	fmt.Println()

	for _, sym := range symList {
		outPath := filepath.Join(*outdir, fmt.Sprintf("%s_%s.csv", sym, *interval))
		downloadOne(sym, *interval, *category, start, end, *limit, outPath)
	}

	fmt.Println("\n🎉 All downloads completed!")
}

func downloadOne(symbol, interval, category string, start, end time.Time, limit int, outputPath string) {
	fmt.Printf("\n📊 Downloading %s data for %s\n", interval, symbol)
	fmt.Printf("📁 Output: %s\n", outputPath)
	fmt.Println("🔄 Fetching data...")

	var bars []Bar
	var err error
	if isCryptoSymbol(symbol) {
		bars, err = downloadBybitBars(category, symbol, interval, start, end, limit)
	} else {
		bars, err = downloadAlphaVantageBars(symbol, interval, start, end)
	}
	if err != nil {
		log.Printf("❌ Failed to download data for %s: %v", symbol, err)
		return
	}

	fmt.Printf("✅ Downloaded %d bars\n", len(bars))

	if err := saveToCSV(bars, outputPath); err != nil {
		log.Printf("❌ Failed to save %s: %v", symbol, err)
		return
	}

	fmt.Printf("💾 Data saved to %s\n", outputPath)
	printSummary(bars)
}

// isCryptoSymbol matches the application's routing convention: exchange pairs
// carry a quote-currency suffix, plain tickers are equities.
func isCryptoSymbol(symbol string) bool {
	for _, suffix := range []string{"USDT", "USDC", "PERP"} {
		if len(symbol) > len(suffix) && strings.HasSuffix(symbol, suffix) {
			return true
		}
	}
	return false
}

// bybitInterval maps the application's interval names to Bybit kline codes.
func bybitInterval(interval string) (string, error) {
	switch interval {
	case "daily":
		return "D", nil
	case "weekly":
		return "W", nil
	case "60min":
		return "60", nil
	case "15min":
		return "15", nil
	case "5min":
		return "5", nil
	default:
		return "", fmt.Errorf("unsupported interval %q", interval)
	}
}

func downloadBybitBars(category, symbol, interval string, start, end time.Time, limit int) ([]Bar, error) {
	code, err := bybitInterval(interval)
	if err != nil {
		return nil, err
	}

	var allBars []Bar

	startMs := start.Unix() * 1000
	endMs := end.Unix() * 1000
	currentEndMs := endMs

	for currentEndMs > startMs {
		// Bybit returns data in descending order, so page backwards with 'end'
		endpoint := fmt.Sprintf("https://api.bybit.com/v5/market/kline?category=%s&symbol=%s&interval=%s&end=%d&limit=%d",
			category, symbol, code, currentEndMs, limit)

		resp, err := http.Get(endpoint)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != 200 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
		}

		var bybitResp BybitResponse
		if err := json.NewDecoder(resp.Body).Decode(&bybitResp); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("JSON decode error: %w", err)
		}
		resp.Body.Close()

		if bybitResp.RetCode != 0 {
			return nil, fmt.Errorf("Bybit API error %d: %s", bybitResp.RetCode, bybitResp.RetMsg)
		}

		if len(bybitResp.Result.List) == 0 {
			break
		}

		oldestTimestamp := int64(0)
		for _, raw := range bybitResp.Result.List {
			if len(raw) < 6 {
				continue
			}

			// Bybit format: [startTime, openPrice, highPrice, lowPrice, closePrice, volume, turnover]
			startTime, err := strconv.ParseInt(raw[0], 10, 64)
			if err != nil {
				continue
			}

			if startTime >= startMs && startTime <= endMs {
				bar, ok := parseBybitBar(startTime, raw)
				if ok {
					allBars = append(allBars, bar)
				}
			}

			if oldestTimestamp == 0 || startTime < oldestTimestamp {
				oldestTimestamp = startTime
			}
		}

		if oldestTimestamp <= startMs {
			break
		}

		currentEndMs = oldestTimestamp - 1

		fmt.Printf("\r  Progress: %d bars downloaded...", len(allBars))

		// Rate limiting (Bybit allows up to 120 requests per minute for public endpoints)
		time.Sleep(500 * time.Millisecond)
	}

	fmt.Println()

	sort.Slice(allBars, func(i, j int) bool {
		return allBars[i].Timestamp.Before(allBars[j].Timestamp)
	})

	return allBars, nil
}

func parseBybitBar(startTime int64, raw []string) (Bar, bool) {
	open, err1 := strconv.ParseFloat(raw[1], 64)
	high, err2 := strconv.ParseFloat(raw[2], 64)
	low, err3 := strconv.ParseFloat(raw[3], 64)
	closePrice, err4 := strconv.ParseFloat(raw[4], 64)
	volume, err5 := strconv.ParseFloat(raw[5], 64)
	for _, err := range []error{err1, err2, err3, err4, err5} {
		if err != nil {
			return Bar{}, false
		}
	}
	return Bar{
		Timestamp: time.Unix(startTime/1000, 0).UTC(),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
	}, true
}

func downloadAlphaVantageBars(symbol, interval string, start, end time.Time) ([]Bar, error) {
	apiKey := os.Getenv("ALPHA_VANTAGE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ALPHA_VANTAGE_API_KEY is not set (required for equity symbols)")
	}

	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("apikey", apiKey)
	query.Set("outputsize", "full")
	switch interval {
	case "daily":
		query.Set("function", "TIME_SERIES_DAILY")
	case "weekly":
		query.Set("function", "TIME_SERIES_WEEKLY")
	default:
		return nil, fmt.Errorf("equity downloads support daily and weekly only, got %q", interval)
	}

	resp, err := http.Get("https://www.alphavantage.co/query?" + query.Encode())
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var avResp AlphaVantageResponse
	if err := json.NewDecoder(resp.Body).Decode(&avResp); err != nil {
		return nil, fmt.Errorf("JSON decode error: %w", err)
	}

	switch {
	case avResp.ErrorMessage != "":
		return nil, fmt.Errorf("Alpha Vantage error: %s", avResp.ErrorMessage)
	case avResp.Note != "":
		return nil, fmt.Errorf("Alpha Vantage throttled: %s", avResp.Note)
	case avResp.Information != "":
		return nil, fmt.Errorf("Alpha Vantage throttled: %s", avResp.Information)
	}

	series := avResp.Daily
	if interval == "weekly" {
		series = avResp.Weekly
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no %s series returned for %s", interval, symbol)
	}

	var bars []Bar
	for date, raw := range series {
		timestamp, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		if timestamp.Before(start) || timestamp.After(end) {
			continue
		}
		bar, ok := parseAlphaVantageBar(timestamp, raw)
		if ok {
			bars = append(bars, bar)
		}
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})

	return bars, nil
}

func parseAlphaVantageBar(timestamp time.Time, raw AlphaVantageBar) (Bar, bool) {
	open, err1 := strconv.ParseFloat(raw.Open, 64)
	high, err2 := strconv.ParseFloat(raw.High, 64)
	low, err3 := strconv.ParseFloat(raw.Low, 64)
	closePrice, err4 := strconv.ParseFloat(raw.Close, 64)
	volume, err5 := strconv.ParseFloat(raw.Volume, 64)
	for _, err := range []error{err1, err2, err3, err4, err5} {
		if err != nil {
			return Bar{}, false
		}
	}
	return Bar{
		Timestamp: timestamp,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
	}, true
}

func saveToCSV(bars []Bar, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"timestamp", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}

	for _, bar := range bars {
		record := []string{
			bar.Timestamp.Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(bar.Open, 'f', -1, 64),
			strconv.FormatFloat(bar.High, 'f', -1, 64),
			strconv.FormatFloat(bar.Low, 'f', -1, 64),
			strconv.FormatFloat(bar.Close, 'f', -1, 64),
			strconv.FormatFloat(bar.Volume, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func printSummary(bars []Bar) {
	if len(bars) == 0 {
		return
	}
	first := bars[0]
	last := bars[len(bars)-1]

	fmt.Println("\n📊 DATA SUMMARY:")
	fmt.Printf("  First: %s\n", first.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Last:  %s\n", last.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Total: %d bars\n", len(bars))

	var totalVolume float64
	highPrice := 0.0
	lowPrice := 1e12

	for _, bar := range bars {
		totalVolume += bar.Volume
		if bar.High > highPrice {
			highPrice = bar.High
		}
		if bar.Low < lowPrice {
			lowPrice = bar.Low
		}
	}

	fmt.Printf("  High:  $%.2f\n", highPrice)
	fmt.Printf("  Low:   $%.2f\n", lowPrice)
	fmt.Printf("  Avg Volume: %.2f\n", totalVolume/float64(len(bars)))
}
