package server

import (
	"github.com/ducminhle1904/stock-insight/internal/indicators"
	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// Wire DTOs. Timestamps are Unix seconds throughout, matching the charting
// frontend's native time format.

type quoteDTO struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	PrevClose     float64 `json:"prevClose"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        float64 `json:"volume"`
	Timestamp     int64   `json:"timestamp"`
}

func toQuoteDTO(q *types.Quote) quoteDTO {
	return quoteDTO{
		Symbol:        q.Symbol,
		Price:         q.Price,
		Open:          q.Open,
		High:          q.High,
		Low:           q.Low,
		PrevClose:     q.PrevClose,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		Volume:        q.Volume,
		Timestamp:     q.Timestamp.Unix(),
	}
}

type barDTO struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

func toBarDTOs(bars []types.OHLCV) []barDTO {
	out := make([]barDTO, len(bars))
	for i, b := range bars {
		out[i] = barDTO{
			Time:   b.Timestamp.Unix(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	return out
}

type pointDTO struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

func toPointDTOs(points []indicators.Point) []pointDTO {
	out := make([]pointDTO, len(points))
	for i, p := range points {
		out[i] = pointDTO{Time: p.Timestamp.Unix(), Value: p.Value}
	}
	return out
}

type bandsDTO struct {
	Upper  []pointDTO `json:"upper"`
	Middle []pointDTO `json:"middle"`
	Lower  []pointDTO `json:"lower"`
}

func toBandsDTO(bands *indicators.BandSeries) *bandsDTO {
	if bands == nil || bands.Len() == 0 {
		return nil
	}
	return &bandsDTO{
		Upper:  toPointDTOs(bands.Upper),
		Middle: toPointDTOs(bands.Middle),
		Lower:  toPointDTOs(bands.Lower),
	}
}

// analysisSeries carries the overlay series for charting. Empty slices mean
// the history is shorter than the indicator's lookback.
type analysisSeries struct {
	SMA20     []pointDTO `json:"sma20"`
	SMA50     []pointDTO `json:"sma50"`
	SMA200    []pointDTO `json:"sma200"`
	EMA12     []pointDTO `json:"ema12"`
	EMA26     []pointDTO `json:"ema26"`
	Bollinger *bandsDTO  `json:"bollingerBands,omitempty"`
}

type analysisResponse struct {
	Symbol   string               `json:"symbol"`
	Interval types.Interval       `json:"interval"`
	Bars     int                  `json:"bars"`
	Quote    *quoteDTO            `json:"quote,omitempty"`
	Snapshot *indicators.Snapshot `json:"snapshot"`
	Series   analysisSeries       `json:"series"`
}

type errorResponse struct {
	Error string `json:"error"`
}
