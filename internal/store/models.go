package store

import "time"

// TradeSide is the direction of a journaled trade.
type TradeSide string

const (
	SideLong  TradeSide = "long"
	SideShort TradeSide = "short"
)

// AlertKind identifies the rule an alert evaluates.
type AlertKind string

const (
	AlertPriceAbove AlertKind = "price_above"
	AlertPriceBelow AlertKind = "price_below"
	AlertRSIAbove   AlertKind = "rsi_above"
	AlertRSIBelow   AlertKind = "rsi_below"
	AlertSMACross   AlertKind = "sma_cross" // close crossing SMA(threshold)
)

// Watchlist is a named group of symbols.
type Watchlist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Symbols   []string  `json:"symbols"`
	CreatedAt time.Time `json:"createdAt"`
}

// JournalEntry is one recorded trade, open or closed.
type JournalEntry struct {
	ID         string     `json:"id"`
	Symbol     string     `json:"symbol"`
	Side       TradeSide  `json:"side"`
	Quantity   float64    `json:"quantity"`
	EntryPrice float64    `json:"entryPrice"`
	ExitPrice  *float64   `json:"exitPrice,omitempty"`
	StopLoss   *float64   `json:"stopLoss,omitempty"`
	Target     *float64   `json:"target,omitempty"`
	Fees       float64    `json:"fees"`
	Notes      string     `json:"notes"`
	Tags       []string   `json:"tags"`
	OpenedAt   time.Time  `json:"openedAt"`
	ClosedAt   *time.Time `json:"closedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Closed reports whether the trade has been exited.
func (e *JournalEntry) Closed() bool {
	return e.ExitPrice != nil && e.ClosedAt != nil
}

// RealizedPL returns the realized profit or loss net of fees, or 0 for open
// trades.
func (e *JournalEntry) RealizedPL() float64 {
	if !e.Closed() {
		return 0
	}
	perShare := *e.ExitPrice - e.EntryPrice
	if e.Side == SideShort {
		perShare = -perShare
	}
	return perShare*e.Quantity - e.Fees
}

// RiskPerShare returns |entry − stop| when a stop was recorded.
func (e *JournalEntry) RiskPerShare() (float64, bool) {
	if e.StopLoss == nil {
		return 0, false
	}
	risk := e.EntryPrice - *e.StopLoss
	if risk < 0 {
		risk = -risk
	}
	if risk == 0 {
		return 0, false
	}
	return risk, true
}

// Alert is a persisted alert rule.
type Alert struct {
	ID          string     `json:"id"`
	Symbol      string     `json:"symbol"`
	Kind        AlertKind  `json:"kind"`
	Threshold   float64    `json:"threshold"`
	Active      bool       `json:"active"`
	TriggeredAt *time.Time `json:"triggeredAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Lot is one acquisition of shares held in the portfolio.
type Lot struct {
	ID           string    `json:"id"`
	Symbol       string    `json:"symbol"`
	Quantity     float64   `json:"quantity"`
	CostPerShare float64   `json:"costPerShare"`
	AcquiredAt   time.Time `json:"acquiredAt"`
	Notes        string    `json:"notes"`
}
