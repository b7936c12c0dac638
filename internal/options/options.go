// Package options computes expiry payoff analytics for the four single-leg
// strategies a cash account can run: long call, long put, covered call, and
// cash-secured put.
package options

import (
	"fmt"
	"math"
	"time"

	apperrors "github.com/ducminhle1904/stock-insight/internal/errors"
)

// Strategy identifies the position being analyzed.
type Strategy string

const (
	LongCall       Strategy = "long_call"
	LongPut        Strategy = "long_put"
	CoveredCall    Strategy = "covered_call"
	CashSecuredPut Strategy = "cash_secured_put"
)

const sharesPerContract = 100

// Contract is the input to an analysis: one option leg plus the underlying
// context it is traded against.
type Contract struct {
	Strategy   Strategy  `json:"strategy"`
	Symbol     string    `json:"symbol"`
	SpotPrice  float64   `json:"spotPrice"`
	Strike     float64   `json:"strike"`
	Premium    float64   `json:"premium"` // per share
	Contracts  int       `json:"contracts"`
	Expiration time.Time `json:"expiration"`
	// CostBasis is the per-share basis of held stock; covered calls only.
	CostBasis float64 `json:"costBasis,omitempty"`
}

// Payoff is the position value at one expiry price.
type Payoff struct {
	UnderlyingPrice float64 `json:"underlyingPrice"`
	ProfitLoss      float64 `json:"profitLoss"`
	Rationale       string  `json:"rationale"`
}

// Analysis is the full expiry picture for a contract.
type Analysis struct {
	Strategy        Strategy `json:"strategy"`
	Symbol          string   `json:"symbol"`
	Breakeven       float64  `json:"breakeven"`
	MaxGain         float64  `json:"maxGain"`
	MaxGainCapped   bool     `json:"maxGainCapped"` // false means unlimited upside
	MaxLoss         float64  `json:"maxLoss"`
	CapitalRequired float64  `json:"capitalRequired"`
	// PremiumYield is the premium received over capital required, in
	// percent; selling strategies only.
	PremiumYield float64 `json:"premiumYield,omitempty"`
	// AnnualizedYield extrapolates PremiumYield over a year using days to
	// expiry; zero when the expiration is unset or passed.
	AnnualizedYield float64  `json:"annualizedYield,omitempty"`
	DaysToExpiry    int      `json:"daysToExpiry,omitempty"`
	Payoffs         []Payoff `json:"payoffs"`
}

// Analyze validates the contract and computes its expiry analytics.
func Analyze(c Contract) (*Analysis, error) {
	if err := validate(c); err != nil {
		return nil, err
	}

	shares := float64(c.Contracts * sharesPerContract)
	premiumTotal := c.Premium * shares

	a := &Analysis{Strategy: c.Strategy, Symbol: c.Symbol}
	switch c.Strategy {
	case LongCall:
		a.Breakeven = c.Strike + c.Premium
		a.MaxGainCapped = false
		a.MaxGain = math.Inf(1)
		a.MaxLoss = premiumTotal
		a.CapitalRequired = premiumTotal
	case LongPut:
		a.Breakeven = c.Strike - c.Premium
		a.MaxGainCapped = true
		// Gain is capped by the underlying hitting zero.
		a.MaxGain = c.Strike*shares - premiumTotal
		a.MaxLoss = premiumTotal
		a.CapitalRequired = premiumTotal
	case CoveredCall:
		basis := c.CostBasis
		if basis == 0 {
			basis = c.SpotPrice
		}
		a.Breakeven = basis - c.Premium
		a.MaxGainCapped = true
		a.MaxGain = (c.Strike-basis)*shares + premiumTotal
		a.MaxLoss = a.Breakeven * shares // underlying to zero
		a.CapitalRequired = basis * shares
		a.PremiumYield = percent(premiumTotal, a.CapitalRequired)
	case CashSecuredPut:
		a.Breakeven = c.Strike - c.Premium
		a.MaxGainCapped = true
		a.MaxGain = premiumTotal
		a.MaxLoss = a.Breakeven * shares // assigned and underlying to zero
		a.CapitalRequired = c.Strike * shares
		a.PremiumYield = percent(premiumTotal, a.CapitalRequired)
	}

	if !c.Expiration.IsZero() {
		days := int(math.Ceil(time.Until(c.Expiration).Hours() / 24))
		if days > 0 {
			a.DaysToExpiry = days
			a.AnnualizedYield = a.PremiumYield * 365 / float64(days)
		}
	}

	a.Payoffs = payoffLadder(c, shares, premiumTotal)
	return a, nil
}

func validate(c Contract) error {
	switch {
	case c.Strategy != LongCall && c.Strategy != LongPut && c.Strategy != CoveredCall && c.Strategy != CashSecuredPut:
		return apperrors.NewValidationError("options", "validate contract", "unknown strategy: "+string(c.Strategy))
	case c.Strike <= 0:
		return apperrors.NewValidationError("options", "validate contract", "strike must be positive")
	case c.Premium <= 0:
		return apperrors.NewValidationError("options", "validate contract", "premium must be positive")
	case c.SpotPrice <= 0:
		return apperrors.NewValidationError("options", "validate contract", "spot price must be positive")
	case c.Contracts <= 0:
		return apperrors.NewValidationError("options", "validate contract", "contract count must be positive")
	case c.CostBasis < 0:
		return apperrors.NewValidationError("options", "validate contract", "cost basis must not be negative")
	}
	return nil
}

// payoffLadder evaluates the position at expiry across a fixed price ladder
// around the strike: -20%, -10%, at strike, +10%, +20%.
func payoffLadder(c Contract, shares, premiumTotal float64) []Payoff {
	steps := []float64{0.80, 0.90, 1.00, 1.10, 1.20}
	payoffs := make([]Payoff, 0, len(steps))
	for _, step := range steps {
		price := round2(c.Strike * step)
		pl := expiryPL(c, price, shares, premiumTotal)
		payoffs = append(payoffs, Payoff{
			UnderlyingPrice: price,
			ProfitLoss:      round2(pl),
			Rationale:       ladderRationale(c, price),
		})
	}
	return payoffs
}

// expiryPL is the position P/L if the underlying settles at price.
func expiryPL(c Contract, price, shares, premiumTotal float64) float64 {
	switch c.Strategy {
	case LongCall:
		return math.Max(price-c.Strike, 0)*shares - premiumTotal
	case LongPut:
		return math.Max(c.Strike-price, 0)*shares - premiumTotal
	case CoveredCall:
		basis := c.CostBasis
		if basis == 0 {
			basis = c.SpotPrice
		}
		stockPL := (math.Min(price, c.Strike) - basis) * shares
		return stockPL + premiumTotal
	case CashSecuredPut:
		assignmentLoss := math.Max(c.Strike-price, 0) * shares
		return premiumTotal - assignmentLoss
	}
	return 0
}

func ladderRationale(c Contract, price float64) string {
	switch c.Strategy {
	case LongCall:
		if price > c.Strike {
			return fmt.Sprintf("In the money: exercise value at %.2f", price)
		}
		return "Out of the money: premium lost"
	case LongPut:
		if price < c.Strike {
			return fmt.Sprintf("In the money: exercise value at %.2f", price)
		}
		return "Out of the money: premium lost"
	case CoveredCall:
		if price > c.Strike {
			return "Called away at the strike, premium kept"
		}
		return "Shares retained, premium kept"
	case CashSecuredPut:
		if price < c.Strike {
			return fmt.Sprintf("Assigned at %.2f, effective basis %.2f", c.Strike, c.Strike-c.Premium)
		}
		return "Expires worthless, premium kept"
	}
	return ""
}

func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
