package risk

import (
	"fmt"
	"math"

	"github.com/ducminhle1904/stock-insight/internal/errors"
)

// Calculator sizes positions from a trade setup. It retains no state between
// calls: ComputeSizing is pure and safe for concurrent use.
type Calculator struct {
	scenarios  ScenarioConfig
	thresholds Thresholds
}

// NewCalculator creates a calculator with the default scenario assumptions
// and advisory thresholds.
func NewCalculator() *Calculator {
	return NewCalculatorWith(DefaultScenarioConfig(), DefaultThresholds())
}

// NewCalculatorWith creates a calculator with explicit assumptions.
func NewCalculatorWith(scenarios ScenarioConfig, thresholds Thresholds) *Calculator {
	return &Calculator{
		scenarios:  scenarios,
		thresholds: thresholds,
	}
}

// ComputeSizing sizes a position for the given setup:
//
//  1. stop distance = |entry − stop|, zero is invalid input
//  2. max risk dollars = capital × risk fraction
//  3. theoretical shares = floor(max risk / stop distance)
//  4. cash-capped shares = floor(available cash / entry)
//  5. recommended = min of both, floored at 0
//
// followed by the derived dollar figures, the scenario triple, and advisory
// warnings. Warnings never fail the call.
func (c *Calculator) ComputeSizing(req SizingRequest) (*SizingResult, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}

	stopDistance := math.Abs(req.EntryPrice - req.StopLossPrice)
	if stopDistance == 0 {
		return nil, errors.NewValidationError("risk", "compute sizing",
			"stop-loss price must differ from entry price")
	}

	maxRisk := req.Capital * req.RiskPerTrade
	theoreticalShares := int(math.Floor(maxRisk / stopDistance))
	cashCappedShares := int(math.Floor(req.AvailableCash / req.EntryPrice))

	recommended := theoreticalShares
	if cashCappedShares < recommended {
		recommended = cashCappedShares
	}
	if recommended < 0 {
		recommended = 0
	}

	shares := float64(recommended)
	dollarAmount := shares * req.EntryPrice
	riskAmount := shares * stopDistance

	result := &SizingResult{
		PositionSizing: PositionSizing{
			RecommendedShares:       recommended,
			RecommendedDollarAmount: dollarAmount,
			RiskAmount:              riskAmount,
			PositionPercentage:      dollarAmount / req.Capital * 100,
			RiskPercentage:          riskAmount / req.Capital * 100,
			StopLossDistance: StopDistance{
				Dollars:    stopDistance,
				Percentage: stopDistance / req.EntryPrice * 100,
			},
		},
		Scenarios: c.buildScenarios(riskAmount, dollarAmount),
		Warnings:  []string{},
	}

	c.appendWarnings(result, req)
	return result, nil
}

func (c *Calculator) validate(req SizingRequest) error {
	switch {
	case req.Capital <= 0:
		return errors.NewValidationError("risk", "compute sizing", "capital must be positive")
	case req.RiskPerTrade <= 0 || req.RiskPerTrade > 1:
		return errors.NewValidationError("risk", "compute sizing", "risk per trade must be a fraction in (0, 1]")
	case req.EntryPrice <= 0:
		return errors.NewValidationError("risk", "compute sizing", "entry price must be positive")
	case req.StopLossPrice <= 0:
		return errors.NewValidationError("risk", "compute sizing", "stop-loss price must be positive")
	case req.AvailableCash < 0:
		return errors.NewValidationError("risk", "compute sizing", "available cash cannot be negative")
	}
	return nil
}

func (c *Calculator) buildScenarios(riskAmount, dollarAmount float64) ScenarioAnalysis {
	bestPL := riskAmount * c.scenarios.BestMultiple
	// Expectancy of a partial win: P(win)·reward − P(loss)·risk.
	expectedPL := c.scenarios.WinProbability*(riskAmount*c.scenarios.ExpectedMultiple) -
		(1-c.scenarios.WinProbability)*riskAmount
	worstPL := -riskAmount

	return ScenarioAnalysis{
		BestCase: Scenario{
			ProfitLoss:       bestPL,
			ReturnPercentage: percentOf(bestPL, dollarAmount),
			Rationale:        fmt.Sprintf("Price reaches %.1f× the initial risk", c.scenarios.BestMultiple),
		},
		ExpectedCase: Scenario{
			ProfitLoss:       expectedPL,
			ReturnPercentage: percentOf(expectedPL, dollarAmount),
			Rationale: fmt.Sprintf("%.1f× reward weighted by a %.0f%% win probability",
				c.scenarios.ExpectedMultiple, c.scenarios.WinProbability*100),
		},
		WorstCase: Scenario{
			ProfitLoss:       worstPL,
			ReturnPercentage: percentOf(worstPL, dollarAmount),
			Rationale:        "Stop-loss triggered at full risk",
		},
	}
}

func (c *Calculator) appendWarnings(result *SizingResult, req SizingRequest) {
	requestedPct := req.RiskPerTrade * 100
	if result.RiskPercentage > requestedPct+c.thresholds.RiskTolerancePct {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Actual risk %.2f%% exceeds the requested %.2f%% budget",
			result.RiskPercentage, requestedPct))
	}
	if result.PositionPercentage > c.thresholds.ConcentrationPct {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Position is %.1f%% of capital, above the %.0f%% concentration threshold",
			result.PositionPercentage, c.thresholds.ConcentrationPct))
	}
	if result.RecommendedShares == 0 {
		result.Warnings = append(result.Warnings,
			"Inputs are too small to size a meaningful position")
	}
}

func percentOf(amount, base float64) float64 {
	if base == 0 {
		return 0
	}
	return amount / base * 100
}
