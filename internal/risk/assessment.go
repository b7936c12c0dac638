package risk

import "fmt"

// Risk-level cutoffs on the requested per-trade fraction.
const (
	conservativeMaxFraction = 0.01
	moderateMaxFraction     = 0.02
)

// ClassifyRiskLevel buckets a per-trade risk fraction.
func ClassifyRiskLevel(fraction float64) RiskLevel {
	switch {
	case fraction <= conservativeMaxFraction:
		return RiskLevelConservative
	case fraction <= moderateMaxFraction:
		return RiskLevelModerate
	default:
		return RiskLevelAggressive
	}
}

// Assess sizes the position and wraps the result in the full assessment
// served to clients: risk level, reward metrics, and guidance derived from
// the same thresholds that drive the sizing warnings.
func (c *Calculator) Assess(req SizingRequest) (*Assessment, error) {
	result, err := c.ComputeSizing(req)
	if err != nil {
		return nil, err
	}

	assessment := &Assessment{
		PositionSizing: result.PositionSizing,
		RiskLevel:      ClassifyRiskLevel(req.RiskPerTrade),
		RiskMetrics: RiskMetrics{
			RiskRewardRatio:     c.scenarios.BestMultiple,
			ProbabilityOfProfit: c.scenarios.WinProbability,
		},
		ScenarioAnalysis:    result.Scenarios,
		Warnings:            result.Warnings,
		Advice:              c.buildAdvice(result, req),
		CapitalPreservation: c.buildCapitalPreservation(req),
	}
	return assessment, nil
}

func (c *Calculator) buildAdvice(result *SizingResult, req SizingRequest) []string {
	advice := []string{}
	requestedPct := req.RiskPerTrade * 100

	if result.RecommendedShares == 0 {
		advice = append(advice,
			"Increase available cash or widen the stop to open a position at all")
		return advice
	}

	if result.PositionPercentage > c.thresholds.ConcentrationPct {
		advice = append(advice, fmt.Sprintf(
			"Consider scaling in to keep any single position under %.0f%% of capital",
			c.thresholds.ConcentrationPct))
	}
	if result.RiskPercentage < requestedPct-c.thresholds.RiskTolerancePct {
		advice = append(advice,
			"Available cash caps this position below the full risk budget")
	}
	if len(advice) == 0 {
		advice = append(advice, fmt.Sprintf(
			"Position fits the %.1f%% per-trade risk budget", requestedPct))
	}
	return advice
}

func (c *Calculator) buildCapitalPreservation(req SizingRequest) []string {
	return []string{
		fmt.Sprintf("Never risk more than %.1f%% of capital on a single trade", req.RiskPerTrade*100),
		fmt.Sprintf("Honor the stop at %.2f; do not widen it after entry", req.StopLossPrice),
		"Keep uncommitted cash available for follow-on opportunities",
	}
}
