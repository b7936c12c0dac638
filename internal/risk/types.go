package risk

// SizingRequest describes a trade setup to be sized against an account.
type SizingRequest struct {
	Symbol        string  `json:"symbol,omitempty"`
	Capital       float64 `json:"capital"`
	RiskPerTrade  float64 `json:"riskPerTrade"` // fraction of capital, e.g. 0.02
	EntryPrice    float64 `json:"entryPrice"`
	StopLossPrice float64 `json:"stopLossPrice"`
	AvailableCash float64 `json:"availableCash"`
}

// StopDistance is the gap between entry and stop, in dollars and as a percent
// of the entry price.
type StopDistance struct {
	Dollars    float64 `json:"dollars"`
	Percentage float64 `json:"percentage"`
}

// PositionSizing is the sized position recommendation.
type PositionSizing struct {
	RecommendedShares       int          `json:"recommendedShares"`
	RecommendedDollarAmount float64      `json:"recommendedDollarAmount"`
	RiskAmount              float64      `json:"riskAmount"`
	PositionPercentage      float64      `json:"positionPercentage"`
	StopLossDistance        StopDistance `json:"stopLossDistance"`
	RiskPercentage          float64      `json:"riskPercentage"`
}

// Scenario is one projected outcome for the sized position. ReturnPercentage
// is relative to the dollars committed to the position.
type Scenario struct {
	ProfitLoss       float64 `json:"profitLoss"`
	ReturnPercentage float64 `json:"returnPercentage"`
	Rationale        string  `json:"rationale"`
}

// ScenarioAnalysis is the best/expected/worst projection triple.
type ScenarioAnalysis struct {
	BestCase     Scenario `json:"bestCase"`
	ExpectedCase Scenario `json:"expectedCase"`
	WorstCase    Scenario `json:"worstCase"`
}

// SizingResult is the full output of ComputeSizing: the recommendation plus
// its scenario projections and any non-fatal warnings.
type SizingResult struct {
	PositionSizing
	Scenarios ScenarioAnalysis `json:"scenarioAnalysis"`
	Warnings  []string         `json:"warnings"`
}

// ScenarioConfig holds the projection assumptions. The defaults mirror the
// long-standing behavior: best case books 3× the initial risk, expected case
// books 1.5× weighted by a 55% win probability, worst case is the stop hit
// exactly.
type ScenarioConfig struct {
	BestMultiple     float64 `json:"bestMultiple"`
	ExpectedMultiple float64 `json:"expectedMultiple"`
	WinProbability   float64 `json:"winProbability"`
}

// DefaultScenarioConfig returns the documented default projection assumptions.
func DefaultScenarioConfig() ScenarioConfig {
	return ScenarioConfig{
		BestMultiple:     3.0,
		ExpectedMultiple: 1.5,
		WinProbability:   0.55,
	}
}

// Thresholds is the single source of truth for every advisory cutoff used by
// sizing warnings and assessment advice.
type Thresholds struct {
	// RiskTolerancePct is how far (in percentage points) the realized risk may
	// exceed the requested fraction before a warning fires. Integer share
	// flooring makes small overshoots legitimate.
	RiskTolerancePct float64 `json:"riskTolerancePct"`
	// ConcentrationPct is the maximum percent of capital in one position
	// before a concentration warning fires.
	ConcentrationPct float64 `json:"concentrationPct"`
}

// DefaultThresholds returns the documented default advisory cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RiskTolerancePct: 0.1,
		ConcentrationPct: 25.0,
	}
}

// RiskLevel classifies the requested per-trade risk fraction.
type RiskLevel string

const (
	RiskLevelConservative RiskLevel = "conservative"
	RiskLevelModerate     RiskLevel = "moderate"
	RiskLevelAggressive   RiskLevel = "aggressive"
)

// RiskMetrics summarizes the reward assumptions behind the scenarios.
type RiskMetrics struct {
	RiskRewardRatio     float64 `json:"riskRewardRatio"`
	ProbabilityOfProfit float64 `json:"probabilityOfProfit"`
}

// Assessment is the complete risk assessment served to API clients.
type Assessment struct {
	PositionSizing      PositionSizing   `json:"positionSizing"`
	RiskLevel           RiskLevel        `json:"riskLevel"`
	RiskMetrics         RiskMetrics      `json:"riskMetrics"`
	ScenarioAnalysis    ScenarioAnalysis `json:"scenarioAnalysis"`
	Warnings            []string         `json:"warnings"`
	Advice              []string         `json:"advice"`
	CapitalPreservation []string         `json:"capitalPreservation"`
}
