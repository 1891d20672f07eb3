package analysis

import (
	"math"
	"sort"

	"github.com/ethan-cdwll/insight/internal/models"
)

// Risk classification thresholds.
const (
	// concentration 阈值
	lowConcentration  = 0.10
	highConcentration = 0.20
	tinyConcentration = 0.05

	// volatility split between the Medium/High and High/VeryHigh rows
	highVolatility = 0.5

	// strongTrend is the |trend| above which a move counts as "strong".
	strongTrend = 0.03

	// minDiversifiedTokens 少于该数量的持仓触发分散化建议
	minDiversifiedTokens = 5

	// concentrationTolerance is the relative tolerance for the invariant
	// that concentrations sum to 1 when total value is positive.
	concentrationTolerance = 1e-6
)

// Recommendation texts. Per-token lines are emitted in ascending address
// order so output is stable across runs.
const (
	recDiversify = "Consider diversifying your portfolio across more assets"
	recRebalance = "Portfolio is highly concentrated. Consider rebalancing."
)

// RiskEngine computes per-token risk classification and portfolio-level
// risk/diversity scores from concentrations and volatilities.
type RiskEngine struct{}

// NewRiskEngine creates a portfolio risk engine.
func NewRiskEngine() *RiskEngine {
	return &RiskEngine{}
}

// TokenStat is the per-token input to portfolio scoring.
type TokenStat struct {
	Concentration float64
	Volatility    float64
	Trend         float64
}

// Concentrations returns value_usd_i / total for each holding. When the
// total value is zero every concentration is defined as 0.
func (e *RiskEngine) Concentrations(tokens []models.TokenBalance) []float64 {
	total := 0.0
	for _, t := range tokens {
		total += t.ValueUSD
	}

	out := make([]float64, len(tokens))
	if total == 0 {
		return out
	}
	for i, t := range tokens {
		out[i] = t.ValueUSD / total
	}
	return out
}

// RiskScore is min(1, Σ concentration_i * volatility_i). Both factors are
// nonnegative so only the upper bound needs clamping.
func (e *RiskEngine) RiskScore(stats []TokenStat) float64 {
	score := 0.0
	for _, s := range stats {
		score += s.Concentration * s.Volatility
	}
	return math.Min(1.0, score)
}

// DiversityScore is the Herfindahl index complement, 1 − Σ c_i². A
// zero-value portfolio maps to the neutral 1.0 by convention.
func (e *RiskEngine) DiversityScore(concentrations []float64) float64 {
	hhi := 0.0
	for _, c := range concentrations {
		hhi += c * c
	}
	return 1.0 - hhi
}

// ClassifyRisk applies the joint concentration/volatility rule table.
func (e *RiskEngine) ClassifyRisk(concentration, volatility float64) models.RiskLevel {
	switch {
	case concentration < lowConcentration:
		return models.RiskLow
	case concentration <= highConcentration:
		if volatility < highVolatility {
			return models.RiskMedium
		}
		return models.RiskHigh
	default:
		if volatility < highVolatility {
			return models.RiskHigh
		}
		return models.RiskVeryHigh
	}
}

// SuggestAction picks the suggested action for a holding. Rules are
// checked in order; the first match wins.
func (e *RiskEngine) SuggestAction(level models.RiskLevel, concentration, trend float64) models.Action {
	switch {
	case (level == models.RiskHigh || level == models.RiskVeryHigh) && concentration > highConcentration:
		return models.ActionReduceExposure
	case level == models.RiskLow && concentration < tinyConcentration && trend > 0:
		return models.ActionIncreasePosition
	case level == models.RiskVeryHigh && trend < -strongTrend:
		return models.ActionSell
	case level == models.RiskLow && trend > strongTrend:
		return models.ActionBuy
	default:
		return models.ActionHold
	}
}

// Insight classifies a single holding.
func (e *RiskEngine) Insight(stat TokenStat) models.TokenInsight {
	level := e.ClassifyRisk(stat.Concentration, stat.Volatility)
	return models.TokenInsight{
		RiskLevel:       level,
		Concentration:   stat.Concentration,
		SuggestedAction: e.SuggestAction(level, stat.Concentration, stat.Trend),
	}
}

// Recommendations generates portfolio recommendations in deterministic
// order: diversification first, then per-token reduce-exposure lines in
// ascending address order, then rebalancing.
func (e *RiskEngine) Recommendations(insights map[string]models.TokenInsight, diversityScore float64) []string {
	recommendations := make([]string, 0)

	if len(insights) < minDiversifiedTokens {
		recommendations = append(recommendations, recDiversify)
	}

	addresses := make([]string, 0, len(insights))
	for addr := range insights {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)

	for _, addr := range addresses {
		insight := insights[addr]
		if (insight.RiskLevel == models.RiskHigh || insight.RiskLevel == models.RiskVeryHigh) &&
			insight.Concentration > highConcentration {
			recommendations = append(recommendations, "Consider reducing exposure to token "+addr)
		}
	}

	if diversityScore < 0.5 {
		recommendations = append(recommendations, recRebalance)
	}

	return recommendations
}

// checkConcentrations verifies Σ c_i ≈ 1 (or 0 for an empty portfolio)
// within the relative tolerance.
func checkConcentrations(concentrations []float64, totalValue float64) bool {
	sum := 0.0
	for _, c := range concentrations {
		sum += c
	}
	if totalValue == 0 {
		return sum == 0
	}
	return math.Abs(sum-1.0) <= concentrationTolerance
}
