package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ethan-cdwll/insight/internal/models"
)

func TestConcentrations(t *testing.T) {
	e := NewRiskEngine()

	t.Run("shares of total value", func(t *testing.T) {
		tokens := []models.TokenBalance{
			{TokenAddress: "aaa", ValueUSD: 500},
			{TokenAddress: "bbb", ValueUSD: 500},
		}
		c := e.Concentrations(tokens)
		assert.Equal(t, []float64{0.5, 0.5}, c)
		assert.True(t, checkConcentrations(c, 1000))
	})

	t.Run("zero value portfolio", func(t *testing.T) {
		tokens := []models.TokenBalance{
			{TokenAddress: "aaa", ValueUSD: 0},
			{TokenAddress: "bbb", ValueUSD: 0},
		}
		c := e.Concentrations(tokens)
		assert.Equal(t, []float64{0, 0}, c)
		assert.True(t, checkConcentrations(c, 0))
	})
}

func TestRiskScore(t *testing.T) {
	e := NewRiskEngine()

	t.Run("concentration weighted volatility", func(t *testing.T) {
		// 两个各$500的持仓, 波动率0.2和0.8 → 0.5*0.2+0.5*0.8
		stats := []TokenStat{
			{Concentration: 0.5, Volatility: 0.2},
			{Concentration: 0.5, Volatility: 0.8},
		}
		assert.InDelta(t, 0.5, e.RiskScore(stats), 1e-12)
	})

	t.Run("empty portfolio scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, e.RiskScore(nil))
	})

	t.Run("clamped to one", func(t *testing.T) {
		stats := []TokenStat{
			{Concentration: 1.0, Volatility: 1.0},
			{Concentration: 0.5, Volatility: 1.0},
		}
		assert.Equal(t, 1.0, e.RiskScore(stats))
	})
}

func TestDiversityScore(t *testing.T) {
	e := NewRiskEngine()
	assert.InDelta(t, 0.5, e.DiversityScore([]float64{0.5, 0.5}), 1e-12)
	assert.InDelta(t, 0.0, e.DiversityScore([]float64{1.0}), 1e-12)
	assert.InDelta(t, 1.0, e.DiversityScore(nil), 1e-12)
}

func TestClassifyRisk(t *testing.T) {
	e := NewRiskEngine()

	tests := []struct {
		name          string
		concentration float64
		volatility    float64
		want          models.RiskLevel
	}{
		{"low concentration ignores volatility", 0.05, 0.9, models.RiskLow},
		{"medium concentration low volatility", 0.15, 0.3, models.RiskMedium},
		{"medium concentration high volatility", 0.15, 0.7, models.RiskHigh},
		{"lower boundary is inclusive", 0.10, 0.3, models.RiskMedium},
		{"upper boundary is inclusive", 0.20, 0.3, models.RiskMedium},
		{"high concentration low volatility", 0.25, 0.3, models.RiskHigh},
		{"high concentration high volatility", 0.25, 0.8, models.RiskVeryHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.ClassifyRisk(tt.concentration, tt.volatility))
		})
	}
}

func TestSuggestAction(t *testing.T) {
	e := NewRiskEngine()

	tests := []struct {
		name          string
		level         models.RiskLevel
		concentration float64
		trend         float64
		want          models.Action
	}{
		{"overweight high risk", models.RiskHigh, 0.3, 0.05, models.ActionReduceExposure},
		{"overweight very high risk", models.RiskVeryHigh, 0.25, -0.01, models.ActionReduceExposure},
		{"tiny low risk rising", models.RiskLow, 0.03, 0.01, models.ActionIncreasePosition},
		{"very high risk falling hard", models.RiskVeryHigh, 0.15, -0.05, models.ActionSell},
		{"low risk strong uptrend", models.RiskLow, 0.08, 0.05, models.ActionBuy},
		{"no rule matches", models.RiskMedium, 0.15, 0.0, models.ActionHold},
		{"weak trend holds", models.RiskLow, 0.08, 0.01, models.ActionHold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.SuggestAction(tt.level, tt.concentration, tt.trend))
		})
	}
}

func TestRecommendations(t *testing.T) {
	e := NewRiskEngine()

	t.Run("deterministic ordering", func(t *testing.T) {
		insights := map[string]models.TokenInsight{
			"bbb": {RiskLevel: models.RiskHigh, Concentration: 0.4},
			"aaa": {RiskLevel: models.RiskVeryHigh, Concentration: 0.3},
			"ccc": {RiskLevel: models.RiskLow, Concentration: 0.05},
		}
		got := e.Recommendations(insights, 0.4)
		assert.Equal(t, []string{
			"Consider diversifying your portfolio across more assets",
			"Consider reducing exposure to token aaa",
			"Consider reducing exposure to token bbb",
			"Portfolio is highly concentrated. Consider rebalancing.",
		}, got)
	})

	t.Run("diversified portfolio", func(t *testing.T) {
		insights := make(map[string]models.TokenInsight)
		for _, addr := range []string{"a", "b", "c", "d", "e"} {
			insights[addr] = models.TokenInsight{RiskLevel: models.RiskLow, Concentration: 0.2}
		}
		assert.Empty(t, e.Recommendations(insights, 0.8))
	})

	t.Run("high risk but not overweight is skipped", func(t *testing.T) {
		insights := map[string]models.TokenInsight{
			"aaa": {RiskLevel: models.RiskHigh, Concentration: 0.15},
		}
		got := e.Recommendations(insights, 0.9)
		assert.Equal(t, []string{"Consider diversifying your portfolio across more assets"}, got)
	})
}
