package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletAnalysisJSON(t *testing.T) {
	analysis := WalletAnalysis{
		RiskScore:       0.5,
		DiversityScore:  0.5,
		Recommendations: []string{"Consider diversifying your portfolio across more assets"},
		TokenInsights: map[string]TokenInsight{
			"So11111111111111111111111111111111111111112": {
				RiskLevel:       RiskVeryHigh,
				Concentration:   0.6,
				SuggestedAction: ActionReduceExposure,
			},
		},
	}

	raw, err := json.Marshal(analysis)
	require.NoError(t, err)

	// 风险等级和操作建议序列化为枚举字符串
	assert.Contains(t, string(raw), `"risk_level":"VeryHigh"`)
	assert.Contains(t, string(raw), `"suggested_action":"ReduceExposure"`)

	var decoded WalletAnalysis
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, analysis, decoded)
}

func TestTokenAnalysisJSON(t *testing.T) {
	analysis := TokenAnalysis{
		SentimentScore:    0.62,
		SentimentDegraded: true,
		SeriesStale:       true,
		PricePrediction: PricePrediction{
			Price24h:   101.5,
			Price7d:    104.2,
			Price30d:   110.0,
			Confidence: 0.71,
		},
		MarketSentiment: MarketSentiment{
			OverallScore:           0.56,
			SocialSentiment:        0.8,
			NewsSentiment:          0.4,
			TradingVolumeSentiment: 0.5,
			Degraded:               true,
		},
		TechnicalIndicators: TechnicalIndicators{
			RSI:            62.3,
			MACD:           MACD{Value: 0.4, Signal: 0.3, Histogram: 0.1},
			MovingAverages: MovingAverages{MA20: 100, MA50: 98, MA200: 95},
		},
	}

	raw, err := json.Marshal(analysis)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"ma_20":100`)

	var decoded TokenAnalysis
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, analysis, decoded)
}

func TestTokenAnalysisOmitsDefaultFlags(t *testing.T) {
	raw, err := json.Marshal(TokenAnalysis{})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sentiment_degraded")
	assert.NotContains(t, string(raw), "series_stale")
}
