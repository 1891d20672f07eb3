package analysis

import (
	"context"

	"github.com/ethan-cdwll/insight/internal/models"
)

// Sentiment factor weights: 价格趋势0.4 + 成交量趋势0.3 + 社交情绪0.3
const (
	priceTrendWeight  = 0.4
	volumeTrendWeight = 0.3
	socialTrendWeight = 0.3
)

// neutralScore replaces an unavailable qualitative factor (fail-open).
const neutralScore = 0.5

// trendScale maps the relative EMA divergence onto [0,1]: a ±10%
// divergence saturates the normalized trend at 0 or 1.
const trendScale = 0.1

// SentimentResult is a bounded sentiment score. Degraded marks that one
// or more qualitative inputs were replaced by the neutral fallback.
type SentimentResult struct {
	Score    float64
	Degraded bool
}

// Aggregator combines indicator-derived trend signals with external
// qualitative feeds into bounded sentiment scores.
type Aggregator struct {
	strategy SentimentStrategy
	news     NewsFeedProvider
	social   SocialMetricsProvider
	logger   Logger
}

// NewAggregator creates a sentiment aggregator. strategy may be nil, in
// which case the deterministic heuristic wrapping social is used.
func NewAggregator(strategy SentimentStrategy, social SocialMetricsProvider, news NewsFeedProvider, logger Logger) *Aggregator {
	if strategy == nil {
		strategy = &providerStrategy{provider: social}
	}
	return &Aggregator{
		strategy: strategy,
		news:     news,
		social:   social,
		logger:   logger,
	}
}

// SentimentScore computes the weighted sentiment for a token. Provider
// failures are absorbed with the neutral 0.5 and flagged as degraded.
func (a *Aggregator) SentimentScore(ctx context.Context, tokenAddress string, series models.TokenSeries) SentimentResult {
	priceTrend := normalizeTrend(smoothedTrend(prices(series)))
	volumeTrend := normalizeTrend(smoothedTrend(volumes(series)))

	degraded := false
	socialTrend, err := a.strategy.Score(ctx, tokenAddress, series)
	if err != nil {
		a.logger.Warn("sentiment strategy unavailable, using neutral fallback",
			"token", tokenAddress, "err", err)
		socialTrend = neutralScore
		degraded = true
	}
	socialTrend = clamp01(socialTrend)

	score := clamp01(priceTrend*priceTrendWeight +
		volumeTrend*volumeTrendWeight +
		socialTrend*socialTrendWeight)

	return SentimentResult{Score: score, Degraded: degraded}
}

// MarketSentiment averages the social, news and volume sub-scores.
// Unavailable providers fall back to the neutral 0.5 and set Degraded.
func (a *Aggregator) MarketSentiment(ctx context.Context, tokenAddress string, series models.TokenSeries) models.MarketSentiment {
	degraded := false

	social := neutralScore
	if a.social != nil {
		if s, err := a.social.Score(ctx, tokenAddress); err == nil {
			social = clamp01(s)
		} else {
			a.logger.Warn("social provider unavailable", "token", tokenAddress, "err", err)
			degraded = true
		}
	} else {
		degraded = true
	}

	news := neutralScore
	if a.news != nil {
		if s, err := a.news.Score(ctx, tokenAddress); err == nil {
			news = clamp01(s)
		} else {
			a.logger.Warn("news provider unavailable", "token", tokenAddress, "err", err)
			degraded = true
		}
	} else {
		degraded = true
	}

	volume := normalizeTrend(smoothedTrend(volumes(series)))

	return models.MarketSentiment{
		OverallScore:           (social + news + volume) / 3.0,
		SocialSentiment:        social,
		NewsSentiment:          news,
		TradingVolumeSentiment: volume,
		Degraded:               degraded,
	}
}

// providerStrategy is the default heuristic strategy: the social trend
// factor comes straight from the external social metrics provider.
type providerStrategy struct {
	provider SocialMetricsProvider
}

func (s *providerStrategy) Score(ctx context.Context, tokenAddress string, _ models.TokenSeries) (float64, error) {
	if s.provider == nil {
		return 0, ErrUpstreamFailure
	}
	return s.provider.Score(ctx, tokenAddress)
}

// smoothedTrend is the relative divergence of the fast EMA from the slow
// EMA; positive means rising values, negative means falling.
func smoothedTrend(values []float64) float64 {
	slow := emaValues(values, MACDSlowPeriod)
	if slow == 0 {
		return 0
	}
	return (emaValues(values, MACDFastPeriod) - slow) / slow
}

// normalizeTrend maps a relative trend onto [0,1] around a 0.5 neutral.
func normalizeTrend(trend float64) float64 {
	return clamp01(0.5 + trend/(2*trendScale))
}
