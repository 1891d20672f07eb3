package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ethan-cdwll/insight/internal/models"
)

// Engine composes the series cache, forecaster, sentiment aggregator and
// risk engine into wallet and token analyses. It performs no I/O beyond
// delegating to its collaborators, does not retry, and propagates the
// first failure tagged with its origin.
type Engine struct {
	series     SeriesProvider
	forecaster *Forecaster
	sentiment  *Aggregator
	risk       *RiskEngine
	logger     Logger
}

// NewEngine creates an analysis engine.
func NewEngine(series SeriesProvider, forecaster *Forecaster, sentiment *Aggregator, risk *RiskEngine, logger Logger) *Engine {
	return &Engine{
		series:     series,
		forecaster: forecaster,
		sentiment:  sentiment,
		risk:       risk,
		logger:     logger,
	}
}

// AnalyzeWallet produces risk/diversity scores, per-token insights and
// ordered recommendations for a wallet.
func (e *Engine) AnalyzeWallet(ctx context.Context, wallet *models.Wallet) (*models.WalletAnalysis, error) {
	if err := validateWallet(wallet); err != nil {
		return nil, err
	}

	// 本地重新计算总值，不信任调用方的total_value_usd
	totalValue := 0.0
	for _, t := range wallet.Tokens {
		totalValue += t.ValueUSD
	}

	concentrations := e.risk.Concentrations(wallet.Tokens)
	if !checkConcentrations(concentrations, totalValue) {
		return nil, fmt.Errorf("%w: concentrations do not sum to 1 for wallet %s", ErrInternal, wallet.Address)
	}

	// 按地址升序处理，保证快照获取顺序确定
	order := make([]int, len(wallet.Tokens))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return wallet.Tokens[order[a]].TokenAddress < wallet.Tokens[order[b]].TokenAddress
	})

	insights := make(map[string]models.TokenInsight, len(wallet.Tokens))
	stats := make([]TokenStat, 0, len(wallet.Tokens))
	for _, i := range order {
		balance := wallet.Tokens[i]

		snap, err := e.series.Snapshot(ctx, balance.TokenAddress)
		if err != nil {
			return nil, fmt.Errorf("market data for %s: %w", balance.TokenAddress, err)
		}

		stat := TokenStat{
			Concentration: concentrations[i],
			Volatility:    Volatility(snap.Series),
			Trend:         smoothedTrend(prices(snap.Series)),
		}
		stats = append(stats, stat)
		insights[balance.TokenAddress] = e.risk.Insight(stat)
	}

	diversity := 1.0
	if totalValue > 0 {
		diversity = e.risk.DiversityScore(concentrations)
	}

	analysis := &models.WalletAnalysis{
		RiskScore:       e.risk.RiskScore(stats),
		DiversityScore:  diversity,
		Recommendations: e.risk.Recommendations(insights, diversity),
		TokenInsights:   insights,
	}

	e.logger.Info("wallet analyzed",
		"wallet", wallet.Address,
		"tokens", len(wallet.Tokens),
		"risk_score", analysis.RiskScore,
		"diversity_score", analysis.DiversityScore)

	return analysis, nil
}

// AnalyzeToken produces sentiment, forecast and technical indicators for
// a single token from one consistent series snapshot.
func (e *Engine) AnalyzeToken(ctx context.Context, token *models.Token) (*models.TokenAnalysis, error) {
	if token == nil || token.Address == "" {
		return nil, fmt.Errorf("%w: token address is required", ErrInvalidInput)
	}

	snap, err := e.series.Snapshot(ctx, token.Address)
	if err != nil {
		return nil, fmt.Errorf("market data for %s: %w", token.Address, err)
	}

	sentiment := e.sentiment.SentimentScore(ctx, token.Address, snap.Series)

	analysis := &models.TokenAnalysis{
		SentimentScore:      sentiment.Score,
		SentimentDegraded:   sentiment.Degraded,
		SeriesStale:         snap.Stale,
		PricePrediction:     e.forecaster.PredictTokenPrice(snap.Series),
		MarketSentiment:     e.sentiment.MarketSentiment(ctx, token.Address, snap.Series),
		TechnicalIndicators: Indicators(snap.Series),
	}

	e.logger.Info("token analyzed",
		"token", token.Address,
		"sentiment_score", analysis.SentimentScore,
		"stale", snap.Stale)

	return analysis, nil
}

// PortfolioMetrics recomputes total value, value-weighted 24h change and
// the portfolio risk level from current holdings and cached series.
func (e *Engine) PortfolioMetrics(ctx context.Context, wallet *models.Wallet) (*models.PortfolioMetrics, error) {
	if err := validateWallet(wallet); err != nil {
		return nil, err
	}

	totalValue := 0.0
	for _, t := range wallet.Tokens {
		totalValue += t.ValueUSD
	}
	concentrations := e.risk.Concentrations(wallet.Tokens)

	dailyChange := 0.0
	stats := make([]TokenStat, 0, len(wallet.Tokens))
	for i, balance := range wallet.Tokens {
		snap, err := e.series.Snapshot(ctx, balance.TokenAddress)
		if err != nil {
			return nil, fmt.Errorf("market data for %s: %w", balance.TokenAddress, err)
		}

		dailyChange += concentrations[i] * change24h(snap.Series)
		stats = append(stats, TokenStat{
			Concentration: concentrations[i],
			Volatility:    Volatility(snap.Series),
		})
	}

	return &models.PortfolioMetrics{
		TotalValue:  totalValue,
		DailyChange: dailyChange,
		RiskLevel:   e.risk.RiskScore(stats),
	}, nil
}

func validateWallet(wallet *models.Wallet) error {
	if wallet == nil {
		return fmt.Errorf("%w: wallet is required", ErrInvalidInput)
	}
	for _, t := range wallet.Tokens {
		if t.TokenAddress == "" {
			return fmt.Errorf("%w: token balance without address in wallet %s", ErrInvalidInput, wallet.Address)
		}
		if t.Amount < 0 || t.ValueUSD < 0 {
			return fmt.Errorf("%w: negative balance for token %s", ErrInvalidInput, t.TokenAddress)
		}
	}
	return nil
}

// change24h is the relative price change between the last point and the
// closest point at least 24 hours earlier. Zero when the series is too
// short to cover a day.
func change24h(series models.TokenSeries) float64 {
	if len(series) < 2 {
		return 0
	}

	last := series[len(series)-1]
	cutoff := last.Timestamp.Add(-24 * time.Hour)
	for i := len(series) - 2; i >= 0; i-- {
		if !series[i].Timestamp.After(cutoff) {
			if series[i].Price == 0 {
				return 0
			}
			return (last.Price - series[i].Price) / series[i].Price
		}
	}
	return 0
}
