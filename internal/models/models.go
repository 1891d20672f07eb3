package models

import "time"

// Wallet 钱包及其持仓快照
type Wallet struct {
	ID            string         `json:"id"`
	Address       string         `json:"address"`
	TotalValueUSD float64        `json:"total_value_usd"`
	Tokens        []TokenBalance `json:"tokens"`
	RiskScore     float64        `json:"risk_score"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TokenBalance 钱包中单个代币的持仓
type TokenBalance struct {
	TokenAddress string  `json:"token_address"`
	Amount       float64 `json:"amount"`
	ValueUSD     float64 `json:"value_usd"`
}

// Token 代币基本信息
type Token struct {
	Address        string  `json:"address"`
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	Decimals       uint8   `json:"decimals"`
	TotalSupply    uint64  `json:"total_supply"`
	PriceUSD       float64 `json:"price_usd"`
	MarketCapUSD   float64 `json:"market_cap_usd"`
	Volume24h      float64 `json:"volume_24h"`
	PriceChange24h float64 `json:"price_change_24h"`
}

// Transaction 链上交易记录
type Transaction struct {
	Signature    string    `json:"signature"`
	BlockTime    time.Time `json:"block_time"`
	Success      bool      `json:"success"`
	FromAddress  string    `json:"from_address"`
	ToAddress    string    `json:"to_address"`
	Amount       float64   `json:"amount"`
	TokenAddress string    `json:"token_address,omitempty"`
	Fee          uint64    `json:"fee"`
}

// PricePoint is a single observation in a token's price/volume history.
// Points are immutable once recorded.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
}

// TokenSeries is the time-ordered price/volume history of one token,
// with strictly increasing timestamps.
type TokenSeries []PricePoint

// RiskLevel 代币风险等级
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "VeryHigh"
)

// Action 针对单个持仓的建议操作
type Action string

const (
	ActionHold             Action = "Hold"
	ActionBuy              Action = "Buy"
	ActionSell             Action = "Sell"
	ActionReduceExposure   Action = "ReduceExposure"
	ActionIncreasePosition Action = "IncreasePosition"
)

// TokenInsight is the per-holding classification inside a wallet analysis.
type TokenInsight struct {
	RiskLevel       RiskLevel `json:"risk_level"`
	Concentration   float64   `json:"concentration"`
	SuggestedAction Action    `json:"suggested_action"`
}

// WalletAnalysis is the portfolio-level analysis result.
// Recommendations are emitted in a deterministic order.
type WalletAnalysis struct {
	RiskScore       float64                 `json:"risk_score"`
	DiversityScore  float64                 `json:"diversity_score"`
	Recommendations []string                `json:"recommendations"`
	TokenInsights   map[string]TokenInsight `json:"token_insights"`
}

// TokenAnalysis is the single-token analysis result.
// SeriesStale is set when the analysis was computed from an expired
// cached series because the upstream fetch failed.
type TokenAnalysis struct {
	SentimentScore      float64             `json:"sentiment_score"`
	SentimentDegraded   bool                `json:"sentiment_degraded,omitempty"`
	SeriesStale         bool                `json:"series_stale,omitempty"`
	PricePrediction     PricePrediction     `json:"price_prediction"`
	MarketSentiment     MarketSentiment     `json:"market_sentiment"`
	TechnicalIndicators TechnicalIndicators `json:"technical_indicators"`
}

// PricePrediction 多周期价格预测
type PricePrediction struct {
	Price24h   float64 `json:"price_24h"`
	Price7d    float64 `json:"price_7d"`
	Price30d   float64 `json:"price_30d"`
	Confidence float64 `json:"confidence"`
}

// MarketSentiment combines qualitative feeds with volume behaviour.
// Degraded is set when an unavailable provider was replaced by the
// neutral fallback score.
type MarketSentiment struct {
	OverallScore           float64 `json:"overall_score"`
	SocialSentiment        float64 `json:"social_sentiment"`
	NewsSentiment          float64 `json:"news_sentiment"`
	TradingVolumeSentiment float64 `json:"trading_volume_sentiment"`
	Degraded               bool    `json:"degraded,omitempty"`
}

// TechnicalIndicators 技术指标汇总
type TechnicalIndicators struct {
	RSI            float64        `json:"rsi"`
	MACD           MACD           `json:"macd"`
	MovingAverages MovingAverages `json:"moving_averages"`
}

// MACD holds the MACD value, signal line and histogram.
type MACD struct {
	Value     float64 `json:"value"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// MovingAverages 常用周期均线
type MovingAverages struct {
	MA20  float64 `json:"ma_20"`
	MA50  float64 `json:"ma_50"`
	MA200 float64 `json:"ma_200"`
}

// PortfolioMetrics 组合整体指标
type PortfolioMetrics struct {
	TotalValue  float64 `json:"total_value"`
	DailyChange float64 `json:"daily_change"`
	RiskLevel   float64 `json:"risk_level"`
}
