package analysis

import (
	"math"

	"github.com/ethan-cdwll/insight/internal/models"
)

// Forecast horizons in hours.
const (
	Horizon24h = 24
	Horizon7d  = 168
	Horizon30d = 720
)

// Forecaster extrapolates prices from the short-term EMA trend and the
// recent slope of the series. All tunables have defaults from
// NewForecaster; the horizon scaling stays monotone and sub-linear.
type Forecaster struct {
	// BaseConfidence is the starting confidence before penalties.
	BaseConfidence float64
	// HistoryPoints is the longest lookback; shorter series are penalized.
	HistoryPoints int
	// SlopeWindow 近期斜率的采样点数
	SlopeWindow int
	// MaxTrend caps the per-horizon-unit trend magnitude.
	MaxTrend float64
}

// NewForecaster returns a Forecaster with default tunables.
func NewForecaster() *Forecaster {
	return &Forecaster{
		BaseConfidence: 0.9,
		HistoryPoints:  200,
		SlopeWindow:    12,
		MaxTrend:       0.1,
	}
}

// Forecast predicts the price horizonHours ahead and the confidence of
// that prediction. Confidence is penalized for short history, high
// recent volatility and long horizons, and clamped to [0,1].
func (f *Forecaster) Forecast(series models.TokenSeries, horizonHours int) (float64, float64) {
	if len(series) == 0 {
		return 0, 0
	}

	current := series[len(series)-1].Price
	trend := f.normalizedTrend(series)

	// sqrt scaling: longer horizons extrapolate the trend less aggressively
	scale := math.Sqrt(float64(horizonHours) / float64(Horizon24h))
	predicted := current * (1 + trend*scale)
	if predicted < 0 {
		predicted = 0
	}

	confidence := f.BaseConfidence
	if len(series) < f.HistoryPoints {
		confidence -= 0.25
	}
	confidence -= math.Min(0.3, 2*returnStdev(series))
	if horizonHours > Horizon24h {
		confidence -= 0.02 * math.Log2(float64(horizonHours)/float64(Horizon24h))
	}

	return predicted, clamp01(confidence)
}

// PredictTokenPrice forecasts at the 24h, 7d and 30d horizons and
// averages the three confidences.
func (f *Forecaster) PredictTokenPrice(series models.TokenSeries) models.PricePrediction {
	p24, c24 := f.Forecast(series, Horizon24h)
	p7d, c7d := f.Forecast(series, Horizon7d)
	p30d, c30d := f.Forecast(series, Horizon30d)

	return models.PricePrediction{
		Price24h:   p24,
		Price7d:    p7d,
		Price30d:   p30d,
		Confidence: (c24 + c7d + c30d) / 3.0,
	}
}

// normalizedTrend blends the EMA12/EMA26 divergence with the recent
// per-step slope, both relative to price, capped at ±MaxTrend.
func (f *Forecaster) normalizedTrend(series models.TokenSeries) float64 {
	current := series[len(series)-1].Price
	if current == 0 {
		return 0
	}

	emaTrend := 0.0
	if slow := EMA(series, MACDSlowPeriod); slow != 0 {
		emaTrend = (EMA(series, MACDFastPeriod) - slow) / slow
	}

	window := f.SlopeWindow
	if window > len(series) {
		window = len(series)
	}
	slope := 0.0
	if window >= 2 {
		first := series[len(series)-window].Price
		slope = (current - first) / float64(window-1) / current
	}

	trend := 0.5*emaTrend + 0.5*slope
	return math.Max(-f.MaxTrend, math.Min(f.MaxTrend, trend))
}
