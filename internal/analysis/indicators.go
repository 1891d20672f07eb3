package analysis

import (
	"math"

	"github.com/ethan-cdwll/insight/internal/models"
)

// Indicator periods.
const (
	RSIPeriod      = 14
	MACDFastPeriod = 12
	MACDSlowPeriod = 26
	// MACD信号线在去掉前14个点的序列上计算
	macdSignalSkip   = 14
	macdSignalPeriod = 9
)

// volatilityScale normalizes the stdev of per-period returns into [0,1]:
// a 10% per-period stdev maps to volatility 1.0.
const volatilityScale = 0.1

// RSI computes the Relative Strength Index over the whole series.
// Deltas are averaged across the entire history rather than a rolling
// window. Returns the neutral 50.0 when the series is shorter than
// period+1 points, and 100.0 when there are no losses.
func RSI(series models.TokenSeries, period int) float64 {
	if len(series) < period+1 {
		return 50.0
	}

	var gainSum, lossSum float64
	for i := 1; i < len(series); i++ {
		delta := series[i].Price - series[i-1].Price
		if delta >= 0 {
			gainSum += delta
		} else {
			lossSum += -delta
		}
	}

	n := float64(len(series) - 1)
	avgGain := gainSum / n
	avgLoss := lossSum / n

	if avgLoss == 0 {
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// EMA computes an exponential moving average seeded with the first price
// and smoothed across the entire series. Falls back to the last price
// when the series is shorter than period points.
func EMA(series models.TokenSeries, period int) float64 {
	return emaValues(prices(series), period)
}

// SMA averages the most recent period prices. Falls back to the last
// price when the series is shorter than period points.
func SMA(series models.TokenSeries, period int) float64 {
	return smaValues(prices(series), period)
}

// MACD computes the MACD value, signal line and histogram.
// The signal line is the 9-period EMA of the series with its first 14
// points dropped; changing this would silently alter observable output.
func MACD(series models.TokenSeries) models.MACD {
	value := EMA(series, MACDFastPeriod) - EMA(series, MACDSlowPeriod)

	var tail models.TokenSeries
	if len(series) > macdSignalSkip {
		tail = series[macdSignalSkip:]
	}
	signal := EMA(tail, macdSignalPeriod)

	return models.MACD{
		Value:     value,
		Signal:    signal,
		Histogram: value - signal,
	}
}

// MovingAverages computes the 20/50/200-period simple moving averages.
func MovingAverages(series models.TokenSeries) models.MovingAverages {
	return models.MovingAverages{
		MA20:  SMA(series, 20),
		MA50:  SMA(series, 50),
		MA200: SMA(series, 200),
	}
}

// Indicators bundles all technical indicators for a series.
func Indicators(series models.TokenSeries) models.TechnicalIndicators {
	return models.TechnicalIndicators{
		RSI:            RSI(series, RSIPeriod),
		MACD:           MACD(series),
		MovingAverages: MovingAverages(series),
	}
}

// Volatility derives a bounded [0,1] volatility from the standard
// deviation of period-over-period returns.
func Volatility(series models.TokenSeries) float64 {
	sd := returnStdev(series)
	return clamp01(sd / volatilityScale)
}

func prices(series models.TokenSeries) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Price
	}
	return out
}

func volumes(series models.TokenSeries) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Volume
	}
	return out
}

func emaValues(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) < period {
		return values[len(values)-1]
	}

	multiplier := 2.0 / (float64(period) + 1.0)
	ema := values[0]
	for _, v := range values[1:] {
		ema = (v-ema)*multiplier + ema
	}
	return ema
}

func smaValues(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) < period {
		return values[len(values)-1]
	}

	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// returnStdev is the population standard deviation of per-period returns.
// Zero-price points are skipped to avoid division by zero.
func returnStdev(series models.TokenSeries) float64 {
	if len(series) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Price
		if prev == 0 {
			continue
		}
		returns = append(returns, (series[i].Price-prev)/prev)
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	sumSq := 0.0
	for _, r := range returns {
		diff := r - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(returns)))
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
