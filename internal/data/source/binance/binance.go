package binance

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"

	"github.com/ethan-cdwll/insight/internal/analysis"
	"github.com/ethan-cdwll/insight/internal/models"
)

// klineLimit is Binance's maximum klines per request.
const klineLimit = 1000

// KlineSource fetches hourly kline history from Binance and converts it
// into a TokenSeries.
type KlineSource struct {
	client *binance.Client

	// symbols 代币地址到交易对的映射；缺省时直接把地址当作交易对
	symbols map[string]string
}

// NewKlineSource creates a Binance-backed market data source. Public
// kline data needs no API key.
func NewKlineSource(apiKey, secretKey string, symbols map[string]string) *KlineSource {
	return &KlineSource{
		client:  binance.NewClient(apiKey, secretKey),
		symbols: symbols,
	}
}

// SetBaseURL overrides the REST endpoint, used in tests.
func (s *KlineSource) SetBaseURL(url string) {
	s.client.BaseURL = url
}

func (s *KlineSource) Name() string {
	return "binance"
}

// FetchSeries implements data.MarketDataSource.
func (s *KlineSource) FetchSeries(ctx context.Context, tokenAddress string, lookback time.Duration) (models.TokenSeries, error) {
	symbol := tokenAddress
	if mapped, ok := s.symbols[tokenAddress]; ok {
		symbol = mapped
	}

	end := time.Now()
	start := end.Add(-lookback)

	klines, err := s.client.NewKlinesService().
		Symbol(symbol).
		Interval("1h").
		StartTime(start.UnixMilli()).
		EndTime(end.UnixMilli()).
		Limit(klineLimit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: binance klines %s: %w", analysis.ErrUpstreamFailure, symbol, err)
	}

	series := make(models.TokenSeries, 0, len(klines))
	for _, k := range klines {
		price, err := strconv.ParseFloat(k.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: parse close price for %s: %w", analysis.ErrUpstreamFailure, symbol, err)
		}
		volume, err := strconv.ParseFloat(k.Volume, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: parse volume for %s: %w", analysis.ErrUpstreamFailure, symbol, err)
		}

		series = append(series, models.PricePoint{
			Timestamp: time.UnixMilli(k.OpenTime).UTC(),
			Price:     price,
			Volume:    volume,
		})
	}

	return series, nil
}
