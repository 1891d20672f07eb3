package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ethan-cdwll/insight/internal/analysis"
	"github.com/ethan-cdwll/insight/internal/models"
	"github.com/ethan-cdwll/insight/internal/utils/request"
)

const defaultBaseURL = "https://api.coingecko.com"

// ChartSource fetches market-chart history from CoinGecko.
type ChartSource struct {
	baseURL    string
	httpClient *resty.Client

	// ids 代币地址到CoinGecko coin id的映射；缺省时直接使用地址
	ids map[string]string
}

func NewChartSource(ids map[string]string) *ChartSource {
	return &ChartSource{
		baseURL:    defaultBaseURL,
		httpClient: request.Request,
		ids:        ids,
	}
}

// SetBaseURL overrides the REST endpoint, used in tests.
func (s *ChartSource) SetBaseURL(url string) {
	s.baseURL = url
}

func (s *ChartSource) Name() string {
	return "coingecko"
}

// FetchSeries implements data.MarketDataSource. Prices and volumes come
// back as parallel [timestamp_ms, value] arrays and are paired by index.
func (s *ChartSource) FetchSeries(ctx context.Context, tokenAddress string, lookback time.Duration) (models.TokenSeries, error) {
	id := tokenAddress
	if mapped, ok := s.ids[tokenAddress]; ok {
		id = mapped
	}

	days := int(lookback.Hours() / 24)
	if days < 1 {
		days = 1
	}

	url := fmt.Sprintf("%s/api/v3/coins/%s/market_chart?vs_currency=usd&days=%d", s.baseURL, id, days)

	resp, err := s.httpClient.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: coingecko request for %s: %w", analysis.ErrUpstreamFailure, id, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: coingecko status %d for %s", analysis.ErrUpstreamFailure, resp.StatusCode(), id)
	}

	var chart struct {
		Prices       [][2]float64 `json:"prices"`
		TotalVolumes [][2]float64 `json:"total_volumes"`
	}
	if err := json.Unmarshal(resp.Body(), &chart); err != nil {
		return nil, fmt.Errorf("%w: decode coingecko response for %s: %w", analysis.ErrUpstreamFailure, id, err)
	}

	series := make(models.TokenSeries, 0, len(chart.Prices))
	for i, p := range chart.Prices {
		volume := 0.0
		if i < len(chart.TotalVolumes) {
			volume = chart.TotalVolumes[i][1]
		}
		series = append(series, models.PricePoint{
			Timestamp: time.UnixMilli(int64(p[0])).UTC(),
			Price:     p[1],
			Volume:    volume,
		})
	}

	return series, nil
}
