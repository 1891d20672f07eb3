// Package social provides resty-backed qualitative score providers.
// The engine fails open to a neutral score when these are unavailable,
// so both clients report plain errors without retry logic of their own.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/ethan-cdwll/insight/internal/analysis"
	"github.com/ethan-cdwll/insight/internal/utils/request"
)

// MetricsClient scores social activity for a token via an external
// metrics API returning {"score": float} in [0,1].
type MetricsClient struct {
	baseURL    string
	apiKey     string
	name       string
	path       string
	httpClient *resty.Client
}

// NewMetricsClient creates a social metrics provider.
func NewMetricsClient(baseURL, apiKey string) *MetricsClient {
	return &MetricsClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		name:       "social",
		path:       "social",
		httpClient: request.Request,
	}
}

// NewNewsClient creates a news-feed provider against the same API shape.
func NewNewsClient(baseURL, apiKey string) *MetricsClient {
	return &MetricsClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		name:       "news",
		path:       "news",
		httpClient: request.Request,
	}
}

func (c *MetricsClient) Name() string {
	return c.name
}

// Score implements data.MetricsProvider.
func (c *MetricsClient) Score(ctx context.Context, tokenAddress string) (float64, error) {
	url := fmt.Sprintf("%s/v1/%s/%s/score", c.baseURL, c.path, tokenAddress)

	req := c.httpClient.R().SetContext(ctx)
	if c.apiKey != "" {
		req.SetHeader("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := req.Get(url)
	if err != nil {
		return 0, fmt.Errorf("%w: %s request for %s: %w", analysis.ErrUpstreamFailure, c.name, tokenAddress, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return 0, fmt.Errorf("%w: %s status %d for %s", analysis.ErrUpstreamFailure, c.name, resp.StatusCode(), tokenAddress)
	}

	var body struct {
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return 0, fmt.Errorf("%w: decode %s response for %s: %w", analysis.ErrUpstreamFailure, c.name, tokenAddress, err)
	}

	if body.Score < 0 || body.Score > 1 {
		return 0, fmt.Errorf("%w: %s score %f out of range", analysis.ErrUpstreamFailure, c.name, body.Score)
	}

	return body.Score, nil
}
