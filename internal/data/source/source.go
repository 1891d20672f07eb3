package source

import (
	"context"
	"fmt"
	"time"

	"github.com/ethan-cdwll/insight/internal/analysis"
	"github.com/ethan-cdwll/insight/internal/data"
	"github.com/ethan-cdwll/insight/internal/models"
)

type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Failover implements data.MarketDataSource by trying each underlying
// source in order and returning the first successful series.
type Failover struct {
	sources []data.MarketDataSource
	logger  Logger
}

func NewFailover(sources []data.MarketDataSource, logger Logger) *Failover {
	return &Failover{
		sources: sources,
		logger:  logger,
	}
}

func (f *Failover) Name() string {
	return "failover"
}

// FetchSeries implements data.MarketDataSource.
func (f *Failover) FetchSeries(ctx context.Context, tokenAddress string, lookback time.Duration) (models.TokenSeries, error) {
	for _, src := range f.sources {
		series, err := src.FetchSeries(ctx, tokenAddress, lookback)
		if err == nil && len(series) > 0 {
			f.logger.Info("fetched series", "source", src.Name(), "token", tokenAddress, "points", len(series))
			return series, nil
		}
		f.logger.Warn("source failed", "source", src.Name(), "token", tokenAddress, "err", err)
	}

	return nil, fmt.Errorf("%w: all sources failed for %s", analysis.ErrUpstreamFailure, tokenAddress)
}
