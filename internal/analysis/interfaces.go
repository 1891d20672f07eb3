package analysis

import (
	"context"
	"time"

	"github.com/ethan-cdwll/insight/internal/models"
)

// SeriesSnapshot is one consistent view of a token's cached history.
// Stale means the upstream fetch failed and an expired series was served.
type SeriesSnapshot struct {
	Series    models.TokenSeries
	FetchedAt time.Time
	Stale     bool
}

// SeriesProvider supplies per-token price/volume history.
// Implemented by the historical series cache.
type SeriesProvider interface {
	// Snapshot returns the series for a token address. Returns
	// ErrDataUnavailable when no series exists and the upstream failed.
	Snapshot(ctx context.Context, tokenAddress string) (SeriesSnapshot, error)
}

// SocialMetricsProvider scores social activity for a token in [0,1].
type SocialMetricsProvider interface {
	Score(ctx context.Context, tokenAddress string) (float64, error)
}

// NewsFeedProvider scores news coverage for a token in [0,1].
type NewsFeedProvider interface {
	Score(ctx context.Context, tokenAddress string) (float64, error)
}

// SentimentStrategy produces the qualitative sentiment factor in [0,1].
// The default implementation wraps a SocialMetricsProvider; an LLM-backed
// strategy can be substituted without changing callers.
type SentimentStrategy interface {
	Score(ctx context.Context, tokenAddress string, series models.TokenSeries) (float64, error)
}

// Logger is the subset of *slog.Logger the engine uses.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
