package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethan-cdwll/insight/internal/analysis"
	"github.com/ethan-cdwll/insight/internal/data"
	"github.com/ethan-cdwll/insight/internal/models"
)

type fakeSource struct {
	name   string
	series models.TokenSeries
	err    error
	calls  int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchSeries(_ context.Context, _ string, _ time.Duration) (models.TokenSeries, error) {
	f.calls++
	return f.series, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFailover(t *testing.T) {
	series := models.TokenSeries{{Price: 100, Volume: 1000}}

	t.Run("first source wins", func(t *testing.T) {
		primary := &fakeSource{name: "primary", series: series}
		secondary := &fakeSource{name: "secondary", series: series}
		f := NewFailover([]data.MarketDataSource{primary, secondary}, testLogger())

		got, err := f.FetchSeries(context.Background(), "token-a", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, series, got)
		assert.Equal(t, 1, primary.calls)
		assert.Equal(t, 0, secondary.calls)
	})

	t.Run("falls through on failure", func(t *testing.T) {
		primary := &fakeSource{name: "primary", err: errors.New("down")}
		secondary := &fakeSource{name: "secondary", series: series}
		f := NewFailover([]data.MarketDataSource{primary, secondary}, testLogger())

		got, err := f.FetchSeries(context.Background(), "token-a", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, series, got)
	})

	t.Run("empty series counts as failure", func(t *testing.T) {
		primary := &fakeSource{name: "primary"}
		secondary := &fakeSource{name: "secondary", series: series}
		f := NewFailover([]data.MarketDataSource{primary, secondary}, testLogger())

		got, err := f.FetchSeries(context.Background(), "token-a", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, series, got)
	})

	t.Run("all sources failing", func(t *testing.T) {
		primary := &fakeSource{name: "primary", err: errors.New("down")}
		secondary := &fakeSource{name: "secondary", err: errors.New("also down")}
		f := NewFailover([]data.MarketDataSource{primary, secondary}, testLogger())

		_, err := f.FetchSeries(context.Background(), "token-a", time.Hour)
		assert.ErrorIs(t, err, analysis.ErrUpstreamFailure)
	})
}
