package analysis

import "errors"

// Analysis errors. Qualitative-feed failures are absorbed with neutral
// fallbacks and never surface as errors; everything below does.
var (
	// ErrDataUnavailable is returned when no historical series exists for a
	// token and the upstream fetch failed.
	ErrDataUnavailable = errors.New("historical data unavailable")

	// ErrUpstreamFailure is returned for transient market-data provider errors.
	ErrUpstreamFailure = errors.New("upstream provider failure")

	// ErrInvalidInput is returned for malformed wallet or token data,
	// e.g. negative balances.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when a referenced wallet or token does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInternal is returned on invariant violations, e.g. concentrations
	// not summing to 1 outside tolerance. Not retryable.
	ErrInternal = errors.New("internal invariant violation")
)
