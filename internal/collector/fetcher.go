package collector

import (
	"context"
	"errors"

	"MarketScanner/internal/model"
)

// ErrNoData is returned when a provider answers without any usable bars.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for fetching daily price history.
// rng is a provider lookback such as "60d" or "3mo".
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol, rng string) ([]model.OHLCV, error)
	Name() string
}

// TickerSource supplies the symbols that make up the breadth universe.
type TickerSource interface {
	FetchTickers(ctx context.Context) ([]string, error)
}
