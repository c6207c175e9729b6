package collector

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"MarketScanner/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars map[string][]model.OHLCV
	Errs map[string]error

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol, _ string) ([]model.OHLCV, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[symbol]++
	m.mu.Unlock()

	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	bars, ok := m.Bars[symbol]
	if !ok {
		return nil, fmt.Errorf("mock %s: %w", symbol, ErrNoData)
	}
	return bars, nil
}

// Calls returns how many times symbol was requested.
func (m *MockFetcher) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

// GenerateMockBars builds count daily bars ending at end, with closes from price(i).
func GenerateMockBars(end time.Time, count int, price func(i int) float64) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := price(i)
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector fetches price history through a Fetcher. Every response is
// memoised for the collector's lifetime, so a symbol shared by the breadth
// universe and the scanner list is downloaded once per run.
type Collector struct {
	Fetcher Fetcher
	Workers int

	memo *cache.Cache
}

// NewCollector creates a Collector with an empty memo. Create one per run.
func NewCollector(fetcher Fetcher, workers int) *Collector {
	if workers <= 0 {
		workers = 1
	}
	return &Collector{
		Fetcher: fetcher,
		Workers: workers,
		memo:    cache.New(cache.NoExpiration, 0),
	}
}

// FetchSeries returns the daily series of symbol over rng.
func (c *Collector) FetchSeries(ctx context.Context, symbol, rng string) (model.PriceSeries, error) {
	key := symbol + "|" + rng
	if cached, ok := c.memo.Get(key); ok {
		return cached.(model.PriceSeries), nil
	}
	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, rng)
	if err != nil {
		return model.PriceSeries{}, err
	}
	series := model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: time.Now()}
	c.memo.Set(key, series, cache.NoExpiration)
	return series, nil
}

// FetchUniverse fetches every symbol best-effort. Series come back in input
// order; symbols that failed or returned no closes are left out and reported
// in failures.
func (c *Collector) FetchUniverse(ctx context.Context, symbols []string, rng string) ([]model.PriceSeries, map[string]error) {
	results := make([]model.PriceSeries, len(symbols))
	errs := make([]error, len(symbols))

	var wg sync.WaitGroup
	sem := make(chan struct{}, c.Workers)
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i], errs[i] = c.FetchSeries(ctx, sym, rng)
		}(i, sym)
	}
	wg.Wait()

	series := make([]model.PriceSeries, 0, len(symbols))
	failures := make(map[string]error)
	for i, sym := range symbols {
		if errs[i] != nil {
			failures[sym] = errs[i]
			log.Debug().Str("symbol", sym).Err(errs[i]).Msg("fetch failed")
			continue
		}
		if !hasClose(results[i].Bars) {
			failures[sym] = fmt.Errorf("%s: %w", sym, ErrNoData)
			continue
		}
		series = append(series, results[i])
	}
	return series, failures
}

func hasClose(bars []model.OHLCV) bool {
	for _, b := range bars {
		if !math.IsNaN(b.Close) {
			return true
		}
	}
	return false
}
