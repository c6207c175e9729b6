package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketScanner/internal/model"
)

func TestCollector_FetchUniverse_BestEffortInOrder(t *testing.T) {
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	flat := func(int) float64 { return 100 }
	m := &MockFetcher{
		Bars: map[string][]model.OHLCV{
			"A.NS": GenerateMockBars(end, 5, flat),
			"C.NS": GenerateMockBars(end, 5, flat),
			"D.NS": GenerateMockBars(end, 5, flat),
		},
		Errs: map[string]error{"B.NS": errors.New("boom")},
	}
	c := NewCollector(m, 3)

	series, failures := c.FetchUniverse(context.Background(), []string{"D.NS", "B.NS", "A.NS", "C.NS", "E.NS"}, "3mo")
	require.Len(t, series, 3)
	assert.Equal(t, "D.NS", series[0].Symbol)
	assert.Equal(t, "A.NS", series[1].Symbol)
	assert.Equal(t, "C.NS", series[2].Symbol)

	require.Len(t, failures, 2)
	assert.Contains(t, failures, "B.NS")
	assert.ErrorIs(t, failures["E.NS"], ErrNoData)
}

func TestCollector_FetchSeries_Memoised(t *testing.T) {
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	m := &MockFetcher{Bars: map[string][]model.OHLCV{
		"TCS.NS": GenerateMockBars(end, 3, func(i int) float64 { return float64(100 + i) }),
	}}
	c := NewCollector(m, 1)

	first, err := c.FetchSeries(context.Background(), "TCS.NS", "3mo")
	require.NoError(t, err)
	second, err := c.FetchSeries(context.Background(), "TCS.NS", "3mo")
	require.NoError(t, err)

	assert.Equal(t, first.Bars, second.Bars)
	assert.Equal(t, 1, m.Calls("TCS.NS"))

	// a fresh collector starts with an empty memo
	_, err = NewCollector(m, 1).FetchSeries(context.Background(), "TCS.NS", "3mo")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Calls("TCS.NS"))
}

func TestCollector_FetchSeries_ErrorsNotMemoised(t *testing.T) {
	m := &MockFetcher{Errs: map[string]error{"X.NS": errors.New("timeout")}}
	c := NewCollector(m, 1)
	_, err := c.FetchSeries(context.Background(), "X.NS", "3mo")
	require.Error(t, err)
	_, err = c.FetchSeries(context.Background(), "X.NS", "3mo")
	require.Error(t, err)
	assert.Equal(t, 2, m.Calls("X.NS"))
}
