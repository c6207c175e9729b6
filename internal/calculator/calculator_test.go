package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketScanner/internal/model"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestRollingSMA_LeadingWindowUndefined(t *testing.T) {
	out, err := RollingSMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	require.Len(t, out, 5)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-12)
	assert.InDelta(t, 3.0, out[3], 1e-12)
	assert.InDelta(t, 4.0, out[4], 1e-12)
}

func TestRollingSMA_ShortInput(t *testing.T) {
	out, err := RollingSMA([]float64{1, 2}, 3)
	require.NoError(t, err)
	for _, v := range out {
		assert.True(t, math.IsNaN(v))
	}
}

func TestRollingSMA_InvalidPeriod(t *testing.T) {
	_, err := RollingSMA([]float64{1}, 0)
	assert.Error(t, err)
}

func TestPctChange(t *testing.T) {
	tests := []struct {
		prev, cur float64
		want      float64
		ok        bool
	}{
		{100, 110, 0.10, true},
		{100, 90, -0.10, true},
		{100, 100, 0, true},
		{0, 10, 0, false},
		{math.NaN(), 10, 0, false},
		{10, math.NaN(), 0, false},
	}
	for _, tt := range tests {
		got, ok := PctChange(tt.prev, tt.cur)
		assert.Equal(t, tt.ok, ok, "prev=%v cur=%v", tt.prev, tt.cur)
		assert.InDelta(t, tt.want, got, 1e-12)
	}
}

func TestForwardFill(t *testing.T) {
	points := []model.PricePoint{
		{Time: day(2), Close: 10},
		{Time: day(4), Close: 12},
	}
	out := ForwardFill(points, []time.Time{day(1), day(2), day(3), day(4), day(5)})
	require.Len(t, out, 5)
	assert.True(t, math.IsNaN(out[0]))
	assert.Equal(t, []float64{10, 10, 12, 12}, out[1:])
}
