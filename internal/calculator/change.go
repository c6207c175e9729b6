package calculator

import (
	"math"
	"sort"
	"time"

	"MarketScanner/internal/model"
)

// PctChange returns the fractional change from prev to cur. ok is false when
// either value is missing or prev is zero.
func PctChange(prev, cur float64) (change float64, ok bool) {
	if math.IsNaN(prev) || math.IsNaN(cur) || prev == 0 {
		return 0, false
	}
	return cur/prev - 1, true
}

// ForwardFill aligns points onto dates: each output is the close of the latest
// point at or before that date, NaN when none exists. points must be ascending.
func ForwardFill(points []model.PricePoint, dates []time.Time) []float64 {
	out := make([]float64, len(dates))
	for i, d := range dates {
		// first index with Time > d
		j := sort.Search(len(points), func(k int) bool { return points[k].Time.After(d) })
		if j == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = points[j-1].Close
	}
	return out
}
