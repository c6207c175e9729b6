package breadth

import (
	"math"
	"sort"
	"time"

	"MarketScanner/internal/calculator"
	"MarketScanner/internal/model"
)

const (
	// Window is the trailing SMA length applied to the advance and decline counts.
	Window = 20
	// StrongThreshold separates strong from weak readings on either side of zero.
	StrongThreshold = 0.10
)

// Signals is the ordered classification table; the first matching row wins.
var Signals = []struct {
	Match  func(ratio float64) bool
	Signal model.Signal
}{
	{func(r float64) bool { return r > StrongThreshold }, model.Signal{
		Label: "STRONG BUY", Reason: "Consistent buying across the market (bullish herding).", Color: "#00ff00"}},
	{func(r float64) bool { return r > 0 }, model.Signal{
		Label: "WEAK BUY / NEUTRAL", Reason: "Trend is positive but momentum is weak.", Color: "#ffff00"}},
	{func(r float64) bool { return r < -StrongThreshold }, model.Signal{
		Label: "STRONG SELL", Reason: "Heavy selling across the market (bearish herding).", Color: "#ff0000"}},
}

// Sideways is the fallback when no row of Signals matches.
var Sideways = model.Signal{Label: "NEUTRAL / SIDEWAYS", Reason: "Market is directionless.", Color: "#cccccc"}

// Unavailable is the sentinel emitted when no ratio could be computed.
var Unavailable = model.Signal{Label: "N/A", Reason: "Data Error", Color: "#cccccc"}

// Classify maps a breadth ratio to its market signal.
func Classify(ratio float64) model.Signal {
	for _, s := range Signals {
		if s.Match(ratio) {
			return s.Signal
		}
	}
	return Sideways
}

// Compute derives the smoothed breadth series of universe and classifies its
// latest value. An empty universe, or one with no valid smoothed point,
// yields the Unavailable sentinel with ratio 0.
func Compute(universe []model.PriceSeries) *model.BreadthResult {
	series := RatioSeries(universe, Window)
	if len(series) == 0 {
		return &model.BreadthResult{Signal: Unavailable}
	}

	current := series[len(series)-1].Ratio
	previous := 0.0
	if len(series) > 1 {
		previous = series[len(series)-2].Ratio
	}
	return &model.BreadthResult{
		Signal:   Classify(current),
		Current:  current,
		Previous: previous,
		Delta:    current - previous,
		Series:   series,
	}
}

// RatioSeries computes (avgAdv-avgDec)/(avgAdv+avgDec) for every date of the
// universe calendar where the window is full and the denominator is non-zero.
func RatioSeries(universe []model.PriceSeries, window int) []model.BreadthPoint {
	closes := make([]map[time.Time]float64, 0, len(universe))
	for _, s := range universe {
		byDate := make(map[time.Time]float64, len(s.Bars))
		for _, p := range s.Closes() {
			byDate[p.Time] = p.Close
		}
		if len(byDate) > 0 {
			closes = append(closes, byDate)
		}
	}
	dates := calendar(closes)
	if len(dates) == 0 {
		return nil
	}

	advances, declines := Counts(closes, dates)
	avgAdv, err := calculator.RollingSMA(advances, window)
	if err != nil {
		return nil
	}
	avgDec, err := calculator.RollingSMA(declines, window)
	if err != nil {
		return nil
	}

	var points []model.BreadthPoint
	for i, d := range dates {
		a, dec := avgAdv[i], avgDec[i]
		if math.IsNaN(a) || math.IsNaN(dec) || a+dec == 0 {
			continue
		}
		points = append(points, model.BreadthPoint{Time: d, Ratio: (a - dec) / (a + dec)})
	}
	return points
}

// Counts returns, per calendar date, how many symbols rose and fell versus the
// previous calendar date. A symbol contributes only when it has a close on both
// dates; the first date always counts zero.
func Counts(closes []map[time.Time]float64, dates []time.Time) (advances, declines []float64) {
	advances = make([]float64, len(dates))
	declines = make([]float64, len(dates))
	for i := 1; i < len(dates); i++ {
		for _, byDate := range closes {
			prev, okPrev := byDate[dates[i-1]]
			cur, okCur := byDate[dates[i]]
			if !okPrev || !okCur {
				continue
			}
			change, ok := calculator.PctChange(prev, cur)
			if !ok {
				continue
			}
			switch {
			case change > 0:
				advances[i]++
			case change < 0:
				declines[i]++
			}
		}
	}
	return advances, declines
}

// LastSessions trims every series to the most recent n dates of the universe
// calendar. n <= 0 leaves the universe unchanged.
func LastSessions(universe []model.PriceSeries, n int) []model.PriceSeries {
	if n <= 0 {
		return universe
	}
	seen := make(map[time.Time]struct{})
	for _, s := range universe {
		for _, b := range s.Bars {
			seen[b.Time] = struct{}{}
		}
	}
	if len(seen) <= n {
		return universe
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	cutoff := dates[len(dates)-n]

	trimmed := make([]model.PriceSeries, len(universe))
	for i, s := range universe {
		start := sort.Search(len(s.Bars), func(k int) bool { return !s.Bars[k].Time.Before(cutoff) })
		s.Bars = s.Bars[start:]
		trimmed[i] = s
	}
	return trimmed
}

func calendar(closes []map[time.Time]float64) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, byDate := range closes {
		for d := range byDate {
			seen[d] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
