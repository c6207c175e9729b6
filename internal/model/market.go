package model

import (
	"math"
	"time"
)

// OHLCV represents a single daily bar. Time is the exchange-local trading date
// at midnight UTC. A field the provider did not report is NaN.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Complete reports whether every price and volume field is finite and the
// volume is not negative.
func (b OHLCV) Complete() bool {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.Volume >= 0
}

// PricePoint is one (date, close) observation.
type PricePoint struct {
	Time  time.Time
	Close float64
}

// PriceSeries holds the daily bars of one symbol, oldest first, one bar per date.
type PriceSeries struct {
	Symbol    string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Closes returns the close-price view of the series, skipping bars without a close.
func (s PriceSeries) Closes() []PricePoint {
	points := make([]PricePoint, 0, len(s.Bars))
	for _, b := range s.Bars {
		if math.IsNaN(b.Close) {
			continue
		}
		points = append(points, PricePoint{Time: b.Time, Close: b.Close})
	}
	return points
}
