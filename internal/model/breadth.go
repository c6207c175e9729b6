package model

import "time"

// BreadthPoint is one day's smoothed advance/decline ratio, in [-1, 1].
type BreadthPoint struct {
	Time  time.Time
	Ratio float64
}

// Signal is the categorical market call derived from the breadth ratio.
type Signal struct {
	Label  string
	Reason string
	Color  string // hex, used by the chart line and the report header
}

// BreadthResult is the output of the breadth engine.
type BreadthResult struct {
	Signal   Signal
	Current  float64
	Previous float64
	Delta    float64
	Series   []BreadthPoint
	Chart    []byte // PNG; empty when no chart was produced
}

// Available reports whether the result was computed from at least one valid point.
func (r *BreadthResult) Available() bool {
	return len(r.Series) > 0
}
