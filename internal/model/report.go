package model

import "time"

// Report is everything the renderer needs for one run. Nothing in it outlives the run.
type Report struct {
	RunID       string
	GeneratedAt time.Time
	Signal      Signal
	Ratio       float64
	Delta       float64
	Chart       []byte
	Candidates  []Candidate
}
