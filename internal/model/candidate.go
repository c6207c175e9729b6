package model

// Candidate is a symbol flagged by the scanner as exhibiting rising momentum
// proxy and rising volume.
type Candidate struct {
	Symbol   string
	Sector   string
	Price    float64
	RSScore  float64
	Signal   string
	StopLoss float64
}

// ScanOutcome records what the scanner decided for one input symbol.
// Exactly one of three states holds: Candidate set (included), Err set
// (skipped), or neither (evaluated, not bullish).
type ScanOutcome struct {
	Symbol    string
	Candidate *Candidate
	Err       error
}

func (o ScanOutcome) Included() bool { return o.Candidate != nil }

func (o ScanOutcome) Skipped() bool { return o.Err != nil }
