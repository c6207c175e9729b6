package scanner

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"MarketScanner/internal/calculator"
	"MarketScanner/internal/model"
)

const (
	// MinBars is the shortest history a symbol needs to be evaluated.
	MinBars = 25
	// RSLookback is the relative-strength comparison distance in trading days.
	RSLookback = 20
	// StopLossFactor places the stop 5% under the latest close.
	StopLossFactor = 0.95
	// BuySignal is the label given to every included candidate.
	BuySignal = "BUY NOW"
	// DefaultSector is used for symbols absent from the sector table.
	DefaultSector = "Other"

	momentumScale = 100000
)

var (
	ErrNoData       = errors.New("no price data")
	ErrShortHistory = errors.New("insufficient history")
	ErrMissingField = errors.New("missing bar field")
	ErrBenchmarkGap = errors.New("benchmark unavailable on symbol dates")
	ErrZeroDivisor  = errors.New("zero divisor")
)

// Scanner evaluates symbols for rising momentum proxy and rising volume.
type Scanner struct {
	// Sectors maps display symbols (without Suffix) to sector names.
	Sectors map[string]string
	// Suffix is the provider suffix stripped for display, e.g. ".NS".
	Suffix string
}

// New creates a Scanner.
func New(sectors map[string]string, suffix string) *Scanner {
	return &Scanner{Sectors: sectors, Suffix: suffix}
}

// Scan evaluates every symbol independently and returns one outcome per symbol
// in input order. bars may lack entries for symbols whose retrieval failed.
func (s *Scanner) Scan(symbols []string, bars map[string][]model.OHLCV, benchmark []model.PricePoint) []model.ScanOutcome {
	outcomes := make([]model.ScanOutcome, 0, len(symbols))
	for _, sym := range symbols {
		out := model.ScanOutcome{Symbol: sym}
		b, ok := bars[sym]
		if !ok {
			out.Err = ErrNoData
		} else {
			out.Candidate, out.Err = s.ScanSymbol(sym, b, benchmark)
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// ScanSymbol evaluates one symbol. Bars with a missing field are dropped
// before evaluation; the symbol is skipped when fewer than MinBars remain.
// It returns (nil, nil) when the symbol is valid but not bullish, and a
// non-nil error when it has to be skipped.
func (s *Scanner) ScanSymbol(symbol string, bars []model.OHLCV, benchmark []model.PricePoint) (*model.Candidate, error) {
	if len(bars) < MinBars {
		return nil, fmt.Errorf("%w: %d bars, need %d", ErrShortHistory, len(bars), MinBars)
	}
	if full := completeBars(bars); len(full) < len(bars) {
		if len(full) < MinBars {
			return nil, fmt.Errorf("%w: %d of %d bars complete, need %d",
				ErrMissingField, len(full), len(bars), MinBars)
		}
		bars = full
	}

	rs, err := RSScore(bars, benchmark)
	if err != nil {
		return nil, err
	}

	last, prev := bars[len(bars)-1], bars[len(bars)-2]
	if !(MomentumProxy(last) > MomentumProxy(prev) && last.Volume > prev.Volume) {
		return nil, nil
	}

	display := strings.TrimSuffix(symbol, s.Suffix)
	sector, ok := s.Sectors[display]
	if !ok {
		sector = DefaultSector
	}
	return &model.Candidate{
		Symbol:   display,
		Sector:   sector,
		Price:    last.Close,
		RSScore:  rs,
		Signal:   BuySignal,
		StopLoss: last.Close * StopLossFactor,
	}, nil
}

// RSScore is the percentage change of close/benchmark over the last
// RSLookback bars. The benchmark is forward-filled onto the symbol's dates.
func RSScore(bars []model.OHLCV, benchmark []model.PricePoint) (float64, error) {
	if len(bars) < RSLookback+1 {
		return 0, fmt.Errorf("%w: %d bars, need %d", ErrShortHistory, len(bars), RSLookback+1)
	}
	last := len(bars) - 1
	base := last - RSLookback
	aligned := calculator.ForwardFill(benchmark, []time.Time{bars[base].Time, bars[last].Time})

	for _, v := range aligned {
		if math.IsNaN(v) {
			return 0, ErrBenchmarkGap
		}
		if v == 0 {
			return 0, fmt.Errorf("%w: benchmark close", ErrZeroDivisor)
		}
	}
	rsBase := bars[base].Close / aligned[0]
	rsLast := bars[last].Close / aligned[1]
	if rsBase == 0 {
		return 0, fmt.Errorf("%w: relative strength base", ErrZeroDivisor)
	}
	return (rsLast - rsBase) / rsBase * 100, nil
}

// MomentumProxy is (high-low)/(volume+1) scaled by 1e5. It is not a Money Flow
// Index and is kept in this exact form.
func MomentumProxy(b model.OHLCV) float64 {
	return (b.High - b.Low) / (b.Volume + 1) * momentumScale
}

// Candidates extracts the included candidates, preserving outcome order.
func Candidates(outcomes []model.ScanOutcome) []model.Candidate {
	var out []model.Candidate
	for _, o := range outcomes {
		if o.Included() {
			out = append(out, *o.Candidate)
		}
	}
	return out
}

// completeBars drops bars with any missing field, keeping order.
func completeBars(bars []model.OHLCV) []model.OHLCV {
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		if b.Complete() {
			out = append(out, b)
		}
	}
	return out
}
