package notifier

import (
	"fmt"
	"io"

	"MarketScanner/internal/model"
)

// Palette holds the escape sequences used by the console summary. The zero
// value prints without colour.
type Palette struct {
	Green string
	Red   string
	Gold  string
	White string
	Bold  string
	Reset string
}

// ANSIPalette returns the terminal colour palette.
func ANSIPalette() Palette {
	return Palette{
		Green: "\033[92m",
		Red:   "\033[91m",
		Gold:  "\033[93m",
		White: "\033[97m",
		Bold:  "\033[1m",
		Reset: "\033[0m",
	}
}

// PlainPalette returns a palette that emits no escape sequences.
func PlainPalette() Palette { return Palette{} }

func (p Palette) signalColor(s model.Signal) string {
	switch s.Color {
	case "#00ff00":
		return p.Green
	case "#ff0000":
		return p.Red
	case "#ffff00":
		return p.Gold
	default:
		return p.White
	}
}

// WriteSummary prints the run summary and the candidate table to w.
func WriteSummary(w io.Writer, p Palette, r *model.Report) error {
	lines := []string{
		fmt.Sprintf("%s%s>>> MARKET BREADTH: %s%s%s", p.Bold, p.Gold, p.signalColor(r.Signal), r.Signal.Label, p.Reset),
		fmt.Sprintf("    Current MBR: %s | Change: %s", Fixed(r.Ratio, 4), Signed(r.Delta, 4)),
		fmt.Sprintf("%s>>> BULLISH WATCHLIST (%d)%s", p.Gold, len(r.Candidates), p.Reset),
	}
	for _, c := range r.Candidates {
		lines = append(lines, fmt.Sprintf("    %s%-12s%s %-10s %10s  RS %7s  %s%s%s  SL %10s",
			p.Bold, c.Symbol, p.Reset, c.Sector, Fixed(c.Price, 2), Fixed(c.RSScore, 2),
			p.Green, c.Signal, p.Reset, Fixed(c.StopLoss, 2)))
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
