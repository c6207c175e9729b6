package notifier

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"MarketScanner/internal/model"
)

//go:embed templates/report.html
var reportTemplate string

var reportTmpl = template.Must(template.New("report").Parse(reportTemplate))

type htmlRow struct {
	Symbol   string
	Sector   string
	Price    string
	RS       string
	Signal   string
	StopLoss string
}

type htmlReport struct {
	Signal    model.Signal
	Ratio     string
	Delta     string
	ChartURL  template.URL
	Rows      []htmlRow
	Generated string
	RunID     string
}

// RenderHTML renders the report as a self-contained HTML document with the
// chart inlined as a base64 data URI and one table row per candidate.
func RenderHTML(r *model.Report) (string, error) {
	data := htmlReport{
		Signal:    r.Signal,
		Ratio:     Fixed(r.Ratio, 4),
		Delta:     Signed(r.Delta, 4),
		Generated: r.GeneratedAt.Format("2006-01-02 15:04 MST"),
		RunID:     r.RunID,
	}
	if len(r.Chart) > 0 {
		data.ChartURL = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(r.Chart))
	}
	for _, c := range r.Candidates {
		data.Rows = append(data.Rows, htmlRow{
			Symbol:   c.Symbol,
			Sector:   c.Sector,
			Price:    Fixed(c.Price, 2),
			RS:       Fixed(c.RSScore, 2),
			Signal:   c.Signal,
			StopLoss: Fixed(c.StopLoss, 2),
		})
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

// Subject is the mail subject for a report.
func Subject(r *model.Report) string {
	return "Market Dashboard - " + r.Signal.Label
}

// FormatText renders a plain-text version of the report.
func FormatText(r *model.Report) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("MARKET BREADTH: %s\n", r.Signal.Label))
	if r.Signal.Reason != "" {
		b.WriteString(r.Signal.Reason + "\n")
	}
	b.WriteString(fmt.Sprintf("Current MBR: %s | Change: %s\n\n", Fixed(r.Ratio, 4), Signed(r.Delta, 4)))
	b.WriteString("BULLISH WATCHLIST\n")
	if len(r.Candidates) == 0 {
		b.WriteString("  (no candidates)\n")
	}
	for _, c := range r.Candidates {
		b.WriteString(fmt.Sprintf("  %-12s %-10s price %s  RS %s  %s  SL %s\n",
			c.Symbol, c.Sector, Fixed(c.Price, 2), Fixed(c.RSScore, 2), c.Signal, Fixed(c.StopLoss, 2)))
	}
	return b.String()
}

// exactExp is below the smallest binary exponent of a float64, so
// NewFromFloatWithExponent keeps every digit of the stored value.
const exactExp = -1100

// Fixed formats v with exactly places decimals. Rounding is applied to the
// exact binary value with ties to even, and a negative value that rounds to
// zero keeps its sign, matching printf-style "%.Nf".
func Fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	s := decimal.NewFromFloatWithExponent(v, exactExp).StringFixedBank(places)
	if math.Signbit(v) && !strings.HasPrefix(s, "-") {
		s = "-" + s
	}
	return s
}

// Signed is Fixed with an explicit sign on non-negative values.
func Signed(v float64, places int32) string {
	s := Fixed(v, places)
	if s == "n/a" || strings.HasPrefix(s, "-") {
		return s
	}
	return "+" + s
}
