package notifier

import (
	"encoding/base64"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketScanner/internal/model"
)

func sampleReport() *model.Report {
	return &model.Report{
		RunID:       "run-1",
		GeneratedAt: time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC),
		Signal:      model.Signal{Label: "STRONG BUY", Reason: "Consistent buying.", Color: "#00ff00"},
		Ratio:       0.123456,
		Delta:       0.01,
		Chart:       []byte("\x89PNG fake"),
		Candidates: []model.Candidate{
			{Symbol: "TCS", Sector: "IT", Price: 3912.456, RSScore: 4.5678, Signal: "BUY NOW", StopLoss: 3912.456 * 0.95},
			{Symbol: "ONGC", Sector: "Other", Price: 250, RSScore: -1.234, Signal: "BUY NOW", StopLoss: 237.5},
		},
	}
}

func TestRenderHTML_OneRowPerCandidateInOrder(t *testing.T) {
	out, err := RenderHTML(sampleReport())
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, `<tr class="candidate">`))
	assert.Less(t, strings.Index(out, "<td>TCS</td>"), strings.Index(out, "<td>ONGC</td>"))
	assert.Contains(t, out, "<td>3912.46</td>")
	assert.Contains(t, out, "<td>4.57</td>")
	assert.Contains(t, out, "<td>3716.83</td>")
	assert.Contains(t, out, "<td>-1.23</td>")
	assert.Contains(t, out, "Current MBR: 0.1235 | Change: +0.0100")
	assert.Contains(t, out, "MARKET BREADTH:")
	assert.Contains(t, out, "STRONG BUY")
}

func TestRenderHTML_EmbedsChart(t *testing.T) {
	r := sampleReport()
	out, err := RenderHTML(r)
	require.NoError(t, err)
	assert.Contains(t, out, `src="data:image/png;base64,`+base64.StdEncoding.EncodeToString(r.Chart)+`"`)
	assert.NotContains(t, out, "chart unavailable")
}

func TestRenderHTML_NoChartNoCandidates(t *testing.T) {
	r := &model.Report{Signal: model.Signal{Label: "N/A", Reason: "Data Error", Color: "#cccccc"}}
	out, err := RenderHTML(r)
	require.NoError(t, err)
	assert.NotContains(t, out, "<img")
	assert.Contains(t, out, "Breadth chart unavailable.")
	assert.Equal(t, 0, strings.Count(out, `<tr class="candidate">`))
	assert.Contains(t, out, "Current MBR: 0.0000 | Change: +0.0000")
}

func TestRenderHTML_EscapesText(t *testing.T) {
	r := sampleReport()
	r.Candidates[0].Sector = "<script>alert(1)</script>"
	out, err := RenderHTML(r)
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestFixedAndSigned(t *testing.T) {
	assert.Equal(t, "n/a", Fixed(math.NaN(), 2))
	assert.Equal(t, "n/a", Signed(math.Inf(1), 2))

	tests := []struct {
		v      float64
		places int32
		fixed  string
		signed string
	}{
		{0, 4, "0.0000", "+0.0000"},
		{0.1, 4, "0.1000", "+0.1000"},
		{-0.00456, 4, "-0.0046", "-0.0046"},
		{95, 2, "95.00", "+95.00"},
		{1234.5678, 2, "1234.57", "+1234.57"},
		// stored below the half: 2.67499999... and 1.00499999...
		{2.675, 2, "2.67", "+2.67"},
		{1.005, 2, "1.00", "+1.00"},
		// exact binary ties go to even
		{0.125, 2, "0.12", "+0.12"},
		{0.375, 2, "0.38", "+0.38"},
		{-0.125, 2, "-0.12", "-0.12"},
		// negative values that round to zero keep the sign
		{-1e-5, 4, "-0.0000", "-0.0000"},
		{math.Copysign(0, -1), 2, "-0.00", "-0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.fixed, Fixed(tt.v, tt.places), "Fixed(%v, %d)", tt.v, tt.places)
		assert.Equal(t, tt.signed, Signed(tt.v, tt.places), "Signed(%v, %d)", tt.v, tt.places)
	}
}

func TestSubjectAndText(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, "Market Dashboard - STRONG BUY", Subject(r))
	text := FormatText(r)
	assert.Contains(t, text, "MARKET BREADTH: STRONG BUY")
	assert.Contains(t, text, "TCS")
	assert.Contains(t, text, "SL 3716.83")
}
