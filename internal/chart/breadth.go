package chart

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"MarketScanner/internal/model"
)

// ErrTooFewPoints is returned for an empty series.
var ErrTooFewPoints = errors.New("chart: at least one point required")

const (
	width  = 1000
	height = 350
)

var (
	background = drawing.ColorFromHex("1e1e1e")
	axisColor  = drawing.ColorFromHex("aaaaaa")
	zeroColor  = drawing.ColorFromHex("808080")
	upperColor = drawing.ColorFromHex("008000")
	lowerColor = drawing.ColorFromHex("ff0000")
)

// RenderBreadth draws the smoothed breadth ratio as a PNG line chart on a dark
// background, in the signal's colour, with reference lines at 0 and ±threshold.
// A single point is drawn as a dot on a two-day axis.
func RenderBreadth(series []model.BreadthPoint, signal model.Signal, threshold float64) ([]byte, error) {
	if len(series) == 0 {
		return nil, ErrTooFewPoints
	}

	xs := make([]time.Time, len(series))
	ys := make([]float64, len(series))
	for i, p := range series {
		xs[i] = p.Time
		ys[i] = p.Ratio
	}
	lineColor := drawing.ColorFromHex(strings.TrimPrefix(signal.Color, "#"))
	lineStyle := gochart.Style{StrokeColor: lineColor, StrokeWidth: 2}

	span := xs
	if len(xs) == 1 {
		span = []time.Time{xs[0].AddDate(0, 0, -1), xs[0].AddDate(0, 0, 1)}
		lineStyle.DotColor = lineColor
		lineStyle.DotWidth = 4
	}

	graph := gochart.Chart{
		Width:  width,
		Height: height,
		Background: gochart.Style{
			FillColor: background,
			Padding:   gochart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: gochart.Style{FillColor: background},
		XAxis: gochart.XAxis{
			ValueFormatter: gochart.TimeDateValueFormatter,
			Style:          gochart.Style{FontColor: axisColor, StrokeColor: axisColor},
		},
		YAxis: gochart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
			Style: gochart.Style{FontColor: axisColor, StrokeColor: axisColor},
		},
		Series: []gochart.Series{
			referenceLine(span, 0, zeroColor, []float64{6, 4}),
			referenceLine(span, threshold, upperColor, []float64{2, 3}),
			referenceLine(span, -threshold, lowerColor, []float64{2, 3}),
			gochart.TimeSeries{
				Name:    "breadth",
				XValues: xs,
				YValues: ys,
				Style:   lineStyle,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render breadth chart: %w", err)
	}
	return buf.Bytes(), nil
}

func referenceLine(xs []time.Time, level float64, color drawing.Color, dash []float64) gochart.TimeSeries {
	ys := make([]float64, len(xs))
	for i := range ys {
		ys[i] = level
	}
	return gochart.TimeSeries{
		XValues: xs,
		YValues: ys,
		Style: gochart.Style{
			StrokeColor:     color,
			StrokeWidth:     1,
			StrokeDashArray: dash,
		},
	}
}
