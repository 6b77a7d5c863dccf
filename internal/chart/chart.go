// Package chart renders a room's chart layouts over a normalized frame as PNG images.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/chrissnell/climatewatch/internal/rooms"
	"github.com/chrissnell/climatewatch/internal/table"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when no trace of the layout has at least two points
var ErrNoData = errors.New("not enough data to draw chart")

// Size is the image size in pixels
type Size struct {
	Width  int
	Height int
}

// DefaultSize matches the dashboard's graph area
var DefaultSize = Size{Width: 1200, Height: 600}

// Render draws layout over f and returns the PNG bytes
func Render(layout rooms.ChartLayout, f *table.Frame, title string, size Size) ([]byte, error) {
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultSize
	}

	left, leftLo, leftHi := traces(f, layout.Left, chart.YAxisPrimary)
	right, rightLo, rightHi := traces(f, layout.Right, chart.YAxisSecondary)
	series := append(left, right...)
	if len(series) == 0 {
		return nil, ErrNoData
	}

	ch := chart.Chart{
		Title:      title,
		Width:      size.Width,
		Height:     size.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "Time",
			ValueFormatter: chart.TimeValueFormatterWithFormat("01-02 15:04"),
		},
		YAxis: chart.YAxis{
			Name:  layout.Primary.Name,
			Range: axisRange(layout.Primary, leftLo, leftHi),
		},
		Series: series,
	}
	if len(right) > 0 {
		ch.YAxisSecondary = chart.YAxis{
			Name:  layout.Secondary.Name,
			Range: axisRange(layout.Secondary, rightLo, rightHi),
		}
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render %s chart: %w", layout.ID, err)
	}
	return buf.Bytes(), nil
}

// traces builds a series for each column that has at least two distinct timestamps,
// and reports the value bounds across them
func traces(f *table.Frame, specs []rooms.Trace, axis chart.YAxisType) ([]chart.Series, float64, float64) {
	var series []chart.Series
	lo, hi := math.Inf(1), math.Inf(-1)

	for _, tr := range specs {
		xs, ys, err := f.Series(tr.Column)
		if err != nil || len(xs) < 2 || !xs[len(xs)-1].After(xs[0]) {
			continue
		}
		for _, y := range ys {
			lo = math.Min(lo, y)
			hi = math.Max(hi, y)
		}
		series = append(series, chart.TimeSeries{
			Name:    tr.Label,
			YAxis:   axis,
			XValues: xs,
			YValues: ys,
			Style:   traceStyle(tr),
		})
	}
	return series, lo, hi
}

func traceStyle(tr rooms.Trace) chart.Style {
	color := drawing.ColorFromHex(strings.TrimPrefix(tr.Color, "#"))
	st := chart.Style{
		StrokeColor: color,
		StrokeWidth: 1.5,
	}
	if tr.Dashed {
		st.StrokeDashArray = []float64{5, 3}
	}
	if tr.Filled {
		st.FillColor = color.WithAlpha(48)
	}
	return st
}

// axisRange uses the layout's fixed range when it has one, otherwise the data bounds.
// A flat series is widened so the range is never empty.
func axisRange(a rooms.Axis, lo, hi float64) *chart.ContinuousRange {
	if a.Min != 0 || a.Max != 0 {
		return &chart.ContinuousRange{Min: a.Min, Max: a.Max}
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	if hi-lo < 1e-9 {
		lo, hi = lo-1, hi+1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}
