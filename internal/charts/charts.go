package charts

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when a chart has nothing to draw
var ErrNoData = errors.New("no data to chart")

const (
	DefaultWidth  = 960
	DefaultHeight = 480

	// ContentType is the media type of every rendered chart
	ContentType = "image/svg+xml"
)

// Bar is one labelled value
type Bar struct {
	Label string
	Value float64
}

// Series is one line of a line chart
type Series struct {
	Name string
	X    []float64
	Y    []float64
}

// Options sizes a chart; zero fields take the defaults
type Options struct {
	Width  int
	Height int
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

var barColor = drawing.ColorFromHex("1f77b4")

// valueRange returns an axis range covering zero and every value, padded so
// bars never touch the frame and the span is never zero.
func valueRange(values []float64) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.1
	if lo < 0 {
		lo -= pad
	}
	return &chart.ContinuousRange{Min: lo, Max: hi + pad}
}

func finiteBars(bars []Bar) []Bar {
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if !math.IsNaN(b.Value) && !math.IsInf(b.Value, 0) {
			out = append(out, b)
		}
	}
	return out
}

// formatValue renders axis and bar labels: integers get thousands
// separators, fractions keep two decimals.
func formatValue(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return chart.FloatValueFormatter(v)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return humanize.Comma(int64(f))
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// BarChart draws vertical bars in the given order. The unit goes into the
// title: go-chart's SVG renderer leaks the rotation of a y-axis name onto
// the title text.
func BarChart(w io.Writer, title, yLabel string, bars []Bar, opts Options) error {
	bars = finiteBars(bars)
	if len(bars) == 0 {
		return ErrNoData
	}

	width, height := opts.size()
	values := make([]chart.Value, len(bars))
	raw := make([]float64, len(bars))
	for i, b := range bars {
		values[i] = chart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor, StrokeWidth: 1},
		}
		raw[i] = b.Value
	}

	barWidth := max(4, min(50, (width-120)/(2*len(bars))))

	if yLabel != "" {
		title = fmt.Sprintf("%s (%s)", title, yLabel)
	}

	bc := chart.BarChart{
		Title:  title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		BarWidth:     barWidth,
		BarSpacing:   barWidth,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			Range:          valueRange(raw),
			ValueFormatter: formatValue,
		},
		Bars: values,
	}

	return bc.Render(chart.SVG, w)
}

// LineChart draws one line per series with a legend. Points with a NaN y
// are dropped.
func LineChart(w io.Writer, title, xLabel, yLabel string, series []Series, opts Options) error {
	var (
		all []chart.Series
		ys  []float64
	)
	xMin, xMax := math.Inf(1), math.Inf(-1)

	for _, s := range series {
		cs := chart.ContinuousSeries{
			Name:  s.Name,
			Style: chart.Style{StrokeWidth: 2, DotWidth: 3},
		}
		for i := range s.X {
			if i >= len(s.Y) || math.IsNaN(s.Y[i]) || math.IsNaN(s.X[i]) {
				continue
			}
			cs.XValues = append(cs.XValues, s.X[i])
			cs.YValues = append(cs.YValues, s.Y[i])
			ys = append(ys, s.Y[i])
			xMin = math.Min(xMin, s.X[i])
			xMax = math.Max(xMax, s.X[i])
		}
		if len(cs.XValues) > 0 {
			all = append(all, cs)
		}
	}
	if len(all) == 0 {
		return ErrNoData
	}
	if xMax == xMin {
		xMin, xMax = xMin-1, xMax+1
	}

	var xTicks []chart.Tick
	if xMax-xMin <= 24 {
		for x := math.Ceil(xMin); x <= xMax; x++ {
			xTicks = append(xTicks, chart.Tick{Value: x, Label: strconv.Itoa(int(x))})
		}
	}

	width, height := opts.size()
	ch := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:  xLabel,
			Range: &chart.ContinuousRange{Min: xMin, Max: xMax},
			Ticks: xTicks,
		},
		YAxis: chart.YAxis{
			Name:           yLabel,
			Range:          valueRange(ys),
			ValueFormatter: formatValue,
		},
		Series: all,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return ch.Render(chart.SVG, w)
}
