package charts

import (
	"io"

	"github.com/wcharczuk/go-chart/v2"
)

// horizontalBars draws one bar per row, first bar at the bottom, with the
// category label left of the canvas and the value at the end of the bar.
type horizontalBars struct {
	bars  []Bar
	style chart.Style
}

func (h horizontalBars) GetName() string           { return "bars" }
func (h horizontalBars) GetStyle() chart.Style     { return h.style }
func (h horizontalBars) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }

func (h horizontalBars) Validate() error {
	if len(h.bars) == 0 {
		return ErrNoData
	}
	return nil
}

func (h horizontalBars) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	style := h.style.InheritFrom(defaults)
	textStyle := chart.Style{
		Font:      style.Font,
		FontSize:  style.GetFontSize(chart.DefaultFontSize),
		FontColor: chart.ColorBlack,
	}

	for i, b := range h.bars {
		// each category occupies the band [i, i+1] of the y range
		top := canvasBox.Bottom - yrange.Translate(float64(i)+0.85)
		bottom := canvasBox.Bottom - yrange.Translate(float64(i)+0.15)
		left := canvasBox.Left + xrange.Translate(0)
		right := canvasBox.Left + xrange.Translate(b.Value)

		chart.Draw.Box(r, chart.Box{Top: top, Left: left, Right: right, Bottom: bottom}, style)

		middle := (top + bottom) / 2
		textStyle.WriteTextOptionsToRenderer(r)

		labelBox := r.MeasureText(b.Label)
		chart.Draw.Text(r, b.Label, canvasBox.Left-labelBox.Width()-8, middle+labelBox.Height()/2, textStyle)

		value := formatValue(b.Value)
		valueBox := r.MeasureText(value)
		chart.Draw.Text(r, value, right+4, middle+valueBox.Height()/2, textStyle)
	}
}

// HorizontalBarChart draws bars bottom-up in the given order, so rows sorted
// ascending put the largest bar on top.
func HorizontalBarChart(w io.Writer, title string, bars []Bar, opts Options) error {
	bars = finiteBars(bars)
	if len(bars) == 0 {
		return ErrNoData
	}

	raw := make([]float64, len(bars))
	for i, b := range bars {
		raw[i] = b.Value
	}
	xRange := valueRange(raw)
	// room for the value labels past the longest bar
	xRange.Max += (xRange.Max - xRange.Min) * 0.1

	width, height := opts.size()
	ch := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: labelWidth(bars), Right: 24, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Range:          xRange,
			ValueFormatter: formatValue,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{Hidden: true},
			Range: &chart.ContinuousRange{Min: 0, Max: float64(len(bars))},
		},
		Series: []chart.Series{
			horizontalBars{
				bars:  bars,
				style: chart.Style{FillColor: barColor, StrokeColor: barColor, StrokeWidth: 1},
			},
		},
	}

	return ch.Render(chart.SVG, w)
}

// labelWidth estimates the left padding needed for the longest label
func labelWidth(bars []Bar) int {
	longest := 0
	for _, b := range bars {
		longest = max(longest, len([]rune(b.Label)))
	}
	return 24 + longest*8
}
