package charts

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertSVG(t *testing.T, buf *bytes.Buffer) string {
	t.Helper()
	out := buf.String()
	require.True(t, strings.HasPrefix(strings.TrimSpace(out), "<svg"), "not an SVG document: %.40q", out)
	assert.Contains(t, out, "</svg>")
	return out
}

func TestBarChart(t *testing.T) {
	tests := []struct {
		name string
		bars []Bar
	}{
		{name: "several bars", bars: []Bar{{"WN", 3_400_000}, {"DL", 2_500_000}, {"AA", 2_100_000}}},
		{name: "single bar", bars: []Bar{{"WN", 3}}},
		{name: "equal values", bars: []Bar{{"A", 5}, {"B", 5}}},
		{name: "all zero", bars: []Bar{{"A", 0}, {"B", 0}}},
		{name: "negative delay", bars: []Bar{{"A", -3.5}, {"B", 4.25}}},
		{name: "twenty bars", bars: manyBars(20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, BarChart(&buf, "Top Airlines by Total Flights", "", tt.bars, Options{}))

			out := assertSVG(t, &buf)
			assert.Contains(t, out, "Top Airlines by Total Flights")
			assert.Contains(t, out, tt.bars[0].Label)
		})
	}
}

func TestBarChart_SkipsNaN(t *testing.T) {
	var buf bytes.Buffer
	err := BarChart(&buf, "Delay", "Minutes", []Bar{{"GOOD", 3}, {"NULL", math.NaN()}}, Options{})
	require.NoError(t, err)

	out := assertSVG(t, &buf)
	assert.Contains(t, out, "GOOD")
	assert.NotContains(t, out, "NULL")
}

func TestBarChart_NoData(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, BarChart(&buf, "t", "y", nil, Options{}), ErrNoData)
	assert.ErrorIs(t, BarChart(&buf, "t", "y", []Bar{{"x", math.NaN()}}, Options{}), ErrNoData)
	assert.Zero(t, buf.Len())
}

func TestBarChart_Size(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, BarChart(&buf, "t", "y", []Bar{{"a", 1}}, Options{Width: 400, Height: 300}))

	out := assertSVG(t, &buf)
	assert.Contains(t, out, `viewBox="0 0 400 300"`)
}

// titleElement returns the <text> element whose content is title
func titleElement(t *testing.T, out, title string) string {
	t.Helper()
	end := strings.Index(out, ">"+title+"</text>")
	require.GreaterOrEqual(t, end, 0, "title %q not rendered", title)
	start := strings.LastIndex(out[:end], "<text")
	require.GreaterOrEqual(t, start, 0)
	return out[start : end+1]
}

func TestChartTitlesAreUpright(t *testing.T) {
	bars := []Bar{{"WN", 3_400_000}, {"DL", 2_500_000}}

	var buf bytes.Buffer
	require.NoError(t, BarChart(&buf, "Top Airlines by Total Flights", "flights", bars, Options{}))
	assert.NotContains(t, titleElement(t, buf.String(), "Top Airlines by Total Flights (flights)"), "rotate(")

	buf.Reset()
	require.NoError(t, HorizontalBarChart(&buf, "Top Routes", bars, Options{}))
	assert.NotContains(t, titleElement(t, buf.String(), "Top Routes"), "rotate(")

	buf.Reset()
	series := []Series{{Name: "2023", X: []float64{1, 2}, Y: []float64{3, 4}}}
	require.NoError(t, LineChart(&buf, "Monthly Delay", "Month", "Delay", series, Options{}))
	assert.NotContains(t, titleElement(t, buf.String(), "Monthly Delay"), "rotate(")
}

func TestHorizontalBarChart(t *testing.T) {
	bars := []Bar{
		{"ATL → LGA", 9000},
		{"JFK → LAX", 11000},
		{"LAX → SFO", 12000},
	}

	var buf bytes.Buffer
	require.NoError(t, HorizontalBarChart(&buf, "Top 15 Busiest Airline Routes", bars, Options{}))

	out := assertSVG(t, &buf)
	assert.Contains(t, out, "Top 15 Busiest Airline Routes")
	assert.Contains(t, out, "ATL")
	assert.Contains(t, out, "SFO")
	// value labels at the end of each bar
	assert.Contains(t, out, "12,000")
	assert.Contains(t, out, "9,000")
}

func TestHorizontalBarChart_Edges(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HorizontalBarChart(&buf, "one", []Bar{{"A → B", 1}}, Options{}))
	assertSVG(t, &buf)

	buf.Reset()
	require.NoError(t, HorizontalBarChart(&buf, "zero", []Bar{{"A → B", 0}}, Options{}))
	assertSVG(t, &buf)

	buf.Reset()
	assert.ErrorIs(t, HorizontalBarChart(&buf, "none", nil, Options{}), ErrNoData)
}

func TestLineChart(t *testing.T) {
	series := []Series{
		{Name: "2018", X: []float64{1, 2, 3}, Y: []float64{4, 3.5, 5}},
		{Name: "2019", X: []float64{1, 2}, Y: []float64{1.5, 2}},
	}

	var buf bytes.Buffer
	require.NoError(t, LineChart(&buf, "Monthly Arrival Delay Trend", "Month", "Minutes", series, Options{}))

	out := assertSVG(t, &buf)
	assert.Contains(t, out, "Monthly Arrival Delay Trend")
	// legend entries
	assert.Contains(t, out, "2018")
	assert.Contains(t, out, "2019")
}

func TestLineChart_Edges(t *testing.T) {
	t.Run("single point", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, LineChart(&buf, "t", "x", "y", []Series{{Name: "2020", X: []float64{6}, Y: []float64{2}}}, Options{}))
		assertSVG(t, &buf)
	})

	t.Run("NaN points are dropped", func(t *testing.T) {
		var buf bytes.Buffer
		series := []Series{
			{Name: "gaps", X: []float64{1, 2, 3}, Y: []float64{1, math.NaN(), 3}},
			{Name: "empty", X: []float64{1}, Y: []float64{math.NaN()}},
		}
		require.NoError(t, LineChart(&buf, "t", "x", "y", series, Options{}))
		out := assertSVG(t, &buf)
		assert.NotContains(t, out, "NaN")
	})

	t.Run("no data", func(t *testing.T) {
		var buf bytes.Buffer
		assert.ErrorIs(t, LineChart(&buf, "t", "x", "y", nil, Options{}), ErrNoData)
		assert.ErrorIs(t, LineChart(&buf, "t", "x", "y", []Series{{Name: "a"}}, Options{}), ErrNoData)
	})
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "1,000,000", formatValue(1_000_000.0))
	assert.Equal(t, "0", formatValue(0.0))
	assert.Equal(t, "-3", formatValue(-3.0))
	assert.Equal(t, "3.14", formatValue(3.14159))
}

func TestValueRange(t *testing.T) {
	r := valueRange([]float64{10, 20})
	assert.Equal(t, 0.0, r.Min)
	assert.InDelta(t, 22.0, r.Max, 1e-9)

	r = valueRange([]float64{0})
	assert.Greater(t, r.Max, r.Min)

	r = valueRange([]float64{-5, 5})
	assert.Less(t, r.Min, -5.0)
	assert.Greater(t, r.Max, 5.0)
}

func manyBars(n int) []Bar {
	bars := make([]Bar, n)
	for i := range bars {
		bars[i] = Bar{Label: string(rune('A'+i%26)) + "X", Value: float64(n - i)}
	}
	return bars
}
