package views

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"airlinekpi/internal/kpi"
)

// ErrAirlineNotFound is returned when no airline row carries the code
var ErrAirlineNotFound = errors.New("airline not found")

// Point is one month of a yearly series
type Point struct {
	Month int64   `json:"month"`
	Delay float64 `json:"avg_arr_delay"`
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Month int64    `json:"month"`
		Delay *float64 `json:"avg_arr_delay"`
	}{p.Month, kpi.NullableFloat(p.Delay)})
}

// YearSeries is one line of the trend chart
type YearSeries struct {
	Year   int64   `json:"year"`
	Points []Point `json:"points"`
}

// TrendResult is view D
type TrendResult struct {
	Codes     []string           `json:"codes"`
	Code      string             `json:"airline_code"`
	AirlineID int64              `json:"airline_id"`
	Rows      []kpi.MonthlyTrend `json:"rows"`
	Series    []YearSeries       `json:"series"`
}

// AirlineCodes returns the sorted distinct non-empty airline codes
func AirlineCodes(airlines []kpi.AirlineKPI) []string {
	codes := make([]string, 0, len(airlines))
	for _, a := range airlines {
		if a.AirlineCode != "" {
			codes = append(codes, a.AirlineCode)
		}
	}
	slices.Sort(codes)
	return slices.Compact(codes)
}

// TrendView resolves code to the airline_id of the first airline row with
// that code and groups its monthly trends into one series per year. An
// empty code selects the first code in sorted order.
func TrendView(airlines []kpi.AirlineKPI, trends []kpi.MonthlyTrend, code string) (*TrendResult, error) {
	result := &TrendResult{
		Codes:  AirlineCodes(airlines),
		Rows:   []kpi.MonthlyTrend{},
		Series: []YearSeries{},
	}

	code = strings.TrimSpace(code)
	if code == "" {
		if len(result.Codes) == 0 {
			return result, nil
		}
		code = result.Codes[0]
	}

	idx := slices.IndexFunc(airlines, func(a kpi.AirlineKPI) bool {
		return a.AirlineCode == code
	})
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrAirlineNotFound, code)
	}

	result.Code = code
	result.AirlineID = airlines[idx].AirlineID

	byYear := make(map[int64][]Point)
	for _, t := range trends {
		if t.AirlineID != result.AirlineID {
			continue
		}
		result.Rows = append(result.Rows, t)
		byYear[t.Year] = append(byYear[t.Year], Point{Month: t.Month, Delay: t.AvgArrDelay})
	}

	for year, points := range byYear {
		slices.SortStableFunc(points, func(a, b Point) int {
			return cmp.Compare(a.Month, b.Month)
		})
		result.Series = append(result.Series, YearSeries{Year: year, Points: points})
	}
	slices.SortFunc(result.Series, func(a, b YearSeries) int {
		return cmp.Compare(a.Year, b.Year)
	})

	return result, nil
}
