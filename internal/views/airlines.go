package views

import (
	"cmp"
	"errors"

	"airlinekpi/internal/kpi"
)

// ErrNegativeThreshold is returned for a minimum flight count below zero
var ErrNegativeThreshold = errors.New("minimum flights must not be negative")

const (
	// DefaultMinFlights is the initial slider position
	DefaultMinFlights int64 = 1_000_000
	// SliderStep is the slider increment
	SliderStep int64 = 500_000
)

// Slider describes the minimum-flights widget
type Slider struct {
	Min   int64 `json:"min"`
	Max   int64 `json:"max"`
	Step  int64 `json:"step"`
	Value int64 `json:"value"`
}

// AirlineResult is view A
type AirlineResult struct {
	// MinFlights is the requested threshold; Slider.Value may be clamped
	MinFlights int64  `json:"min_flights"`
	Slider     Slider `json:"slider"`
	// Filtered keeps file order and backs the table
	Filtered []kpi.AirlineKPI `json:"filtered"`
	ByVolume []kpi.AirlineKPI `json:"by_volume"`
	ByDelay  []kpi.AirlineKPI `json:"by_delay"`
}

// NewSlider builds the widget for rows. The value is clamped into
// [0, max(total_flights)], like a slider that cannot move past its ends.
func NewSlider(rows []kpi.AirlineKPI, value int64) Slider {
	var maxFlights int64
	for _, r := range rows {
		maxFlights = max(maxFlights, r.TotalFlights)
	}
	return Slider{
		Min:   0,
		Max:   maxFlights,
		Step:  SliderStep,
		Value: min(max(value, 0), maxFlights),
	}
}

// AirlineView keeps the airlines with at least minFlights flights. Only the
// slider position is clamped; a threshold above the largest airline leaves
// nothing.
func AirlineView(rows []kpi.AirlineKPI, minFlights int64) (*AirlineResult, error) {
	if minFlights < 0 {
		return nil, ErrNegativeThreshold
	}

	slider := NewSlider(rows, minFlights)

	filtered := make([]kpi.AirlineKPI, 0, len(rows))
	for _, r := range rows {
		if r.TotalFlights >= minFlights {
			filtered = append(filtered, r)
		}
	}

	return &AirlineResult{
		MinFlights: minFlights,
		Slider:     slider,
		Filtered:   filtered,
		ByVolume: sortedCopy(filtered, func(a, b kpi.AirlineKPI) int {
			return cmp.Compare(b.TotalFlights, a.TotalFlights)
		}),
		ByDelay: sortedCopy(filtered, func(a, b kpi.AirlineKPI) int {
			return cmpAsc(a.WeightedAvgArrDelay, b.WeightedAvgArrDelay)
		}),
	}, nil
}
