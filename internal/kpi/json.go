package kpi

import (
	"encoding/json"
	"math"
)

// NullableFloat converts NaN, the in-memory form of a NULL delay, to nil so
// it encodes as JSON null.
func NullableFloat(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func (a AirlineKPI) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		AirlineID           int64    `json:"airline_id"`
		AirlineCode         string   `json:"airline_code"`
		TotalFlights        int64    `json:"total_flights"`
		WeightedAvgArrDelay *float64 `json:"weighted_avg_arr_delay"`
	}{a.AirlineID, a.AirlineCode, a.TotalFlights, NullableFloat(a.WeightedAvgArrDelay)})
}

func (a AirportKPI) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Airport             string   `json:"airport"`
		TotalFlights        int64    `json:"total_flights"`
		WeightedAvgArrDelay *float64 `json:"weighted_avg_arr_delay"`
	}{a.Airport, a.TotalFlights, NullableFloat(a.WeightedAvgArrDelay)})
}

func (m MonthlyTrend) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		AirlineID   int64    `json:"airline_id"`
		Year        int64    `json:"year"`
		Month       int64    `json:"month"`
		AvgArrDelay *float64 `json:"avg_arr_delay"`
	}{m.AirlineID, m.Year, m.Month, NullableFloat(m.AvgArrDelay)})
}
