package views

import (
	"cmp"

	"airlinekpi/internal/kpi"
)

// TopAirports caps both ranked airport lists
const TopAirports = 20

// AirportResult is view C
type AirportResult struct {
	Busiest    []kpi.AirportKPI `json:"busiest"`
	WorstDelay []kpi.AirportKPI `json:"worst_delay"`
	All        []kpi.AirportKPI `json:"all"`
}

// AirportView ranks airports by volume and, independently, by delay
func AirportView(rows []kpi.AirportKPI) *AirportResult {
	busiest := sortedCopy(rows, func(a, b kpi.AirportKPI) int {
		return cmp.Compare(b.TotalFlights, a.TotalFlights)
	})
	worst := sortedCopy(rows, func(a, b kpi.AirportKPI) int {
		return cmpDesc(a.WeightedAvgArrDelay, b.WeightedAvgArrDelay)
	})

	all := rows
	if all == nil {
		all = []kpi.AirportKPI{}
	}

	return &AirportResult{
		Busiest:    head(busiest, TopAirports),
		WorstDelay: head(worst, TopAirports),
		All:        all,
	}
}
