package views

import (
	"cmp"

	"airlinekpi/internal/kpi"
)

// TopRoutes is the number of routes view B shows
const TopRoutes = 15

// RouteRow is a route with its display label
type RouteRow struct {
	kpi.RouteKPI
	Label string `json:"route"`
}

// RouteResult is view B
type RouteResult struct {
	// Top is the busiest routes, descending by flights
	Top []RouteRow `json:"top"`
	// ChartOrder holds the same rows ascending, bottom-up for the bar chart
	ChartOrder []RouteRow `json:"chart_order"`
}

// RouteView selects the min(TopRoutes, n) busiest routes
func RouteView(rows []kpi.RouteKPI) *RouteResult {
	sorted := sortedCopy(rows, func(a, b kpi.RouteKPI) int {
		return cmp.Compare(b.TotalFlights, a.TotalFlights)
	})

	top := make([]RouteRow, 0, min(len(sorted), TopRoutes))
	for _, r := range head(sorted, TopRoutes) {
		top = append(top, RouteRow{RouteKPI: r, Label: r.Route()})
	}

	return &RouteResult{
		Top: top,
		ChartOrder: sortedCopy(top, func(a, b RouteRow) int {
			return cmp.Compare(a.TotalFlights, b.TotalFlights)
		}),
	}
}
