package kpi

import "fmt"

// Dataset holds the four loaded tables. It is never mutated after load, so
// handlers share it without locking.
type Dataset struct {
	Airlines []AirlineKPI
	Routes   []RouteKPI
	Airports []AirportKPI
	Trends   []MonthlyTrend
}

// Len returns the row count of table t
func (d *Dataset) Len(t Table) int {
	switch t {
	case AirlinePerformance:
		return len(d.Airlines)
	case RoutePerformance:
		return len(d.Routes)
	case AirportPerformance:
		return len(d.Airports)
	case MonthlyTrends:
		return len(d.Trends)
	}
	return 0
}

// Rows returns table t as a header plus value rows, for tabular downloads
func (d *Dataset) Rows(t Table) ([]string, [][]any, error) {
	switch t {
	case AirlinePerformance:
		return t.Columns(), values(d.Airlines), nil
	case RoutePerformance:
		return t.Columns(), values(d.Routes), nil
	case AirportPerformance:
		return t.Columns(), values(d.Airports), nil
	case MonthlyTrends:
		return t.Columns(), values(d.Trends), nil
	}
	return nil, nil, fmt.Errorf("unknown table %q", t)
}

func values[T any, P Record[T]](rows []T) [][]any {
	out := make([][]any, len(rows))
	for i := range rows {
		out[i] = P(&rows[i]).Values()
	}
	return out
}
