package kpi

import (
	"database/sql"
	"math"
)

// AirlineKPI is one row of kpi_airline_performance
type AirlineKPI struct {
	AirlineID           int64   `parquet:"airline_id" json:"airline_id"`
	AirlineCode         string  `parquet:"airline_code" json:"airline_code"`
	TotalFlights        int64   `parquet:"total_flights" json:"total_flights"`
	WeightedAvgArrDelay float64 `parquet:"weighted_avg_arr_delay" json:"weighted_avg_arr_delay"`
}

// RouteKPI is one row of kpi_route_performance
type RouteKPI struct {
	Origin       string `parquet:"origin" json:"origin"`
	Destination  string `parquet:"destination" json:"destination"`
	TotalFlights int64  `parquet:"total_flights" json:"total_flights"`
}

// Route is the display label of the route. It is never stored.
func (r RouteKPI) Route() string {
	return r.Origin + " → " + r.Destination
}

// AirportKPI is one row of kpi_airport_performance
type AirportKPI struct {
	Airport             string  `parquet:"airport" json:"airport"`
	TotalFlights        int64   `parquet:"total_flights" json:"total_flights"`
	WeightedAvgArrDelay float64 `parquet:"weighted_avg_arr_delay" json:"weighted_avg_arr_delay"`
}

// MonthlyTrend is one row of kpi_monthly_trends
type MonthlyTrend struct {
	AirlineID   int64   `parquet:"airline_id" json:"airline_id"`
	Year        int64   `parquet:"year" json:"year"`
	Month       int64   `parquet:"month" json:"month"`
	AvgArrDelay float64 `parquet:"avg_arr_delay" json:"avg_arr_delay"`
}

// Record is satisfied by pointers to the row types. ScanTargets maps column
// names to sql.Scanner destinations bound to the row's fields.
type Record[T any] interface {
	*T
	ScanTargets() map[string]any
	Values() []any
}

func (a *AirlineKPI) ScanTargets() map[string]any {
	return map[string]any{
		"airline_id":             intColumn{&a.AirlineID},
		"airline_code":           stringColumn{&a.AirlineCode},
		"total_flights":          intColumn{&a.TotalFlights},
		"weighted_avg_arr_delay": floatColumn{&a.WeightedAvgArrDelay},
	}
}

func (r *RouteKPI) ScanTargets() map[string]any {
	return map[string]any{
		"origin":        stringColumn{&r.Origin},
		"destination":   stringColumn{&r.Destination},
		"total_flights": intColumn{&r.TotalFlights},
	}
}

func (a *AirportKPI) ScanTargets() map[string]any {
	return map[string]any{
		"airport":                stringColumn{&a.Airport},
		"total_flights":          intColumn{&a.TotalFlights},
		"weighted_avg_arr_delay": floatColumn{&a.WeightedAvgArrDelay},
	}
}

func (m *MonthlyTrend) ScanTargets() map[string]any {
	return map[string]any{
		"airline_id":    intColumn{&m.AirlineID},
		"year":          intColumn{&m.Year},
		"month":         intColumn{&m.Month},
		"avg_arr_delay": floatColumn{&m.AvgArrDelay},
	}
}

// Values returns the row in Table.Columns order
func (a *AirlineKPI) Values() []any {
	return []any{a.AirlineID, a.AirlineCode, a.TotalFlights, a.WeightedAvgArrDelay}
}

func (r *RouteKPI) Values() []any {
	return []any{r.Origin, r.Destination, r.TotalFlights}
}

func (a *AirportKPI) Values() []any {
	return []any{a.Airport, a.TotalFlights, a.WeightedAvgArrDelay}
}

func (m *MonthlyTrend) Values() []any {
	return []any{m.AirlineID, m.Year, m.Month, m.AvgArrDelay}
}

// NULL handling: integers and strings fall back to their zero value, floats
// to NaN so an absent delay is distinguishable from a zero delay.

type intColumn struct{ dst *int64 }

func (c intColumn) Scan(src any) error {
	var n sql.NullInt64
	if err := n.Scan(src); err != nil {
		// SUM() over integers arrives as DECIMAL text on MySQL
		var f sql.NullFloat64
		if ferr := f.Scan(src); ferr != nil {
			return err
		}
		*c.dst = int64(math.Round(f.Float64))
		return nil
	}
	*c.dst = n.Int64
	return nil
}

type floatColumn struct{ dst *float64 }

func (c floatColumn) Scan(src any) error {
	var n sql.NullFloat64
	if err := n.Scan(src); err != nil {
		return err
	}
	if !n.Valid {
		*c.dst = math.NaN()
		return nil
	}
	*c.dst = n.Float64
	return nil
}

type stringColumn struct{ dst *string }

func (c stringColumn) Scan(src any) error {
	var n sql.NullString
	if err := n.Scan(src); err != nil {
		return err
	}
	*c.dst = n.String
	return nil
}
