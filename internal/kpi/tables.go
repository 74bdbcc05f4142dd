package kpi

import "github.com/parquet-go/parquet-go"

// Table names a KPI table. The name doubles as the SQL table name and the
// Parquet file stem.
type Table string

const (
	AirlinePerformance Table = "kpi_airline_performance"
	RoutePerformance   Table = "kpi_route_performance"
	AirportPerformance Table = "kpi_airport_performance"
	MonthlyTrends      Table = "kpi_monthly_trends"
)

// FileExt is appended to the table name to form the Parquet file name
const FileExt = ".parquet"

var tables = []Table{
	AirlinePerformance,
	RoutePerformance,
	AirportPerformance,
	MonthlyTrends,
}

// Tables returns the registry in export order
func Tables() []Table {
	out := make([]Table, len(tables))
	copy(out, tables)
	return out
}

// ParseTable looks a name up in the registry
func ParseTable(name string) (Table, bool) {
	for _, t := range tables {
		if string(t) == name {
			return t, true
		}
	}
	return "", false
}

func (t Table) String() string { return string(t) }

// FileName returns "<table>.parquet"
func (t Table) FileName() string { return string(t) + FileExt }

// Schema returns the Parquet schema of the table's row type
func (t Table) Schema() *parquet.Schema {
	switch t {
	case AirlinePerformance:
		return parquet.SchemaOf(AirlineKPI{})
	case RoutePerformance:
		return parquet.SchemaOf(RouteKPI{})
	case AirportPerformance:
		return parquet.SchemaOf(AirportKPI{})
	case MonthlyTrends:
		return parquet.SchemaOf(MonthlyTrend{})
	}
	return nil
}

// Columns returns the column names of the table in file order
func (t Table) Columns() []string {
	switch t {
	case AirlinePerformance:
		return []string{"airline_id", "airline_code", "total_flights", "weighted_avg_arr_delay"}
	case RoutePerformance:
		return []string{"origin", "destination", "total_flights"}
	case AirportPerformance:
		return []string{"airport", "total_flights", "weighted_avg_arr_delay"}
	case MonthlyTrends:
		return []string{"airline_id", "year", "month", "avg_arr_delay"}
	}
	return nil
}
