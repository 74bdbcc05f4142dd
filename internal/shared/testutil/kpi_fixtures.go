package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"

	"airlinekpi/internal/kpi"
)

// SampleDataset returns a small dataset with ties, a shared airline code and
// two years of trends, enough to exercise every view.
func SampleDataset() *kpi.Dataset {
	return &kpi.Dataset{
		Airlines: []kpi.AirlineKPI{
			{AirlineID: 19790, AirlineCode: "DL", TotalFlights: 2_500_000, WeightedAvgArrDelay: 3.1},
			{AirlineID: 19805, AirlineCode: "AA", TotalFlights: 2_100_000, WeightedAvgArrDelay: 7.4},
			{AirlineID: 19393, AirlineCode: "WN", TotalFlights: 3_400_000, WeightedAvgArrDelay: 5.2},
			{AirlineID: 20409, AirlineCode: "B6", TotalFlights: 700_000, WeightedAvgArrDelay: 12.8},
			{AirlineID: 19977, AirlineCode: "UA", TotalFlights: 1_000_000, WeightedAvgArrDelay: 5.2},
			{AirlineID: 20436, AirlineCode: "F9", TotalFlights: 300_000, WeightedAvgArrDelay: 14.0},
		},
		Routes: []kpi.RouteKPI{
			{Origin: "ATL", Destination: "LGA", TotalFlights: 9000},
			{Origin: "LAX", Destination: "SFO", TotalFlights: 12000},
			{Origin: "ORD", Destination: "LGA", TotalFlights: 9000},
			{Origin: "JFK", Destination: "LAX", TotalFlights: 11000},
		},
		Airports: []kpi.AirportKPI{
			{Airport: "ATL", TotalFlights: 400_000, WeightedAvgArrDelay: 4.0},
			{Airport: "ORD", TotalFlights: 350_000, WeightedAvgArrDelay: 9.5},
			{Airport: "DFW", TotalFlights: 330_000, WeightedAvgArrDelay: 6.1},
			{Airport: "EWR", TotalFlights: 150_000, WeightedAvgArrDelay: 15.3},
		},
		Trends: []kpi.MonthlyTrend{
			{AirlineID: 19790, Year: 2019, Month: 2, AvgArrDelay: 2.0},
			{AirlineID: 19790, Year: 2019, Month: 1, AvgArrDelay: 1.5},
			{AirlineID: 19805, Year: 2019, Month: 1, AvgArrDelay: 8.0},
			{AirlineID: 19790, Year: 2018, Month: 1, AvgArrDelay: 4.0},
			{AirlineID: 19790, Year: 2018, Month: 2, AvgArrDelay: 3.5},
			{AirlineID: 19805, Year: 2018, Month: 12, AvgArrDelay: 9.0},
		},
	}
}

// ManyRoutes returns n routes with distinct flight counts 1..n in file order
func ManyRoutes(n int) []kpi.RouteKPI {
	routes := make([]kpi.RouteKPI, n)
	for i := range routes {
		routes[i] = kpi.RouteKPI{
			Origin:       "O" + string(rune('A'+i%26)),
			Destination:  "D" + string(rune('A'+(i/26)%26)),
			TotalFlights: int64(i + 1),
		}
	}
	return routes
}

// WriteDataset writes ds as the four Parquet files into a fresh temp
// directory and returns it.
func WriteDataset(t *testing.T, ds *kpi.Dataset) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, kpi.AirlinePerformance.FileName()), ds.Airlines)
	writeFile(t, filepath.Join(dir, kpi.RoutePerformance.FileName()), ds.Routes)
	writeFile(t, filepath.Join(dir, kpi.AirportPerformance.FileName()), ds.Airports)
	writeFile(t, filepath.Join(dir, kpi.MonthlyTrends.FileName()), ds.Trends)

	return dir
}

func writeFile[T any](t *testing.T, path string, rows []T) {
	t.Helper()
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// CorruptFile replaces path with bytes that are not a Parquet file
func CorruptFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("not parquet"), 0644); err != nil {
		t.Fatalf("corrupt %s: %v", path, err)
	}
}
