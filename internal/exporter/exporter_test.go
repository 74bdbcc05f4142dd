package exporter

import (
	"context"
	"database/sql"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airlinekpi/internal/config"
	"airlinekpi/internal/files"
	"airlinekpi/internal/kpi"
	"airlinekpi/internal/shared/testutil"
)

var schema = []string{
	`CREATE TABLE kpi_airline_performance (
		airline_id INTEGER, airline_code TEXT, total_flights INTEGER,
		weighted_avg_arr_delay REAL, extra_column TEXT)`,
	`CREATE TABLE kpi_route_performance (origin TEXT, destination TEXT, total_flights INTEGER)`,
	`CREATE TABLE kpi_airport_performance (airport TEXT, total_flights INTEGER, weighted_avg_arr_delay REAL)`,
	`CREATE TABLE kpi_monthly_trends (airline_id INTEGER, year INTEGER, month INTEGER, avg_arr_delay REAL)`,
}

// setupSource opens a file-backed SQLite database seeded with the sample dataset
func setupSource(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, config.DatabaseConfig{
		Driver: "sqlite",
		Name:   filepath.Join(t.TempDir(), "source.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range schema {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	ds := testutil.SampleDataset()
	for _, a := range ds.Airlines {
		_, err := db.ExecContext(ctx, `INSERT INTO kpi_airline_performance VALUES (?, ?, ?, ?, 'ignored')`,
			a.AirlineID, a.AirlineCode, a.TotalFlights, a.WeightedAvgArrDelay)
		require.NoError(t, err)
	}
	for _, r := range ds.Routes {
		_, err := db.ExecContext(ctx, `INSERT INTO kpi_route_performance VALUES (?, ?, ?)`,
			r.Origin, r.Destination, r.TotalFlights)
		require.NoError(t, err)
	}
	for _, a := range ds.Airports {
		_, err := db.ExecContext(ctx, `INSERT INTO kpi_airport_performance VALUES (?, ?, ?)`,
			a.Airport, a.TotalFlights, a.WeightedAvgArrDelay)
		require.NoError(t, err)
	}
	for _, m := range ds.Trends {
		_, err := db.ExecContext(ctx, `INSERT INTO kpi_monthly_trends VALUES (?, ?, ?, ?)`,
			m.AirlineID, m.Year, m.Month, m.AvgArrDelay)
		require.NoError(t, err)
	}

	return db
}

func countRows(t *testing.T, db *sql.DB, table kpi.Table) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+string(table)).Scan(&n))
	return n
}

func TestRun_ExportsEveryTable(t *testing.T) {
	db := setupSource(t)
	outDir := filepath.Join(t.TempDir(), "missing", "parquet")
	logger, logs := testutil.NewTestLogger(t)

	summary, err := New(db, outDir, logger).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Tables, 4)

	for i, table := range kpi.Tables() {
		result := summary.Tables[i]
		assert.Equal(t, table, result.Table)
		assert.Equal(t, filepath.Join(outDir, table.FileName()), result.Path)
		assert.FileExists(t, result.Path)
		assert.Equal(t, countRows(t, db, table), result.Rows, table.String())
	}

	assert.Equal(t, 20, summary.TotalRows())
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "all KPI tables exported")
	testutil.AssertLogAttr(t, logs, "component", "exporter")
	testutil.AssertNoErrors(t, logs)

	// no temp files left behind
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestRun_RowsRoundTrip(t *testing.T) {
	db := setupSource(t)
	outDir := t.TempDir()

	_, err := New(db, outDir, nil).Run(context.Background())
	require.NoError(t, err)

	want := testutil.SampleDataset()

	airlines, err := files.ReadParquet[kpi.AirlineKPI](filepath.Join(outDir, kpi.AirlinePerformance.FileName()))
	require.NoError(t, err)
	assert.Equal(t, want.Airlines, airlines)

	routes, err := files.ReadParquet[kpi.RouteKPI](filepath.Join(outDir, kpi.RoutePerformance.FileName()))
	require.NoError(t, err)
	assert.Equal(t, want.Routes, routes)

	airports, err := files.ReadParquet[kpi.AirportKPI](filepath.Join(outDir, kpi.AirportPerformance.FileName()))
	require.NoError(t, err)
	assert.Equal(t, want.Airports, airports)

	trends, err := files.ReadParquet[kpi.MonthlyTrend](filepath.Join(outDir, kpi.MonthlyTrends.FileName()))
	require.NoError(t, err)
	assert.Equal(t, want.Trends, trends)
}

func TestRun_OverwritesExistingFiles(t *testing.T) {
	db := setupSource(t)
	outDir := t.TempDir()
	stale := filepath.Join(outDir, kpi.RoutePerformance.FileName())
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0644))

	_, err := New(db, outDir, nil).Run(context.Background())
	require.NoError(t, err)

	routes, err := files.ReadParquet[kpi.RouteKPI](stale)
	require.NoError(t, err)
	assert.Len(t, routes, 4)
}

func TestRun_StopsAtFirstError(t *testing.T) {
	db := setupSource(t)
	_, err := db.Exec("DROP TABLE kpi_airport_performance")
	require.NoError(t, err)

	outDir := t.TempDir()
	logger, logs := testutil.NewTestLogger(t)

	summary, err := New(db, outDir, logger).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kpi_airport_performance")

	// earlier tables stay written, later ones are never attempted
	require.Len(t, summary.Tables, 2)
	assert.FileExists(t, filepath.Join(outDir, kpi.AirlinePerformance.FileName()))
	assert.FileExists(t, filepath.Join(outDir, kpi.RoutePerformance.FileName()))
	assert.NoFileExists(t, filepath.Join(outDir, kpi.AirportPerformance.FileName()))
	assert.NoFileExists(t, filepath.Join(outDir, kpi.MonthlyTrends.FileName()))

	assert.False(t, logs.ContainsMessage("all KPI tables exported"))
	assert.True(t, logs.ContainsMessage("table export failed"))
}

func TestRun_CancelledContext(t *testing.T) {
	db := setupSource(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(db, t.TempDir(), nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportTable_Single(t *testing.T) {
	db := setupSource(t)
	outDir := t.TempDir()

	result, err := New(db, outDir, nil).ExportTable(context.Background(), kpi.MonthlyTrends)
	require.NoError(t, err)
	assert.Equal(t, 6, result.Rows)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExportTable_UnknownTable(t *testing.T) {
	_, err := New(nil, t.TempDir(), nil).ExportTable(context.Background(), "users")
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestQueryTable_NullsAndExtraColumns(t *testing.T) {
	db := setupSource(t)
	_, err := db.Exec(`INSERT INTO kpi_airline_performance VALUES (1, NULL, NULL, NULL, NULL)`)
	require.NoError(t, err)

	rows, err := QueryTable[kpi.AirlineKPI](context.Background(), db, kpi.AirlinePerformance)
	require.NoError(t, err)
	require.Len(t, rows, 7)

	last := rows[6]
	assert.Equal(t, int64(1), last.AirlineID)
	assert.Equal(t, "", last.AirlineCode)
	assert.Equal(t, int64(0), last.TotalFlights)
	assert.True(t, math.IsNaN(last.WeightedAvgArrDelay))
}

// assertDelay compares delays where NaN stands for a NULL and equals itself
func assertDelay(t *testing.T, want, got float64, msgAndArgs ...interface{}) {
	t.Helper()
	if math.IsNaN(want) {
		assert.True(t, math.IsNaN(got), msgAndArgs...)
		return
	}
	assert.Equal(t, want, got, msgAndArgs...)
}

func TestRun_NullDelaysSurviveExport(t *testing.T) {
	db := setupSource(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `INSERT INTO kpi_airline_performance VALUES (99, 'ZZ', 5, NULL, NULL)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO kpi_airport_performance VALUES ('XNA', 10, NULL)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO kpi_monthly_trends VALUES (99, 2020, 4, NULL)`)
	require.NoError(t, err)

	outDir := t.TempDir()
	_, err = New(db, outDir, nil).Run(ctx)
	require.NoError(t, err)

	want := testutil.SampleDataset()
	want.Airlines = append(want.Airlines, kpi.AirlineKPI{AirlineID: 99, AirlineCode: "ZZ", TotalFlights: 5, WeightedAvgArrDelay: math.NaN()})
	want.Airports = append(want.Airports, kpi.AirportKPI{Airport: "XNA", TotalFlights: 10, WeightedAvgArrDelay: math.NaN()})
	want.Trends = append(want.Trends, kpi.MonthlyTrend{AirlineID: 99, Year: 2020, Month: 4, AvgArrDelay: math.NaN()})

	airlines, err := files.ReadParquet[kpi.AirlineKPI](filepath.Join(outDir, kpi.AirlinePerformance.FileName()))
	require.NoError(t, err)
	require.Len(t, airlines, len(want.Airlines))
	for i, w := range want.Airlines {
		got := airlines[i]
		assert.Equal(t, w.AirlineCode, got.AirlineCode)
		assert.Equal(t, w.TotalFlights, got.TotalFlights)
		assertDelay(t, w.WeightedAvgArrDelay, got.WeightedAvgArrDelay, w.AirlineCode)
	}

	airports, err := files.ReadParquet[kpi.AirportKPI](filepath.Join(outDir, kpi.AirportPerformance.FileName()))
	require.NoError(t, err)
	require.Len(t, airports, len(want.Airports))
	for i, w := range want.Airports {
		assert.Equal(t, w.Airport, airports[i].Airport)
		assertDelay(t, w.WeightedAvgArrDelay, airports[i].WeightedAvgArrDelay, w.Airport)
	}

	trends, err := files.ReadParquet[kpi.MonthlyTrend](filepath.Join(outDir, kpi.MonthlyTrends.FileName()))
	require.NoError(t, err)
	require.Len(t, trends, len(want.Trends))
	for i, w := range want.Trends {
		assert.Equal(t, w.AirlineID, trends[i].AirlineID)
		assertDelay(t, w.AvgArrDelay, trends[i].AvgArrDelay, "trend %d", i)
	}
}

func TestQueryTable_MissingColumnsStayZero(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, config.DatabaseConfig{Driver: "sqlite", Name: filepath.Join(t.TempDir(), "narrow.db")})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE kpi_route_performance (origin TEXT, total_flights INTEGER)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO kpi_route_performance VALUES ('SEA', 5)`)
	require.NoError(t, err)

	rows, err := QueryTable[kpi.RouteKPI](ctx, db, kpi.RoutePerformance)
	require.NoError(t, err)
	assert.Equal(t, []kpi.RouteKPI{{Origin: "SEA", TotalFlights: 5}}, rows)
}

func TestQueryTable_EmptyTable(t *testing.T) {
	db := setupSource(t)
	_, err := db.Exec("DELETE FROM kpi_route_performance")
	require.NoError(t, err)

	outDir := t.TempDir()
	result, err := New(db, outDir, nil).ExportTable(context.Background(), kpi.RoutePerformance)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Rows)

	rows, err := files.ReadParquet[kpi.RouteKPI](result.Path)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
