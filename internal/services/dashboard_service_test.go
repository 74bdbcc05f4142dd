package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"airlinekpi/internal/charts"
	"airlinekpi/internal/kpi"
	"airlinekpi/internal/shared/testutil"
	"airlinekpi/internal/store"
	"airlinekpi/internal/views"
)

// MockDatasetLoader implements DatasetLoader for failure paths
type MockDatasetLoader struct {
	mock.Mock
}

func (m *MockDatasetLoader) Load(ctx context.Context) (*kpi.Dataset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kpi.Dataset), args.Error(1)
}

func (m *MockDatasetLoader) Reload(ctx context.Context) (*kpi.Dataset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kpi.Dataset), args.Error(1)
}

func (m *MockDatasetLoader) Tables() []store.TableStatus {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]store.TableStatus)
}

func (m *MockDatasetLoader) GetStats() map[string]interface{} {
	args := m.Called()
	return args.Get(0).(map[string]interface{})
}

func (m *MockDatasetLoader) Dir() string {
	args := m.Called()
	return args.String(0)
}

func newDashboard(t *testing.T) (*DashboardService, *store.Loader) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	loader := store.NewLoader(testutil.WriteDataset(t, testutil.SampleDataset()), logger)
	return NewDashboardService(loader, nil, logger), loader
}

func TestDashboardService_Airlines(t *testing.T) {
	svc, _ := newDashboard(t)
	ctx := context.Background()

	t.Run("default threshold", func(t *testing.T) {
		result, err := svc.Airlines(ctx, views.DefaultMinFlights)
		require.NoError(t, err)

		assert.Len(t, result.Filtered, 4)
		assert.Equal(t, "WN", result.ByVolume[0].AirlineCode)
		assert.Equal(t, "DL", result.ByDelay[0].AirlineCode)
		assert.Equal(t, int64(3_400_000), result.Slider.Max)
		assert.Equal(t, views.SliderStep, result.Slider.Step)
	})

	t.Run("threshold above max filters everything out", func(t *testing.T) {
		result, err := svc.Airlines(ctx, 5_000_000)
		require.NoError(t, err)

		assert.Equal(t, int64(3_400_000), result.Slider.Value)
		assert.Equal(t, int64(5_000_000), result.MinFlights)
		assert.Empty(t, result.Filtered)
		for _, r := range result.ByVolume {
			assert.GreaterOrEqual(t, r.TotalFlights, int64(5_000_000))
		}
	})

	t.Run("negative threshold", func(t *testing.T) {
		_, err := svc.Airlines(ctx, -1)
		assert.ErrorIs(t, err, views.ErrNegativeThreshold)
	})
}

func TestDashboardService_RoutesAndAirports(t *testing.T) {
	svc, _ := newDashboard(t)
	ctx := context.Background()

	routes, err := svc.Routes(ctx)
	require.NoError(t, err)
	require.Len(t, routes.Top, 4)
	assert.Equal(t, "LAX → SFO", routes.Top[0].Label)
	assert.Equal(t, "LAX → SFO", routes.ChartOrder[len(routes.ChartOrder)-1].Label)

	airports, err := svc.Airports(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ATL", airports.Busiest[0].Airport)
	assert.Equal(t, "EWR", airports.WorstDelay[0].Airport)
	assert.Len(t, airports.All, 4)
}

func TestDashboardService_Trends(t *testing.T) {
	svc, _ := newDashboard(t)
	ctx := context.Background()

	t.Run("explicit code", func(t *testing.T) {
		result, err := svc.Trends(ctx, "DL")
		require.NoError(t, err)

		assert.Equal(t, int64(19790), result.AirlineID)
		require.Len(t, result.Series, 2)
		assert.Equal(t, int64(2018), result.Series[0].Year)
		assert.Equal(t, int64(1), result.Series[1].Points[0].Month)
	})

	t.Run("empty code selects first sorted code", func(t *testing.T) {
		result, err := svc.Trends(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "AA", result.Code)
		assert.Equal(t, []string{"AA", "B6", "DL", "F9", "UA", "WN"}, result.Codes)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := svc.Trends(ctx, "ZZ")
		assert.ErrorIs(t, err, views.ErrAirlineNotFound)
	})

	codes, err := svc.AirlineCodes(ctx)
	require.NoError(t, err)
	assert.Len(t, codes, 6)
}

func TestDashboardService_Chart(t *testing.T) {
	svc, _ := newDashboard(t)
	ctx := context.Background()

	tests := []struct {
		id       ChartID
		params   ChartParams
		contains string
	}{
		{ChartAirlineVolume, ChartParams{MinFlights: views.DefaultMinFlights}, "Top Airlines by Total Flights"},
		{ChartAirlineDelay, ChartParams{MinFlights: views.DefaultMinFlights}, "Lower is Better"},
		{ChartRouteTop, ChartParams{}, "Busiest Airline Routes"},
		{ChartAirportVolume, ChartParams{}, "Busiest Airports"},
		{ChartAirportDelay, ChartParams{}, "Worst Airports"},
		{ChartTrends, ChartParams{Airline: "DL"}, "(DL)"},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			svg, err := svc.Chart(ctx, tt.id, tt.params)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(svg), "<svg"))
			assert.Contains(t, string(svg), tt.contains)
		})
	}

	t.Run("unknown chart", func(t *testing.T) {
		_, err := svc.Chart(ctx, "pie", ChartParams{})
		assert.ErrorIs(t, err, ErrUnknownChart)
	})

	t.Run("unknown airline", func(t *testing.T) {
		_, err := svc.Chart(ctx, ChartTrends, ChartParams{Airline: "ZZ"})
		assert.ErrorIs(t, err, views.ErrAirlineNotFound)
	})
}

func TestDashboardService_ChartNoData(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	loader := store.NewLoader(testutil.WriteDataset(t, &kpi.Dataset{}), logger)
	svc := NewDashboardService(loader, nil, logger)

	_, err := svc.Chart(context.Background(), ChartRouteTop, ChartParams{})
	assert.ErrorIs(t, err, charts.ErrNoData)

	// no airlines means an empty trend view, which still has nothing to draw
	result, err := svc.Trends(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, result.Series)
}

func TestDashboardService_DownloadCSV(t *testing.T) {
	svc, _ := newDashboard(t)

	var buf bytes.Buffer
	require.NoError(t, svc.Download(context.Background(), "kpi_airline_performance", "csv", &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 7)
	assert.Equal(t, kpi.AirlinePerformance.Columns(), records[0])
	assert.Equal(t, []string{"19790", "DL", "2500000", "3.1"}, records[1])
}

func TestDashboardService_DownloadXLSX(t *testing.T) {
	svc, _ := newDashboard(t)

	var buf bytes.Buffer
	require.NoError(t, svc.Download(context.Background(), "kpi_monthly_trends", "XLSX", &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("kpi_monthly_trends")
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, kpi.MonthlyTrends.Columns(), rows[0])
}

func TestDashboardService_DownloadErrors(t *testing.T) {
	svc, _ := newDashboard(t)
	ctx := context.Background()

	var buf bytes.Buffer
	assert.ErrorIs(t, svc.Download(ctx, "flights", "csv", &buf), ErrUnknownTable)
	assert.ErrorIs(t, svc.Download(ctx, "kpi_airline_performance", "pdf", &buf), ErrUnsupportedFormat)
	assert.Zero(t, buf.Len())
}

func TestDashboardService_MissingData(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	svc := NewDashboardService(store.NewLoader(t.TempDir(), logger), nil, logger)
	ctx := context.Background()

	_, err := svc.Routes(ctx)
	assert.ErrorIs(t, err, store.ErrDataUnavailable)

	var buf bytes.Buffer
	err = svc.Download(ctx, "kpi_route_performance", "csv", &buf)
	assert.ErrorIs(t, err, store.ErrDataUnavailable)
	assert.Zero(t, buf.Len())
}

func TestDashboardService_LoaderFailure(t *testing.T) {
	loadErr := errors.New("disk on fire")
	loader := new(MockDatasetLoader)
	loader.On("Dir").Return(t.TempDir())
	loader.On("Load", mock.Anything).Return(nil, loadErr)
	loader.On("Reload", mock.Anything).Return(nil, loadErr)

	logger, logs := testutil.NewTestLogger(t)
	svc := NewDashboardService(loader, nil, logger)

	_, err := svc.Airports(context.Background())
	assert.ErrorIs(t, err, loadErr)
	testutil.AssertLogAttr(t, logs, "view", "airports")

	_, err = svc.Reload(context.Background())
	assert.ErrorIs(t, err, loadErr)
	assert.True(t, logs.ContainsMessage("KPI reload failed"))

	loader.AssertExpectations(t)
}

func TestDashboardService_TablesAndReload(t *testing.T) {
	svc, loader := newDashboard(t)
	ctx := context.Background()

	tables := svc.Tables(ctx)
	require.Len(t, tables, 4)
	for _, info := range tables {
		assert.True(t, info.Exists, info.File)
		assert.Positive(t, info.Size)
		assert.Nil(t, info.Rows, "nothing loaded yet")
	}

	statuses, err := svc.Reload(ctx)
	require.NoError(t, err)
	assert.Len(t, statuses, 4)

	tables = svc.Tables(ctx)
	require.NotNil(t, tables[0].Rows)
	assert.Equal(t, 6, *tables[0].Rows)

	require.NoError(t, os.Remove(filepath.Join(loader.Dir(), kpi.MonthlyTrends.FileName())))
	tables = svc.Tables(ctx)
	assert.False(t, tables[3].Exists)

	assert.Equal(t, 4, svc.CacheStats()["entries"])
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"", FormatCSV, false},
		{"csv", FormatCSV, false},
		{" XLSX ", FormatXLSX, false},
		{"parquet", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.err {
			assert.ErrorIs(t, err, ErrUnsupportedFormat)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	assert.Contains(t, ContentType(FormatCSV), "text/csv")
	assert.Contains(t, ContentType(FormatXLSX), "spreadsheetml")
	assert.Equal(t, "kpi_route_performance.xlsx", DownloadName(kpi.RoutePerformance, FormatXLSX))
}
