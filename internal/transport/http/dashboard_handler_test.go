package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "airlinekpi/internal/errors"
	"airlinekpi/internal/kpi"
	"airlinekpi/internal/services"
	"airlinekpi/internal/shared/testutil"
	"airlinekpi/internal/store"
	"airlinekpi/internal/views"
)

func newDashboardRouter(t *testing.T, svc *MockDashboardService) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	h := NewDashboardHandler(svc, logger, apierrors.NewErrorHandler(logger, false))
	r := chi.NewRouter()
	r.Mount("/api", h.Routes())
	return r
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestDashboardHandler_GetAirlines(t *testing.T) {
	ds := testutil.SampleDataset()

	t.Run("default threshold", func(t *testing.T) {
		result, err := views.AirlineView(ds.Airlines, views.DefaultMinFlights)
		require.NoError(t, err)

		svc := new(MockDashboardService)
		svc.On("Airlines", mock.Anything, views.DefaultMinFlights).Return(result, nil)

		w := serve(newDashboardRouter(t, svc), http.MethodGet, "/api/views/airlines")
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeJSON(t, w)
		assert.Equal(t, "success", body["status"])
		assert.Equal(t, float64(4), body["count"])
		data := body["data"].(map[string]interface{})
		assert.Equal(t, float64(views.SliderStep), data["slider"].(map[string]interface{})["step"])
		svc.AssertExpectations(t)
	})

	t.Run("explicit threshold", func(t *testing.T) {
		result, err := views.AirlineView(ds.Airlines, 2_500_000)
		require.NoError(t, err)

		svc := new(MockDashboardService)
		svc.On("Airlines", mock.Anything, int64(2_500_000)).Return(result, nil)

		w := serve(newDashboardRouter(t, svc), http.MethodGet, "/api/views/airlines?min_flights=2500000")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(2), decodeJSON(t, w)["count"])
		svc.AssertExpectations(t)
	})

	t.Run("invalid threshold never reaches the service", func(t *testing.T) {
		svc := new(MockDashboardService)

		w := serve(newDashboardRouter(t, svc), http.MethodGet, "/api/views/airlines?min_flights=-1")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apierrors.TypeValidation, decodeJSON(t, w)["type"])
		svc.AssertNotCalled(t, "Airlines", mock.Anything, mock.Anything)
	})
}

func TestDashboardHandler_ErrorMapping(t *testing.T) {
	unavailable := fmt.Errorf("%w: open %s: no such file or directory",
		store.ErrDataUnavailable, kpi.RoutePerformance.FileName())

	tests := []struct {
		name       string
		target     string
		setup      func(svc *MockDashboardService)
		wantStatus int
		wantCode   string
	}{
		{
			name:   "missing parquet file",
			target: "/api/views/routes",
			setup: func(svc *MockDashboardService) {
				svc.On("Routes", mock.Anything).Return(nil, unavailable)
			},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apierrors.CodeDataUnavailable,
		},
		{
			name:   "unknown airline",
			target: "/api/views/trends?airline=ZZ",
			setup: func(svc *MockDashboardService) {
				svc.On("Trends", mock.Anything, "ZZ").Return(nil, fmt.Errorf("code ZZ: %w", views.ErrAirlineNotFound))
			},
			wantStatus: http.StatusNotFound,
			wantCode:   apierrors.CodeAirlineNotFound,
		},
		{
			name:   "unexpected failure",
			target: "/api/views/airports",
			setup: func(svc *MockDashboardService) {
				svc.On("Airports", mock.Anything).Return(nil, fmt.Errorf("disk on fire"))
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "",
		},
		{
			name:   "airline codes unavailable",
			target: "/api/airlines",
			setup: func(svc *MockDashboardService) {
				svc.On("AirlineCodes", mock.Anything).Return(nil, unavailable)
			},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apierrors.CodeDataUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			tt.setup(svc)

			w := serve(newDashboardRouter(t, svc), http.MethodGet, tt.target)
			assert.Equal(t, tt.wantStatus, w.Code)

			body := decodeJSON(t, w)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}
			assert.NotContains(t, w.Body.String(), "disk on fire")
			svc.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_DataUnavailableNamesTable(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Routes", mock.Anything).Return(nil,
		fmt.Errorf("%w: %s: bad magic", store.ErrDataUnavailable, kpi.RoutePerformance.FileName()))

	w := serve(newDashboardRouter(t, svc), http.MethodGet, "/api/views/routes")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	details := decodeJSON(t, w)["details"].(map[string]interface{})
	assert.Equal(t, "kpi_route_performance", details["table"])
	assert.NotContains(t, w.Body.String(), "bad magic")
}

func TestDashboardHandler_GetRoutesAndAirports(t *testing.T) {
	ds := testutil.SampleDataset()
	svc := new(MockDashboardService)
	svc.On("Routes", mock.Anything).Return(views.RouteView(ds.Routes), nil)
	svc.On("Airports", mock.Anything).Return(views.AirportView(ds.Airports), nil)
	svc.On("AirlineCodes", mock.Anything).Return(views.AirlineCodes(ds.Airlines), nil)
	router := newDashboardRouter(t, svc)

	w := serve(router, http.MethodGet, "/api/views/routes")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w)
	top := body["data"].(map[string]interface{})["top"].([]interface{})
	assert.Equal(t, "LAX → SFO", top[0].(map[string]interface{})["route"])

	w = serve(router, http.MethodGet, "/api/views/airports")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), decodeJSON(t, w)["count"])

	w = serve(router, http.MethodGet, "/api/airlines")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(6), decodeJSON(t, w)["count"])

	svc.AssertExpectations(t)
}

func TestDashboardHandler_GetTrends(t *testing.T) {
	ds := testutil.SampleDataset()
	result, err := views.TrendView(ds.Airlines, ds.Trends, "DL")
	require.NoError(t, err)

	svc := new(MockDashboardService)
	svc.On("Trends", mock.Anything, "DL").Return(result, nil)

	w := serve(newDashboardRouter(t, svc), http.MethodGet, "/api/views/trends?airline=DL")
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeJSON(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "DL", data["airline_code"])
	assert.Len(t, data["series"], 2)
	svc.AssertExpectations(t)
}

func TestDashboardHandler_DownloadTable(t *testing.T) {
	t.Run("csv", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("Download", mock.Anything, "kpi_airport_performance", "csv", mock.Anything).
			Run(func(args mock.Arguments) {
				_, _ = io.WriteString(args.Get(3).(io.Writer), "airport,total_flights\nATL,1\n")
			}).
			Return(nil)

		w := serve(newDashboardRouter(t, svc), http.MethodGet, "/api/tables/kpi_airport_performance/download")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Equal(t, `attachment; filename="kpi_airport_performance.csv"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "airport,total_flights\nATL,1\n", w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("xlsx", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("Download", mock.Anything, "kpi_monthly_trends", "xlsx", mock.Anything).Return(nil)

		w := serve(newDashboardRouter(t, svc), http.MethodGet, "/api/tables/kpi_monthly_trends/download?format=XLSX")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
		assert.Contains(t, w.Header().Get("Content-Disposition"), "kpi_monthly_trends.xlsx")
	})

	t.Run("unknown table", func(t *testing.T) {
		svc := new(MockDashboardService)

		w := serve(newDashboardRouter(t, svc), http.MethodGet, "/api/tables/flights/download")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, apierrors.CodeUnknownTable, decodeJSON(t, w)["error_code"])
		svc.AssertNotCalled(t, "Download", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unsupported format", func(t *testing.T) {
		svc := new(MockDashboardService)

		w := serve(newDashboardRouter(t, svc), http.MethodGet, "/api/tables/kpi_route_performance/download?format=pdf")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Download", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("data unavailable", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("Download", mock.Anything, "kpi_route_performance", "csv", mock.Anything).
			Return(fmt.Errorf("%w: %s", store.ErrDataUnavailable, kpi.RoutePerformance.FileName()))

		w := serve(newDashboardRouter(t, svc), http.MethodGet, "/api/tables/kpi_route_performance/download")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Empty(t, w.Header().Get("Content-Disposition"))
	})
}

func TestDashboardHandler_TablesAndCache(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	svc := new(MockDashboardService)
	svc.On("Tables", mock.Anything).Return([]services.TableInfo{
		{Table: kpi.AirlinePerformance, File: kpi.AirlinePerformance.FileName(), Exists: true, Size: 1024},
	})
	svc.On("CacheStats").Return(map[string]interface{}{"entries": 4, "hit_count": int64(10)})
	svc.On("Reload", mock.Anything).Return([]store.TableStatus{
		{Table: kpi.AirlinePerformance, Rows: 6},
		{Table: kpi.RoutePerformance, Rows: 4},
	}, nil)

	h := NewDashboardHandler(svc, logger, apierrors.NewErrorHandler(logger, false))
	router := chi.NewRouter()
	router.Mount("/api", h.Routes())

	w := serve(router, http.MethodGet, "/api/tables")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeJSON(t, w)["count"])

	w = serve(router, http.MethodGet, "/api/cache/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), decodeJSON(t, w)["data"].(map[string]interface{})["entries"])

	w = serve(router, http.MethodGet, "/api/cache/reload")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = serve(router, http.MethodPost, "/api/cache/reload")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeJSON(t, w)["count"])
	testutil.AssertLogAttr(t, logs, "event_type", "api_mutation")

	svc.AssertExpectations(t)
}

func TestDashboardHandler_ReloadFailure(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Reload", mock.Anything).Return(nil,
		fmt.Errorf("%w: %s", store.ErrDataUnavailable, kpi.MonthlyTrends.FileName()))

	w := serve(newDashboardRouter(t, svc), http.MethodPost, "/api/cache/reload")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	details := decodeJSON(t, w)["details"].(map[string]interface{})
	assert.Equal(t, "kpi_monthly_trends", details["table"])
}
