package http

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "airlinekpi/internal/errors"
	"airlinekpi/internal/services"
	"airlinekpi/internal/shared/testutil"
)

func newHealthRouter(t *testing.T, svc *MockHealthService) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	h := NewHealthHandler(svc, logger, apierrors.NewErrorHandler(logger, false))
	r := chi.NewRouter()
	r.Mount("/api/health", h.Routes())
	r.Get("/api/version", h.Version)
	return r
}

func TestHealthHandler_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		wantStatus int
	}{
		{"ready", "ready", http.StatusOK},
		{"not ready", "not_ready", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockHealthService)
			svc.On("ReadinessCheck", mock.Anything).Return(services.HealthStatus{
				Status:    tt.status,
				Timestamp: time.Now(),
				Services: map[string]interface{}{
					"data": services.ServiceHealth{Status: tt.status},
				},
			})

			w := serve(newHealthRouter(t, svc), http.MethodGet, "/api/health/ready")
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.status, decodeJSON(t, w)["status"])
			svc.AssertExpectations(t)
		})
	}
}

func TestHealthHandler_Endpoints(t *testing.T) {
	svc := new(MockHealthService)
	svc.On("HealthCheck", mock.Anything).Return(services.HealthStatus{Status: "ok", Version: "1.0.0"})
	svc.On("LivenessCheck", mock.Anything).Return(services.HealthStatus{Status: "alive"})
	svc.On("Version").Return(map[string]interface{}{"version": "1.0.0"})
	svc.On("SystemStats", mock.Anything).Return(services.SystemStats{ParquetFiles: 4}, nil)
	svc.On("GetDetailedHealth", mock.Anything).Return(map[string]interface{}{
		"readiness": services.HealthStatus{Status: "not_ready"},
	})
	router := newHealthRouter(t, svc)

	w := serve(router, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.0.0", decodeJSON(t, w)["version"])

	w = serve(router, http.MethodGet, "/api/health/live")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", decodeJSON(t, w)["status"])

	w = serve(router, http.MethodGet, "/api/version")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.0.0", decodeJSON(t, w)["version"])

	w = serve(router, http.MethodGet, "/api/health/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), decodeJSON(t, w)["parquet_files"])

	// detailed health is informational and always answers 200
	w = serve(router, http.MethodGet, "/api/health/detailed")
	require.Equal(t, http.StatusOK, w.Code)
	readiness := decodeJSON(t, w)["readiness"].(map[string]interface{})
	assert.Equal(t, "not_ready", readiness["status"])

	svc.AssertExpectations(t)
}

func TestHealthHandler_SystemStatsFailure(t *testing.T) {
	svc := new(MockHealthService)
	svc.On("SystemStats", mock.Anything).Return(services.SystemStats{}, errors.New("stat failed"))

	w := serve(newHealthRouter(t, svc), http.MethodGet, "/api/health/stats")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "stat failed")
}

func TestMetricsHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	t.Run("disabled", func(t *testing.T) {
		w := serve(NewMetricsHandler(nil, errorHandler), http.MethodGet, "/metrics")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, apierrors.CodeServiceUnavailable, decodeJSON(t, w)["error_code"])
	})

	t.Run("enabled", func(t *testing.T) {
		exporter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# HELP kpi_view_renders_total\n"))
		})
		w := serve(NewMetricsHandler(exporter, errorHandler), http.MethodGet, "/metrics")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "# HELP")
	})
}
