package http

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"airlinekpi/internal/services"
	"airlinekpi/internal/store"
	"airlinekpi/internal/views"
)

// MockDashboardService implements DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Airlines(ctx context.Context, minFlights int64) (*views.AirlineResult, error) {
	args := m.Called(ctx, minFlights)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*views.AirlineResult), args.Error(1)
}

func (m *MockDashboardService) Routes(ctx context.Context) (*views.RouteResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*views.RouteResult), args.Error(1)
}

func (m *MockDashboardService) Airports(ctx context.Context) (*views.AirportResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*views.AirportResult), args.Error(1)
}

func (m *MockDashboardService) Trends(ctx context.Context, code string) (*views.TrendResult, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*views.TrendResult), args.Error(1)
}

func (m *MockDashboardService) AirlineCodes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDashboardService) Chart(ctx context.Context, id services.ChartID, params services.ChartParams) ([]byte, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDashboardService) Download(ctx context.Context, table, format string, w io.Writer) error {
	args := m.Called(ctx, table, format, w)
	return args.Error(0)
}

func (m *MockDashboardService) Tables(ctx context.Context) []services.TableInfo {
	args := m.Called(ctx)
	return args.Get(0).([]services.TableInfo)
}

func (m *MockDashboardService) Reload(ctx context.Context) ([]store.TableStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.TableStatus), args.Error(1)
}

func (m *MockDashboardService) CacheStats() map[string]interface{} {
	args := m.Called()
	return args.Get(0).(map[string]interface{})
}

// MockHealthService implements HealthServiceInterface
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}

func (m *MockHealthService) SystemStats(ctx context.Context) (services.SystemStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(services.SystemStats), args.Error(1)
}

func (m *MockHealthService) GetDetailedHealth(ctx context.Context) map[string]interface{} {
	return m.Called(ctx).Get(0).(map[string]interface{})
}
