package http

import (
	"context"
	"io"

	"airlinekpi/internal/services"
	"airlinekpi/internal/store"
	"airlinekpi/internal/views"
)

// DashboardServiceInterface defines the dashboard operations the handlers use
type DashboardServiceInterface interface {
	Airlines(ctx context.Context, minFlights int64) (*views.AirlineResult, error)
	Routes(ctx context.Context) (*views.RouteResult, error)
	Airports(ctx context.Context) (*views.AirportResult, error)
	Trends(ctx context.Context, code string) (*views.TrendResult, error)
	AirlineCodes(ctx context.Context) ([]string, error)
	Chart(ctx context.Context, id services.ChartID, params services.ChartParams) ([]byte, error)
	Download(ctx context.Context, table, format string, w io.Writer) error
	Tables(ctx context.Context) []services.TableInfo
	Reload(ctx context.Context) ([]store.TableStatus, error)
	CacheStats() map[string]interface{}
}

// HealthServiceInterface defines the health operations the handlers use
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
	SystemStats(ctx context.Context) (services.SystemStats, error)
	GetDetailedHealth(ctx context.Context) map[string]interface{}
}
