// Package http implements the HTTP handlers of the KPI dashboard. Handlers
// stay thin: they parse and validate query parameters, call the dashboard
// or health service, and format the result.
//
// # Surfaces
//
//	PageHandler       HTML pages with tabs, widgets, chart images and tables
//	ChartHandler      SVG charts under /charts
//	DashboardHandler  JSON views, table downloads and cache control under /api
//	HealthHandler     health, readiness, liveness and version
//	MetricsHandler    Prometheus registry at /metrics
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Loader
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Error Handling
//
// Service sentinels are translated by mapServiceError and written as RFC 7807
// Problem Details by the shared ErrorHandler:
//
//	{
//	    "type": "/errors/airline/not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "airline \"ZZ\" not found",
//	    "error_code": "AIRLINE_NOT_FOUND",
//	    "trace_id": "..."
//	}
//
// HTML pages show the same problem inside the dashboard layout.
//
// # Testing
//
// Handlers are tested with httptest against testify mocks of the service
// interfaces.
package http
