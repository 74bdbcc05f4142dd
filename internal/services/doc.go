// Package services implements the business logic layer of the dashboard.
// It sits between the HTTP handlers and the KPI loader so handlers stay thin
// and the view rules are testable without a server.
//
// # Available Services
//
//	- DashboardService: the four dashboard views, their SVG charts, table
//	  downloads and cache reloads
//	- HealthService: liveness, readiness and version information
//
// # Common Service Pattern
//
// Services hold their dependencies behind small interfaces and take a
// logger, falling back to slog.Default:
//
//	loader := store.NewLoader(paths.ParquetDir, logger)
//	dashboard := services.NewDashboardService(loader, metrics, logger)
//
//	result, err := dashboard.Airlines(ctx, views.DefaultMinFlights)
//	if errors.Is(err, store.ErrDataUnavailable) {
//	    // the exporter has not produced the files yet
//	}
//
// # Error Handling
//
// Services return sentinel errors wrapped with context. Handlers translate
// them with errors.Is:
//
//	- ErrUnknownTable and ErrUnsupportedFormat for bad download requests
//	- ErrUnknownChart for an unregistered chart
//	- store.ErrDataUnavailable when a KPI file is missing or unreadable
//	- views.ErrAirlineNotFound and views.ErrNegativeThreshold from the views
package services
