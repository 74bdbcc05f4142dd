// Package app wires the dashboard process together: configuration, logging,
// OpenTelemetry, the Parquet loader, services, HTTP handlers and the server.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, config.yaml and KPI_* variables
//	2. Initialize logging and observability
//	3. Create the memoizing Parquet loader
//	4. Initialize the dashboard and health services
//	5. Set up HTTP handlers and middleware
//	6. Load all four KPI tables, then start the HTTP server
//
// Start fails when any KPI file is missing or unreadable, so the dashboard
// never serves without data.
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run waits for SIGINT or SIGTERM, then drains active requests within the
// configured shutdown timeout and flushes telemetry.
package app
