// Package config provides centralized configuration for the KPI exporter and
// the dashboard.
//
// # Configuration Sources
//
// Configuration is assembled in increasing order of precedence:
//
//	1. Default() values
//	2. An optional YAML file (KPI_CONFIG_FILE, ./config.yaml or ./configs/config.yaml)
//	3. Environment variables
//
// # Environment Variables
//
// All variables are namespaced with KPI_ and follow the struct layout:
//
//	KPI_SERVER_PORT=8501
//	KPI_PATHS_PARQUET_DIR=data/parquet
//	KPI_DATABASE_DRIVER=mysql
//	KPI_DATABASE_HOST=localhost
//	KPI_DATABASE_USER=root
//	KPI_DATABASE_PASSWORD=secret
//	KPI_DATABASE_NAME=airline_analytics
//	KPI_DATABASE_DSN=            (overrides the fields above when set)
//	KPI_LOGGING_LEVEL=debug
//	KPI_TELEMETRY_TRACE_EXPORTER=stdout
//
// Database credentials are never compiled in; the defaults mirror a local
// MySQL instance with an empty root password.
//
// # Paths
//
// The Parquet directory is the only thing shared between the exporter and the
// dashboard. Relative paths resolve against paths.base_dir, or the working
// directory when it is empty:
//
//	cfg, err := config.Load()
//	paths, err := cfg.GetPaths()
//	file := paths.GetParquetPath("kpi_route_performance")
package config
