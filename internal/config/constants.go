package config

import "time"

// Application constants
const (
	AppName    = "Airline Performance Dashboard"
	AppVersion = "1.0.0"

	// File Paths (relative to BaseDir)
	DefaultParquetDir = "data/parquet"
	DefaultLogsDir    = "logs"

	// Parquet file extension appended to each KPI table name
	ParquetExt = ".parquet"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultHTTPTimeout = 30 * time.Second

	// Log Settings
	DefaultLogLevel = "info"
)
