// Package files owns the on-disk formats of the KPI tables.
//
// Parquet is the contract between the exporter and the dashboard:
// WriteParquet replaces a file atomically and ReadParquet reads it back by
// column name. CSV and XLSX encoders serve table downloads, and Discovery
// lists the Parquet files present in a directory.
//
// Example usage:
//
//	err := files.WriteParquet(path, rows)
//	rows, err := files.ReadParquet[kpi.AirportKPI](path)
//
//	found, err := files.NewDiscovery(paths.ParquetDir).FindParquetFiles("")
package files
