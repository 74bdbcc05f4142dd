// Package exporter copies the KPI tables from the source database into
// Parquet files.
//
// The exporter is a plain batch: each table in kpi.Tables() order is read
// with SELECT * and written to <dir>/<table>.parquet, replacing the previous
// file atomically. The first failure stops the run; files already written
// are left in place.
//
// Example usage:
//
//	db, err := exporter.Open(ctx, cfg.Database)
//	exp := exporter.New(db, paths.ParquetDir, logger)
//	summary, err := exp.Run(ctx)
//
// Files are written and read through package files, which the dashboard
// loader shares:
//
//	rows, err := files.ReadParquet[kpi.RouteKPI](path)
package exporter
