// Package store loads the four KPI Parquet files for the dashboard and keeps
// them in memory.
//
// Each file is read at most once per absolute path until Invalidate is
// called; concurrent first reads of the same file share one disk read. The
// returned slices are shared and must be treated as read-only.
//
//	loader := store.NewLoader(paths.ParquetDir, logger)
//	ds, err := loader.Load(ctx)
package store
