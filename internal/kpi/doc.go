// Package kpi defines the four precomputed airline KPI tables shared by the
// exporter and the dashboard.
//
// Column names are identical in the source database, in the Parquet files and
// in downloads. Each row type carries parquet struct tags for the file format
// and a column-keyed set of scan targets for SELECT * results.
package kpi
