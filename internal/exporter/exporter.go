package exporter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"airlinekpi/internal/config"
	"airlinekpi/internal/files"
	"airlinekpi/internal/infrastructure"
	"airlinekpi/internal/kpi"
)

// ErrUnknownTable is returned for table names outside the KPI registry
var ErrUnknownTable = errors.New("unknown KPI table")

// Querier is the subset of *sql.DB the exporter needs
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// TableResult describes one exported table
type TableResult struct {
	Table    kpi.Table     `json:"table"`
	Rows     int           `json:"rows"`
	Path     string        `json:"path"`
	Duration time.Duration `json:"duration"`
}

// Summary describes a run. On failure it lists the tables written before
// the error.
type Summary struct {
	Tables   []TableResult `json:"tables"`
	Duration time.Duration `json:"duration"`
}

// TotalRows sums the rows of every exported table
func (s Summary) TotalRows() int {
	total := 0
	for _, t := range s.Tables {
		total += t.Rows
	}
	return total
}

// Exporter copies KPI tables into Parquet files
type Exporter struct {
	db           Querier
	outDir       string
	paths        *config.Paths
	queryTimeout time.Duration
	logger       *slog.Logger
	metrics      *infrastructure.BusinessMetrics
	tracer       trace.Tracer
}

// Option configures an Exporter
type Option func(*Exporter)

// WithQueryTimeout bounds each table's query and write
func WithQueryTimeout(d time.Duration) Option {
	return func(e *Exporter) { e.queryTimeout = d }
}

// WithMetrics records exported rows and durations
func WithMetrics(m *infrastructure.BusinessMetrics) Option {
	return func(e *Exporter) { e.metrics = m }
}

// WithTracer overrides the global tracer
func WithTracer(t trace.Tracer) Option {
	return func(e *Exporter) { e.tracer = t }
}

// New creates an exporter writing into outDir
func New(db Querier, outDir string, logger *slog.Logger, opts ...Option) *Exporter {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	e := &Exporter{
		db:     db,
		outDir: outDir,
		paths:  &config.Paths{ParquetDir: outDir},
		logger: logger.With(slog.String("component", "exporter")),
		tracer: otel.Tracer("airlinekpi/exporter"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Path returns the Parquet file path of table
func (e *Exporter) Path(table kpi.Table) string {
	return e.paths.GetParquetPath(table.String())
}

// Run exports every registered table in order and stops at the first error.
func (e *Exporter) Run(ctx context.Context) (Summary, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := e.tracer.Start(ctx, "exporter.run")
	defer span.End()

	start := time.Now()
	var summary Summary

	e.logger.InfoContext(ctx, "starting KPI export",
		slog.String("out_dir", e.outDir),
		slog.Int("tables", len(kpi.Tables())))

	for _, table := range kpi.Tables() {
		result, err := e.ExportTable(ctx, table)
		if err != nil {
			summary.Duration = time.Since(start)
			infrastructure.RecordError(ctx, err)
			return summary, err
		}
		summary.Tables = append(summary.Tables, result)
	}

	summary.Duration = time.Since(start)
	e.logger.InfoContext(ctx, "all KPI tables exported",
		slog.Int("tables", len(summary.Tables)),
		slog.Int("rows", summary.TotalRows()),
		slog.Duration("duration", summary.Duration))

	return summary, nil
}

// ExportTable exports a single table
func (e *Exporter) ExportTable(ctx context.Context, table kpi.Table) (TableResult, error) {
	if _, ok := kpi.ParseTable(string(table)); !ok {
		return TableResult{}, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}

	ctx, span := e.tracer.Start(ctx, "exporter.table",
		trace.WithAttributes(attribute.String("table", string(table))))
	defer span.End()

	if e.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.queryTimeout)
		defer cancel()
	}

	path := e.Path(table)
	start := time.Now()
	e.logger.InfoContext(ctx, "exporting table", slog.String("table", string(table)))

	var (
		rows int
		err  error
	)
	switch table {
	case kpi.AirlinePerformance:
		rows, err = exportTable[kpi.AirlineKPI](ctx, e.db, table, path)
	case kpi.RoutePerformance:
		rows, err = exportTable[kpi.RouteKPI](ctx, e.db, table, path)
	case kpi.AirportPerformance:
		rows, err = exportTable[kpi.AirportKPI](ctx, e.db, table, path)
	case kpi.MonthlyTrends:
		rows, err = exportTable[kpi.MonthlyTrend](ctx, e.db, table, path)
	}

	duration := time.Since(start)
	infrastructure.RecordExport(ctx, e.metrics, string(table), rows, duration, err)

	if err != nil {
		e.logger.ErrorContext(ctx, "table export failed",
			slog.String("table", string(table)),
			slog.String("error", err.Error()))
		return TableResult{}, fmt.Errorf("export %s: %w", table, err)
	}

	span.SetAttributes(attribute.Int("rows", rows))
	e.logger.InfoContext(ctx, "table saved",
		slog.String("table", string(table)),
		slog.String("path", path),
		slog.Int("rows", rows),
		slog.Duration("duration", duration))

	return TableResult{Table: table, Rows: rows, Path: path, Duration: duration}, nil
}

func exportTable[T any, P kpi.Record[T]](ctx context.Context, db Querier, table kpi.Table, path string) (int, error) {
	rows, err := QueryTable[T, P](ctx, db, table)
	if err != nil {
		return 0, err
	}
	if err := files.WriteParquet(path, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// QueryTable runs SELECT * against table and maps result columns to T by
// name. Columns T does not know are discarded; missing ones stay zero.
func QueryTable[T any, P kpi.Record[T]](ctx context.Context, db Querier, table kpi.Table) ([]T, error) {
	// table always comes from the registry, never from user input
	result, err := db.QueryContext(ctx, "SELECT * FROM "+string(table))
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer result.Close()

	columns, err := result.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	out := make([]T, 0)
	for result.Next() {
		var row T
		targets := P(&row).ScanTargets()

		dest := make([]any, len(columns))
		for i, col := range columns {
			if target, ok := targets[strings.ToLower(col)]; ok {
				dest[i] = target
			} else {
				dest[i] = new(any)
			}
		}

		if err := result.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(out)+1, err)
		}
		out = append(out, row)
	}

	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
