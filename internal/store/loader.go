package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"airlinekpi/internal/config"
	"airlinekpi/internal/files"
	"airlinekpi/internal/infrastructure"
	"airlinekpi/internal/kpi"
)

// ErrDataUnavailable wraps every failure to read a KPI file
var ErrDataUnavailable = errors.New("KPI data unavailable")

// entry is one memoized file
type entry struct {
	table    kpi.Table
	rows     any
	count    int
	loadedAt time.Time
}

// TableStatus describes a memoized table
type TableStatus struct {
	Table    kpi.Table `json:"table"`
	Path     string    `json:"path"`
	Rows     int       `json:"rows"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Loader reads KPI tables from a Parquet directory and memoizes them by
// absolute file path.
type Loader struct {
	dir     string
	paths   *config.Paths
	entries map[string]entry
	mutex   sync.RWMutex
	group   singleflight.Group

	// bumped by Invalidate; reads started under an older generation are
	// not memoized
	generation uint64

	hitCount  int64
	missCount int64
	reads     int64

	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
}

// Option configures a Loader
type Option func(*Loader)

// WithMetrics records cache hits and misses
func WithMetrics(m *infrastructure.BusinessMetrics) Option {
	return func(l *Loader) { l.metrics = m }
}

// NewLoader creates a loader for the Parquet files in dir
func NewLoader(dir string, logger *slog.Logger, opts ...Option) *Loader {
	l := &Loader{
		dir:     dir,
		paths:   &config.Paths{ParquetDir: dir},
		entries: make(map[string]entry),
		logger:  infrastructure.WithComponent(logger, "store"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dir returns the Parquet directory
func (l *Loader) Dir() string {
	return l.dir
}

// Path returns the absolute path of table's file
func (l *Loader) Path(table kpi.Table) string {
	path := l.paths.GetParquetPath(table.String())
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// Load returns all four tables, reading the files not yet in memory in
// parallel. The first failure cancels the reads that have not started.
func (l *Loader) Load(ctx context.Context) (*kpi.Dataset, error) {
	var ds kpi.Dataset
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		ds.Airlines, err = l.Airlines(ctx)
		return err
	})
	g.Go(func() (err error) {
		ds.Routes, err = l.Routes(ctx)
		return err
	})
	g.Go(func() (err error) {
		ds.Airports, err = l.Airports(ctx)
		return err
	})
	g.Go(func() (err error) {
		ds.Trends, err = l.Trends(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Airlines returns kpi_airline_performance
func (l *Loader) Airlines(ctx context.Context) ([]kpi.AirlineKPI, error) {
	return load[kpi.AirlineKPI](ctx, l, kpi.AirlinePerformance)
}

// Routes returns kpi_route_performance. The route label is not stored; it is
// derived by kpi.RouteKPI.Route on use.
func (l *Loader) Routes(ctx context.Context) ([]kpi.RouteKPI, error) {
	return load[kpi.RouteKPI](ctx, l, kpi.RoutePerformance)
}

// Airports returns kpi_airport_performance
func (l *Loader) Airports(ctx context.Context) ([]kpi.AirportKPI, error) {
	return load[kpi.AirportKPI](ctx, l, kpi.AirportPerformance)
}

// Trends returns kpi_monthly_trends
func (l *Loader) Trends(ctx context.Context) ([]kpi.MonthlyTrend, error) {
	return load[kpi.MonthlyTrend](ctx, l, kpi.MonthlyTrends)
}

func load[T any](ctx context.Context, l *Loader, table kpi.Table) ([]T, error) {
	path := l.Path(table)

	if rows, ok := l.lookup(path); ok {
		l.countLookup(ctx, table, true)
		return rows.([]T), nil
	}
	l.countLookup(ctx, table, false)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", table.FileName(), err)
	}

	gen := l.currentGeneration()
	v, err, _ := l.group.Do(flightKey(path, gen), func() (any, error) {
		// a concurrent call may have filled the entry before this one started
		if rows, ok := l.lookup(path); ok {
			return rows, nil
		}

		start := time.Now()
		rows, err := files.ReadParquet[T](path)
		l.mutex.Lock()
		l.reads++
		l.mutex.Unlock()
		if err != nil {
			l.logger.ErrorContext(ctx, "failed to load KPI table",
				slog.String("table", table.String()),
				slog.String("path", path),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: %s: %w", ErrDataUnavailable, table.FileName(), err)
		}

		l.store(path, gen, entry{table: table, rows: rows, count: len(rows), loadedAt: time.Now()})

		l.logger.InfoContext(ctx, "KPI table loaded",
			slog.String("table", table.String()),
			slog.Int("rows", len(rows)),
			slog.Duration("duration", time.Since(start)))
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}

func flightKey(path string, gen uint64) string {
	return fmt.Sprintf("%s#%d", path, gen)
}

func (l *Loader) currentGeneration() uint64 {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.generation
}

// store memoizes e unless the cache was invalidated after gen was taken
func (l *Loader) store(path string, gen uint64, e entry) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if gen != l.generation {
		return false
	}
	l.entries[path] = e
	return true
}

func (l *Loader) lookup(path string) (any, bool) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	e, ok := l.entries[path]
	if !ok {
		return nil, false
	}
	return e.rows, true
}

func (l *Loader) countLookup(ctx context.Context, table kpi.Table, hit bool) {
	l.mutex.Lock()
	if hit {
		l.hitCount++
	} else {
		l.missCount++
	}
	l.mutex.Unlock()
	infrastructure.RecordCacheLookup(ctx, l.metrics, table.String(), hit)
}

// Invalidate drops every memoized table. The next Load reads the files again.
func (l *Loader) Invalidate() {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.entries = make(map[string]entry)
	l.generation++
	l.logger.Info("KPI cache invalidated")
}

// Reload invalidates the cache and loads every table again
func (l *Loader) Reload(ctx context.Context) (*kpi.Dataset, error) {
	l.Invalidate()
	return l.Load(ctx)
}

// Tables describes the memoized tables in registry order
func (l *Loader) Tables() []TableStatus {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	var out []TableStatus
	for _, table := range kpi.Tables() {
		path := l.Path(table)
		if e, ok := l.entries[path]; ok {
			out = append(out, TableStatus{Table: e.table, Path: path, Rows: e.count, LoadedAt: e.loadedAt})
		}
	}
	return out
}

// GetStats returns cache statistics
func (l *Loader) GetStats() map[string]interface{} {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	totalRequests := l.hitCount + l.missCount
	hitRatio := float64(0)
	if totalRequests > 0 {
		hitRatio = float64(l.hitCount) / float64(totalRequests)
	}

	return map[string]interface{}{
		"entries":    len(l.entries),
		"hit_count":  l.hitCount,
		"miss_count": l.missCount,
		"hit_ratio":  hitRatio,
		"file_reads": l.reads,
	}
}
