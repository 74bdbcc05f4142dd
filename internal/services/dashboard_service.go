package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"airlinekpi/internal/charts"
	"airlinekpi/internal/files"
	"airlinekpi/internal/infrastructure"
	"airlinekpi/internal/kpi"
	"airlinekpi/internal/store"
	"airlinekpi/internal/views"
)

// DatasetLoader is the part of store.Loader the dashboard depends on
type DatasetLoader interface {
	Load(ctx context.Context) (*kpi.Dataset, error)
	Reload(ctx context.Context) (*kpi.Dataset, error)
	Tables() []store.TableStatus
	GetStats() map[string]interface{}
	Dir() string
}

// ChartID names a rendered chart
type ChartID string

const (
	ChartAirlineVolume ChartID = "airlines-volume"
	ChartAirlineDelay  ChartID = "airlines-delay"
	ChartRouteTop      ChartID = "routes-top"
	ChartAirportVolume ChartID = "airports-volume"
	ChartAirportDelay  ChartID = "airports-delay"
	ChartTrends        ChartID = "trends"
)

// ChartParams carries the widget state a chart depends on
type ChartParams struct {
	MinFlights int64
	Airline    string
	Width      int
	Height     int
}

// Download formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// TableInfo describes one KPI file for the tables listing
type TableInfo struct {
	Table    kpi.Table  `json:"table"`
	File     string     `json:"file"`
	Exists   bool       `json:"exists"`
	Size     int64      `json:"size_bytes"`
	Modified *time.Time `json:"modified,omitempty"`
	Rows     *int       `json:"rows,omitempty"`
}

// DashboardService computes the four dashboard views and their charts from
// the memoized KPI dataset.
type DashboardService struct {
	loader    DatasetLoader
	discovery *files.Discovery
	metrics   *infrastructure.BusinessMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewDashboardService creates a dashboard service over loader
func NewDashboardService(loader DatasetLoader, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		loader:    loader,
		discovery: files.NewDiscovery(loader.Dir()),
		metrics:   metrics,
		tracer:    otel.Tracer("airlinekpi/services"),
		logger:    logger.With(slog.String("service", "dashboard")),
	}
}

// observe loads the dataset and runs fn inside a span, recording how long
// the view took.
func observe[T any](ctx context.Context, s *DashboardService, view string, fn func(*kpi.Dataset) (T, error)) (T, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard."+view, trace.WithAttributes(attribute.String("view", view)))
	defer span.End()

	start := time.Now()
	var result T

	ds, err := s.loader.Load(ctx)
	if err == nil {
		result, err = fn(ds)
	}

	infrastructure.RecordViewRender(ctx, s.metrics, view, time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "view failed",
			slog.String("view", view),
			slog.String("error", err.Error()))
	}
	return result, err
}

// Airlines returns view A for the given minimum flight count
func (s *DashboardService) Airlines(ctx context.Context, minFlights int64) (*views.AirlineResult, error) {
	return observe(ctx, s, "airlines", func(ds *kpi.Dataset) (*views.AirlineResult, error) {
		return views.AirlineView(ds.Airlines, minFlights)
	})
}

// Routes returns view B
func (s *DashboardService) Routes(ctx context.Context) (*views.RouteResult, error) {
	return observe(ctx, s, "routes", func(ds *kpi.Dataset) (*views.RouteResult, error) {
		return views.RouteView(ds.Routes), nil
	})
}

// Airports returns view C
func (s *DashboardService) Airports(ctx context.Context) (*views.AirportResult, error) {
	return observe(ctx, s, "airports", func(ds *kpi.Dataset) (*views.AirportResult, error) {
		return views.AirportView(ds.Airports), nil
	})
}

// Trends returns view D for an airline code. An empty code selects the
// first code in sorted order.
func (s *DashboardService) Trends(ctx context.Context, code string) (*views.TrendResult, error) {
	return observe(ctx, s, "trends", func(ds *kpi.Dataset) (*views.TrendResult, error) {
		return views.TrendView(ds.Airlines, ds.Trends, code)
	})
}

// AirlineCodes returns the selectable airline codes
func (s *DashboardService) AirlineCodes(ctx context.Context) ([]string, error) {
	return observe(ctx, s, "airline_codes", func(ds *kpi.Dataset) ([]string, error) {
		return views.AirlineCodes(ds.Airlines), nil
	})
}

// Chart renders one SVG chart. The SVG is rendered in full before it is
// returned so a failure never yields a partial image.
func (s *DashboardService) Chart(ctx context.Context, id ChartID, params ChartParams) ([]byte, error) {
	opts := charts.Options{Width: params.Width, Height: params.Height}
	var buf bytes.Buffer

	render := func(draw func() error) ([]byte, error) {
		if err := draw(); err != nil {
			return nil, err
		}
		infrastructure.RecordChartRender(ctx, s.metrics, string(id))
		return buf.Bytes(), nil
	}

	switch id {
	case ChartAirlineVolume, ChartAirlineDelay:
		result, err := s.Airlines(ctx, params.MinFlights)
		if err != nil {
			return nil, err
		}
		return render(func() error {
			if id == ChartAirlineVolume {
				return charts.BarChart(&buf, "Top Airlines by Total Flights", "",
					airlineBars(result.ByVolume, false), opts)
			}
			return charts.BarChart(&buf, "Avg Arrival Delay by Airline", "minutes, Lower is Better",
				airlineBars(result.ByDelay, true), opts)
		})

	case ChartRouteTop:
		result, err := s.Routes(ctx)
		if err != nil {
			return nil, err
		}
		bars := make([]charts.Bar, 0, len(result.ChartOrder))
		for _, r := range result.ChartOrder {
			bars = append(bars, charts.Bar{Label: r.Label, Value: float64(r.TotalFlights)})
		}
		return render(func() error {
			return charts.HorizontalBarChart(&buf, fmt.Sprintf("Top %d Busiest Airline Routes", views.TopRoutes), bars, opts)
		})

	case ChartAirportVolume, ChartAirportDelay:
		result, err := s.Airports(ctx)
		if err != nil {
			return nil, err
		}
		return render(func() error {
			if id == ChartAirportVolume {
				return charts.BarChart(&buf, "Busiest Airports", "departures",
					airportBars(result.Busiest, false), opts)
			}
			return charts.BarChart(&buf, "Worst Airports by Arrival Delay", "minutes",
				airportBars(result.WorstDelay, true), opts)
		})

	case ChartTrends:
		result, err := s.Trends(ctx, params.Airline)
		if err != nil {
			return nil, err
		}
		series := make([]charts.Series, 0, len(result.Series))
		for _, ys := range result.Series {
			line := charts.Series{Name: fmt.Sprint(ys.Year)}
			for _, p := range ys.Points {
				line.X = append(line.X, float64(p.Month))
				line.Y = append(line.Y, p.Delay)
			}
			series = append(series, line)
		}
		return render(func() error {
			return charts.LineChart(&buf, "Monthly Arrival Delay Trend ("+result.Code+")",
				"Month", "Avg Arrival Delay (min)", series, opts)
		})
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownChart, id)
}

func airlineBars(rows []kpi.AirlineKPI, delay bool) []charts.Bar {
	bars := make([]charts.Bar, 0, len(rows))
	for _, r := range rows {
		v := float64(r.TotalFlights)
		if delay {
			v = r.WeightedAvgArrDelay
		}
		bars = append(bars, charts.Bar{Label: r.AirlineCode, Value: v})
	}
	return bars
}

func airportBars(rows []kpi.AirportKPI, delay bool) []charts.Bar {
	bars := make([]charts.Bar, 0, len(rows))
	for _, r := range rows {
		v := float64(r.TotalFlights)
		if delay {
			v = r.WeightedAvgArrDelay
		}
		bars = append(bars, charts.Bar{Label: r.Airport, Value: v})
	}
	return bars
}

// ParseFormat normalizes a download format. Empty means CSV.
func ParseFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ContentType returns the media type of a download format
func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// DownloadName is the attachment file name of a table download
func DownloadName(table kpi.Table, format string) string {
	return table.String() + "." + format
}

// ResolveTable maps a table name to its KPI table
func ResolveTable(name string) (kpi.Table, error) {
	table, ok := kpi.ParseTable(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return table, nil
}

// Download writes the full table in format to w. The file is built in
// memory first, so w sees nothing when the table cannot be loaded.
func (s *DashboardService) Download(ctx context.Context, name, format string, w io.Writer) error {
	table, err := ResolveTable(name)
	if err != nil {
		return err
	}
	format, err = ParseFormat(format)
	if err != nil {
		return err
	}

	_, err = observe(ctx, s, "download", func(ds *kpi.Dataset) (struct{}, error) {
		header, rows, err := ds.Rows(table)
		if err != nil {
			return struct{}{}, err
		}

		var buf bytes.Buffer
		switch format {
		case FormatXLSX:
			err = files.WriteXLSX(&buf, table.String(), header, rows)
		default:
			err = files.WriteCSV(&buf, header, rows, files.CSVOptions{})
		}
		if err != nil {
			return struct{}{}, fmt.Errorf("encode %s: %w", table, err)
		}

		if _, err := buf.WriteTo(w); err != nil {
			return struct{}{}, err
		}

		s.logger.InfoContext(ctx, "table downloaded",
			slog.String("table", table.String()),
			slog.String("format", format),
			slog.Int("rows", len(rows)))
		return struct{}{}, nil
	})
	return err
}

// Tables lists the four KPI files with their size on disk and, when
// loaded, their row count.
func (s *DashboardService) Tables(ctx context.Context) []TableInfo {
	loaded := make(map[kpi.Table]int)
	for _, st := range s.loader.Tables() {
		loaded[st.Table] = st.Rows
	}

	out := make([]TableInfo, 0, len(kpi.Tables()))
	for _, table := range kpi.Tables() {
		info := TableInfo{Table: table, File: table.FileName()}
		if fi, ok := s.discovery.Stat(table.FileName()); ok {
			info.Exists = true
			info.Size = fi.Size
			info.Modified = &fi.ModTime
		}
		if n, ok := loaded[table]; ok {
			info.Rows = &n
		}
		out = append(out, info)
	}
	return out
}

// Reload drops the memoized dataset and reads every file again
func (s *DashboardService) Reload(ctx context.Context) ([]store.TableStatus, error) {
	s.logger.InfoContext(ctx, "reloading KPI data", slog.String("dir", s.loader.Dir()))
	if _, err := s.loader.Reload(ctx); err != nil {
		s.logger.ErrorContext(ctx, "KPI reload failed", slog.String("error", err.Error()))
		return nil, err
	}
	return s.loader.Tables(), nil
}

// CacheStats returns the loader statistics
func (s *DashboardService) CacheStats() map[string]interface{} {
	return s.loader.GetStats()
}
