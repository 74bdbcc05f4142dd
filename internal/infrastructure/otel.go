package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"airlinekpi/internal/config"
)

const (
	ServiceName = "airline-kpi-dashboard"
	MeterName   = "airlinekpi"
)

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	// PrometheusHTTP serves the metrics registry; nil when metrics are off.
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// InitializeOTel sets up tracing and metrics according to cfg. Disabled
// signals fall back to no-op implementations so callers never nil-check.
func InitializeOTel(cfg config.TelemetryConfig, logger *slog.Logger) (*OTelProviders, error) {
	if logger == nil {
		logger = GetLogger()
	}
	ctx := context.Background()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(config.AppVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	providers := &OTelProviders{
		Tracer: otel.Tracer(MeterName),
		Meter:  noop.NewMeterProvider().Meter(MeterName),
		Logger: logger,
	}

	if err := initializeTracing(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.InfoContext(ctx, "OpenTelemetry initialized",
		slog.String("environment", cfg.Environment),
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
}

func initializeTracing(ctx context.Context, cfg config.TelemetryConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter

	switch cfg.TraceExporter {
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		exporter = exp
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(config.AppVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.DebugContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return nil
}

// initializeMetrics wires a Prometheus reader backed by a private registry,
// so each provider owns its own /metrics output. Go runtime and process
// collectors ride along on the same registry.
func initializeMetrics(ctx context.Context, res *resource.Resource, providers *OTelProviders) error {
	registry := promclient.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion))
	providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	otel.SetMeterProvider(mp)

	providers.Logger.DebugContext(ctx, "Metrics initialized", slog.String("exporter", "prometheus"))
	return nil
}

// BusinessMetrics holds all application-specific metrics
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Dashboard metrics
	ViewRenderDuration metric.Float64Histogram
	ChartRenders       metric.Int64Counter
	CacheHits          metric.Int64Counter
	CacheMisses        metric.Int64Counter

	// Exporter metrics
	ExportRowsTotal metric.Int64Counter
	ExportDuration  metric.Float64Histogram

	SystemErrors metric.Int64Counter
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		m   BusinessMetrics
		err error
	)

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.ViewRenderDuration, err = meter.Float64Histogram(
		"dashboard_view_duration_seconds",
		metric.WithDescription("Time spent computing a dashboard view"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.ChartRenders, err = meter.Int64Counter(
		"dashboard_chart_renders_total",
		metric.WithDescription("Total number of rendered charts"),
	); err != nil {
		return nil, err
	}

	if m.CacheHits, err = meter.Int64Counter(
		"dataset_cache_hits_total",
		metric.WithDescription("Parquet loads served from memory"),
	); err != nil {
		return nil, err
	}

	if m.CacheMisses, err = meter.Int64Counter(
		"dataset_cache_misses_total",
		metric.WithDescription("Parquet loads that read the file"),
	); err != nil {
		return nil, err
	}

	if m.ExportRowsTotal, err = meter.Int64Counter(
		"export_rows_total",
		metric.WithDescription("Rows written to Parquet by the exporter"),
	); err != nil {
		return nil, err
	}

	if m.ExportDuration, err = meter.Float64Histogram(
		"export_table_duration_seconds",
		metric.WithDescription("Time spent exporting one table"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.SystemErrors, err = meter.Int64Counter(
		"system_errors_total",
		metric.WithDescription("Total number of system errors"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// Shutdown flushes and stops the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	p.Logger.DebugContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// RecordCacheLookup counts a dataset cache hit or miss for one table
func RecordCacheLookup(ctx context.Context, metrics *BusinessMetrics, table string, hit bool) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("table", table))
	if hit {
		metrics.CacheHits.Add(ctx, 1, attrs)
		return
	}
	metrics.CacheMisses.Add(ctx, 1, attrs)
}

// RecordViewRender records how long a dashboard view took to compute
func RecordViewRender(ctx context.Context, metrics *BusinessMetrics, view string, duration time.Duration, err error) {
	if metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.ViewRenderDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("view", view),
		attribute.String("status", status),
	))
}

// RecordChartRender counts one rendered chart
func RecordChartRender(ctx context.Context, metrics *BusinessMetrics, chart string) {
	if metrics == nil {
		return
	}
	metrics.ChartRenders.Add(ctx, 1, metric.WithAttributes(attribute.String("chart", chart)))
}

// RecordExport records rows and duration for one exported table
func RecordExport(ctx context.Context, metrics *BusinessMetrics, table string, rows int, duration time.Duration, err error) {
	if metrics == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("table", table)}
	if err != nil {
		metrics.SystemErrors.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.String("source", "exporter"))...))
		return
	}
	metrics.ExportRowsTotal.Add(ctx, int64(rows), metric.WithAttributes(attrs...))
	metrics.ExportDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
