package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"airlinekpi/internal/charts"
	"airlinekpi/internal/config"
	apierrors "airlinekpi/internal/errors"
	"airlinekpi/internal/infrastructure"
	customMiddleware "airlinekpi/internal/middleware"
	"airlinekpi/internal/services"
	"airlinekpi/internal/store"
	handlers "airlinekpi/internal/transport/http"
	"airlinekpi/internal/validation"
)

var (
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(config.AppVersion))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application is the dashboard process: configuration, services, router
// and HTTP server wired together.
type Application struct {
	Config           *config.Config
	Paths            *config.Paths
	Router           *chi.Mux
	Server           *http.Server
	Loader           *store.Loader
	DashboardService *services.DashboardService
	HealthService    *services.HealthService
	ErrorHandler     *apierrors.ErrorHandler
	Logger           *slog.Logger
	OTelProviders    *infrastructure.OTelProviders
	Metrics          *infrastructure.BusinessMetrics
}

// NewApplication loads configuration, initializes the process logger and
// builds the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New builds the application from an explicit configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("build_id", BuildID))

	paths, err := cfg.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Telemetry.Environment == "development"),
	}

	app.initializeServices()

	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}

	app.createServer()

	return app, nil
}

// initializeServices wires the loader into the dashboard and health services.
// Both share one loader so readiness and views see the same cache.
func (a *Application) initializeServices() {
	a.Loader = store.NewLoader(a.Paths.ParquetDir, a.Logger, store.WithMetrics(a.Metrics))
	a.DashboardService = services.NewDashboardService(a.Loader, a.Metrics, a.Logger)
	a.HealthService = services.NewHealthServiceWithBuildInfo(config.AppVersion, BuildTime, BuildID, a.Loader, a.Logger)
}

// setupRouter builds the chi router. Middleware order:
// RequestID → RealIP → OTel → Logger → Recovery → SecurityHeaders → RateLimit → Timeout
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	// set before any Mount so subrouters inherit them
	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// Prometheus scrapes skip the full middleware stack
	r.Method(http.MethodGet, "/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler))

	pageHandler, err := handlers.NewPageHandler(a.DashboardService, a.Logger, a.ErrorHandler)
	if err != nil {
		return err
	}
	chartHandler := handlers.NewChartHandler(a.DashboardService, a.Logger, a.ErrorHandler)
	dashboardHandler := handlers.NewDashboardHandler(a.DashboardService, a.Logger, a.ErrorHandler)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger, a.ErrorHandler)

	r.Group(func(r chi.Router) {
		r.Use(a.requestMiddleware()...)

		r.Route("/api", func(r chi.Router) {
			r.Mount("/health", healthHandler.Routes())
			r.Get("/version", healthHandler.Version)
			r.Mount("/", dashboardHandler.Routes())
		})
		r.Mount("/charts", chartHandler.Routes())
		r.Mount("/", pageHandler.Routes())
	})

	a.Router = r
	return nil
}

// requestMiddleware is the stack every page, chart and API request passes
// through. Panics become the same RFC 7807 problem as any other error.
func (a *Application) requestMiddleware() []func(http.Handler) http.Handler {
	stack := []func(http.Handler) http.Handler{
		customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler,
		customMiddleware.StructuredLogger(a.Logger),
		apierrors.RecoveryMiddleware(a.ErrorHandler),
		customMiddleware.SecurityHeaders,
	}

	if a.Config.Security.RateLimit.Enabled {
		stack = append(stack, customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	return append(stack,
		customMiddleware.Timeout(requestTimeout(a.Config.Server), a.Logger),
		customMiddleware.Compress(5, "text/html", charts.ContentType, "application/json", "text/csv"),
	)
}

// requestTimeout leaves the handler a second to write its own 504 before
// the server's write deadline cuts the connection.
func requestTimeout(cfg config.ServerConfig) time.Duration {
	if cfg.WriteTimeout > 2*time.Second {
		return cfg.WriteTimeout - time.Second
	}
	return cfg.WriteTimeout
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start loads the KPI files and starts serving. A missing or unreadable
// file is fatal: the dashboard never serves without its data.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("addr", a.Server.Addr),
		slog.String("parquet_dir", a.Paths.ParquetDir))

	if err := a.preload(ctx); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	go func() {
		if err := a.Server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", "http://"+listener.Addr().String()))
	return nil
}

func (a *Application) preload(ctx context.Context) error {
	// names every missing file, where a load stops at the first one
	if err := validation.NewFileValidator(a.Logger).ValidateInputDirectory(a.Paths.ParquetDir); err != nil {
		infrastructure.WithError(a.Logger, err).ErrorContext(ctx, "KPI data could not be loaded",
			slog.String("parquet_dir", a.Paths.ParquetDir))
		return fmt.Errorf("failed to load KPI data: %w", err)
	}

	if _, err := a.Loader.Load(ctx); err != nil {
		infrastructure.WithError(a.Logger, err).ErrorContext(ctx, "KPI data could not be loaded",
			slog.String("parquet_dir", a.Paths.ParquetDir))
		return fmt.Errorf("failed to load KPI data: %w", err)
	}

	for _, status := range a.Loader.Tables() {
		a.Logger.InfoContext(ctx, "KPI table loaded",
			slog.String("table", status.Table.String()),
			slog.Int("rows", status.Rows))
	}
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or the server fails
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	// the run context may already be cancelled; shutdown gets its own
	return a.Stop(context.Background())
}
