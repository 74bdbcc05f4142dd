// Command exporter copies the four KPI tables from the configured database
// into Parquet files for the dashboard.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"airlinekpi/internal/config"
	"airlinekpi/internal/exporter"
	"airlinekpi/internal/infrastructure"
	"airlinekpi/internal/kpi"
	"airlinekpi/internal/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			slog.Error("Export failed", slog.String("error", err.Error()))
		}
		_ = infrastructure.CloseLogFile()
		os.Exit(1)
	}
	_ = infrastructure.CloseLogFile()
}

// run parses args, exports and prints a summary to out. Flags override the
// configuration file and KPI_* environment variables.
func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("exporter", flag.ContinueOnError)
	fs.SetOutput(out)
	configFile := fs.String("config", "", "YAML config file (defaults to config.yaml when present)")
	outDir := fs.String("out", "", "output directory for Parquet files (defaults to paths.parquet_dir)")
	driver := fs.String("driver", "", "database driver: mysql or sqlite")
	dsn := fs.String("dsn", "", "data source name, overrides the database host/user/name settings")
	table := fs.String("table", "", "export a single KPI table instead of all four")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		cfg *config.Config
		err error
	)
	if *configFile != "" {
		cfg, err = config.LoadFile(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if *driver != "" {
		cfg.Database.Driver = *driver
	}
	if *dsn != "" {
		cfg.Database.DSN = *dsn
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	dir := *outDir
	if dir == "" {
		paths, err := cfg.GetPaths()
		if err != nil {
			return fmt.Errorf("failed to resolve paths: %w", err)
		}
		dir = paths.ParquetDir
	}

	// metrics have no scraper in a batch run; traces still help with slow queries
	telemetry := cfg.Telemetry
	telemetry.EnableMetrics = false
	providers, err := infrastructure.InitializeOTel(telemetry, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()
	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	// fail before touching the database when nothing could be written
	if err := validation.NewFileValidator(logger).ValidateOutputDirectory(dir); err != nil {
		return err
	}

	db, err := exporter.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	exp := exporter.New(db, dir, logger,
		exporter.WithQueryTimeout(cfg.Database.QueryTimeout),
		exporter.WithMetrics(metrics),
		exporter.WithTracer(providers.Tracer))

	if *table != "" {
		t, ok := kpi.ParseTable(*table)
		if !ok {
			return fmt.Errorf("%w: %q", exporter.ErrUnknownTable, *table)
		}
		result, err := exp.ExportTable(ctx, t)
		if err != nil {
			return err
		}
		printSummary(out, exporter.Summary{Tables: []exporter.TableResult{result}, Duration: result.Duration})
		return nil
	}

	summary, err := exp.Run(ctx)
	if err != nil {
		if len(summary.Tables) > 0 {
			fmt.Fprintln(out, "Partial export; the remaining files were left untouched:")
			printSummary(out, summary)
		}
		return err
	}
	printSummary(out, summary)
	return nil
}

func printSummary(out io.Writer, summary exporter.Summary) {
	for _, t := range summary.Tables {
		fmt.Fprintf(out, "  %-26s %12s rows  %s\n", t.Table, humanize.Comma(int64(t.Rows)), t.Path)
	}
	fmt.Fprintf(out, "Exported %d table(s), %s rows in %s\n",
		len(summary.Tables), humanize.Comma(int64(summary.TotalRows())), summary.Duration.Round(time.Millisecond))
}
