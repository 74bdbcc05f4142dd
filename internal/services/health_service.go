package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"airlinekpi/internal/files"
	"airlinekpi/internal/kpi"
)

// DataChecker is what readiness needs from the KPI loader
type DataChecker interface {
	Load(ctx context.Context) (*kpi.Dataset, error)
	GetStats() map[string]interface{}
	Dir() string
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	buildID   string
	data      DataChecker
	discovery *files.Discovery
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// SystemStats represents system statistics
type SystemStats struct {
	UptimeSeconds  float64                `json:"uptime_seconds"`
	ParquetFiles   int                    `json:"parquet_files"`
	TotalSizeBytes int64                  `json:"total_size_bytes"`
	LastExport     *time.Time             `json:"last_export,omitempty"`
	Cache          map[string]interface{} `json:"cache"`
	GoVersion      string                 `json:"go_version"`
	OS             string                 `json:"os"`
	Arch           string                 `json:"arch"`
}

// NewHealthService creates a health service without build information
func NewHealthService(version string, data DataChecker, logger *slog.Logger) *HealthService {
	return NewHealthServiceWithBuildInfo(version, "", "", data, logger)
}

// NewHealthServiceWithBuildInfo creates a new health service with build information
func NewHealthServiceWithBuildInfo(version, buildTime, buildID string, data DataChecker, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("build_id", buildID),
		slog.String("parquet_dir", data.Dir()))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		buildID:   buildID,
		data:      data,
		discovery: files.NewDiscovery(data.Dir()),
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("version", hs.version),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready only when all four KPI files load
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["data"] = hs.checkDataHealth(ctx)

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.buildID != "" {
		result["build_id"] = hs.buildID
	}

	return result
}

// SystemStats returns system statistics
func (hs *HealthService) SystemStats(ctx context.Context) (SystemStats, error) {
	stats := SystemStats{
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
		Cache:         hs.data.GetStats(),
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
	}

	found, err := hs.discovery.FindParquetFiles(".")
	if err != nil {
		// an empty or missing directory is a valid state before the first export
		hs.logger.DebugContext(ctx, "SystemStats: parquet directory unreadable",
			slog.String("error", err.Error()))
		return stats, nil
	}

	stats.ParquetFiles = len(found)
	for _, f := range found {
		stats.TotalSizeBytes += f.Size
	}
	if latest, ok := files.GetLatestFile(found); ok {
		stats.LastExport = &latest.ModTime
	}
	return stats, nil
}

func (hs *HealthService) checkDataHealth(ctx context.Context) ServiceHealth {
	ds, err := hs.data.Load(ctx)
	if err != nil {
		msg := fmt.Sprintf("KPI data error: %v", err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			msg = "KPI data check interrupted"
		}
		hs.logger.WarnContext(ctx, "readiness: KPI data not loadable", slog.String("error", err.Error()))
		return ServiceHealth{
			Status:  "not_ready",
			Message: msg,
		}
	}

	total := 0
	for _, t := range kpi.Tables() {
		total += ds.Len(t)
	}

	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d KPI tables loaded (%d rows)", len(kpi.Tables()), total),
		Uptime:  time.Since(hs.startTime).String(),
	}
}

// GetDetailedHealth returns comprehensive health information
func (hs *HealthService) GetDetailedHealth(ctx context.Context) map[string]interface{} {
	stats, _ := hs.SystemStats(ctx)

	return map[string]interface{}{
		"health":    hs.HealthCheck(ctx),
		"readiness": hs.ReadinessCheck(ctx),
		"liveness":  hs.LivenessCheck(ctx),
		"stats":     stats,
	}
}
