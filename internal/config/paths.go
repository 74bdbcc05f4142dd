package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved file system locations shared by the exporter
// and the dashboard. The Parquet directory is the only contract between them.
type Paths struct {
	BaseDir    string
	ParquetDir string
	LogsDir    string
}

// GetPaths resolves the configured paths. Relative entries are joined onto
// BaseDir, or the working directory when BaseDir is empty.
func (c *Config) GetPaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	return &Paths{
		BaseDir:    base,
		ParquetDir: resolve(base, c.Paths.ParquetDir),
		LogsDir:    resolve(base, c.Paths.LogsDir),
	}, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// EnsureDirectories creates the Parquet and logs directories if needed
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ParquetDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetParquetPath returns the Parquet file path for a KPI table name
func (p *Paths) GetParquetPath(table string) string {
	return filepath.Join(p.ParquetDir, table+ParquetExt)
}

// FileExists reports whether path exists and is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("Resolved paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("parquet_dir", p.ParquetDir),
		slog.String("logs_dir", p.LogsDir))
}
