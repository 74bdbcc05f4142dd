package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"airlinekpi/internal/kpi"
)

// ErrMissingTables reports KPI files absent from the Parquet directory
var ErrMissingTables = errors.New("KPI files missing")

// FileValidator checks the Parquet directory before the exporter writes to
// it or the dashboard reads from it.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputDirectory checks that dir holds a regular, non-empty file for
// every KPI table. Unlike a load, it reports all missing files at once.
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Parquet directory does not exist",
			slog.String("directory", dir))
		return fmt.Errorf("parquet directory %s does not exist", dir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	var missing []string
	for _, table := range kpi.Tables() {
		if err := v.ValidateFile(filepath.Join(dir, table.FileName())); err != nil {
			missing = append(missing, table.FileName())
		}
	}

	if len(missing) > 0 {
		v.logger.Warn("KPI files missing",
			slog.String("directory", dir),
			slog.Any("files", missing))
		return fmt.Errorf("%w in %s: %s", ErrMissingTables, dir, strings.Join(missing, ", "))
	}

	v.logger.Debug("Parquet directory validated",
		slog.String("directory", dir),
		slog.Int("files_found", len(kpi.Tables())))
	return nil
}

// ValidateOutputDirectory ensures the output directory exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Info("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateFile checks that path is a readable, non-empty regular file
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file %s is empty", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}
