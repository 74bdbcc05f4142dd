package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

const readBatchSize = 1024

// WriteParquet writes rows to path. The file is first written next to its
// destination and then renamed over it, so readers never observe a partial
// file. The parent directory is created when missing.
func WriteParquet[T any](path string, rows []T) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	w := parquet.NewGenericWriter[T](tmp)
	if _, err := w.Write(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	committed = true
	return nil
}

// ReadParquet reads every row of the Parquet file at path. Columns are
// matched to T by name; columns T does not declare are skipped.
func ReadParquet[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pf, err := parquet.OpenFile(f, info.Size(), parquet.SkipBloomFilters(true))
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	r := parquet.NewGenericReader[T](pf)
	defer r.Close()

	rows := make([]T, 0, r.NumRows())
	buf := make([]T, readBatchSize)
	for {
		n, err := r.Read(buf)
		rows = append(rows, buf[:n]...)

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
		if n == 0 {
			break
		}
	}

	return rows, nil
}
