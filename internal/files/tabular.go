package files

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// utf8BOM helps Excel recognise UTF-8 CSV files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOptions configures WriteCSV
type CSVOptions struct {
	BOMPrefix bool
}

// WriteCSV writes a header and rows as CSV
func WriteCSV(w io.Writer, header []string, rows [][]any, opts CSVOptions) error {
	if opts.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if len(header) > 0 {
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	record := make([]string, len(header))
	for i, row := range rows {
		record = record[:0]
		for _, v := range row {
			record = append(record, FormatValue(v))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes a header and rows as a single-sheet workbook
func WriteXLSX(w io.Writer, sheet string, header []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = xlsxValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	_, err = f.WriteTo(w)
	return err
}

// FormatValue renders a cell for text output. NaN, the marker for a NULL
// delay, renders as an empty cell.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		if math.IsNaN(val) {
			return ""
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

func xlsxValue(v any) any {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil
	}
	return v
}
