package writer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/go-scripts/gmaps/internal/types"
)

// Columns labels the xlsx output, one column per Row field.
var Columns = []string{"Category", "Name", "Type", "Rating", "Review Count", "Address"}

// Row is one listing flattened for tabular output.
type Row struct {
	Category string
	types.ListingRecord
}

func (r Row) values() []any {
	return []any{r.Category, r.Name, r.Type, r.Rating, r.ReviewCount, r.Address}
}

// Rows flattens the accumulator in category order, then ordinal order.
func Rows(acc *types.Accumulator) []Row {
	var rows []Row
	for category, rs := range acc.All() {
		for _, rec := range rs {
			rows = append(rows, Row{Category: category, ListingRecord: rec})
		}
	}
	return rows
}

// FileWriter handles writing the collected listings to files
type FileWriter struct {
	sheet string
}

// New creates a FileWriter. sheet names the worksheet of xlsx output.
func New(sheet string) *FileWriter {
	if sheet == "" {
		sheet = "Listings"
	}
	return &FileWriter{sheet: sheet}
}

// WriteJSON writes the accumulator as an object keyed by category.
func (w *FileWriter) WriteJSON(path string, acc *types.Accumulator) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "    ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(acc); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return file.Close()
}

// WriteXLSX writes one row per listing under a bold header row.
func (w *FileWriter) WriteXLSX(path string, acc *types.Accumulator) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), w.sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(w.sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(Columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(w.sheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range Rows(acc) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row.values()
		if err := f.SetSheetRow(w.sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}
