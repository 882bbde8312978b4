// Package sheet reads the search queries of a run from a spreadsheet.
package sheet

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/go-scripts/gmaps/internal/types"
)

// ErrLegacyFormat is returned for binary .xls workbooks.
var ErrLegacyFormat = errors.New("legacy .xls workbooks are not supported, save the file as .xlsx")

// Options locates the query table inside a workbook.
type Options struct {
	Path string
	// Sheet defaults to the first sheet of the workbook.
	Sheet string
	// HeaderRow is 1-based.
	HeaderRow      int
	CategoryColumn string
	CountColumn    string
}

// ReadQueries returns one query per non-blank row below the header, in sheet
// order.
func ReadQueries(opts Options) ([]types.Query, error) {
	if strings.EqualFold(filepath.Ext(opts.Path), ".xls") {
		return nil, fmt.Errorf("%s: %w", opts.Path, ErrLegacyFormat)
	}
	if opts.HeaderRow < 1 {
		return nil, fmt.Errorf("header row must be at least 1, got %d", opts.HeaderRow)
	}

	f, err := excelize.OpenFile(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Path, err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < opts.HeaderRow {
		return nil, fmt.Errorf("sheet %q has no header row %d", sheet, opts.HeaderRow)
	}

	header := rows[opts.HeaderRow-1]
	catIdx := columnIndex(header, opts.CategoryColumn)
	if catIdx < 0 {
		return nil, fmt.Errorf("sheet %q: column %q not found in row %d", sheet, opts.CategoryColumn, opts.HeaderRow)
	}
	countIdx := columnIndex(header, opts.CountColumn)
	if countIdx < 0 {
		return nil, fmt.Errorf("sheet %q: column %q not found in row %d", sheet, opts.CountColumn, opts.HeaderRow)
	}

	var queries []types.Query
	for i, row := range rows[opts.HeaderRow:] {
		rowNum := opts.HeaderRow + i + 1
		category := strings.TrimSpace(cell(row, catIdx))
		rawCount := strings.TrimSpace(cell(row, countIdx))
		if category == "" && rawCount == "" {
			continue
		}
		if category == "" {
			return nil, fmt.Errorf("row %d: empty %s", rowNum, opts.CategoryColumn)
		}
		count, err := parseCount(rawCount)
		if err != nil {
			return nil, fmt.Errorf("row %d: %s %q: %w", rowNum, opts.CountColumn, rawCount, err)
		}
		queries = append(queries, types.Query{Category: category, RequestedCount: count})
	}
	return queries, nil
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

// MaxCount bounds the number of listings a single row may request.
const MaxCount = math.MaxInt32

// parseCount accepts whole numbers, including the "5.0" form spreadsheets
// produce for numeric cells.
func parseCount(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		switch {
		case n < 0:
			return 0, errors.New("must not be negative")
		case n > MaxCount:
			return 0, fmt.Errorf("must not exceed %d", MaxCount)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a number")
	}
	if f != math.Trunc(f) {
		return 0, errors.New("must be a whole number")
	}
	if f < 0 {
		return 0, errors.New("must not be negative")
	}
	if f > MaxCount {
		return 0, fmt.Errorf("must not exceed %d", MaxCount)
	}
	return int(f), nil
}
