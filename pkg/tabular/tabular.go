// Package tabular reads spreadsheets into header-plus-rows tables.
//
// Workbooks (.xlsx, .xlsm) are read with excelize; CSV files have their
// delimiter sniffed and fall back to ISO-8859-1 when the bytes are not
// valid UTF-8, which is how spreadsheet exports from regional offices
// usually arrive.
package tabular

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agentstation/vbpmap/pkg/canonical"
	"github.com/agentstation/vbpmap/pkg/errors"
)

// Table is a named grid of string cells with one header row.
type Table struct {
	Name   string     // source file base name
	Sheet  string     // sheet name for workbooks, empty for CSV
	Header []string   // trimmed header cells
	Rows   [][]string // every row padded to len(Header)
}

// Options controls how a file is read.
type Options struct {
	// Sheet selects a workbook sheet by name. Empty selects the first sheet.
	Sheet string
	// NoHeader treats the first row as data and names columns col1..colN.
	NoHeader bool
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Column returns the index of the header matching name. Headers match
// ignoring case first, then ignoring accents and punctuation
// ("Município" matches "Municipio").
func (t Table) Column(name string) (int, bool) {
	name = strings.TrimSpace(name)
	for i, h := range t.Header {
		if strings.EqualFold(h, name) {
			return i, true
		}
	}
	want := canonical.Column(name)
	if want == "" {
		return -1, false
	}
	for i, h := range t.Header {
		if canonical.Column(h) == want {
			return i, true
		}
	}
	return -1, false
}

// Value returns the trimmed cell at row, col, or "" when out of range.
func (t Table) Value(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][col])
}

// Columns returns every value of column col.
func (t Table) Columns(col int) []string {
	out := make([]string, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Value(i, col)
	}
	return out
}

// FromRows builds a Table from raw rows. Blank rows are dropped and every
// row is padded or truncated to the header width.
func FromRows(name string, rows [][]string, noHeader bool) Table {
	t := Table{Name: name}

	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}

	start := 0
	if noHeader {
		t.Header = make([]string, width)
		for i := range t.Header {
			t.Header[i] = fmt.Sprintf("col%d", i+1)
		}
	} else {
		for start < len(rows) && blank(rows[start]) {
			start++
		}
		if start < len(rows) {
			t.Header = make([]string, width)
			for i, h := range rows[start] {
				t.Header[i] = strings.TrimSpace(h)
			}
			start++
		}
	}

	for _, r := range rows[start:] {
		if blank(r) {
			continue
		}
		row := make([]string, len(t.Header))
		copy(row, r)
		t.Rows = append(t.Rows, row)
	}
	return t
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ReadFile reads a workbook or CSV file, dispatching on the extension.
func ReadFile(path string, opts Options) (Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return readWorkbook(path, opts)
	case ".csv", ".txt":
		return readCSV(path, opts)
	default:
		return Table{}, errors.NewParseError(strings.TrimPrefix(ext, "."), path,
			"no reader for this extension", errors.ErrUnsupportedFormat)
	}
}
