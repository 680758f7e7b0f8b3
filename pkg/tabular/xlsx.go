package tabular

import (
	"io"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/vbpmap/pkg/errors"
)

func readWorkbook(path string, opts Options) (Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Table{}, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()
	return fromWorkbook(f, filepath.Base(path), opts)
}

// ReadWorkbook reads one sheet of a workbook from r.
func ReadWorkbook(r io.Reader, name string, opts Options) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, errors.WrapParse("xlsx", name, err)
	}
	defer func() { _ = f.Close() }()
	return fromWorkbook(f, name, opts)
}

// Sheets lists the sheet names of a workbook in order.
func Sheets(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()
	return f.GetSheetList(), nil
}

func fromWorkbook(f *excelize.File, name string, opts Options) (Table, error) {
	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return Table{}, errors.NewParseError("xlsx", name, "sheet "+sheet, err)
	}
	t := FromRows(name, rows, opts.NoHeader)
	t.Sheet = sheet
	return t, nil
}
