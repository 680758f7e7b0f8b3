package tabular

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/agentstation/vbpmap/pkg/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readCSV(path string, opts Options) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, errors.WrapIO("read", path, err)
	}
	return ReadCSV(bytes.NewReader(data), filepath.Base(path), opts)
}

// ReadCSV reads a delimited file from r. The delimiter is ';' when the
// first line has more semicolons than commas, ',' otherwise.
func ReadCSV(r io.Reader, name string, opts Options) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, errors.WrapIO("read", name, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), charmap.ISO8859_1.NewDecoder()))
		if err != nil {
			return Table{}, errors.WrapParse("csv", name, err)
		}
		data = decoded
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return Table{}, errors.WrapParse("csv", name, err)
	}
	return FromRows(name, rows, opts.NoHeader), nil
}

func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}
