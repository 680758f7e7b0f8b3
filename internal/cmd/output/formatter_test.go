package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/vbpmap/internal/cmd/table"
)

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"table", "JSON", "yaml", ""} {
		_, err := ParseFormat(in)
		assert.NoError(t, err, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestRender(t *testing.T) {
	raw := map[string]int{"records": 4}
	toTable := func() Data {
		return Data{
			Headers:         []string{"Name", "Rows"},
			Rows:            [][]string{{"vbp_2023.xlsx", "12"}},
			ColumnAlignment: []table.Align{table.AlignLeft, table.AlignRight},
		}
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatTable, raw, toTable))
	assert.Contains(t, buf.String(), "vbp_2023.xlsx")
	assert.Contains(t, buf.String(), "12")

	buf.Reset()
	require.NoError(t, Render(&buf, FormatJSON, raw, toTable))
	assert.JSONEq(t, `{"records":4}`, buf.String())

	buf.Reset()
	require.NoError(t, Render(&buf, FormatYAML, raw, toTable))
	assert.Equal(t, "records: 4\n", buf.String())
}

func TestTableFormatterStruct(t *testing.T) {
	type stats struct {
		RowsRead int    `json:"rows_read"`
		Hidden   string `json:"-"`
		Name     string
	}
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, &stats{RowsRead: 7, Hidden: "x", Name: "run"}))
	out := buf.String()
	assert.Contains(t, out, "Rows Read")
	assert.Contains(t, out, "7")
	assert.Contains(t, out, "run")
	assert.NotContains(t, out, "Hidden")
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, []string{"a"}))
	assert.JSONEq(t, `["a"]`, buf.String())
}
