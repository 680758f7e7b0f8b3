package table

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/agentstation/vbpmap/pkg/manifest"
	"github.com/agentstation/vbpmap/pkg/reconcile"
	"github.com/agentstation/vbpmap/pkg/resolve"
	"github.com/agentstation/vbpmap/pkg/units"
)

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-12345, "-12,345"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCount(tt.in))
	}
}

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "1,234,567.89", FormatDecimal(decimal.RequireFromString("1234567.891")))
	assert.Equal(t, "-1,000.50", FormatDecimal(decimal.RequireFromString("-1000.5")))
	assert.Equal(t, "0.00", FormatDecimal(decimal.Zero))
}

func TestDiagnosticsToTableData(t *testing.T) {
	data := DiagnosticsToTableData(reconcile.Report{
		MunicipalityRows: []reconcile.Label{{Label: "Vila Nova", Rows: 3}},
		ProductRows:      []reconcile.Label{{Label: "Kiwi", Rows: 1200}},
	})
	assert.Equal(t, []string{"Domain", "Label", "Rows"}, data.Headers)
	assert.Equal(t, [][]string{
		{"municipality", "Vila Nova", "3"},
		{"product", "Kiwi", "1,200"},
	}, data.Rows)
}

func TestUnitsToTableData(t *testing.T) {
	c := units.New(map[string]float64{"KG": 0.001, "CB": 0}, nil)
	data := UnitsToTableData(c.Table())
	assert.Equal(t, [][]string{
		{"KG", "0.001", "yes"},
		{"CB", "0", "no"},
	}, data.Rows)
}

func TestResolutionToTableData(t *testing.T) {
	data := ResolutionToTableData(resolve.Resolution{
		Attempts: []resolve.Attempt{
			{Strategy: resolve.StrategyCorrection, Outcome: resolve.Skipped},
			{Strategy: resolve.StrategyExact, Candidate: "soja", Outcome: resolve.Matched},
		},
	})
	assert.Equal(t, [][]string{
		{"1", resolve.StrategyCorrection.String(), "-", "skipped"},
		{"2", resolve.StrategyExact.String(), "soja", "matched"},
	}, data.Rows)
}

func TestManifestToTableData(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	data := ManifestToTableData([]manifest.Entry{{Name: "vbp_2023.xlsx", ModTime: at, Size: 20480}})
	assert.Equal(t, [][]string{{"vbp_2023.xlsx", "20,480", "2024-03-01T12:00:00Z"}}, data.Rows)
}

func TestFilesToTableData(t *testing.T) {
	data := FilesToTableData([]FileRow{
		{Name: "a.xlsx", Stats: reconcile.Stats{RowsRead: 10, Records: 8, RowsDropped: 2, UnmatchedProductRows: 1}, Duration: 1500 * time.Microsecond},
		{Name: "b.xlsx", Err: errors.New("rejected")},
	})
	assert.Equal(t, []string{"a.xlsx", "10", "8", "2", "1", "2ms", "ok"}, data.Rows[0])
	assert.Equal(t, "skipped", data.Rows[1][6])
	assert.Len(t, data.ColumnAlignment, len(data.Headers))
}
