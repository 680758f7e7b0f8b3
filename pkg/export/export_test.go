package export_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/vbpmap/pkg/aggregate"
	"github.com/agentstation/vbpmap/pkg/catalogs"
	"github.com/agentstation/vbpmap/pkg/errors"
	"github.com/agentstation/vbpmap/pkg/export"
	"github.com/agentstation/vbpmap/pkg/logging"
	"github.com/agentstation/vbpmap/pkg/manifest"
	"github.com/agentstation/vbpmap/pkg/pipeline"
	"github.com/agentstation/vbpmap/pkg/reconcile"
)

func testResult(t *testing.T) *pipeline.Result {
	t.Helper()
	arapua := catalogs.Municipality{Name: "Arapuã", Code: "4101655", Region: "Ivaiporã", MesoRegion: "Norte Central", Matched: true}
	soja := catalogs.Product{ShortName: "Soja", Chain: "Grãos", SubChain: "Oleaginosas", Matched: true}
	lost := catalogs.UnmatchedMunicipality("Cidade Perdida")

	records := []reconcile.Record{
		{Year: 2023, MunicipalityLabel: "Arapuã", Municipality: arapua, ProductLabel: "Soja", Product: soja,
			Unit: "TON", Value: decimal.RequireFromString("1234.56"), Quantity: 10.4, ConvertedQuantity: 10.4, Area: 3.5, Origin: "vbp_2023.xlsx"},
		{Year: 2024, MunicipalityLabel: "Cidade Perdida", Municipality: lost, ProductLabel: "Soja", Product: soja,
			Unit: "TON", Value: decimal.RequireFromString("10"), Quantity: 1, ConvertedQuantity: 1, Origin: "vbp_2324.xlsx"},
	}

	diag := reconcile.NewDiagnostics()
	diag.AddMunicipality("Cidade Perdida")

	return &pipeline.Result{
		Records:     records,
		Aggregates:  aggregate.Compute(records),
		Detailed:    aggregate.ComputeDetailed(records),
		Overview:    aggregate.Summarize(records),
		Diagnostics: diag,
		Manifest:    []manifest.Entry{{Name: "vbp_2023.xlsx", ModTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Size: 10}},
		Fingerprint: "abc123",
		Skipped: []error{
			errors.NewFileError("vbp_sem_produto.xlsx", "missing required columns", []string{"produto"}, errors.ErrFileRejected),
		},
	}
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestWriterWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public", "data")
	log := logging.NewTestLogger(t)
	w := export.NewWriter(dir, export.WithRecords(export.FormatYAML), export.WithLogger(log.Logger))

	written, err := w.Write(testResult(t))
	require.NoError(t, err)
	assert.Len(t, written, 7)
	for _, p := range written {
		assert.FileExists(t, p)
	}
	log.AssertContains(t, "Wrote output files")

	agg := readJSON(t, filepath.Join(dir, export.AggregatedFile))
	meta := agg["metadata"].(map[string]any)
	assert.Equal(t, 2023.0, meta["anoMin"])
	assert.Equal(t, 2024.0, meta["anoMax"])
	assert.Equal(t, 1.0, meta["totalMunicipios"])
	assert.Equal(t, "abc123", meta["fingerprint"])
	assert.InDelta(t, 1244.56, meta["valorTotal"], 1e-9)

	ts := agg["timeSeries"].([]any)
	require.Len(t, ts, 2)
	first := ts[0].(map[string]any)
	assert.Equal(t, 2023.0, first["ano"])
	assert.InDelta(t, 1234.56, first["valor"], 1e-9)
	assert.Contains(t, agg, "topProdutosAno")
	assert.Contains(t, agg, "byCadeiaSubcadeia")

	byMun := agg["byMunicipio"].([]any)
	require.Len(t, byMun, 2)
	assert.Equal(t, "4101655", byMun[0].(map[string]any)["cod_ibge"])

	det := readJSON(t, filepath.Join(dir, export.DetailedFile))
	mapData := det["mapData"].([]any)
	require.Len(t, mapData, 1, "rows without a code are dropped")
	row := mapData[0].(map[string]any)
	assert.Equal(t, map[string]any{
		"a": 2023.0, "c": "4101655", "m": "Arapuã", "r": "Ivaiporã",
		"v": 1235.0, "p": 10.0, "ar": 4.0,
	}, row)

	byMunProduct := det["byAnoProdutoMunicipio"].([]any)
	require.Len(t, byMunProduct, 1)
	assert.Equal(t, "4101655", byMunProduct[0].(map[string]any)["cod"])
	assert.Equal(t, "Soja", byMunProduct[0].(map[string]any)["n"])

	products := readJSON(t, filepath.Join(dir, export.ProductMapFile))
	assert.Equal(t, map[string]any{
		"subcadeias": []any{"Oleaginosas"},
		"produtos":   map[string]any{"Oleaginosas": []any{"Soja"}},
	}, products["Grãos"])

	geo := readJSON(t, filepath.Join(dir, export.GeoMapFile))
	assert.Contains(t, geo, "Norte Central")
	assert.NotContains(t, geo, "Unmatched")

	diag := readJSON(t, filepath.Join(dir, export.DiagnosticsFile))
	assert.Equal(t, []any{"Cidade Perdida"}, diag["unmatched_municipalities"])
	assert.Equal(t, []any{}, diag["unmatched_products"])
	skipped := diag["skipped_files"].([]any)
	require.Len(t, skipped, 1)
	assert.Equal(t, "vbp_sem_produto.xlsx", skipped[0].(map[string]any)["file"])
	assert.Equal(t, []any{"produto"}, skipped[0].(map[string]any)["missing"])

	doc, err := manifest.ReadFile(filepath.Join(dir, export.ManifestFile))
	require.NoError(t, err)
	assert.Equal(t, "abc123", doc.Fingerprint)
	require.Len(t, doc.Files, 1)

	records, err := os.ReadFile(filepath.Join(dir, "records.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(records), "produto_conciso: Soja")
	assert.Contains(t, string(records), "valor: \"1234.56\"")

	leftovers, err := filepath.Glob(filepath.Join(dir, ".*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temporary files are renamed away")
}

func TestWriterWithoutRecords(t *testing.T) {
	dir := t.TempDir()
	written, err := export.NewWriter(dir, export.WithLogger(logging.NewNopLogger())).Write(testResult(t))
	require.NoError(t, err)
	assert.Len(t, written, 6)
	assert.NoFileExists(t, filepath.Join(dir, "records.yaml"))
	assert.NoFileExists(t, filepath.Join(dir, "records.json"))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want export.Format
		ok   bool
	}{
		{"", export.FormatNone, true},
		{"json", export.FormatJSON, true},
		{"yml", export.FormatYAML, true},
		{"yaml", export.FormatYAML, true},
		{"xml", export.FormatNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := export.ParseFormat(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "yaml", export.FormatYAML.String())
	assert.False(t, export.Format(9).IsValid())
}

func TestSQLite(t *testing.T) {
	res := testResult(t)
	path := filepath.Join(t.TempDir(), "vbp.sqlite")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, export.SQLite(context.Background(), path, res.Records, res.Aggregates, res.Detailed))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&n))
	assert.Equal(t, 2, n)

	var value string
	require.NoError(t, db.QueryRow(`SELECT value FROM records WHERE year = 2023`).Scan(&value))
	assert.Equal(t, "1234.56", value)

	var year int
	var total float64
	require.NoError(t, db.QueryRow(`SELECT year, value FROM time_series ORDER BY position LIMIT 1`).Scan(&year, &total))
	assert.Equal(t, 2023, year)
	assert.InDelta(t, 1234.56, total, 1e-9)

	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM map_data`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOptimizeGeoJSON(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "mun_PR.json")
	out := filepath.Join(dir, "municipios.geojson")
	require.NoError(t, os.WriteFile(in, []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature",
			 "properties": {"CodIbge": 410165, "Nome": "Arapuã"},
			 "geometry": {"type": "Polygon", "coordinates": [[[-51.123456, -24.987654], [-51.1, -24.9]]]}},
			{"type": "Feature",
			 "properties": {"CodIbge": "4127700"},
			 "geometry": null}
		]
	}`), 0o644))

	require.NoError(t, export.OptimizeGeoJSON(in, out, 4))

	doc := readJSON(t, out)
	features := doc["features"].([]any)
	require.Len(t, features, 2)

	first := features[0].(map[string]any)
	assert.Equal(t, "0410165", first["properties"].(map[string]any)["CodIbge"])
	assert.Equal(t, "Arapuã", first["properties"].(map[string]any)["Nome"])
	ring := first["geometry"].(map[string]any)["coordinates"].([]any)[0].([]any)
	assert.Equal(t, []any{-51.1235, -24.9877}, ring[0])

	second := features[1].(map[string]any)
	assert.Equal(t, "4127700", second["properties"].(map[string]any)["CodIbge"])
	assert.Nil(t, second["geometry"])
}

func TestOptimizeGeoJSONErrors(t *testing.T) {
	dir := t.TempDir()
	err := export.OptimizeGeoJSON(filepath.Join(dir, "missing.json"), filepath.Join(dir, "out.json"), 4)
	var ioErr *errors.IOError
	assert.True(t, errors.As(err, &ioErr))

	in := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"type": "Feature"}`), 0o644))
	err = export.OptimizeGeoJSON(in, filepath.Join(dir, "out.json"), 4)
	var parseErr *errors.ParseError
	assert.True(t, errors.As(err, &parseErr))
}
