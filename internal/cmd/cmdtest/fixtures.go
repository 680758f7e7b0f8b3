// Package cmdtest builds spreadsheet fixtures for command tests.
package cmdtest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/agentstation/vbpmap/cmd/application"
	"github.com/agentstation/vbpmap/pkg/constants"
)

// WriteWorkbook writes sheets to path in the given order.
func WriteWorkbook(t testing.TB, path string, sheets map[string][][]any, order ...string) {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(name, cell, &values))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

// Settings returns default settings rooted at a fresh data directory
// holding the reference workbooks and two source files. The output
// directory is a sibling of the data directory.
//
// The sources reconcile to 4 records over 2023 and 2024. Arapuã/Soja
// resolves through an alias and a correction, and Cidade Perdida/Pitaya
// matches neither catalog.
func Settings(t testing.TB) application.Settings {
	t.Helper()
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(dataDir, constants.DirPermissions))

	WriteWorkbook(t, filepath.Join(dataDir, constants.DefaultMunicipalitiesFile), map[string][][]any{
		"Municipios": {
			{"Municipio", "CodIbge", "RegIdr", "CRegIdr", "MesoIdr"},
			{"Arapuã", 4101655, "Ivaiporã", 8, "Norte Central"},
			{"Toledo", 4127700, "Toledo", 19, "Oeste"},
		},
	}, "Municipios")

	WriteWorkbook(t, filepath.Join(dataDir, constants.DefaultProductsFile), map[string][][]any{
		constants.DefaultProductsSheet: {
			{"PRODUTO", "Cadeia", "Subcadeia"},
			{"Soja", "Grãos", "Oleaginosas"},
			{"Leite", "Bovinocultura", "Leite"},
		},
		constants.DefaultCorrectionsSheet: {
			{"Soja em grão", "Soja"},
		},
	}, constants.DefaultProductsSheet, constants.DefaultCorrectionsSheet)

	WriteWorkbook(t, filepath.Join(dataDir, "vbp_2324.xlsx"), map[string][][]any{
		"VBP": {
			{"Safra", "NR", "Município", "Cultura", "Unidade", "Produção", "Valor (R$)"},
			{2324, "Ivaiporã", "Arapuan", "Soja em grão", "t", 30, 100},
			{2324, "Toledo", "Toledo", "Leite", "MIL L", 2, 900},
			{2324, "Toledo", "Cidade Perdida", "Pitaya", "kg", 500, 10},
		},
	}, "VBP")

	WriteWorkbook(t, filepath.Join(dataDir, "vbp_2023.xlsx"), map[string][][]any{
		"VBP": {
			{"Ano", "Municipio", "Produto", "Unidade", "Producao", "Valor"},
			{2023, "Arapuã", "Soja", "TON", 15, 50},
		},
	}, "VBP")

	return application.Settings{
		DataDir:            dataDir,
		OutputDir:          filepath.Join(root, "out"),
		MunicipalitiesFile: constants.DefaultMunicipalitiesFile,
		ProductsFile:       constants.DefaultProductsFile,
		ProductsSheet:      constants.DefaultProductsSheet,
		CorrectionsSheet:   constants.DefaultCorrectionsSheet,
		Include:            constants.DefaultInclude,
		Exclude:            constants.DefaultExclude,
		Workers:            2,
		GeoJSONFile:        constants.DefaultGeoJSONFile,
		RecordsFormat:      "none",
	}
}
