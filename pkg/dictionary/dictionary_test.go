package dictionary_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/vbpmap/pkg/dictionary"
	"github.com/agentstation/vbpmap/pkg/errors"
)

func TestDefault(t *testing.T) {
	d, err := dictionary.Default()
	require.NoError(t, err)

	field, ok := d.Field("safra")
	assert.True(t, ok)
	assert.Equal(t, dictionary.FieldSeason, field)

	field, ok = d.Field("nr_seab")
	assert.True(t, ok)
	assert.Equal(t, dictionary.FieldRegion, field)

	field, ok = d.Field("vbp")
	assert.True(t, ok)
	assert.Equal(t, dictionary.FieldValue, field)

	_, ok = d.Field("observacao")
	assert.False(t, ok)

	target, ok := d.Municipalities().Lookup("arapuan")
	assert.True(t, ok)
	assert.Equal(t, "arapua", target)

	target, ok = d.Municipalities().Lookup("sao jorge do oeste")
	assert.True(t, ok)
	assert.Equal(t, "sao jorge d oeste", target)

	target, ok = d.Products().Lookup("brocolos")
	assert.True(t, ok)
	assert.Equal(t, "brocolis", target)

	assert.Equal(t, 9, d.Municipalities().Len())
	assert.Equal(t, 3, d.Products().Len())

	assert.Equal(t, "TON", d.UnitSynonyms()["T"])
	assert.Equal(t, "", d.UnitSynonyms()["NAN"])
	assert.InDelta(t, 0.001, d.UnitFactors()["KG"], 1e-12)
	assert.Equal(t, 0.0, d.UnitFactors()["M³"])
}

func TestAccessorsReturnCopies(t *testing.T) {
	d := dictionary.MustDefault()
	d.UnitFactors()["KG"] = 99
	d.UnitSynonyms()["T"] = "X"
	assert.InDelta(t, 0.001, d.UnitFactors()["KG"], 1e-12)
	assert.Equal(t, "TON", d.UnitSynonyms()["T"])
}

func TestLoadMergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dictionary.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
columns:
  "Cultura/Criação": produto
municipality_aliases:
  "Bela Vista do Caroba": "Bela Vista da Caroba"
product_aliases:
  "Brocolos": "Brocolis Ninja"
unit_factors:
  "sc": 0.06
`), 0o644))

	d, err := dictionary.Load(path)
	require.NoError(t, err)

	field, ok := d.Field("cultura_criacao")
	assert.True(t, ok)
	assert.Equal(t, dictionary.FieldProduct, field)

	target, _ := d.Municipalities().Lookup("bela vista do caroba")
	assert.Equal(t, "bela vista da caroba", target)

	// later files win
	target, _ = d.Products().Lookup("brocolos")
	assert.Equal(t, "brocolis ninja", target)

	assert.InDelta(t, 0.06, d.UnitFactors()["SC"], 1e-12)
	// defaults survive
	assert.Equal(t, 9+1, d.Municipalities().Len())
}

func TestLoadEmptyPath(t *testing.T) {
	d, err := dictionary.Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, d.Products().Len())
}

func TestLoadErrors(t *testing.T) {
	_, err := dictionary.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("columns:\n  ano: colheita\n"), 0o644))
	_, err = dictionary.Load(bad)
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
	assert.True(t, errors.IsValidationError(err))
}

func TestNewRejectsNegativeFactor(t *testing.T) {
	_, err := dictionary.New(dictionary.File{UnitFactors: map[string]float64{"KG": -1}})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestAliasesDropIdentity(t *testing.T) {
	d, err := dictionary.New(dictionary.File{
		Municipalities: map[string]string{"Arapuã": "ARAPUA", "": "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, d.Municipalities().Len())
	assert.Empty(t, d.Municipalities().Keys())
}

func TestExport(t *testing.T) {
	f := dictionary.MustDefault().Export()
	assert.Equal(t, "arapua", f.Municipalities["arapuan"])
	assert.Equal(t, dictionary.FieldQuantity, f.Columns["quantidade"])
}
