package canonical_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/vbpmap/pkg/canonical"
)

func TestKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"Arapuã", "arapua"},
		{"Arapuan", "arapuan"},
		{"São Jorge d'Oeste", "sao jorge d oeste"},
		{"  Pérola   do\tOeste ", "perola do oeste"},
		{"FEIJÃO (1ª safra)", "feijao 1a safra"},
		{"Brócolis", "brocolis"},
		{"Milho--2ª/Safra", "milho 2a safra"},
		{"ÁREA (ha)", "area ha"},
		{"日本", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, canonical.Key(tt.in))
		})
	}
}

func TestProductKey(t *testing.T) {
	assert.Equal(t, "feijao 1 safra", canonical.ProductKey("Feijão 1ª safra"))
	assert.Equal(t, "feijao 1 safra", canonical.ProductKey("feijao 1o safra"))
	assert.Equal(t, "milho 2", canonical.ProductKey("Milho 2a"))
	assert.Equal(t, "soja", canonical.ProductKey("Soja"))
	// letters that are not ordinal markers stay
	assert.Equal(t, "leite 1b", canonical.ProductKey("Leite 1b"))
	assert.Equal(t, "a", canonical.ProductKey("a"))
}

func TestIdempotent(t *testing.T) {
	inputs := []string{
		"Santa Terezinha do Itaipu",
		"Feijão 1ª safra",
		"  MILHO 2o  ",
		"Alho-Porró",
		"12a3o",
		"",
	}
	for _, in := range inputs {
		k := canonical.Key(in)
		assert.Equal(t, k, canonical.Key(k), in)
		p := canonical.ProductKey(in)
		assert.Equal(t, p, canonical.ProductKey(p), in)
	}
}

func TestColumn(t *testing.T) {
	assert.Equal(t, "area_ha", canonical.Column("Área (ha)"))
	assert.Equal(t, "valor_r", canonical.Column("Valor (R$)"))
	assert.Equal(t, "nr_seab", canonical.Column("NR/SEAB"))
	assert.Equal(t, "municipio", canonical.Column("Município"))
}

func TestSingular(t *testing.T) {
	assert.Equal(t, "ovo", canonical.Singular("ovos"))
	assert.Equal(t, "milho", canonical.Singular("milho"))
	assert.Equal(t, "", canonical.Singular(""))
}
