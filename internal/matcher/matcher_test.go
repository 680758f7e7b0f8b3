package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		patternType PatternType
		wantType    PatternType
		wantErr     bool
	}{
		{name: "glob", pattern: "*.xlsx", patternType: Glob, wantType: Glob},
		{name: "regex", pattern: "^vbp_\\d+", patternType: Regex, wantType: Regex},
		{name: "invalid regex", pattern: "(unclosed", patternType: Regex, wantErr: true},
		{name: "invalid glob", pattern: "[", patternType: Glob, wantErr: true},
		{name: "auto glob", pattern: "*bp*.xlsx", patternType: Auto, wantType: Glob},
		{name: "auto regex", pattern: "^vbp_\\d{4}\\.xlsx$", patternType: Auto, wantType: Regex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.patternType, tt.pattern)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, m.Type())
			assert.Equal(t, tt.pattern, m.Pattern())
		})
	}
}

func TestMatchCaseInsensitive(t *testing.T) {
	m := MustNew(Glob, "*lista_produtos*", &Options{CaseInsensitive: true})
	assert.True(t, m.Match("Lista_Produtos_VBP.xlsx"))
	assert.False(t, m.Match("vbp_2023.xlsx"))

	r := MustNew(Regex, "vbp", &Options{Anchored: true})
	assert.True(t, r.Match("vbp"))
	assert.False(t, r.Match("vbp_2023"))
}

func TestSelector(t *testing.T) {
	s, err := NewSelector([]string{"*bp*.xlsx", "*BP*.xlsx", " "}, []string{"*lista_produtos*"})
	require.NoError(t, err)

	got := s.Select(
		"VBP_2020.xlsx",
		"vbp_2019.xlsx",
		"lista_produtos_vbp_2012_2024.xlsx",
		"LISTA_PRODUTOS_BP.xlsx",
		"municipios_pr.xlsx",
		"vbp_2019.xlsx",
		"notes.txt",
	)
	assert.Equal(t, []string{"VBP_2020.xlsx", "vbp_2019.xlsx"}, got)
}

func TestSelectorEmptyIncludeSelectsAll(t *testing.T) {
	s, err := NewSelector(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv", "b.xlsx"}, s.Select("b.xlsx", "a.csv"))
}

func TestPatternTypeString(t *testing.T) {
	assert.Equal(t, "glob", Glob.String())
	assert.Equal(t, "regex", Regex.String())
	assert.Equal(t, "auto", Auto.String())
	assert.Equal(t, "unknown", PatternType(9).String())
}
