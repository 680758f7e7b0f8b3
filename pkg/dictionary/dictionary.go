// Package dictionary holds the static reconciliation data: header aliases,
// municipality and product spelling aliases, unit synonyms and unit factors.
//
// A Dictionary is built once, from the embedded defaults optionally merged
// with a user YAML file, and is read-only afterwards. It is safe to share
// across goroutines.
package dictionary

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/vbpmap/pkg/canonical"
	"github.com/agentstation/vbpmap/pkg/errors"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Canonical field names that spreadsheet headers are mapped onto.
const (
	FieldYear         = "ano"
	FieldSeason       = "safra"
	FieldMunicipality = "municipio"
	FieldRegion       = "regional_idr"
	FieldProduct      = "produto"
	FieldUnit         = "unidade"
	FieldArea         = "area"
	FieldQuantity     = "producao"
	FieldSlaughter    = "abate"
	FieldValue        = "valor"
)

var knownFields = map[string]bool{
	FieldYear: true, FieldSeason: true, FieldMunicipality: true, FieldRegion: true,
	FieldProduct: true, FieldUnit: true, FieldArea: true, FieldQuantity: true,
	FieldSlaughter: true, FieldValue: true,
}

// File is the on-disk YAML layout.
type File struct {
	Columns        map[string]string  `yaml:"columns,omitempty"`
	Municipalities map[string]string  `yaml:"municipality_aliases,omitempty"`
	Products       map[string]string  `yaml:"product_aliases,omitempty"`
	UnitSynonyms   map[string]string  `yaml:"unit_synonyms,omitempty"`
	UnitFactors    map[string]float64 `yaml:"unit_factors,omitempty"`
}

// Aliases maps a non-canonical key to the canonical key it stands for.
type Aliases struct {
	m map[string]string
}

// Lookup returns the alias target for key.
func (a Aliases) Lookup(key string) (string, bool) {
	v, ok := a.m[key]
	return v, ok
}

// Len returns the number of aliases.
func (a Aliases) Len() int {
	return len(a.m)
}

// Keys returns the alias keys in sorted order.
func (a Aliases) Keys() []string {
	keys := make([]string, 0, len(a.m))
	for k := range a.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dictionary is the immutable, canonicalized form of one or more Files.
type Dictionary struct {
	columns        map[string]string
	municipalities Aliases
	products       Aliases
	unitSynonyms   map[string]string
	unitFactors    map[string]float64
}

// Default returns the built-in dictionary.
func Default() (*Dictionary, error) {
	base, err := Parse(defaultsYAML)
	if err != nil {
		return nil, errors.NewConfigError("dictionary", "embedded defaults", err)
	}
	return New(base)
}

// MustDefault is Default for package-level initialization and tests.
func MustDefault() *Dictionary {
	d, err := Default()
	if err != nil {
		panic(err)
	}
	return d
}

// Load returns the built-in dictionary with the file at path merged over
// it. An empty path returns the defaults.
func Load(path string) (*Dictionary, error) {
	base, err := Parse(defaultsYAML)
	if err != nil {
		return nil, errors.NewConfigError("dictionary", "embedded defaults", err)
	}
	if path == "" {
		return New(base)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("dictionary", "reading "+path, errors.WrapIO("read", path, err))
	}
	user, err := Parse(data)
	if err != nil {
		return nil, errors.NewConfigError("dictionary", "parsing "+path, errors.WrapParse("yaml", path, err))
	}
	d, err := New(base, user)
	if err != nil {
		return nil, errors.NewConfigError("dictionary", path, err)
	}
	return d, nil
}

// Parse decodes a YAML dictionary file.
func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, err
	}
	return f, nil
}

// New builds a Dictionary from files applied in order; later entries win.
func New(files ...File) (*Dictionary, error) {
	d := &Dictionary{
		columns:        make(map[string]string),
		municipalities: Aliases{m: make(map[string]string)},
		products:       Aliases{m: make(map[string]string)},
		unitSynonyms:   make(map[string]string),
		unitFactors:    make(map[string]float64),
	}

	for _, f := range files {
		for from, to := range f.Columns {
			target := canonical.Column(to)
			if !knownFields[target] {
				return nil, errors.NewValidationError("columns", to,
					fmt.Sprintf("%q is not a known field", to))
			}
			d.columns[canonical.Column(from)] = target
		}
		for from, to := range f.Municipalities {
			addAlias(d.municipalities.m, canonical.Key(from), canonical.Key(to))
		}
		for from, to := range f.Products {
			addAlias(d.products.m, canonical.ProductKey(from), canonical.ProductKey(to))
		}
		for from, to := range f.UnitSynonyms {
			d.unitSynonyms[UnitLabel(from)] = UnitLabel(to)
		}
		for unit, factor := range f.UnitFactors {
			if factor < 0 {
				return nil, errors.NewValidationError("unit_factors", factor,
					fmt.Sprintf("factor for %q must not be negative", unit))
			}
			d.unitFactors[UnitLabel(unit)] = factor
		}
	}
	return d, nil
}

// addAlias records from -> to unless it is empty or an identity mapping.
func addAlias(m map[string]string, from, to string) {
	if from == "" || to == "" || from == to {
		return
	}
	m[from] = to
}

// UnitLabel is the case-folded, trimmed form used for every unit lookup.
func UnitLabel(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Field maps a normalized header (see canonical.Column) to its field.
func (d *Dictionary) Field(column string) (string, bool) {
	f, ok := d.columns[column]
	return f, ok
}

// Municipalities returns the municipality alias table.
func (d *Dictionary) Municipalities() Aliases {
	return d.municipalities
}

// Products returns the product alias table.
func (d *Dictionary) Products() Aliases {
	return d.products
}

// UnitSynonyms returns a copy of the unit synonym table.
func (d *Dictionary) UnitSynonyms() map[string]string {
	out := make(map[string]string, len(d.unitSynonyms))
	for k, v := range d.unitSynonyms {
		out[k] = v
	}
	return out
}

// UnitFactors returns a copy of the unit factor table.
func (d *Dictionary) UnitFactors() map[string]float64 {
	out := make(map[string]float64, len(d.unitFactors))
	for k, v := range d.unitFactors {
		out[k] = v
	}
	return out
}

// Export returns the dictionary as a File, e.g. for `--dump`.
func (d *Dictionary) Export() File {
	return File{
		Columns:        copyMap(d.columns),
		Municipalities: copyMap(d.municipalities.m),
		Products:       copyMap(d.products.m),
		UnitSynonyms:   d.UnitSynonyms(),
		UnitFactors:    d.UnitFactors(),
	}
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
