// Package units rebases production quantities onto tonnes.
//
// Only mass-bearing units have a non-zero factor. Count, area and volume
// units, unknown labels and empty labels all convert to zero, so they never
// contribute to a converted-quantity sum. Conversion never fails.
package units

import (
	"sort"

	"github.com/agentstation/vbpmap/pkg/dictionary"
)

// Common is the label of the unit every quantity is converted to.
const Common = "TON"

// Converter normalizes unit labels and applies conversion factors.
// It is immutable and safe for concurrent use.
type Converter struct {
	factors  map[string]float64
	synonyms map[string]string
}

// New creates a converter. Keys of both maps are expected in
// dictionary.UnitLabel form.
func New(factors map[string]float64, synonyms map[string]string) *Converter {
	c := &Converter{
		factors:  make(map[string]float64, len(factors)),
		synonyms: make(map[string]string, len(synonyms)),
	}
	for k, v := range factors {
		c.factors[dictionary.UnitLabel(k)] = v
	}
	for k, v := range synonyms {
		c.synonyms[dictionary.UnitLabel(k)] = dictionary.UnitLabel(v)
	}
	return c
}

// FromDictionary creates a converter from a dictionary's unit tables.
func FromDictionary(d *dictionary.Dictionary) *Converter {
	return New(d.UnitFactors(), d.UnitSynonyms())
}

// Default creates a converter from the built-in dictionary.
func Default() *Converter {
	return FromDictionary(dictionary.MustDefault())
}

// Normalize upper-cases and trims a label and applies the synonym table.
func (c *Converter) Normalize(label string) string {
	u := dictionary.UnitLabel(label)
	if s, ok := c.synonyms[u]; ok {
		return s
	}
	return u
}

// Factor returns the factor onto tonnes for a label. The boolean reports
// whether the label is known at all; unknown labels have factor 0.
func (c *Converter) Factor(label string) (float64, bool) {
	f, ok := c.factors[c.Normalize(label)]
	return f, ok
}

// ToCommon converts quantity in unit label to tonnes.
func (c *Converter) ToCommon(quantity float64, label string) float64 {
	if quantity == 0 {
		return 0
	}
	f, _ := c.Factor(label)
	return quantity * f
}

// Convertible reports whether quantities in label add to converted sums.
func (c *Converter) Convertible(label string) bool {
	f, _ := c.Factor(label)
	return f != 0
}

// Entry is one row of the conversion table.
type Entry struct {
	Unit        string  `json:"unit" yaml:"unit"`
	Factor      float64 `json:"factor" yaml:"factor"`
	Convertible bool    `json:"convertible" yaml:"convertible"`
}

// Table lists every known unit, convertible units first then by label.
func (c *Converter) Table() []Entry {
	out := make([]Entry, 0, len(c.factors))
	for u, f := range c.factors {
		out = append(out, Entry{Unit: u, Factor: f, Convertible: f != 0})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Convertible != out[j].Convertible {
			return out[i].Convertible
		}
		return out[i].Unit < out[j].Unit
	})
	return out
}
