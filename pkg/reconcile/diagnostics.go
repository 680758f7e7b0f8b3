package reconcile

import (
	"sort"
	"strings"
	"sync"

	"github.com/agentstation/vbpmap/pkg/constants"
)

// Diagnostics collects the raw labels that failed catalog resolution.
// It is observational only and safe for concurrent use.
type Diagnostics struct {
	mu             sync.Mutex
	municipalities map[string]int
	products       map[string]int
}

// NewDiagnostics creates an empty collector.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		municipalities: make(map[string]int),
		products:       make(map[string]int),
	}
}

// AddMunicipality records one unmatched municipality row. Blank labels
// are recorded as constants.BlankLabel.
func (d *Diagnostics) AddMunicipality(label string) {
	d.mu.Lock()
	d.municipalities[displayLabel(label)]++
	d.mu.Unlock()
}

// AddProduct records one unmatched product row. Blank labels are recorded
// as constants.BlankLabel.
func (d *Diagnostics) AddProduct(label string) {
	d.mu.Lock()
	d.products[displayLabel(label)]++
	d.mu.Unlock()
}

func displayLabel(label string) string {
	if strings.TrimSpace(label) == "" {
		return constants.BlankLabel
	}
	return label
}

// Merge adds every label of other into d.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil || other == d {
		return
	}
	other.mu.Lock()
	municipalities := copyCounts(other.municipalities)
	products := copyCounts(other.products)
	other.mu.Unlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	for k, n := range municipalities {
		d.municipalities[k] += n
	}
	for k, n := range products {
		d.products[k] += n
	}
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, n := range m {
		out[k] = n
	}
	return out
}

// UnmatchedMunicipalities returns the unmatched municipality labels, sorted.
func (d *Diagnostics) UnmatchedMunicipalities() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return sortedKeys(d.municipalities)
}

// UnmatchedProducts returns the unmatched product labels, sorted.
func (d *Diagnostics) UnmatchedProducts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return sortedKeys(d.products)
}

// Empty reports whether every label resolved.
func (d *Diagnostics) Empty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.municipalities) == 0 && len(d.products) == 0
}

// Label is an unmatched label with the number of rows that carried it.
type Label struct {
	Label string `json:"label" yaml:"label"`
	Rows  int    `json:"rows" yaml:"rows"`
}

// Report is the serializable form of Diagnostics.
type Report struct {
	UnmatchedMunicipalities []string `json:"unmatched_municipalities" yaml:"unmatched_municipalities"`
	UnmatchedProducts       []string `json:"unmatched_products" yaml:"unmatched_products"`
	MunicipalityRows        []Label  `json:"municipality_rows" yaml:"municipality_rows"`
	ProductRows             []Label  `json:"product_rows" yaml:"product_rows"`
}

// Report snapshots the collector. Row counts are ordered by count
// descending, then label.
func (d *Diagnostics) Report() Report {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Report{
		UnmatchedMunicipalities: sortedKeys(d.municipalities),
		UnmatchedProducts:       sortedKeys(d.products),
		MunicipalityRows:        byCount(d.municipalities),
		ProductRows:             byCount(d.products),
	}
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func byCount(m map[string]int) []Label {
	out := make([]Label, 0, len(m))
	for k, n := range m {
		out = append(out, Label{Label: k, Rows: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rows != out[j].Rows {
			return out[i].Rows > out[j].Rows
		}
		return out[i].Label < out[j].Label
	})
	return out
}
