// Package aggregate computes the named rollups of a canonical record set.
//
// Every table sums value, converted quantity and area per group. Values are
// summed as decimals so totals are exact and, for a fixed input, every
// table's row order and totals are reproducible. Aggregation is a barrier:
// it runs once over the records of all files.
package aggregate

import (
	"github.com/agentstation/vbpmap/pkg/canonical"
	"github.com/agentstation/vbpmap/pkg/constants"
	"github.com/agentstation/vbpmap/pkg/reconcile"
)

// Table names produced by Compute.
const (
	TimeSeries        = "time_series"
	ByChain           = "by_chain"
	BySubChain        = "by_sub_chain"
	ByRegion          = "by_region"
	ByMesoRegion      = "by_meso_region"
	ByChainSubChain   = "by_chain_sub_chain"
	ByProduct         = "by_product"
	ByMunicipality    = "by_municipality"
	EvolutionChain    = "evolution_chain"
	EvolutionRegion   = "evolution_region"
	TopProductsByYear = "top_products_by_year"
	Hierarchy         = "hierarchy"
)

// Table names produced by ComputeDetailed.
const (
	MapData                   = "map_data"
	ByYearChain               = "by_year_chain"
	ByYearSubChain            = "by_year_sub_chain"
	ByYearProduct             = "by_year_product"
	ByYearRegion              = "by_year_region"
	ByYearProductRegion       = "by_year_product_region"
	ByYearProductMunicipality = "by_year_product_municipality"
)

// Set is an ordered collection of tables.
type Set struct {
	tables []Table
	index  map[string]int
}

func newSet(tables ...Table) *Set {
	s := &Set{tables: tables, index: make(map[string]int, len(tables))}
	for i, t := range tables {
		s.index[t.Name] = i
	}
	return s
}

// Table returns a table by name.
func (s *Set) Table(name string) (Table, bool) {
	i, ok := s.index[name]
	if !ok {
		return Table{}, false
	}
	return s.tables[i], true
}

// Tables returns the tables in computation order.
func (s *Set) Tables() []Table {
	return s.tables
}

// Names returns the table names in computation order.
func (s *Set) Names() []string {
	out := make([]string, len(s.tables))
	for i, t := range s.tables {
		out[i] = t.Name
	}
	return out
}

// Dedupe drops records equal to an earlier record in every field except
// Origin. The first occurrence is kept and order is preserved.
func Dedupe(records []reconcile.Record) []reconcile.Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]reconcile.Record, 0, len(records))
	for _, r := range records {
		id := r.Identity()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Compute builds the dashboard rollups.
func Compute(records []reconcile.Record) *Set {
	return ComputeTopN(records, constants.TopProductsPerYear)
}

// ComputeTopN is Compute with a custom number of ranked products per year.
func ComputeTopN(records []reconcile.Record, topN int) *Set {
	specs := []tableSpec{
		{name: TimeSeries, dims: []dimension{year}},
		{name: ByChain, dims: []dimension{chain}},
		{name: BySubChain, dims: []dimension{subChain}},
		{name: ByRegion, dims: []dimension{region}},
		{name: ByMesoRegion, dims: []dimension{mesoRegion}},
		{name: ByChainSubChain, dims: []dimension{chain, subChain}},
		{name: ByProduct, dims: []dimension{product, chain, subChain}},
		{name: ByMunicipality, dims: []dimension{code, municipality, region, mesoRegion}},
		{name: EvolutionChain, dims: []dimension{year, chain}},
		{name: EvolutionRegion, dims: []dimension{year, region}},
	}

	tables := make([]Table, 0, len(specs)+2)
	for _, spec := range specs {
		tables = append(tables, groupBy(records, spec))
	}
	tables = append(tables,
		topPerYear(records, topN),
		groupBy(records, tableSpec{name: Hierarchy, dims: []dimension{chain, subChain, product}}),
	)
	return newSet(tables...)
}

// topPerYear ranks products within each year by value, ties broken by
// the product's canonical key.
func topPerYear(records []reconcile.Record, n int) Table {
	t := groupBy(records, tableSpec{
		name: TopProductsByYear,
		dims: []dimension{year, product},
		tie: func(a, b Row) bool {
			return canonical.ProductKey(a.Key(1)) < canonical.ProductKey(b.Key(1))
		},
	})
	if n <= 0 {
		t.Rows = nil
		return t
	}

	kept := t.Rows[:0]
	current, rank := "", 0
	for _, r := range t.Rows {
		if r.Key(0) != current {
			current, rank = r.Key(0), 0
		}
		if rank < n {
			kept = append(kept, r)
		}
		rank++
	}
	t.Rows = kept
	return t
}

// ComputeDetailed builds the per-year cross tabulations behind the
// dashboard filters. Tables keyed by municipality code skip records whose
// municipality did not resolve.
func ComputeDetailed(records []reconcile.Record) *Set {
	hasCode := func(r reconcile.Record) bool { return r.Municipality.Code != "" }
	specs := []tableSpec{
		{name: MapData, dims: []dimension{year, code, municipality, region}, filter: hasCode},
		{name: ByYearChain, dims: []dimension{year, chain}},
		{name: ByYearSubChain, dims: []dimension{year, chain, subChain}},
		{name: ByYearProduct, dims: []dimension{year, product, chain, subChain}},
		{name: ByYearRegion, dims: []dimension{year, region, mesoRegion}},
		{name: ByYearProductRegion, dims: []dimension{year, product, chain, subChain, region, mesoRegion}},
		{name: ByYearProductMunicipality, dims: []dimension{year, product, chain, subChain, code, municipality, region}, filter: hasCode},
	}
	tables := make([]Table, 0, len(specs))
	for _, spec := range specs {
		tables = append(tables, groupBy(records, spec))
	}
	return newSet(tables...)
}
