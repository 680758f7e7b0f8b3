package aggregate_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/vbpmap/pkg/aggregate"
	"github.com/agentstation/vbpmap/pkg/catalogs"
	"github.com/agentstation/vbpmap/pkg/reconcile"
)

var (
	arapua = catalogs.Municipality{Name: "Arapuã", Code: "4101150", Region: "Ivaiporã", MesoRegion: "Norte Central", Matched: true}
	toledo = catalogs.Municipality{Name: "Toledo", Code: "4127700", Region: "Toledo", MesoRegion: "Oeste", Matched: true}
	soja   = catalogs.Product{ShortName: "Soja", Chain: "Grãos", SubChain: "Oleaginosas", Matched: true}
	milho  = catalogs.Product{ShortName: "Milho 1a safra", Chain: "Grãos", SubChain: "Cereais", Matched: true}
	frango = catalogs.Product{ShortName: "Frango", Chain: "Pecuária", SubChain: "Aves", Matched: true}
)

func rec(year int, m catalogs.Municipality, p catalogs.Product, value string, qty float64) reconcile.Record {
	return reconcile.Record{
		Year:              year,
		MunicipalityLabel: m.Name,
		Municipality:      m,
		ProductLabel:      p.ShortName,
		Product:           p,
		Unit:              "TON",
		Value:             decimal.RequireFromString(value),
		Quantity:          qty,
		ConvertedQuantity: qty,
		Area:              qty / 3,
		Origin:            "a.xlsx",
	}
}

func fixture() []reconcile.Record {
	return []reconcile.Record{
		rec(2023, arapua, soja, "100.10", 30),
		rec(2023, toledo, soja, "900.25", 300),
		rec(2023, toledo, milho, "400", 120),
		rec(2024, arapua, soja, "150.05", 45),
		rec(2024, toledo, frango, "1200", 0),
		rec(2024, catalogs.UnmatchedMunicipality("Xyz"), catalogs.UnclassifiedProduct("abacate"), "10", 0),
	}
}

func TestDedupe(t *testing.T) {
	records := fixture()
	dup := records[0]
	dup.Origin = "b.xlsx"
	changed := records[0]
	changed.Value = decimal.RequireFromString("100.11")

	out := aggregate.Dedupe(append(records, dup, changed))
	require.Len(t, out, len(records)+1)
	assert.Equal(t, "a.xlsx", out[0].Origin, "first occurrence wins")
	assert.True(t, out[len(out)-1].Value.Equal(changed.Value))
}

func TestComputeMassConservation(t *testing.T) {
	records := fixture()
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Value)
	}

	set := aggregate.Compute(records)
	for _, name := range set.Names() {
		if name == aggregate.TopProductsByYear {
			continue
		}
		table, ok := set.Table(name)
		require.True(t, ok)
		assert.True(t, total.Equal(table.Total()), "table %s total %s != %s", name, table.Total(), total)
	}

	detailed := aggregate.ComputeDetailed(records)
	for _, name := range []string{aggregate.ByYearChain, aggregate.ByYearSubChain, aggregate.ByYearProduct, aggregate.ByYearRegion, aggregate.ByYearProductRegion} {
		table, ok := detailed.Table(name)
		require.True(t, ok)
		assert.True(t, total.Equal(table.Total()), name)
	}

	// Tables keyed by code drop the unmatched municipality.
	mapData, ok := detailed.Table(aggregate.MapData)
	require.True(t, ok)
	assert.Equal(t, "2750.4", mapData.Total().String())
	for _, r := range mapData.Rows {
		assert.NotEmpty(t, r.Key(mapData.Column(aggregate.DimCode)))
	}
}

func TestComputeTableNames(t *testing.T) {
	set := aggregate.Compute(fixture())
	assert.Equal(t, []string{
		"time_series", "by_chain", "by_sub_chain", "by_region", "by_meso_region",
		"by_chain_sub_chain", "by_product", "by_municipality", "evolution_chain",
		"evolution_region", "top_products_by_year", "hierarchy",
	}, set.Names())

	_, ok := set.Table("nope")
	assert.False(t, ok)
}

func TestComputeOrdering(t *testing.T) {
	set := aggregate.Compute(fixture())

	ts, _ := set.Table(aggregate.TimeSeries)
	require.Len(t, ts.Rows, 2)
	assert.Equal(t, "2023", ts.Rows[0].Key(0))
	assert.Equal(t, "1400.35", ts.Rows[0].Value.String())
	assert.Equal(t, "2024", ts.Rows[1].Key(0))
	assert.Equal(t, 3, ts.Rows[1].Count)

	byChain, _ := set.Table(aggregate.ByChain)
	require.Len(t, byChain.Rows, 3)
	assert.Equal(t, "Grãos", byChain.Rows[0].Key(0))
	assert.Equal(t, "Pecuária", byChain.Rows[1].Key(0))
	assert.Equal(t, "Unclassified", byChain.Rows[2].Key(0))

	evo, _ := set.Table(aggregate.EvolutionChain)
	var years []string
	for _, r := range evo.Rows {
		years = append(years, r.Key(0))
	}
	assert.Equal(t, []string{"2023", "2024", "2024", "2024"}, years)
	assert.Equal(t, "Pecuária", evo.Rows[1].Key(1), "value desc within a year")
}

func TestComputeDeterministic(t *testing.T) {
	records := fixture()
	reversed := make([]reconcile.Record, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	a := aggregate.Compute(records)
	b := aggregate.Compute(reversed)
	for _, name := range a.Names() {
		ta, _ := a.Table(name)
		tb, _ := b.Table(name)
		require.Len(t, tb.Rows, len(ta.Rows), name)
		for i := range ta.Rows {
			assert.Equal(t, ta.Rows[i].Keys, tb.Rows[i].Keys, name)
			assert.True(t, ta.Rows[i].Value.Equal(tb.Rows[i].Value), name)
		}
	}
}

func TestTopProductsTiesAndLimit(t *testing.T) {
	var records []reconcile.Record
	names := []string{"Feijão", "Batata", "Arroz", "Café", "Trigo"}
	for _, n := range names {
		records = append(records, rec(2023, toledo, catalogs.Product{ShortName: n, Chain: "Grãos", SubChain: "X"}, "50", 1))
	}
	records = append(records, rec(2023, toledo, soja, "99", 1))
	records = append(records, rec(2024, toledo, soja, "1", 1))

	set := aggregate.ComputeTopN(records, 3)
	top, _ := set.Table(aggregate.TopProductsByYear)

	var got []string
	for _, r := range top.Rows {
		got = append(got, r.Key(0)+" "+r.Key(1))
	}
	assert.Equal(t, []string{"2023 Soja", "2023 Arroz", "2023 Batata", "2024 Soja"}, got)

	none := aggregate.ComputeTopN(records, 0)
	empty, _ := none.Table(aggregate.TopProductsByYear)
	assert.Empty(t, empty.Rows)
}

func TestByMunicipalityCollapsesSpellings(t *testing.T) {
	// "Arapuan" and "Arapuã" both resolved to the same registry entry.
	a := rec(2023, arapua, soja, "100", 10)
	a.MunicipalityLabel = "Arapuan"
	b := rec(2023, arapua, soja, "50", 5)
	b.MunicipalityLabel = "Arapuã"

	set := aggregate.Compute([]reconcile.Record{a, b})
	table, _ := set.Table(aggregate.ByMunicipality)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"4101150", "Arapuã", "Ivaiporã", "Norte Central"}, table.Rows[0].Keys)
	assert.Equal(t, "150", table.Rows[0].Value.String())
	assert.Equal(t, 15.0, table.Rows[0].Quantity)
	assert.Equal(t, 2, table.Rows[0].Count)
}

func TestSummarize(t *testing.T) {
	s := aggregate.Summarize(fixture())
	assert.Equal(t, []int{2023, 2024}, s.Years)
	assert.Equal(t, 2023, s.MinYear)
	assert.Equal(t, 2024, s.MaxYear)
	assert.Equal(t, 2, s.TotalMunicipalities)
	assert.Equal(t, 4, s.TotalProducts)
	assert.Equal(t, 3, s.TotalChains)
	assert.Equal(t, "2760.4", s.Value.String())
	assert.Equal(t, 6, s.Records)

	assert.Equal(t, []string{"Grãos", "Pecuária", "Unclassified"}, s.Filters.Chains)
	assert.Equal(t, []string{"Ivaiporã", "Toledo", "Unmatched"}, s.Filters.Regions)
	require.Len(t, s.Filters.Municipalities, 2)
	assert.Equal(t, "Arapuã", s.Filters.Municipalities[0].Name)

	empty := aggregate.Summarize(nil)
	assert.Zero(t, empty.MinYear)
	assert.True(t, empty.Value.IsZero())
}

func TestTrees(t *testing.T) {
	records := fixture()

	products := aggregate.ProductTree(records)
	require.Contains(t, products, "Grãos")
	assert.Equal(t, []string{"Cereais", "Oleaginosas"}, products["Grãos"].SubChains)
	assert.Equal(t, []string{"Soja"}, products["Grãos"].Products["Oleaginosas"])
	assert.Equal(t, []string{"ABACATE"}, products["Unclassified"].Products["Unclassified"])

	geo := aggregate.GeoTree(records)
	require.Contains(t, geo, "Oeste")
	assert.Equal(t, []string{"Toledo"}, geo["Oeste"].Regions)
	require.Len(t, geo["Oeste"].Municipalities["Toledo"], 1)
	assert.Equal(t, "4127700", geo["Oeste"].Municipalities["Toledo"][0].Code)
}
