package export

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/agentstation/vbpmap/pkg/aggregate"
)

// field is one member of an ordered JSON object.
type field struct {
	key   string
	value any
}

// object marshals its fields in order.
type object []field

// MarshalJSON implements json.Marshaler.
func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Field names in aggregated.json rows.
var longKeys = map[string]string{
	aggregate.DimYear:         "ano",
	aggregate.DimChain:        "cadeia",
	aggregate.DimSubChain:     "subcadeia",
	aggregate.DimProduct:      "produto_conciso",
	aggregate.DimRegion:       "regional_idr",
	aggregate.DimMesoRegion:   "meso_idr",
	aggregate.DimCode:         "cod_ibge",
	aggregate.DimMunicipality: "municipio_oficial",
}

// Field names in detailed.json rows.
var shortKeys = map[string]string{
	aggregate.DimYear:         "a",
	aggregate.DimChain:        "c",
	aggregate.DimSubChain:     "s",
	aggregate.DimProduct:      "n",
	aggregate.DimRegion:       "r",
	aggregate.DimMesoRegion:   "m",
	aggregate.DimCode:         "cod",
	aggregate.DimMunicipality: "m",
}

// Dashboard names of the aggregate tables.
var (
	aggregatedNames = []struct{ table, key string }{
		{aggregate.TimeSeries, "timeSeries"},
		{aggregate.ByChain, "byCadeia"},
		{aggregate.BySubChain, "bySubcadeia"},
		{aggregate.ByChainSubChain, "byCadeiaSubcadeia"},
		{aggregate.ByProduct, "byProduto"},
		{aggregate.ByMunicipality, "byMunicipio"},
		{aggregate.ByRegion, "byRegional"},
		{aggregate.ByMesoRegion, "byMeso"},
		{aggregate.EvolutionChain, "evolutionCadeia"},
		{aggregate.EvolutionRegion, "evolutionRegional"},
		{aggregate.TopProductsByYear, "topProdutosAno"},
		{aggregate.Hierarchy, "hierarchy"},
	}
	detailedNames = []struct{ table, key string }{
		{aggregate.MapData, "mapData"},
		{aggregate.ByYearChain, "byAnoCadeia"},
		{aggregate.ByYearSubChain, "byAnoSubcadeia"},
		{aggregate.ByYearProduct, "byAnoProduto"},
		{aggregate.ByYearRegion, "byAnoRegional"},
		{aggregate.ByYearProductRegion, "byAnoProdutoRegional"},
		{aggregate.ByYearProductMunicipality, "byAnoProdutoMunicipio"},
	}
)

// MunicipalityJSON is a municipality in filter lists.
type MunicipalityJSON struct {
	Code       string `json:"cod_ibge"`
	Name       string `json:"municipio_oficial"`
	Region     string `json:"regional_idr"`
	MesoRegion string `json:"meso_idr"`
}

// FiltersJSON lists the distinct values the dashboard filters offer.
type FiltersJSON struct {
	Years          []int              `json:"anos"`
	Chains         []string           `json:"cadeias"`
	SubChains      []string           `json:"subcadeias"`
	Products       []string           `json:"produtos"`
	Regions        []string           `json:"regionais"`
	MesoRegions    []string           `json:"mesos"`
	Municipalities []MunicipalityJSON `json:"municipios"`
}

// MetadataJSON is the metadata block of aggregated.json.
type MetadataJSON struct {
	GeneratedAt         time.Time   `json:"generatedAt"`
	Fingerprint         string      `json:"fingerprint"`
	Years               []int       `json:"anos"`
	TotalYears          int         `json:"totalAnos"`
	MinYear             int         `json:"anoMin"`
	MaxYear             int         `json:"anoMax"`
	TotalMunicipalities int         `json:"totalMunicipios"`
	TotalProducts       int         `json:"totalProdutos"`
	TotalChains         int         `json:"totalCadeias"`
	TotalValue          float64     `json:"valorTotal"`
	TotalQuantity       float64     `json:"producaoTotal"`
	TotalArea           float64     `json:"areaTotal"`
	Filters             FiltersJSON `json:"filters"`
}

func metadata(s aggregate.Summary, fingerprint string, at time.Time) MetadataJSON {
	refs := make([]MunicipalityJSON, len(s.Filters.Municipalities))
	for i, m := range s.Filters.Municipalities {
		refs[i] = MunicipalityJSON{Code: m.Code, Name: m.Name, Region: m.Region, MesoRegion: m.MesoRegion}
	}
	return MetadataJSON{
		GeneratedAt:         at,
		Fingerprint:         fingerprint,
		Years:               nonNil(s.Years),
		TotalYears:          len(s.Years),
		MinYear:             s.MinYear,
		MaxYear:             s.MaxYear,
		TotalMunicipalities: s.TotalMunicipalities,
		TotalProducts:       s.TotalProducts,
		TotalChains:         s.TotalChains,
		TotalValue:          s.Value.InexactFloat64(),
		TotalQuantity:       s.Quantity,
		TotalArea:           s.Area,
		Filters: FiltersJSON{
			Years:          nonNil(s.Filters.Years),
			Chains:         nonNil(s.Filters.Chains),
			SubChains:      nonNil(s.Filters.SubChains),
			Products:       nonNil(s.Filters.Products),
			Regions:        nonNil(s.Filters.Regions),
			MesoRegions:    nonNil(s.Filters.MesoRegions),
			Municipalities: refs,
		},
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// keyValue renders a dimension value; years are numbers.
func keyValue(dim, v string) any {
	if dim == aggregate.DimYear {
		if y, err := strconv.Atoi(v); err == nil {
			return y
		}
	}
	return v
}

// aggregatedRows renders a table with long field names and exact measures.
func aggregatedRows(t aggregate.Table) []object {
	rows := make([]object, len(t.Rows))
	for i, r := range t.Rows {
		o := make(object, 0, len(t.Dimensions)+3)
		for j, dim := range t.Dimensions {
			o = append(o, field{longKeys[dim], keyValue(dim, r.Key(j))})
		}
		o = append(o,
			field{"valor", r.Value.InexactFloat64()},
			field{"producao", r.Quantity},
			field{"area", r.Area},
		)
		rows[i] = o
	}
	return rows
}

// detailedRows renders a table with short field names and measures
// rounded to integers.
func detailedRows(t aggregate.Table) []object {
	keys := shortKeys
	if t.Name == aggregate.MapData {
		// map_data has no chain, so the code takes the short "c".
		keys = make(map[string]string, len(shortKeys))
		for k, v := range shortKeys {
			keys[k] = v
		}
		keys[aggregate.DimCode] = "c"
	}

	rows := make([]object, len(t.Rows))
	for i, r := range t.Rows {
		o := make(object, 0, len(t.Dimensions)+3)
		for j, dim := range t.Dimensions {
			o = append(o, field{keys[dim], keyValue(dim, r.Key(j))})
		}
		o = append(o,
			field{"v", r.Value.Round(0).IntPart()},
			field{"p", int64(math.Round(r.Quantity))},
			field{"ar", int64(math.Round(r.Area))},
		)
		rows[i] = o
	}
	return rows
}

// aggregatedDoc builds the aggregated.json document.
func aggregatedDoc(set *aggregate.Set, summary aggregate.Summary, fingerprint string, at time.Time) object {
	doc := object{{"metadata", metadata(summary, fingerprint, at)}}
	for _, n := range aggregatedNames {
		t, _ := set.Table(n.table)
		doc = append(doc, field{n.key, aggregatedRows(t)})
	}
	return doc
}

// detailedDoc builds the detailed.json document.
func detailedDoc(set *aggregate.Set) object {
	doc := make(object, 0, len(detailedNames))
	for _, n := range detailedNames {
		t, _ := set.Table(n.table)
		doc = append(doc, field{n.key, detailedRows(t)})
	}
	return doc
}

// productMap builds produto_map.json: chain to sub-chains and products.
func productMap(tree map[string]aggregate.ChainNode) map[string]any {
	out := make(map[string]any, len(tree))
	for chain, node := range tree {
		out[chain] = object{
			{"subcadeias", nonNil(node.SubChains)},
			{"produtos", node.Products},
		}
	}
	return out
}

// geoMap builds geo_map.json: meso-region to regions and municipalities.
// Only resolved municipalities appear.
func geoMap(tree map[string]aggregate.MesoNode) map[string]any {
	out := make(map[string]any)
	for meso, node := range tree {
		regions := make([]string, 0, len(node.Regions))
		municipalities := make(map[string][]object)
		for _, region := range node.Regions {
			var list []object
			for _, m := range node.Municipalities[region] {
				if m.Code == "" {
					continue
				}
				list = append(list, object{{"municipio_oficial", m.Name}, {"cod_ibge", m.Code}})
			}
			if len(list) == 0 {
				continue
			}
			regions = append(regions, region)
			municipalities[region] = list
		}
		if len(regions) == 0 {
			continue
		}
		out[meso] = object{{"regionais", regions}, {"municipios", municipalities}}
	}
	return out
}
