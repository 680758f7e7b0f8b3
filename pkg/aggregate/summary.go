package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/agentstation/vbpmap/pkg/reconcile"
)

// MunicipalityRef identifies a municipality in filter lists and trees.
type MunicipalityRef struct {
	Code       string
	Name       string
	Region     string
	MesoRegion string
}

// Filters are the distinct dimension values, sorted.
type Filters struct {
	Years          []int
	Chains         []string
	SubChains      []string
	Products       []string
	Regions        []string
	MesoRegions    []string
	Municipalities []MunicipalityRef // resolved only, by name
}

// Summary describes a record set as a whole.
type Summary struct {
	Years               []int
	MinYear             int
	MaxYear             int
	TotalMunicipalities int
	TotalProducts       int
	TotalChains         int
	Value               decimal.Decimal
	Quantity            float64
	Area                float64
	Records             int
	Filters             Filters
}

// Summarize computes the summary and filter lists.
func Summarize(records []reconcile.Record) Summary {
	years := make(map[int]struct{})
	chains := make(map[string]struct{})
	subChains := make(map[string]struct{})
	products := make(map[string]struct{})
	regions := make(map[string]struct{})
	mesos := make(map[string]struct{})
	municipalities := make(map[MunicipalityRef]struct{})

	s := Summary{Value: decimal.Zero, Records: len(records)}
	for _, r := range records {
		years[r.Year] = struct{}{}
		chains[r.Product.Chain] = struct{}{}
		subChains[r.Product.SubChain] = struct{}{}
		products[r.Product.ShortName] = struct{}{}
		regions[r.Municipality.Region] = struct{}{}
		mesos[r.Municipality.MesoRegion] = struct{}{}
		if r.Municipality.Code != "" {
			municipalities[MunicipalityRef{
				Code:       r.Municipality.Code,
				Name:       r.Municipality.Name,
				Region:     r.Municipality.Region,
				MesoRegion: r.Municipality.MesoRegion,
			}] = struct{}{}
		}
		s.Value = s.Value.Add(r.Value)
		s.Quantity += r.ConvertedQuantity
		s.Area += r.Area
	}

	for y := range years {
		s.Years = append(s.Years, y)
	}
	sort.Ints(s.Years)
	if len(s.Years) > 0 {
		s.MinYear, s.MaxYear = s.Years[0], s.Years[len(s.Years)-1]
	}

	refs := make([]MunicipalityRef, 0, len(municipalities))
	for m := range municipalities {
		refs = append(refs, m)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Name != refs[j].Name {
			return refs[i].Name < refs[j].Name
		}
		return refs[i].Code < refs[j].Code
	})

	s.TotalMunicipalities = len(refs)
	s.TotalProducts = len(products)
	s.TotalChains = len(chains)
	s.Filters = Filters{
		Years:          s.Years,
		Chains:         sortedSet(chains),
		SubChains:      sortedSet(subChains),
		Products:       sortedSet(products),
		Regions:        sortedSet(regions),
		MesoRegions:    sortedSet(mesos),
		Municipalities: refs,
	}
	return s
}

func sortedSet(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		if k != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
