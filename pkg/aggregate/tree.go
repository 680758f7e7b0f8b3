package aggregate

import (
	"sort"

	"github.com/agentstation/vbpmap/pkg/reconcile"
)

// ChainNode lists the sub-chains of a chain and the products of each.
type ChainNode struct {
	SubChains []string
	Products  map[string][]string
}

// ProductTree maps chain to its sub-chains and products, all sorted.
func ProductTree(records []reconcile.Record) map[string]ChainNode {
	raw := make(map[string]map[string]map[string]struct{})
	for _, r := range records {
		c, s, p := r.Product.Chain, r.Product.SubChain, r.Product.ShortName
		if raw[c] == nil {
			raw[c] = make(map[string]map[string]struct{})
		}
		if raw[c][s] == nil {
			raw[c][s] = make(map[string]struct{})
		}
		raw[c][s][p] = struct{}{}
	}

	tree := make(map[string]ChainNode, len(raw))
	for c, subs := range raw {
		node := ChainNode{Products: make(map[string][]string, len(subs))}
		for s, products := range subs {
			node.SubChains = append(node.SubChains, s)
			node.Products[s] = sortedSet(products)
		}
		sort.Strings(node.SubChains)
		tree[c] = node
	}
	return tree
}

// MesoNode lists the regions of a meso-region and the municipalities of each.
type MesoNode struct {
	Regions        []string
	Municipalities map[string][]MunicipalityRef
}

// GeoTree maps meso-region to its regions and municipalities. Regions are
// sorted and municipalities ordered by name.
func GeoTree(records []reconcile.Record) map[string]MesoNode {
	raw := make(map[string]map[string]map[MunicipalityRef]struct{})
	for _, r := range records {
		m := r.Municipality
		ref := MunicipalityRef{Code: m.Code, Name: m.Name, Region: m.Region, MesoRegion: m.MesoRegion}
		if raw[m.MesoRegion] == nil {
			raw[m.MesoRegion] = make(map[string]map[MunicipalityRef]struct{})
		}
		if raw[m.MesoRegion][m.Region] == nil {
			raw[m.MesoRegion][m.Region] = make(map[MunicipalityRef]struct{})
		}
		raw[m.MesoRegion][m.Region][ref] = struct{}{}
	}

	tree := make(map[string]MesoNode, len(raw))
	for meso, regions := range raw {
		node := MesoNode{Municipalities: make(map[string][]MunicipalityRef, len(regions))}
		for region, set := range regions {
			node.Regions = append(node.Regions, region)
			refs := make([]MunicipalityRef, 0, len(set))
			for ref := range set {
				refs = append(refs, ref)
			}
			sort.Slice(refs, func(i, j int) bool {
				if refs[i].Name != refs[j].Name {
					return refs[i].Name < refs[j].Name
				}
				return refs[i].Code < refs[j].Code
			})
			node.Municipalities[region] = refs
		}
		sort.Strings(node.Regions)
		tree[meso] = node
	}
	return tree
}
