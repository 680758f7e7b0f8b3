// Package catalogs loads the two reference catalogs, the municipality
// registry and the product taxonomy, and resolves free-text labels
// against them.
//
// Catalogs are built once per run and never mutated; a *Catalogs is safe
// for concurrent use by any number of reconcilers.
package catalogs

import (
	"github.com/agentstation/vbpmap/pkg/canonical"
	"github.com/agentstation/vbpmap/pkg/dictionary"
	"github.com/agentstation/vbpmap/pkg/manifest"
	"github.com/agentstation/vbpmap/pkg/resolve"
)

// Catalogs is the resolved identity space of a run.
type Catalogs struct {
	Municipalities *Index[Municipality]
	Products       *Index[Product]
	Corrections    Corrections

	// Sources lists the files the catalogs were read from. It is empty
	// for catalogs built from in-memory tables.
	Sources []manifest.Entry

	municipalities *resolve.Resolver
	products       *resolve.Resolver

	danglingMunicipalityAliases []string
	danglingProductAliases      []string
}

// Load builds the catalogs from reference tables. Aliases from dict are
// indexed next to official keys before any label is resolved. A nil dict
// means the built-in dictionary. Errors are *errors.ConfigError.
func Load(refs Reference, dict *dictionary.Dictionary) (*Catalogs, error) {
	if dict == nil {
		var err error
		if dict, err = dictionary.Default(); err != nil {
			return nil, err
		}
	}

	municipalities, err := loadMunicipalities(refs.Municipalities)
	if err != nil {
		return nil, err
	}
	products, err := loadProducts(refs.Products)
	if err != nil {
		return nil, err
	}
	corrections := loadCorrections(refs.Corrections)

	c := &Catalogs{
		Municipalities: newIndex(municipalities),
		Products:       newIndex(products),
		Corrections:    corrections,
	}

	munAliases := dict.Municipalities()
	prodAliases := dict.Products()
	c.danglingMunicipalityAliases = c.Municipalities.addAliases(munAliases.Keys(), munAliases.Lookup)
	c.danglingProductAliases = c.Products.addAliases(prodAliases.Keys(), prodAliases.Lookup)

	c.municipalities = resolve.New(c.Municipalities, resolve.MunicipalityStrategies(munAliases)...)
	c.products = resolve.New(c.Products, resolve.ProductStrategies(corrections, prodAliases)...)
	return c, nil
}

// ResolveMunicipality resolves a raw municipality label. Unresolved labels
// yield the UnmatchedMunicipality sentinel.
func (c *Catalogs) ResolveMunicipality(label string) (Municipality, resolve.Resolution) {
	res := c.municipalities.Resolve(canonical.Key(label))
	if !res.Matched {
		return UnmatchedMunicipality(label), res
	}
	m, _ := c.Municipalities.Get(res.Key)
	return m, res
}

// ResolveProduct resolves a raw product label. Unresolved labels yield the
// UnclassifiedProduct sentinel.
func (c *Catalogs) ResolveProduct(label string) (Product, resolve.Resolution) {
	res := c.products.Resolve(canonical.ProductKey(label))
	if !res.Matched {
		return UnclassifiedProduct(label), res
	}
	p, _ := c.Products.Get(res.Key)
	return p, res
}

// Summary describes the loaded catalogs.
type Summary struct {
	Municipalities              int      `json:"municipalities" yaml:"municipalities"`
	MunicipalityAliases         int      `json:"municipality_aliases" yaml:"municipality_aliases"`
	MunicipalityDuplicates      int      `json:"municipality_duplicates" yaml:"municipality_duplicates"`
	Products                    int      `json:"products" yaml:"products"`
	ProductAliases              int      `json:"product_aliases" yaml:"product_aliases"`
	ProductDuplicates           int      `json:"product_duplicates" yaml:"product_duplicates"`
	Corrections                 int      `json:"corrections" yaml:"corrections"`
	Chains                      int      `json:"chains" yaml:"chains"`
	DanglingMunicipalityAliases []string `json:"dangling_municipality_aliases,omitempty" yaml:"dangling_municipality_aliases,omitempty"`
	DanglingProductAliases      []string `json:"dangling_product_aliases,omitempty" yaml:"dangling_product_aliases,omitempty"`
}

// Summary returns counts for logging and the catalog command.
func (c *Catalogs) Summary() Summary {
	chains := make(map[string]struct{})
	for _, p := range c.Products.All() {
		chains[p.Chain] = struct{}{}
	}
	return Summary{
		Municipalities:              c.Municipalities.Len(),
		MunicipalityAliases:         c.Municipalities.AliasCount(),
		MunicipalityDuplicates:      c.Municipalities.Duplicates(),
		Products:                    c.Products.Len(),
		ProductAliases:              c.Products.AliasCount(),
		ProductDuplicates:           c.Products.Duplicates(),
		Corrections:                 c.Corrections.Len(),
		Chains:                      len(chains),
		DanglingMunicipalityAliases: c.danglingMunicipalityAliases,
		DanglingProductAliases:      c.danglingProductAliases,
	}
}
