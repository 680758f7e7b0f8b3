package catalogs

import (
	"github.com/agentstation/vbpmap/pkg/canonical"
	"github.com/agentstation/vbpmap/pkg/errors"
	"github.com/agentstation/vbpmap/pkg/tabular"
)

// Reference column names.
const (
	ColMunicipality = "Municipio"
	ColCode         = "CodIbge"
	ColRegion       = "RegIdr"
	ColRegionCode   = "CRegIdr"
	ColMesoRegion   = "MesoIdr"

	ColProduct  = "PRODUTO"
	ColChain    = "Cadeia"
	ColSubChain = "Subcadeia"
)

// Reference holds the raw reference tables. Corrections may be the zero
// Table; it is read positionally (raw label, corrected label).
type Reference struct {
	Municipalities tabular.Table
	Products       tabular.Table
	Corrections    tabular.Table
}

// columns resolves required and optional column indices of a table.
func columns(t tabular.Table, component string, required []string, optional ...string) (map[string]int, error) {
	idx := make(map[string]int, len(required)+len(optional))
	var missing []string
	for _, name := range required {
		i, ok := t.Column(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		idx[name] = i
	}
	if len(missing) > 0 {
		return nil, errors.NewConfigError(component, "required columns missing",
			&errors.MissingColumnsError{Table: t.Name, Columns: missing})
	}
	for _, name := range optional {
		if i, ok := t.Column(name); ok {
			idx[name] = i
		}
	}
	return idx, nil
}

func cell(t tabular.Table, row int, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok {
		return ""
	}
	return t.Value(row, i)
}

func loadMunicipalities(t tabular.Table) ([]Municipality, error) {
	cols, err := columns(t, "municipalities",
		[]string{ColMunicipality, ColCode, ColRegion, ColMesoRegion}, ColRegionCode)
	if err != nil {
		return nil, err
	}

	out := make([]Municipality, 0, t.Len())
	for r := 0; r < t.Len(); r++ {
		name := cell(t, r, cols, ColMunicipality)
		key := canonical.Key(name)
		if key == "" {
			continue
		}
		out = append(out, Municipality{
			Key:        key,
			Name:       name,
			Code:       PadCode(cell(t, r, cols, ColCode)),
			Region:     cell(t, r, cols, ColRegion),
			RegionCode: cell(t, r, cols, ColRegionCode),
			MesoRegion: cell(t, r, cols, ColMesoRegion),
			Matched:    true,
		})
	}
	if len(out) == 0 {
		return nil, errors.NewConfigError("municipalities", "registry "+t.Name+" has no entries", nil)
	}
	return out, nil
}

func loadProducts(t tabular.Table) ([]Product, error) {
	cols, err := columns(t, "products", []string{ColProduct, ColChain, ColSubChain})
	if err != nil {
		return nil, err
	}

	out := make([]Product, 0, t.Len())
	for r := 0; r < t.Len(); r++ {
		name := cell(t, r, cols, ColProduct)
		key := canonical.ProductKey(name)
		if key == "" {
			continue
		}
		out = append(out, Product{
			Key:       key,
			ShortName: name,
			Chain:     orUnclassified(cell(t, r, cols, ColChain)),
			SubChain:  orUnclassified(cell(t, r, cols, ColSubChain)),
			Matched:   true,
		})
	}
	if len(out) == 0 {
		return nil, errors.NewConfigError("products", "taxonomy "+t.Name+" has no entries", nil)
	}
	return out, nil
}

// loadCorrections reads the first two columns as raw and corrected labels.
// Rows missing either label are skipped. The correction table is optional:
// a table with fewer than two columns yields no corrections.
func loadCorrections(t tabular.Table) Corrections {
	if len(t.Header) < 2 {
		return NewCorrections(nil)
	}

	m := make(map[string]string, t.Len())
	for r := 0; r < t.Len(); r++ {
		raw := canonical.ProductKey(t.Value(r, 0))
		corrected := canonical.ProductKey(t.Value(r, 1))
		if raw == "" || corrected == "" {
			continue
		}
		m[raw] = corrected
	}
	return NewCorrections(m)
}
