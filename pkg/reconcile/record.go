package reconcile

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/agentstation/vbpmap/pkg/catalogs"
)

// Record is one canonical production record. Municipality and Product are
// always populated: either a catalog entry or the unmatched sentinel.
type Record struct {
	Year              int                   `json:"year" yaml:"year"`
	MunicipalityLabel string                `json:"municipality_label" yaml:"municipality_label"`
	Municipality      catalogs.Municipality `json:"municipality" yaml:"municipality"`
	ProductLabel      string                `json:"product_label" yaml:"product_label"`
	Product           catalogs.Product      `json:"product" yaml:"product"`
	Unit              string                `json:"unit" yaml:"unit"`
	Value             decimal.Decimal       `json:"value" yaml:"value"`
	Area              float64               `json:"area" yaml:"area"`
	Quantity          float64               `json:"quantity" yaml:"quantity"`
	Slaughter         float64               `json:"slaughter" yaml:"slaughter"`
	ConvertedQuantity float64               `json:"converted_quantity" yaml:"converted_quantity"`
	Origin            string                `json:"origin" yaml:"origin"`
}

// Identity returns a key that is equal for two records exactly when every
// field except Origin is equal.
func (r Record) Identity() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return strings.Join([]string{
		strconv.Itoa(r.Year),
		r.MunicipalityLabel,
		r.Municipality.Name,
		r.Municipality.Code,
		r.Municipality.Region,
		r.Municipality.MesoRegion,
		r.ProductLabel,
		r.Product.ShortName,
		r.Product.Chain,
		r.Product.SubChain,
		r.Unit,
		r.Value.String(),
		f(r.Area),
		f(r.Quantity),
		f(r.Slaughter),
		f(r.ConvertedQuantity),
	}, "\x1f")
}
