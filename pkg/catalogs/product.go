package catalogs

import (
	"strings"

	"github.com/agentstation/vbpmap/pkg/constants"
)

// Product is one entry of the product taxonomy.
type Product struct {
	Key       string `json:"-" yaml:"-"`
	ShortName string `json:"short_name" yaml:"short_name"`
	Chain     string `json:"chain" yaml:"chain"`
	SubChain  string `json:"sub_chain" yaml:"sub_chain"`
	Matched   bool   `json:"matched" yaml:"matched"`
}

// UnclassifiedProduct is the sentinel for a label that did not resolve.
// Its short name is the upper-cased raw label.
func UnclassifiedProduct(label string) Product {
	return Product{
		ShortName: strings.ToUpper(strings.TrimSpace(label)),
		Chain:     constants.Unclassified,
		SubChain:  constants.Unclassified,
	}
}

func (p Product) sortKey() (string, string) {
	return p.Key, p.ShortName
}

// orUnclassified returns s trimmed, or constants.Unclassified when blank.
func orUnclassified(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return constants.Unclassified
	}
	return s
}
