package catalogs

import (
	"sort"
)

// Corrections maps a raw observed product key to its curated correction.
// A corrected key that is not itself in the taxonomy is resolved further
// by the correction-alias and correction-singular strategies.
type Corrections struct {
	m map[string]string
}

// NewCorrections creates a correction table from canonical keys.
func NewCorrections(m map[string]string) Corrections {
	c := Corrections{m: make(map[string]string, len(m))}
	for k, v := range m {
		if k != "" && v != "" {
			c.m[k] = v
		}
	}
	return c
}

// Lookup returns the corrected key for a raw key.
func (c Corrections) Lookup(key string) (string, bool) {
	v, ok := c.m[key]
	return v, ok
}

// Len returns the number of corrections.
func (c Corrections) Len() int {
	return len(c.m)
}

// Keys returns the raw keys in sorted order.
func (c Corrections) Keys() []string {
	keys := make([]string, 0, len(c.m))
	for k := range c.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
