package catalogs

import (
	"sort"
)

// entry is implemented by the catalog record types.
type entry interface {
	Municipality | Product
	sortKey() (string, string)
}

// Index is a canonical-key lookup over one catalog. Official keys and the
// alias keys that point at them both resolve; Has reports official keys
// only so resolution strategies can tell them apart.
type Index[T entry] struct {
	entries    map[string]T
	aliases    map[string]string
	order      []string
	duplicates int
}

// newIndex sorts candidates by (key, name) and keeps the first per key.
// Candidates with an empty key are ignored.
func newIndex[T entry](candidates []T) *Index[T] {
	sort.SliceStable(candidates, func(i, j int) bool {
		ki, ni := candidates[i].sortKey()
		kj, nj := candidates[j].sortKey()
		if ki != kj {
			return ki < kj
		}
		return ni < nj
	})

	idx := &Index[T]{
		entries: make(map[string]T, len(candidates)),
		aliases: make(map[string]string),
	}
	for _, c := range candidates {
		key, _ := c.sortKey()
		if key == "" {
			continue
		}
		if _, dup := idx.entries[key]; dup {
			idx.duplicates++
			continue
		}
		idx.entries[key] = c
		idx.order = append(idx.order, key)
	}
	return idx
}

// addAliases indexes alias keys whose target is an official key. Aliases
// never shadow an official key. It returns the aliases whose target is
// not in the catalog.
func (idx *Index[T]) addAliases(keys []string, lookup func(string) (string, bool)) []string {
	var dangling []string
	for _, from := range keys {
		to, _ := lookup(from)
		if _, official := idx.entries[from]; official {
			continue
		}
		if _, ok := idx.entries[to]; !ok {
			dangling = append(dangling, from)
			continue
		}
		idx.aliases[from] = to
	}
	return dangling
}

// Has reports whether key is an official key.
func (idx *Index[T]) Has(key string) bool {
	_, ok := idx.entries[key]
	return ok
}

// Get returns the entry for an official or alias key.
func (idx *Index[T]) Get(key string) (T, bool) {
	if e, ok := idx.entries[key]; ok {
		return e, true
	}
	if to, ok := idx.aliases[key]; ok {
		return idx.entries[to], true
	}
	var zero T
	return zero, false
}

// Len returns the number of official entries.
func (idx *Index[T]) Len() int {
	return len(idx.entries)
}

// AliasCount returns the number of indexed alias keys.
func (idx *Index[T]) AliasCount() int {
	return len(idx.aliases)
}

// Duplicates returns how many candidates were dropped by deduplication.
func (idx *Index[T]) Duplicates() int {
	return idx.duplicates
}

// All returns the entries in key order.
func (idx *Index[T]) All() []T {
	out := make([]T, 0, len(idx.order))
	for _, k := range idx.order {
		out = append(out, idx.entries[k])
	}
	return out
}
