package aggregate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/agentstation/vbpmap/pkg/reconcile"
)

// Row is one group of an aggregate table. Keys line up with the table's
// Dimensions.
type Row struct {
	Keys     []string
	Value    decimal.Decimal
	Quantity float64 // converted quantity, tonnes
	Area     float64
	Count    int
}

// Key returns the value of dimension i.
func (r Row) Key(i int) string {
	if i < 0 || i >= len(r.Keys) {
		return ""
	}
	return r.Keys[i]
}

// Table is a named rollup.
type Table struct {
	Name       string
	Dimensions []string
	Rows       []Row
}

// Column returns the index of a dimension.
func (t Table) Column(dim string) int {
	for i, d := range t.Dimensions {
		if d == dim {
			return i
		}
	}
	return -1
}

// Total sums the value column.
func (t Table) Total() decimal.Decimal {
	total := decimal.Zero
	for _, r := range t.Rows {
		total = total.Add(r.Value)
	}
	return total
}

// tableSpec declares one rollup.
type tableSpec struct {
	name   string
	dims   []dimension
	filter func(reconcile.Record) bool
	// tie orders rows whose sort keys are otherwise equal; nil means keys asc.
	tie func(a, b Row) bool
}

// groupBy sums records per distinct key tuple and orders the rows.
func groupBy(records []reconcile.Record, spec tableSpec) Table {
	names := make([]string, len(spec.dims))
	for i, d := range spec.dims {
		names[i] = d.name
	}

	groups := make(map[string]int)
	rows := make([]Row, 0)
	keys := make([]string, len(spec.dims))
	for _, rec := range records {
		if spec.filter != nil && !spec.filter(rec) {
			continue
		}
		for i, d := range spec.dims {
			keys[i] = d.get(rec)
		}
		id := strings.Join(keys, "\x1f")
		i, ok := groups[id]
		if !ok {
			i = len(rows)
			groups[id] = i
			rows = append(rows, Row{Keys: append([]string(nil), keys...), Value: decimal.Zero})
		}
		row := &rows[i]
		row.Value = row.Value.Add(rec.Value)
		row.Quantity += rec.ConvertedQuantity
		row.Area += rec.Area
		row.Count++
	}

	sortRows(rows, len(names) > 0 && names[0] == DimYear, spec.tie)
	return Table{Name: spec.name, Dimensions: names, Rows: rows}
}

// sortRows orders year-keyed tables by year asc then value desc, and all
// other tables by value desc. Remaining ties fall to tie or keys asc.
func sortRows(rows []Row, byYear bool, tie func(a, b Row) bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if byYear {
			ya, _ := strconv.Atoi(a.Key(0))
			yb, _ := strconv.Atoi(b.Key(0))
			if ya != yb {
				return ya < yb
			}
		}
		if c := a.Value.Cmp(b.Value); c != 0 {
			return c > 0
		}
		if tie != nil {
			if tie(a, b) {
				return true
			}
			if tie(b, a) {
				return false
			}
		}
		return lessKeys(a.Keys, b.Keys)
	})
}

func lessKeys(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
