// Package reconcile turns one raw production table into canonical records.
//
// Reconciliation never drops a row for an unknown municipality or product:
// such rows keep a sentinel classification and their raw label is recorded
// in Diagnostics. Rows are only dropped when no valid year can be derived.
// Tables lacking a year or season, municipality or product column are
// rejected as a whole.
package reconcile

import (
	"context"

	"github.com/agentstation/vbpmap/pkg/catalogs"
	"github.com/agentstation/vbpmap/pkg/dictionary"
	"github.com/agentstation/vbpmap/pkg/errors"
	"github.com/agentstation/vbpmap/pkg/logging"
	"github.com/agentstation/vbpmap/pkg/resolve"
	"github.com/agentstation/vbpmap/pkg/season"
	"github.com/agentstation/vbpmap/pkg/tabular"
	"github.com/agentstation/vbpmap/pkg/units"
)

// cancelCheckInterval is how many rows are processed between context checks.
const cancelCheckInterval = 1024

// Stats counts what happened to the rows of one table.
type Stats struct {
	RowsRead                  int                          `json:"rows_read" yaml:"rows_read"`
	RowsDropped               int                          `json:"rows_dropped" yaml:"rows_dropped"`
	Records                   int                          `json:"records" yaml:"records"`
	UnmatchedMunicipalityRows int                          `json:"unmatched_municipality_rows" yaml:"unmatched_municipality_rows"`
	UnmatchedProductRows      int                          `json:"unmatched_product_rows" yaml:"unmatched_product_rows"`
	MunicipalityStrategies    map[resolve.StrategyType]int `json:"municipality_strategies,omitempty" yaml:"municipality_strategies,omitempty"`
	ProductStrategies         map[resolve.StrategyType]int `json:"product_strategies,omitempty" yaml:"product_strategies,omitempty"`
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.RowsRead += other.RowsRead
	s.RowsDropped += other.RowsDropped
	s.Records += other.Records
	s.UnmatchedMunicipalityRows += other.UnmatchedMunicipalityRows
	s.UnmatchedProductRows += other.UnmatchedProductRows
	s.MunicipalityStrategies = addCounts(s.MunicipalityStrategies, other.MunicipalityStrategies)
	s.ProductStrategies = addCounts(s.ProductStrategies, other.ProductStrategies)
}

func addCounts(dst, src map[resolve.StrategyType]int) map[resolve.StrategyType]int {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[resolve.StrategyType]int, len(src))
	}
	for k, n := range src {
		dst[k] += n
	}
	return dst
}

// Result is the outcome of reconciling one table.
type Result struct {
	File        string
	Schema      Schema
	Records     []Record
	Diagnostics *Diagnostics
	Stats       Stats
}

// resolved caches the resolution of one distinct label within a table.
type resolved[T any] struct {
	entry      T
	resolution resolve.Resolution
}

// Reconciler reconciles tables against a fixed set of catalogs. It holds no
// per-call state and is safe for concurrent use.
type Reconciler struct {
	catalogs  *catalogs.Catalogs
	converter *units.Converter
	dict      *dictionary.Dictionary
}

// New creates a reconciler. A nil dict means the built-in dictionary and a
// nil converter is built from the dictionary.
func New(cat *catalogs.Catalogs, conv *units.Converter, dict *dictionary.Dictionary) *Reconciler {
	if dict == nil {
		dict = dictionary.MustDefault()
	}
	if conv == nil {
		conv = units.FromDictionary(dict)
	}
	return &Reconciler{catalogs: cat, converter: conv, dict: dict}
}

// Reconcile reconciles one table. A table that fails the schema check
// yields a *errors.FileError; record-level problems never produce errors.
func (r *Reconciler) Reconcile(ctx context.Context, table tabular.Table) (*Result, error) {
	logger := logging.FromContext(ctx)

	schema, missing := DetectSchema(table.Header, r.dict)
	if len(missing) > 0 {
		return nil, errors.NewFileError(table.Name, "missing required columns", missing, errors.ErrFileRejected)
	}

	res := &Result{
		File:        table.Name,
		Schema:      schema,
		Records:     make([]Record, 0, table.Len()),
		Diagnostics: NewDiagnostics(),
		Stats: Stats{
			RowsRead:               table.Len(),
			MunicipalityStrategies: make(map[resolve.StrategyType]int),
			ProductStrategies:      make(map[resolve.StrategyType]int),
		},
	}

	years := season.NormalizeColumn(table.Columns(schema.YearColumn()))
	municipalities := make(map[string]resolved[catalogs.Municipality])
	products := make(map[string]resolved[catalogs.Product])

	for i := 0; i < table.Len(); i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.Join(errors.ErrCanceled, err)
			}
		}

		if !years[i].OK {
			res.Stats.RowsDropped++
			continue
		}

		munLabel := table.Value(i, schema.Municipality)
		mun, ok := municipalities[munLabel]
		if !ok {
			mun.entry, mun.resolution = r.catalogs.ResolveMunicipality(munLabel)
			municipalities[munLabel] = mun
		}
		if mun.resolution.Matched {
			res.Stats.MunicipalityStrategies[mun.resolution.Strategy]++
		} else {
			res.Stats.UnmatchedMunicipalityRows++
			res.Diagnostics.AddMunicipality(munLabel)
		}

		prodLabel := table.Value(i, schema.Product)
		prod, ok := products[prodLabel]
		if !ok {
			prod.entry, prod.resolution = r.catalogs.ResolveProduct(prodLabel)
			products[prodLabel] = prod
		}
		if prod.resolution.Matched {
			res.Stats.ProductStrategies[prod.resolution.Strategy]++
		} else {
			res.Stats.UnmatchedProductRows++
			res.Diagnostics.AddProduct(prodLabel)
		}

		unit := r.converter.Normalize(table.Value(i, schema.Unit))
		quantity := parseFloat(table.Value(i, schema.Quantity))

		res.Records = append(res.Records, Record{
			Year:              years[i].Value,
			MunicipalityLabel: munLabel,
			Municipality:      mun.entry,
			ProductLabel:      prodLabel,
			Product:           prod.entry,
			Unit:              unit,
			Value:             parseDecimal(table.Value(i, schema.Value)),
			Area:              parseFloat(table.Value(i, schema.Area)),
			Quantity:          quantity,
			Slaughter:         parseFloat(table.Value(i, schema.Slaughter)),
			ConvertedQuantity: r.converter.ToCommon(quantity, unit),
			Origin:            table.Name,
		})
	}
	res.Stats.Records = len(res.Records)

	logger.Debug().
		Str("file", table.Name).
		Int("rows", res.Stats.RowsRead).
		Int("dropped", res.Stats.RowsDropped).
		Int("records", res.Stats.Records).
		Int("unmatched_municipality_rows", res.Stats.UnmatchedMunicipalityRows).
		Int("unmatched_product_rows", res.Stats.UnmatchedProductRows).
		Strs("unmapped_columns", schema.Unmapped).
		Msg("Reconciled table")

	return res, nil
}
