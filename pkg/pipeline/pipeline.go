// Package pipeline runs reconciliation over a set of source files and
// aggregates the result.
//
// Files are independent: each is read and reconciled on its own, bounded
// by Options.Workers, and results are merged in input order so the output
// does not depend on scheduling. Aggregation starts only after every file
// is done. A file that cannot be read or lacks the required columns is
// skipped; only configuration errors and cancellation abort a run.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/vbpmap/pkg/aggregate"
	"github.com/agentstation/vbpmap/pkg/catalogs"
	"github.com/agentstation/vbpmap/pkg/dictionary"
	"github.com/agentstation/vbpmap/pkg/errors"
	"github.com/agentstation/vbpmap/pkg/logging"
	"github.com/agentstation/vbpmap/pkg/manifest"
	"github.com/agentstation/vbpmap/pkg/reconcile"
	"github.com/agentstation/vbpmap/pkg/tabular"
	"github.com/agentstation/vbpmap/pkg/units"
)

// Pipeline reconciles and aggregates source files.
type Pipeline struct {
	opts      Options
	converter *units.Converter
}

// New creates a pipeline.
func New(opts ...Option) (*Pipeline, error) {
	o := Defaults().Apply(opts...)
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if o.Dictionary == nil {
		d, err := dictionary.Default()
		if err != nil {
			return nil, err
		}
		o.Dictionary = d
	}
	return &Pipeline{opts: *o, converter: units.FromDictionary(o.Dictionary)}, nil
}

// Dictionary returns the dictionary the pipeline resolves with.
func (p *Pipeline) Dictionary() *dictionary.Dictionary {
	return p.opts.Dictionary
}

// Converter returns the unit converter built from the dictionary.
func (p *Pipeline) Converter() *units.Converter {
	return p.converter
}

func (p *Pipeline) logger(ctx context.Context) *zerolog.Logger {
	if p.opts.Logger != nil {
		return p.opts.Logger
	}
	return logging.FromContext(ctx)
}

// FileResult is the outcome for one source file.
type FileResult struct {
	Name     string          `json:"name" yaml:"name"`
	Records  int             `json:"records" yaml:"records"`
	Stats    reconcile.Stats `json:"stats" yaml:"stats"`
	Duration time.Duration   `json:"duration" yaml:"duration"`
	Err      error           `json:"-" yaml:"-"`
}

// Skipped reports whether the file contributed no records because of an error.
func (f FileResult) Skipped() bool {
	return f.Err != nil
}

// Stats totals a run.
type Stats struct {
	reconcile.Stats `yaml:",inline"`

	Files      int `json:"files" yaml:"files"`
	Reconciled int `json:"reconciled" yaml:"reconciled"`
	Skipped    int `json:"skipped" yaml:"skipped"`
	Duplicates int `json:"duplicates" yaml:"duplicates"`
}

// Metadata times a run.
type Metadata struct {
	Start    time.Time     `json:"start" yaml:"start"`
	End      time.Time     `json:"end" yaml:"end"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Result is the output of a run.
type Result struct {
	Records     []reconcile.Record
	Aggregates  *aggregate.Set
	Detailed    *aggregate.Set
	Overview    aggregate.Summary
	Diagnostics *reconcile.Diagnostics
	Manifest    []manifest.Entry
	Reference   []manifest.Entry
	Fingerprint string
	Files       []FileResult
	Skipped     []error
	Stats       Stats
	Metadata    Metadata
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d records from %d of %d files", len(r.Records), r.Stats.Reconciled, r.Stats.Files)
	if r.Stats.Skipped > 0 {
		fmt.Fprintf(&b, " (%d skipped)", r.Stats.Skipped)
	}
	if len(r.Overview.Years) > 0 {
		fmt.Fprintf(&b, ", years %d-%d", r.Overview.MinYear, r.Overview.MaxYear)
	}
	fmt.Fprintf(&b, ", %d rows dropped, %d duplicates", r.Stats.RowsDropped, r.Stats.Duplicates)
	if r.Diagnostics != nil && !r.Diagnostics.Empty() {
		fmt.Fprintf(&b, ", %d unmatched municipalities, %d unmatched products",
			len(r.Diagnostics.UnmatchedMunicipalities()), len(r.Diagnostics.UnmatchedProducts()))
	}
	fmt.Fprintf(&b, " in %s", r.Metadata.Duration.Round(time.Millisecond))
	return b.String()
}

// Run reconciles files against cat and aggregates the records.
func (p *Pipeline) Run(ctx context.Context, cat *catalogs.Catalogs, files []string) (*Result, error) {
	if cat == nil {
		return nil, errors.NewConfigError("pipeline", "no catalogs loaded", nil)
	}
	logger := p.logger(ctx)
	start := time.Now()

	entries, missing := statSources(files)
	fingerprint := manifest.Fingerprint(entries)
	ctx = logging.WithLogger(ctx, logger)
	ctx = logging.WithRun(ctx, fingerprint[:12])

	outcomes, err := p.reconcileAll(ctx, cat, files, missing)
	if err != nil {
		p.opts.Metrics.observeRun(0, 0, time.Since(start), false)
		return nil, err
	}

	res := &Result{
		Diagnostics: reconcile.NewDiagnostics(),
		Manifest:    entries,
		Reference:   cat.Sources,
		Fingerprint: fingerprint,
		Files:       make([]FileResult, len(files)),
	}
	var records []reconcile.Record
	for i, o := range outcomes {
		res.Files[i] = o.file
		res.Stats.Files++
		if o.file.Err != nil {
			res.Stats.Skipped++
			res.Skipped = append(res.Skipped, o.file.Err)
			continue
		}
		res.Stats.Reconciled++
		res.Stats.Add(o.result.Stats)
		res.Diagnostics.Merge(o.result.Diagnostics)
		records = append(records, o.result.Records...)
	}

	res.Records = aggregate.Dedupe(records)
	res.Stats.Duplicates = len(records) - len(res.Records)
	res.Aggregates = aggregate.ComputeTopN(res.Records, p.opts.TopN)
	res.Detailed = aggregate.ComputeDetailed(res.Records)
	res.Overview = aggregate.Summarize(res.Records)

	end := time.Now()
	res.Metadata = Metadata{Start: start, End: end, Duration: end.Sub(start)}
	p.opts.Metrics.observeRun(len(res.Records), res.Stats.Duplicates, res.Metadata.Duration, true)

	logger.Info().
		Int("files", res.Stats.Files).
		Int("skipped", res.Stats.Skipped).
		Int("records", len(res.Records)).
		Int("duplicates", res.Stats.Duplicates).
		Int("dropped", res.Stats.RowsDropped).
		Int("unmatched_municipalities", len(res.Diagnostics.UnmatchedMunicipalities())).
		Int("unmatched_products", len(res.Diagnostics.UnmatchedProducts())).
		Dur("duration", res.Metadata.Duration).
		Msg("Pipeline run complete")
	return res, nil
}

// statSources builds the manifest of the files that exist. A file that
// cannot be stat'd is left out and reported at its index as a file error.
func statSources(files []string) ([]manifest.Entry, []error) {
	entries := make([]manifest.Entry, 0, len(files))
	missing := make([]error, len(files))
	for i, path := range files {
		e, err := manifest.Stat(path)
		if err != nil {
			missing[i] = errors.WrapFile(filepath.Base(path), "unreadable", err)
			continue
		}
		entries = append(entries, e)
	}
	manifest.Sort(entries)
	return entries, missing
}

type outcome struct {
	file   FileResult
	result *reconcile.Result
}

// reconcileAll processes files with bounded concurrency. Outcomes are
// stored by index. Files with a non-nil entry in missing are not read.
// Per-file errors are recorded in the outcome; only cancellation and
// non-file errors are returned.
func (p *Pipeline) reconcileAll(ctx context.Context, cat *catalogs.Catalogs, files []string, missing []error) ([]outcome, error) {
	rec := reconcile.New(cat, p.converter, p.opts.Dictionary)
	outcomes := make([]outcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, path := range files {
		if missing[i] != nil {
			outcomes[i] = outcome{file: FileResult{Name: filepath.Base(path), Err: missing[i]}}
			p.skip(logging.FromContext(logging.WithFile(ctx, filepath.Base(path))), missing[i])
			continue
		}
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.Join(errors.ErrCanceled, err)
			}
			o, err := p.reconcileFile(gctx, rec, path)
			outcomes[i] = o
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (p *Pipeline) reconcileFile(ctx context.Context, rec *reconcile.Reconciler, path string) (outcome, error) {
	name := filepath.Base(path)
	ctx = logging.WithFile(ctx, name)
	logger := logging.FromContext(ctx)
	start := time.Now()
	o := outcome{file: FileResult{Name: name}}

	table, err := tabular.ReadFile(path, tabular.Options{})
	if err != nil {
		o.file.Err = errors.WrapFile(name, "unreadable", err)
		p.skip(logger, o.file.Err)
		return o, nil
	}

	res, err := rec.Reconcile(ctx, table)
	switch {
	case errors.IsFileRejected(err):
		o.file.Err = err
		p.skip(logger, err)
		return o, nil
	case err != nil:
		return o, err
	}

	o.result = res
	o.file.Records = len(res.Records)
	o.file.Stats = res.Stats
	o.file.Duration = time.Since(start)
	p.opts.Metrics.observeFile(res.Stats, o.file.Duration)

	logger.Info().
		Int("rows", res.Stats.RowsRead).
		Int("dropped", res.Stats.RowsDropped).
		Int("records", len(res.Records)).
		Int("unmatched_municipality_rows", res.Stats.UnmatchedMunicipalityRows).
		Int("unmatched_product_rows", res.Stats.UnmatchedProductRows).
		Msg("Processed file")
	return o, nil
}

func (p *Pipeline) skip(logger *zerolog.Logger, err error) {
	p.opts.Metrics.observeSkipped()
	logger.Warn().Err(err).Msg("Skipping file")
}
