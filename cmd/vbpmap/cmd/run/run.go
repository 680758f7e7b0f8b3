package run

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/vbpmap/cmd/application"
	"github.com/agentstation/vbpmap/internal/cmd/output"
	"github.com/agentstation/vbpmap/pkg/constants"
	"github.com/agentstation/vbpmap/pkg/errors"
	"github.com/agentstation/vbpmap/pkg/export"
	"github.com/agentstation/vbpmap/pkg/logging"
	"github.com/agentstation/vbpmap/pkg/manifest"
	"github.com/agentstation/vbpmap/pkg/pipeline"
)

// Execute runs the pipeline with the given flags and writes every output.
func Execute(ctx context.Context, app application.Application, flags *Flags, w io.Writer) error {
	logger := app.Logger()
	ctx = logging.WithLogger(ctx, logger)
	s := flags.Apply(app.Settings())

	records, ok := export.ParseFormat(s.RecordsFormat)
	if !ok {
		return errors.NewValidationError("records", s.RecordsFormat, "must be one of: none, json, yaml")
	}
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return errors.WrapValidation("format", err)
	}

	files, err := pipeline.Discover(s.DataDir, s.Include, s.Exclude)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.NewNotFoundError("source files", filepath.Join(s.DataDir, "{"+strings.Join(s.Include, ",")+"}"))
	}

	if !flags.Force && !flags.DryRun {
		if unchanged, fingerprint := upToDate(s.OutputDir, files, s.ReferencePaths()); unchanged {
			logger.Info().
				Str("fingerprint", fingerprint).
				Int("files", len(files)).
				Msg("Inputs unchanged since the last run, skipping (use --force to rerun)")
			return nil
		}
	}

	metrics := pipeline.NewMetrics()
	p, err := app.Pipeline(pipeline.WithWorkers(s.Workers), pipeline.WithMetrics(metrics))
	if err != nil {
		return err
	}
	cat, err := p.LoadReference(ctx, s.ReferencePaths())
	if err != nil {
		return err
	}

	res, err := p.Run(ctx, cat, files)
	if err != nil {
		return err
	}

	report := newReport(res)
	if !flags.DryRun {
		written, err := writeOutputs(ctx, s, records, res)
		if err != nil {
			return err
		}
		report.Outputs = written
	}

	if s.MetricsFile != "" {
		if err := metrics.WriteTextfile(s.MetricsFile); err != nil {
			return err
		}
	}

	return printReport(w, format, report)
}

// upToDate reports whether the manifest in dir was built from the same
// source files and the same reference files. Any file that cannot be
// stat'd counts as a change; the run itself reports it.
func upToDate(dir string, files []string, refs pipeline.ReferencePaths) (bool, string) {
	entries, err := manifest.Build(files)
	if err != nil {
		return false, ""
	}
	reference, err := manifest.Build(refs.Files())
	if err != nil {
		return false, ""
	}
	cur := manifest.New(entries, reference...)

	prev, err := manifest.ReadFile(filepath.Join(dir, export.ManifestFile))
	if err != nil {
		// A missing or unreadable manifest means there is nothing to reuse.
		return false, cur.Fingerprint
	}
	return prev.Matches(cur), cur.Fingerprint
}

func writeOutputs(ctx context.Context, s application.Settings, records export.Format, res *pipeline.Result) ([]string, error) {
	logger := logging.FromContext(ctx)

	writer := export.NewWriter(s.OutputDir, export.WithRecords(records), export.WithLogger(logger))
	written, err := writer.Write(res)
	if err != nil {
		return written, err
	}

	if s.SQLitePath != "" {
		if err := export.SQLite(ctx, s.SQLitePath, res.Records, res.Aggregates, res.Detailed); err != nil {
			return written, err
		}
		written = append(written, s.SQLitePath)
	}

	if s.GeoJSONFile != "" {
		src := s.InData(s.GeoJSONFile)
		if _, err := os.Stat(src); err != nil {
			logger.Warn().Str("file", src).Msg("GeoJSON boundaries not found, skipping")
			return written, nil
		}
		dst := filepath.Join(s.OutputDir, export.GeoJSONFile)
		if err := export.OptimizeGeoJSON(src, dst, constants.GeoJSONPrecision); err != nil {
			return written, err
		}
		logger.Info().Str("file", dst).Msg("Optimized GeoJSON")
		written = append(written, dst)
	}

	return written, nil
}
