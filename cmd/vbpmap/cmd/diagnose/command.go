// Package diagnose provides the diagnose command implementation.
package diagnose

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/vbpmap/cmd/application"
	"github.com/agentstation/vbpmap/internal/cmd/output"
	"github.com/agentstation/vbpmap/internal/cmd/table"
	"github.com/agentstation/vbpmap/pkg/errors"
	"github.com/agentstation/vbpmap/pkg/logging"
	"github.com/agentstation/vbpmap/pkg/pipeline"
	"github.com/agentstation/vbpmap/pkg/reconcile"
)

// Domain names accepted by --domain.
const (
	DomainAll          = "all"
	DomainMunicipality = "municipality"
	DomainProduct      = "product"
)

// NewCommand creates the diagnose command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var domain string

	cmd := &cobra.Command{
		Use:     "diagnose",
		GroupID: "core",
		Short:   "List source labels that match no catalog entry",
		Long: `Diagnose reconciles every source file without writing output and lists
the municipality and product labels that could not be resolved, with the
number of rows that carried each one.

Unmatched labels still become records (under their raw name, with an
unknown region or an unclassified chain), so a label listed here usually
needs an alias or a correction.`,
		Example: `  vbpmap diagnose                       # All unmatched labels as a table
  vbpmap diagnose --domain product -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd.Context(), app, domain, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&domain, "domain", DomainAll, "labels to list: all, municipality, product")
	return cmd
}

// Execute reconciles the configured sources and prints the diagnostics.
func Execute(ctx context.Context, app application.Application, domain string, w io.Writer) error {
	ctx = logging.WithLogger(ctx, app.Logger())
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return errors.WrapValidation("format", err)
	}
	switch domain {
	case DomainAll, DomainMunicipality, DomainProduct:
	default:
		return errors.NewValidationError("domain", domain, "must be one of: all, municipality, product")
	}

	s := app.Settings()
	files, err := pipeline.Discover(s.DataDir, s.Include, s.Exclude)
	if err != nil {
		return err
	}
	cat, err := app.Catalogs(ctx)
	if err != nil {
		return err
	}
	p, err := app.Pipeline()
	if err != nil {
		return err
	}
	res, err := p.Run(ctx, cat, files)
	if err != nil {
		return err
	}

	report := filter(res.Diagnostics.Report(), domain)
	if err := output.Render(w, format, report, func() output.Data {
		return table.DiagnosticsToTableData(report)
	}); err != nil {
		return err
	}
	if format == output.FormatTable || format == "" {
		fmt.Fprintf(w, "\n%d unmatched municipalities, %d unmatched products\n",
			len(report.UnmatchedMunicipalities), len(report.UnmatchedProducts))
	}
	return nil
}

func filter(r reconcile.Report, domain string) reconcile.Report {
	switch domain {
	case DomainMunicipality:
		r.UnmatchedProducts, r.ProductRows = []string{}, []reconcile.Label{}
	case DomainProduct:
		r.UnmatchedMunicipalities, r.MunicipalityRows = []string{}, []reconcile.Label{}
	}
	return r
}
