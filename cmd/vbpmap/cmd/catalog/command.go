// Package catalog provides the catalog command implementation.
package catalog

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/vbpmap/cmd/application"
	"github.com/agentstation/vbpmap/internal/cmd/output"
	"github.com/agentstation/vbpmap/internal/cmd/table"
	"github.com/agentstation/vbpmap/pkg/catalogs"
	"github.com/agentstation/vbpmap/pkg/errors"
	"github.com/agentstation/vbpmap/pkg/logging"
	"github.com/agentstation/vbpmap/pkg/resolve"
)

// Domains accepted by --domain.
const (
	DomainMunicipality = "municipality"
	DomainProduct      = "product"
)

// Flags holds the catalog command flags.
type Flags struct {
	Resolve string
	Domain  string
}

// Resolution is what the catalog command prints for --resolve.
type Resolution struct {
	Label        string                 `json:"label" yaml:"label"`
	Domain       string                 `json:"domain" yaml:"domain"`
	Resolution   resolve.Resolution     `json:"resolution" yaml:"resolution"`
	Municipality *catalogs.Municipality `json:"municipality,omitempty" yaml:"municipality,omitempty"`
	Product      *catalogs.Product      `json:"product,omitempty" yaml:"product,omitempty"`
}

// NewCommand creates the catalog command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "catalog",
		GroupID: "management",
		Short:   "Load the reference catalogs and resolve labels",
		Long: `Catalog loads the municipality registry, the product taxonomy and the
product corrections and prints their size, alias and duplicate counts.

With --resolve it shows how a single source label resolves: the canonical
key, every strategy tried in order and the catalog entry it lands on.`,
		Example: `  vbpmap catalog
  vbpmap catalog --resolve "Arapuan" --domain municipality
  vbpmap catalog --resolve "Soja em grão" -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.Resolve, "resolve", "", "source label to resolve")
	cmd.Flags().StringVar(&flags.Domain, "domain", DomainProduct, "catalog to resolve against: municipality, product")
	return cmd
}

// Execute loads the catalogs and prints a summary or one resolution.
func Execute(ctx context.Context, app application.Application, flags *Flags, w io.Writer) error {
	ctx = logging.WithLogger(ctx, app.Logger())
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return errors.WrapValidation("format", err)
	}
	if flags.Domain != DomainMunicipality && flags.Domain != DomainProduct {
		return errors.NewValidationError("domain", flags.Domain, "must be one of: municipality, product")
	}

	cat, err := app.Catalogs(ctx)
	if err != nil {
		return err
	}

	if flags.Resolve == "" {
		summary := cat.Summary()
		return output.Render(w, format, summary, func() output.Data {
			return table.CatalogSummaryToTableData(summary)
		})
	}

	r := Resolve(cat, flags.Domain, flags.Resolve)
	if err := output.Render(w, format, r, func() output.Data {
		return table.ResolutionToTableData(r.Resolution)
	}); err != nil {
		return err
	}
	if format == output.FormatTable || format == "" {
		fmt.Fprintf(w, "\nkey: %q\n", r.Resolution.Input)
		switch {
		case r.Municipality != nil && r.Municipality.Matched:
			m := r.Municipality
			fmt.Fprintf(w, "match: %s (%s), %s / %s\n", m.Name, m.Code, m.Region, m.MesoRegion)
		case r.Product != nil && r.Product.Matched:
			p := r.Product
			fmt.Fprintf(w, "match: %s, %s / %s\n", p.ShortName, p.Chain, p.SubChain)
		default:
			fmt.Fprintln(w, "match: none")
		}
	}
	return nil
}

// Resolve resolves label in the catalog named by domain.
func Resolve(cat *catalogs.Catalogs, domain, label string) Resolution {
	r := Resolution{Label: label, Domain: domain}
	if domain == DomainMunicipality {
		m, res := cat.ResolveMunicipality(label)
		r.Municipality, r.Resolution = &m, res
		return r
	}
	p, res := cat.ResolveProduct(label)
	r.Product, r.Resolution = &p, res
	return r
}
