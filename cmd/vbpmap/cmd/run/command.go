// Package run provides the run command implementation.
package run

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/vbpmap/cmd/application"
)

// NewCommand creates the run command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:     "run",
		GroupID: "core",
		Short:   "Reconcile source spreadsheets and write the dashboard data",
		Long: `Run reads every production spreadsheet in the data directory,
reconciles municipalities and products against the reference catalogs,
aggregates the canonical records and writes the dashboard files.

The command will:
• Discover source files with the include/exclude patterns
• Skip the run when the input manifest matches the previous output (unless --force)
• Load the municipality registry, product taxonomy and corrections
• Reconcile each file and drop rows without a usable year
• Aggregate, then write aggregated.json, detailed.json, produto_map.json,
  geo_map.json, diagnostics.json and manifest.json
• Optionally write a SQLite database, a metrics textfile and the optimized GeoJSON`,
		Example: `  vbpmap run                              # Full run with configured paths
  vbpmap run --data-dir ./data -w 4       # Reconcile four files at a time
  vbpmap run --dry-run                    # Reconcile and report without writing
  vbpmap run --sqlite vbp.db --force      # Rerun and also write SQLite`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}

	flags = addFlags(cmd)
	return cmd
}
