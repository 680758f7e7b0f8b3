// Package units provides the units command implementation.
package units

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/vbpmap/cmd/application"
	"github.com/agentstation/vbpmap/internal/cmd/output"
	"github.com/agentstation/vbpmap/internal/cmd/table"
	"github.com/agentstation/vbpmap/pkg/errors"
)

// NewCommand creates the units command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "units",
		GroupID: "management",
		Short:   "Show the unit conversion table",
		Long: `Units lists every unit label the dictionary knows with its factor onto
tonnes. Units with a zero factor (heads, dozens, hectares, litres) are
kept on records but never add to converted quantity totals.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(app, cmd.OutOrStdout())
		},
	}
}

// Execute prints the conversion table of the configured dictionary.
func Execute(app application.Application, w io.Writer) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return errors.WrapValidation("format", err)
	}
	p, err := app.Pipeline()
	if err != nil {
		return err
	}
	entries := p.Converter().Table()
	return output.Render(w, format, entries, func() output.Data {
		return table.UnitsToTableData(entries)
	})
}
