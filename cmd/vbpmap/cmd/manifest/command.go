// Package manifest provides the manifest command implementation.
package manifest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentstation/vbpmap/cmd/application"
	"github.com/agentstation/vbpmap/internal/cmd/output"
	"github.com/agentstation/vbpmap/internal/cmd/table"
	"github.com/agentstation/vbpmap/pkg/errors"
	"github.com/agentstation/vbpmap/pkg/export"
	"github.com/agentstation/vbpmap/pkg/manifest"
	"github.com/agentstation/vbpmap/pkg/pipeline"
)

// ErrChanged is returned by --check when the inputs differ from the
// previous manifest.
var ErrChanged = errors.New("inputs changed since the previous manifest")

// Flags holds the manifest command flags.
type Flags struct {
	Check   bool
	Against string
}

// Report is what the manifest command prints.
type Report struct {
	manifest.Document `yaml:",inline"`

	Previous string `json:"previous,omitempty" yaml:"previous,omitempty"`
	Changed  *bool  `json:"changed,omitempty" yaml:"changed,omitempty"`
}

// NewCommand creates the manifest command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "manifest",
		GroupID: "management",
		Short:   "Show the input manifest and its fingerprint",
		Long: `Manifest lists the source files a run would read, with their size and
modification time, and the fingerprint derived from them. The reference
catalogs and the alias dictionary are listed too: a change to either
invalidates the previous outputs as well.

With --check the manifest is compared with the manifest.json of the
previous run and the command fails when the inputs changed.`,
		Example: `  vbpmap manifest
  vbpmap manifest --check                       # Compare with <output_dir>/manifest.json
  vbpmap manifest --check --against old.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(app, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&flags.Check, "check", false, "compare with a previous manifest and fail when inputs changed")
	cmd.Flags().StringVar(&flags.Against, "against", "", "previous manifest (default <output_dir>/manifest.json)")
	return cmd
}

// Execute builds the manifest of the configured sources and prints it.
func Execute(app application.Application, flags *Flags, w io.Writer) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return errors.WrapValidation("format", err)
	}

	s := app.Settings()
	files, err := pipeline.Discover(s.DataDir, s.Include, s.Exclude)
	if err != nil {
		return err
	}
	entries, err := manifest.Build(files)
	if err != nil {
		return err
	}
	reference, err := manifest.Build(s.ReferencePaths().Files())
	if err != nil {
		return errors.NewConfigError("reference", "cannot stat reference files", err)
	}
	report := Report{Document: manifest.New(entries, reference...)}

	if flags.Check {
		report.Previous = flags.Against
		if report.Previous == "" {
			report.Previous = filepath.Join(s.OutputDir, export.ManifestFile)
		}
		changed := true
		prev, err := manifest.ReadFile(report.Previous)
		switch {
		case err == nil:
			changed = !prev.Matches(report.Document)
		case errors.Is(err, os.ErrNotExist):
			app.Logger().Warn().Str("file", report.Previous).Msg("No previous manifest, treating inputs as changed")
		default:
			return err
		}
		report.Changed = &changed
	}

	if err := output.Render(w, format, report, func() output.Data {
		entries := make([]manifest.Entry, 0, len(report.Files)+len(report.Reference))
		entries = append(entries, report.Files...)
		return table.ManifestToTableData(append(entries, report.Reference...))
	}); err != nil {
		return err
	}
	if format == output.FormatTable || format == "" {
		fmt.Fprintf(w, "\nfingerprint: %s\n", report.Fingerprint)
		if report.Changed != nil {
			fmt.Fprintf(w, "changed: %s\n", table.FormatBool(*report.Changed))
		}
	}

	if report.Changed != nil && *report.Changed {
		return ErrChanged
	}
	return nil
}
