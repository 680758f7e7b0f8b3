// Package version provides the version command implementation.
package version

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/vbpmap/cmd/application"
)

// NewCommand creates the version command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show version information for the vbpmap CLI.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			Print(cmd.OutOrStdout(), app)
		},
	}
}

// Print writes the build information.
func Print(w io.Writer, app application.Application) {
	fmt.Fprintf(w, "vbpmap version %s\n", app.Version())
	fmt.Fprintf(w, "commit: %s\n", app.Commit())
	fmt.Fprintf(w, "built: %s\n", app.Date())
	fmt.Fprintf(w, "built by: %s\n", app.BuiltBy())
	fmt.Fprintf(w, "go version: %s\n", runtime.Version())
	fmt.Fprintf(w, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
