package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/vbpmap/cmd/vbpmap/cmd/catalog"
	"github.com/agentstation/vbpmap/cmd/vbpmap/cmd/diagnose"
	"github.com/agentstation/vbpmap/cmd/vbpmap/cmd/manifest"
	"github.com/agentstation/vbpmap/cmd/vbpmap/cmd/run"
	"github.com/agentstation/vbpmap/cmd/vbpmap/cmd/units"
	"github.com/agentstation/vbpmap/cmd/vbpmap/cmd/version"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(run.NewCommand(a))
	rootCmd.AddCommand(diagnose.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(catalog.NewCommand(a))
	rootCmd.AddCommand(manifest.NewCommand(a))
	rootCmd.AddCommand(units.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(version.NewCommand(a))
}
