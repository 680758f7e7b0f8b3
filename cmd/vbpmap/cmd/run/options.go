package run

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/vbpmap/cmd/application"
	"github.com/agentstation/vbpmap/internal/config"
)

// Flags holds the run command flags. Empty values fall back to settings.
type Flags struct {
	DataDir     string
	OutputDir   string
	Include     []string
	Exclude     []string
	Workers     int
	SQLitePath  string
	MetricsFile string
	GeoJSONFile string
	Records     string
	Force       bool
	DryRun      bool
}

func addFlags(cmd *cobra.Command) *Flags {
	f := &Flags{}
	cmd.Flags().StringVar(&f.DataDir, "data-dir", "", "directory holding source and reference spreadsheets")
	cmd.Flags().StringVar(&f.OutputDir, "output-dir", "", "directory the dashboard files are written to")
	cmd.Flags().StringSliceVar(&f.Include, "include", nil, "glob patterns selecting source files")
	cmd.Flags().StringSliceVar(&f.Exclude, "exclude", nil, "glob patterns removing source files")
	cmd.Flags().IntVarP(&f.Workers, "workers", "w", 0, "files reconciled concurrently")
	cmd.Flags().StringVar(&f.SQLitePath, "sqlite", "", "also write records and aggregates to this SQLite file")
	cmd.Flags().StringVar(&f.MetricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")
	cmd.Flags().StringVar(&f.GeoJSONFile, "geojson", "", "municipality boundaries to optimize into the output directory")
	cmd.Flags().StringVar(&f.Records, "records", "", "record dump format: none, json, yaml")
	cmd.Flags().BoolVar(&f.Force, "force", false, "run even when the inputs match the previous manifest")
	cmd.Flags().BoolVar(&f.DryRun, "dry-run", false, "reconcile and report without writing output")
	return f
}

// Apply overlays the flags that were set on s.
func (f *Flags) Apply(s application.Settings) application.Settings {
	if f.DataDir != "" {
		s.DataDir = f.DataDir
	}
	if f.OutputDir != "" {
		s.OutputDir = f.OutputDir
	}
	if include := config.Clean(f.Include); len(include) > 0 {
		s.Include = include
	}
	if exclude := config.Clean(f.Exclude); len(exclude) > 0 {
		s.Exclude = exclude
	}
	if f.Workers > 0 {
		s.Workers = f.Workers
	}
	if f.SQLitePath != "" {
		s.SQLitePath = f.SQLitePath
	}
	if f.MetricsFile != "" {
		s.MetricsFile = f.MetricsFile
	}
	if f.GeoJSONFile != "" {
		s.GeoJSONFile = f.GeoJSONFile
	}
	if f.Records != "" {
		s.RecordsFormat = f.Records
	}
	return s
}
