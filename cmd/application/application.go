// Package application provides the application interface for vbpmap commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            cat, err := app.Catalogs(cmd.Context())
//	            if err != nil {
//	                return err
//	            }
//	            // ... use cat
//	            return nil
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    SettingsFunc: func() application.Settings {
//	        return application.Settings{DataDir: t.TempDir()}
//	    },
//	}
//	cmd := NewCommand(mock)
package application

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/agentstation/vbpmap/pkg/catalogs"
	"github.com/agentstation/vbpmap/pkg/pipeline"
)

// Application provides the application interface that commands need.
// The App struct from cmd/vbpmap/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Settings returns the resolved paths and run parameters.
	Settings() Settings

	// Pipeline creates a pipeline configured from Settings. Extra options
	// are applied after the configured ones.
	Pipeline(opts ...pipeline.Option) (*pipeline.Pipeline, error)

	// Catalogs loads the reference catalogs named by Settings. The result
	// is cached for the lifetime of the application.
	Catalogs(ctx context.Context) (*catalogs.Catalogs, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}

// Settings are the run parameters commands read. Relative reference and
// boundary file names are resolved against DataDir; DictionaryFile is used
// as given.
type Settings struct {
	DataDir            string   `json:"data_dir" yaml:"data_dir"`
	OutputDir          string   `json:"output_dir" yaml:"output_dir"`
	MunicipalitiesFile string   `json:"municipalities_file" yaml:"municipalities_file"`
	ProductsFile       string   `json:"products_file" yaml:"products_file"`
	ProductsSheet      string   `json:"products_sheet" yaml:"products_sheet"`
	CorrectionsSheet   string   `json:"corrections_sheet" yaml:"corrections_sheet"`
	Include            []string `json:"include" yaml:"include"`
	Exclude            []string `json:"exclude" yaml:"exclude"`
	DictionaryFile     string   `json:"dictionary_file,omitempty" yaml:"dictionary_file,omitempty"`
	Workers            int      `json:"workers" yaml:"workers"`
	SQLitePath         string   `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`
	MetricsFile        string   `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
	GeoJSONFile        string   `json:"geojson_file,omitempty" yaml:"geojson_file,omitempty"`
	RecordsFormat      string   `json:"records_format,omitempty" yaml:"records_format,omitempty"`
}

// ReferencePaths returns the reference table locations.
func (s Settings) ReferencePaths() pipeline.ReferencePaths {
	return pipeline.ReferencePaths{
		Municipalities:   s.InData(s.MunicipalitiesFile),
		Products:         s.InData(s.ProductsFile),
		ProductsSheet:    s.ProductsSheet,
		CorrectionsSheet: s.CorrectionsSheet,
		Dictionary:       s.DictionaryFile,
	}
}

// InData resolves name against DataDir unless it is empty or absolute.
func (s Settings) InData(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.DataDir, name)
}
