// Package constants provides shared constants used throughout the vbpmap codebase.
// This includes reference-data sentinels, year bounds, file permissions, and
// the default locations the pipeline reads from and writes to.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// LongRunningTimeout bounds a full pipeline run over a large data directory
	LongRunningTimeout = 30 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Reconciliation constants
const (
	// UnmatchedRegion is the region and meso-region of a municipality that
	// did not resolve against the registry.
	UnmatchedRegion = "Unmatched"

	// Unclassified is the chain and sub-chain of a product that did not
	// resolve against the taxonomy, or whose taxonomy row left them blank.
	Unclassified = "Unclassified"

	// BlankLabel stands in for an empty municipality or product cell in
	// diagnostics.
	BlankLabel = "(blank)"

	// MinYear and MaxYear bound every normalized year (inclusive).
	MinYear = 1900
	MaxYear = 2100

	// CenturyBase is added to two-digit and biennium year codes.
	CenturyBase = 2000

	// CodeWidth is the width of an IBGE municipality code after zero padding.
	CodeWidth = 7
)

// Aggregation constants
const (
	// TopProductsPerYear is the number of products ranked per year
	TopProductsPerYear = 10

	// GeoJSONPrecision is the default number of decimals kept in coordinates
	GeoJSONPrecision = 4
)

// Limit constants
const (
	// DefaultWorkers is the default number of files reconciled concurrently
	DefaultWorkers = 1

	// MaxWorkers caps the worker pool regardless of configuration
	MaxWorkers = 64
)

// Path constants
const (
	// DefaultDataDir is where source spreadsheets and reference tables live
	DefaultDataDir = "data"

	// DefaultOutputDir is where exports are written
	DefaultOutputDir = "dashboard/public/data"

	// DefaultMunicipalitiesFile is the municipality registry workbook
	DefaultMunicipalitiesFile = "municipios_pr.xlsx"

	// DefaultProductsFile is the product taxonomy workbook
	DefaultProductsFile = "lista_produtos_vbp_2012_2024.xlsx"

	// DefaultProductsSheet is the taxonomy sheet within the products workbook
	DefaultProductsSheet = "Produtos"

	// DefaultCorrectionsSheet is the correction sheet within the products workbook
	DefaultCorrectionsSheet = "Correcao_produtos"

	// DefaultGeoJSONFile is the municipality boundary file in the data directory
	DefaultGeoJSONFile = "mun_PR.json"

	// DefaultConfigFile is the config file name looked up in home and cwd
	DefaultConfigFile = ".vbpmap"
)

// Default discovery patterns
var (
	// DefaultInclude selects production spreadsheets in the data directory
	DefaultInclude = []string{"*bp*.xlsx", "*BP*.xlsx"}

	// DefaultExclude keeps the product taxonomy workbook out of the source set
	DefaultExclude = []string{"*lista_produtos*"}
)

// Format constants
const (
	// TimeFormatISO8601 is the ISO 8601 time format
	TimeFormatISO8601 = time.RFC3339
)
