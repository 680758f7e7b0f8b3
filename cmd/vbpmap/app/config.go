package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/vbpmap/cmd/application"
	"github.com/agentstation/vbpmap/internal/config"
	"github.com/agentstation/vbpmap/pkg/constants"
	"github.com/agentstation/vbpmap/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Inputs
	DataDir            string
	MunicipalitiesFile string
	ProductsFile       string
	ProductsSheet      string
	CorrectionsSheet   string
	Include            []string
	Exclude            []string
	DictionaryFile     string
	GeoJSONFile        string

	// Run
	Workers int

	// Outputs
	OutputDir     string
	SQLitePath    string
	MetricsFile   string
	RecordsFormat string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.vbpmap.yaml or ./.vbpmap.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	return loadConfig(os.Getenv("CONFIG"))
}

// loadConfig loads configuration reading configFile, or the first
// .vbpmap.yaml found in home and cwd when configFile is empty.
func loadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(constants.DefaultConfigFile)
	}

	// A missing default config file is fine; an explicit one must load
	if err := viper.ReadInConfig(); err != nil && configFile != "" {
		return nil, errors.NewConfigError("config", "reading "+configFile, err)
	}

	cfg := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),
		Format:  viper.GetString("format"),

		ConfigFile: viper.ConfigFileUsed(),

		DataDir:            config.GetString("data_dir"),
		MunicipalitiesFile: config.GetString("municipalities_file"),
		ProductsFile:       config.GetString("products_file"),
		ProductsSheet:      config.GetString("products_sheet"),
		CorrectionsSheet:   config.GetString("corrections_sheet"),
		Include:            config.GetList("include"),
		Exclude:            config.GetList("exclude"),
		DictionaryFile:     config.GetString("dictionary_file"),
		GeoJSONFile:        config.GetString("geojson_file"),

		Workers: viper.GetInt("workers"),

		OutputDir:     config.GetString("output_dir"),
		SQLitePath:    config.GetString("sqlite_path"),
		MetricsFile:   config.GetString("metrics_file"),
		RecordsFormat: config.GetString("records_format"),

		// LOG_LEVEL stays empty unless set so the -v/-q shortcuts apply
		LogLevel:  os.Getenv("LOG_LEVEL"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	if len(cfg.Include) == 0 {
		cfg.Include = constants.DefaultInclude
	}
	if len(cfg.Exclude) == 0 {
		cfg.Exclude = constants.DefaultExclude
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("data_dir", constants.DefaultDataDir)
	viper.SetDefault("output_dir", constants.DefaultOutputDir)
	viper.SetDefault("municipalities_file", constants.DefaultMunicipalitiesFile)
	viper.SetDefault("products_file", constants.DefaultProductsFile)
	viper.SetDefault("products_sheet", constants.DefaultProductsSheet)
	viper.SetDefault("corrections_sheet", constants.DefaultCorrectionsSheet)
	viper.SetDefault("geojson_file", constants.DefaultGeoJSONFile)
	viper.SetDefault("workers", constants.DefaultWorkers)
	viper.SetDefault("records_format", "yaml")
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// Settings returns the run parameters commands read.
func (c *Config) Settings() application.Settings {
	return application.Settings{
		DataDir:            c.DataDir,
		OutputDir:          c.OutputDir,
		MunicipalitiesFile: c.MunicipalitiesFile,
		ProductsFile:       c.ProductsFile,
		ProductsSheet:      c.ProductsSheet,
		CorrectionsSheet:   c.CorrectionsSheet,
		Include:            c.Include,
		Exclude:            c.Exclude,
		DictionaryFile:     c.DictionaryFile,
		Workers:            c.Workers,
		SQLitePath:         c.SQLitePath,
		MetricsFile:        c.MetricsFile,
		GeoJSONFile:        c.GeoJSONFile,
		RecordsFormat:      c.RecordsFormat,
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded after .env; godotenv never overrides a variable
// that is already set.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
