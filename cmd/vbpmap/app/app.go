// Package app provides the application context and dependency management
// for the vbpmap CLI. It centralizes configuration, logging and the
// reference catalogs shared by the commands.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/vbpmap/cmd/application"
	"github.com/agentstation/vbpmap/pkg/catalogs"
	"github.com/agentstation/vbpmap/pkg/dictionary"
	"github.com/agentstation/vbpmap/pkg/errors"
	"github.com/agentstation/vbpmap/pkg/pipeline"
)

// App represents the vbpmap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Catalogs are loaded once per process (lazy-initialized).
	mu       sync.Mutex
	catalogs *catalogs.Catalogs
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
// The app is initialized with configuration from the environment that can
// be customized using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("app", "loading config", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Settings returns the run parameters from the configuration.
func (a *App) Settings() application.Settings {
	return a.config.Settings()
}

// Pipeline creates a pipeline from the configuration. The dictionary file,
// when configured, is merged over the built-in dictionary.
func (a *App) Pipeline(opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	dict, err := dictionary.Load(a.config.DictionaryFile)
	if err != nil {
		return nil, err
	}
	base := []pipeline.Option{
		pipeline.WithDictionary(dict),
		pipeline.WithWorkers(a.config.Workers),
		pipeline.WithLogger(a.logger),
	}
	return pipeline.New(append(base, opts...)...)
}

// Catalogs loads the reference catalogs once. A failed load is not cached.
func (a *App) Catalogs(ctx context.Context) (*catalogs.Catalogs, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.catalogs != nil {
		return a.catalogs, nil
	}

	p, err := a.Pipeline()
	if err != nil {
		return nil, err
	}
	cat, err := p.LoadReference(ctx, a.Settings().ReferencePaths())
	if err != nil {
		return nil, err
	}
	a.catalogs = cat
	return cat, nil
}

// Shutdown drops the cached catalogs.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	a.catalogs = nil
	a.mu.Unlock()
	a.logger.Debug().Msg("Shutdown complete")
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithCatalogs sets preloaded catalogs (useful for testing).
func WithCatalogs(cat *catalogs.Catalogs) Option {
	return func(a *App) error {
		a.catalogs = cat
		return nil
	}
}
