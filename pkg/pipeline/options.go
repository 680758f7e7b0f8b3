package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/vbpmap/pkg/constants"
	"github.com/agentstation/vbpmap/pkg/dictionary"
	"github.com/agentstation/vbpmap/pkg/errors"
)

// Options controls a pipeline.
type Options struct {
	Dictionary *dictionary.Dictionary // nil means the built-in dictionary
	Workers    int                    // files reconciled concurrently
	TopN       int                    // ranked products per year
	Metrics    *Metrics               // nil disables metrics
	Logger     *zerolog.Logger        // nil means the context or default logger
}

// Option configures Options.
type Option func(*Options)

// Defaults returns the default options.
func Defaults() *Options {
	return &Options{
		Workers: constants.DefaultWorkers,
		TopN:    constants.TopProductsPerYear,
	}
}

// Apply applies opts in order.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validate checks the options.
func (o *Options) Validate() error {
	if o.Workers < 1 || o.Workers > constants.MaxWorkers {
		return &errors.ValidationError{
			Field:   "Workers",
			Value:   o.Workers,
			Message: "workers must be between 1 and 64",
		}
	}
	if o.TopN < 0 {
		return &errors.ValidationError{
			Field:   "TopN",
			Value:   o.TopN,
			Message: "top products per year must be non-negative",
		}
	}
	return nil
}

// WithDictionary sets the alias, column and unit dictionary.
func WithDictionary(d *dictionary.Dictionary) Option {
	return func(o *Options) {
		o.Dictionary = d
	}
}

// WithWorkers bounds how many files are reconciled at once.
func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

// WithTopN sets how many products top_products_by_year keeps per year.
func WithTopN(n int) Option {
	return func(o *Options) {
		o.TopN = n
	}
}

// WithMetrics records run metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// WithLogger sets the logger used for pipeline events.
func WithLogger(l *zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}
