package export

import (
	"github.com/rs/zerolog"
)

// Format is an encoding for the optional record dump.
type Format int

// Format constants.
const (
	FormatNone Format = iota
	FormatJSON
	FormatYAML
)

// IsValid checks if the format is valid.
func (f Format) IsValid() bool {
	switch f {
	case FormatNone, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatNone:
		return "none"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	}
	return "unknown"
}

// ParseFormat parses a format name. The empty string means FormatNone.
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "", "none":
		return FormatNone, true
	case "json":
		return FormatJSON, true
	case "yaml", "yml":
		return FormatYAML, true
	}
	return FormatNone, false
}

// Options configures a Writer.
type Options struct {
	records Format
	logger  *zerolog.Logger
}

// Defaults returns the default writer options.
func Defaults() *Options {
	return &Options{records: FormatNone}
}

// Apply applies the given options.
func (o *Options) Apply(opts ...Option) Options {
	for _, opt := range opts {
		opt(o)
	}
	return *o
}

// Records returns the record dump format.
func (o *Options) Records() Format {
	return o.records
}

// Option configures writer Options.
type Option func(*Options)

// WithRecords also writes the canonical records in format f.
func WithRecords(f Format) Option {
	return func(o *Options) {
		o.records = f
	}
}

// WithLogger sets the logger for write events.
func WithLogger(l *zerolog.Logger) Option {
	return func(o *Options) {
		o.logger = l
	}
}
