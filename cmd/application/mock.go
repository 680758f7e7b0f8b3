package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/vbpmap/pkg/catalogs"
	"github.com/agentstation/vbpmap/pkg/pipeline"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	SettingsFunc     func() Settings
	PipelineFunc     func(opts ...pipeline.Option) (*pipeline.Pipeline, error)
	CatalogsFunc     func(ctx context.Context) (*catalogs.Catalogs, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Settings returns settings using the mock function or the zero value.
func (m *Mock) Settings() Settings {
	if m.SettingsFunc != nil {
		return m.SettingsFunc()
	}
	return Settings{}
}

// Pipeline returns a pipeline using the mock function or a default pipeline
// with a no-op logger.
func (m *Mock) Pipeline(opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	if m.PipelineFunc != nil {
		return m.PipelineFunc(opts...)
	}
	return pipeline.New(append([]pipeline.Option{pipeline.WithLogger(m.Logger())}, opts...)...)
}

// Catalogs returns catalogs using the mock function, or loads them from
// Settings with a default pipeline.
func (m *Mock) Catalogs(ctx context.Context) (*catalogs.Catalogs, error) {
	if m.CatalogsFunc != nil {
		return m.CatalogsFunc(ctx)
	}
	p, err := m.Pipeline()
	if err != nil {
		return nil, err
	}
	return p.LoadReference(ctx, m.Settings().ReferencePaths())
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Application at compile time.
var _ Application = (*Mock)(nil)
