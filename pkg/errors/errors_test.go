package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/agentstation/vbpmap/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "sheet",
			ID:       "Produtos",
		}
		assert.Equal(t, `sheet "Produtos" not found`, err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("column", "Cadeia")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "workers",
			Message: "must be positive",
		}
		assert.Equal(t, "validation failed for field workers: must be positive", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid dictionary"}
		assert.Equal(t, "validation failed: invalid dictionary", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}

func TestConfigError(t *testing.T) {
	t.Run("missing columns are fatal", func(t *testing.T) {
		missing := &pkgerrors.MissingColumnsError{Table: "municipios_pr.xlsx", Columns: []string{"CodIbge", "MesoIdr"}}
		err := pkgerrors.NewConfigError("catalogs", "municipality registry unusable", missing)

		assert.True(t, pkgerrors.IsConfig(err))
		assert.False(t, pkgerrors.IsFileRejected(err))
		assert.Contains(t, err.Error(), "CodIbge, MesoIdr")

		var mc *pkgerrors.MissingColumnsError
		require.True(t, errors.As(err, &mc))
		assert.Equal(t, []string{"CodIbge", "MesoIdr"}, mc.Columns)
	})

	t.Run("wrapped with fmt", func(t *testing.T) {
		err := fmt.Errorf("load reference: %w", pkgerrors.NewConfigError("", "no products", nil))
		assert.True(t, pkgerrors.IsConfig(err))
		assert.Contains(t, err.Error(), "configuration error: no products")
	})
}

func TestFileError(t *testing.T) {
	t.Run("capability check", func(t *testing.T) {
		err := pkgerrors.NewFileError("vbp_2015.xlsx", "missing capabilities", []string{"year", "product"}, nil)
		assert.Equal(t, "file vbp_2015.xlsx skipped: missing capabilities (missing: year, product)", err.Error())
		assert.True(t, pkgerrors.IsFileRejected(err))
		assert.False(t, pkgerrors.IsConfig(err))
	})

	t.Run("wraps parse error", func(t *testing.T) {
		parse := pkgerrors.NewParseError("xlsx", "broken.xlsx", "zip: not a valid zip file", nil)
		err := pkgerrors.WrapFile("broken.xlsx", "unreadable", parse)

		assert.True(t, pkgerrors.IsFileRejected(err))
		var pe *pkgerrors.ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "xlsx", pe.Format)
	})

	t.Run("nil passthrough", func(t *testing.T) {
		assert.Nil(t, pkgerrors.WrapFile("x.csv", "unreadable", nil))
	})
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name string
		err  *pkgerrors.ParseError
		want string
	}{
		{
			name: "file and line",
			err:  &pkgerrors.ParseError{Format: "csv", File: "vbp.csv", Line: 12, Message: "bare quote"},
			want: "parse error in csv at vbp.csv:12: bare quote",
		},
		{
			name: "file only",
			err:  &pkgerrors.ParseError{Format: "yaml", File: "aliases.yaml", Message: "bad indent"},
			want: "parse error in yaml file aliases.yaml: bad indent",
		},
		{
			name: "no file",
			err:  &pkgerrors.ParseError{Format: "json", Message: "unexpected EOF"},
			want: "json parse error: unexpected EOF",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrapHelpers(t *testing.T) {
	base := errors.New("permission denied")

	assert.Nil(t, pkgerrors.WrapIO("read", "x", nil))
	assert.Nil(t, pkgerrors.WrapParse("csv", "x", nil))
	assert.Nil(t, pkgerrors.WrapValidation("x", nil))

	ioErr := pkgerrors.WrapIO("open", "/data/vbp.xlsx", base)
	assert.ErrorIs(t, ioErr, base)
	assert.Contains(t, ioErr.Error(), "/data/vbp.xlsx")

	parseErr := pkgerrors.WrapParse("xlsx", "vbp.xlsx", base)
	assert.ErrorIs(t, parseErr, base)

	valErr := pkgerrors.WrapValidation("unit", base)
	assert.True(t, pkgerrors.IsValidationError(valErr))
}
