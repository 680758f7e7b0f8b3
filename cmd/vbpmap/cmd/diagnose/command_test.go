package diagnose

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/vbpmap/cmd/application"
	"github.com/agentstation/vbpmap/internal/cmd/cmdtest"
	"github.com/agentstation/vbpmap/pkg/errors"
	"github.com/agentstation/vbpmap/pkg/reconcile"
)

func newApp(t *testing.T, format string) *application.Mock {
	s := cmdtest.Settings(t)
	return &application.Mock{
		SettingsFunc:     func() application.Settings { return s },
		OutputFormatFunc: func() string { return format },
	}
}

func TestExecuteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Execute(context.Background(), newApp(t, "json"), DomainAll, &buf))

	var report reconcile.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, []string{"Cidade Perdida"}, report.UnmatchedMunicipalities)
	assert.Equal(t, []string{"Pitaya"}, report.UnmatchedProducts)
	assert.Equal(t, []reconcile.Label{{Label: "Pitaya", Rows: 1}}, report.ProductRows)
}

func TestExecuteDomainFilter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Execute(context.Background(), newApp(t, "json"), DomainProduct, &buf))

	var report reconcile.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Empty(t, report.UnmatchedMunicipalities)
	assert.Equal(t, []string{"Pitaya"}, report.UnmatchedProducts)
}

func TestExecuteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Execute(context.Background(), newApp(t, "table"), DomainAll, &buf))
	assert.Contains(t, buf.String(), "Cidade Perdida")
	assert.Contains(t, buf.String(), "1 unmatched municipalities, 1 unmatched products")
}

func TestExecuteRejectsDomain(t *testing.T) {
	err := Execute(context.Background(), newApp(t, "json"), "region", &bytes.Buffer{})
	assert.True(t, errors.IsValidationError(err))
}
