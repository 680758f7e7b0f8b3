package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/vbpmap/cmd/application"
	"github.com/agentstation/vbpmap/internal/cmd/cmdtest"
	"github.com/agentstation/vbpmap/pkg/catalogs"
	"github.com/agentstation/vbpmap/pkg/errors"
	"github.com/agentstation/vbpmap/pkg/resolve"
)

func newApp(t *testing.T, format string) *application.Mock {
	s := cmdtest.Settings(t)
	return &application.Mock{
		SettingsFunc:     func() application.Settings { return s },
		OutputFormatFunc: func() string { return format },
	}
}

func TestExecuteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Execute(context.Background(), newApp(t, "json"), &Flags{Domain: DomainProduct}, &buf))

	var s catalogs.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &s))
	assert.Equal(t, 2, s.Municipalities)
	assert.Equal(t, 2, s.Products)
	assert.Equal(t, 1, s.Corrections)
}

func TestExecuteResolveMunicipality(t *testing.T) {
	var buf bytes.Buffer
	flags := &Flags{Resolve: "Arapuan", Domain: DomainMunicipality}
	require.NoError(t, Execute(context.Background(), newApp(t, "json"), flags, &buf))

	var r Resolution
	require.NoError(t, json.Unmarshal(buf.Bytes(), &r))
	assert.True(t, r.Resolution.Matched)
	assert.Equal(t, resolve.StrategyAlias, r.Resolution.Strategy)
	require.NotNil(t, r.Municipality)
	assert.Equal(t, "4101655", r.Municipality.Code)
	assert.Nil(t, r.Product)
}

func TestExecuteResolveProductTable(t *testing.T) {
	var buf bytes.Buffer
	flags := &Flags{Resolve: "Soja em grão", Domain: DomainProduct}
	require.NoError(t, Execute(context.Background(), newApp(t, "table"), flags, &buf))
	assert.Contains(t, buf.String(), resolve.StrategyCorrection.String())
	assert.Contains(t, buf.String(), "match: Soja, Grãos / Oleaginosas")
}

func TestExecuteUnresolved(t *testing.T) {
	var buf bytes.Buffer
	flags := &Flags{Resolve: "Pitaya", Domain: DomainProduct}
	require.NoError(t, Execute(context.Background(), newApp(t, "table"), flags, &buf))
	assert.Contains(t, buf.String(), "match: none")
}

func TestExecuteRejectsDomain(t *testing.T) {
	err := Execute(context.Background(), newApp(t, "json"), &Flags{Domain: "chain"}, &bytes.Buffer{})
	assert.True(t, errors.IsValidationError(err))
}
