package units

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/vbpmap/cmd/application"
	"github.com/agentstation/vbpmap/pkg/units"
)

func TestExecuteJSON(t *testing.T) {
	app := &application.Mock{OutputFormatFunc: func() string { return "json" }}
	var buf bytes.Buffer
	require.NoError(t, Execute(app, &buf))

	var entries []units.Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.NotEmpty(t, entries)
	assert.True(t, entries[0].Convertible)

	factors := map[string]float64{}
	for _, e := range entries {
		factors[e.Unit] = e.Factor
	}
	assert.Equal(t, 1.0, factors["TON"])
	assert.Equal(t, 0.001, factors["KG"])
}

func TestExecuteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Execute(&application.Mock{}, &buf))
	assert.Contains(t, buf.String(), "KG")
	assert.Contains(t, buf.String(), "0.001")
}
