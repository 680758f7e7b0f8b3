package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/vbpmap/pkg/constants"
	"github.com/agentstation/vbpmap/pkg/errors"
)

// isolate runs the test from an empty directory with fresh viper state.
func isolate(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultDataDir, cfg.DataDir)
	assert.Equal(t, constants.DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, constants.DefaultMunicipalitiesFile, cfg.MunicipalitiesFile)
	assert.Equal(t, constants.DefaultProductsFile, cfg.ProductsFile)
	assert.Equal(t, constants.DefaultProductsSheet, cfg.ProductsSheet)
	assert.Equal(t, constants.DefaultCorrectionsSheet, cfg.CorrectionsSheet)
	assert.Equal(t, constants.DefaultInclude, cfg.Include)
	assert.Equal(t, constants.DefaultExclude, cfg.Exclude)
	assert.Equal(t, constants.DefaultWorkers, cfg.Workers)
	assert.Equal(t, "auto", cfg.LogFormat)
}

func TestLoadConfigEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("DATA_DIR", "/srv/vbp")
	t.Setenv("WORKERS", "4")
	t.Setenv("INCLUDE", "*.xlsx,*.csv")
	t.Setenv("SQLITE_PATH", "vbp.db")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/srv/vbp", cfg.DataDir)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, []string{"*.xlsx", "*.csv"}, cfg.Include)
	assert.Equal(t, "vbp.db", cfg.SQLitePath)
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("METRICS_FILE=/tmp/vbpmap.prom\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("METRICS_FILE") })

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/vbpmap.prom", cfg.MetricsFile)
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	yaml := "data_dir: planilhas\nworkers: 3\nexclude:\n  - \"*old*\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".vbpmap.yaml"), []byte(yaml), 0o644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "planilhas", cfg.DataDir)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, []string{"*old*"}, cfg.Exclude)
	assert.Equal(t, constants.DefaultInclude, cfg.Include)
	assert.NotEmpty(t, cfg.ConfigFile)
}

func TestLoadConfigExplicitFileMissing(t *testing.T) {
	dir := isolate(t)
	_, err := loadConfig(filepath.Join(dir, "nope.yaml"))
	assert.True(t, errors.IsConfig(err))
}

func TestUpdateFromFlags(t *testing.T) {
	cfg := &Config{Format: "table", LogLevel: ""}
	cfg.UpdateFromFlags(true, false, true, "json", "")
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "json", cfg.Format)
	assert.Empty(t, cfg.LogLevel)

	cfg.UpdateFromFlags(false, false, false, "", "error")
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestSettings(t *testing.T) {
	cfg := &Config{DataDir: "data", MunicipalitiesFile: "m.xlsx", ProductsFile: "/abs/p.xlsx", Workers: 2}
	s := cfg.Settings()
	assert.Equal(t, 2, s.Workers)

	paths := s.ReferencePaths()
	assert.Equal(t, filepath.Join("data", "m.xlsx"), paths.Municipalities)
	assert.Equal(t, "/abs/p.xlsx", paths.Products)
}
