package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestGetListFromEnv(t *testing.T) {
	viper.Reset()
	t.Setenv("INCLUDE", " *bp*.xlsx, *BP*.xlsx ,")
	assert.Equal(t, []string{"*bp*.xlsx", "*BP*.xlsx"}, GetList("include"))
}

func TestGetListFromConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("exclude", []any{"*lista_produtos*", ""})
	assert.Equal(t, []string{"*lista_produtos*"}, GetList("exclude"))
}

func TestGetStringPrefersViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("DATA_DIR", "from-env")
	assert.Equal(t, "from-env", GetString("data_dir"))

	viper.Set("data_dir", "from-config")
	assert.Equal(t, "from-config", GetString("data_dir"))
}

func TestClean(t *testing.T) {
	assert.Empty(t, Clean([]string{" ", ""}))
}
