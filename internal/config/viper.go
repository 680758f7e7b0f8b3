// Package config provides viper helpers shared by the CLI configuration.
package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	osValue := os.Getenv(strings.ToUpper(key))
	viperValue := viper.GetString(key)

	// If Viper doesn't have it but OS does, return OS value
	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// GetList returns a list value. Config files may hold a YAML sequence;
// environment variables hold a comma-separated string.
func GetList(key string) []string {
	raw := viper.Get(key)
	if raw == nil {
		raw = os.Getenv(strings.ToUpper(key))
	}
	var items []string
	switch v := raw.(type) {
	case string:
		items = strings.Split(v, ",")
	case []string:
		items = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	}
	return Clean(items)
}

// Clean trims every item and drops empty ones.
func Clean(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
