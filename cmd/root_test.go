package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityzones/safezones-cli/internal/config"
)

func TestLoadRegistry_Builtin(t *testing.T) {
	cfg = &config.Config{}
	reg, err := loadRegistry()
	require.NoError(t, err)
	assert.Greater(t, len(reg.Categories), 30)
}

func TestLoadRegistry_Overrides(t *testing.T) {
	cfg = &config.Config{
		Registry: config.RegistryConfig{
			BufferOverrides: map[string]float64{"airports": 2000},
		},
	}
	reg, err := loadRegistry()
	require.NoError(t, err)
	c, ok := reg.Lookup("airports")
	require.True(t, ok)
	assert.Equal(t, 2000.0, c.BufferM)
}

func TestLoadRegistry_UnknownOverride(t *testing.T) {
	cfg = &config.Config{
		Registry: config.RegistryConfig{
			BufferOverrides: map[string]float64{"not_a_category": 10},
		},
	}
	_, err := loadRegistry()
	assert.Error(t, err)
}

func TestLoadRegistry_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	doc := `categories:
  - name: only_fuel
    buffer_m: 75
    matchers:
      - key: amenity
        values: [fuel]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg = &config.Config{Registry: config.RegistryConfig{File: path}}
	reg, err := loadRegistry()
	require.NoError(t, err)
	require.Len(t, reg.Categories, 1)
	assert.Equal(t, "only_fuel", reg.Categories[0].Name)
}

func TestCategoriesCommand(t *testing.T) {
	cfg = &config.Config{}
	var buf bytes.Buffer
	categoriesCmd.SetOut(&buf)

	require.NoError(t, categoriesCmd.RunE(categoriesCmd, nil))
	out := buf.String()
	assert.Contains(t, out, "CATEGORY")
	assert.Contains(t, out, "fuel_stations")
	assert.Contains(t, out, "amenity=fuel")
	assert.Contains(t, out, "waterway=*")
}
