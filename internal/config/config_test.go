package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0l0ist/PSA/pkg/he"
)

func loadConfig(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse(args))

	v, err := BuildViper(fs)
	require.NoError(t, err)
	return NewConfig(v)
}

func TestDefaults(t *testing.T) {
	cfg, err := loadConfig(t)
	require.NoError(t, err)

	assert.Equal(t, Config{
		PolyModulusDegree:   8192,
		PlainModulusBitSize: 20,
		SecurityLevel:       128,
		CompressionMode:     "zstd",
		LogLevel:            "info",
		OutDir:              ".",
	}, cfg)
}

func TestFlagsAndEnvironment(t *testing.T) {
	t.Setenv("HECTL_SECURITY_LEVEL", "192")
	t.Setenv("HECTL_COMPRESSION_MODE", "zlib")

	cfg, err := loadConfig(t, "--poly-modulus-degree=4096", "--compression-mode=none")
	require.NoError(t, err)

	assert.Equal(t, 4096, cfg.PolyModulusDegree)
	assert.Equal(t, 192, cfg.SecurityLevel)
	// An explicit flag wins over the environment.
	assert.Equal(t, "none", cfg.CompressionMode)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hectl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("preset: TestSet\nlog-level: debug\n"), 0o600))

	cfg, err := loadConfig(t, "--config-file="+path)
	require.NoError(t, err)

	assert.Equal(t, "TestSet", cfg.Preset)
	assert.Equal(t, "debug", cfg.LogLevel)

	want, err := he.GetParameterSet(he.TestSet)
	require.NoError(t, err)
	assert.Equal(t, want, cfg.ParameterSet())
}

func TestFactoryInputs(t *testing.T) {
	cfg := Config{PolyModulusDegree: 2048, PlainModulusBitSize: 16, SecurityLevel: 999}

	degree, plainBits, securityLevel := cfg.FactoryInputs()
	assert.Equal(t, 2048, degree)
	assert.Equal(t, 16, plainBits)
	assert.Equal(t, 999, securityLevel, "unknown levels are passed through")
	assert.Equal(t, he.TC128, cfg.ParameterSet().SecurityLevel)

	cfg.Preset = string(he.HighSecuritySet)
	degree, _, securityLevel = cfg.FactoryInputs()
	assert.Equal(t, 16384, degree)
	assert.Equal(t, 256, securityLevel)
}

func TestValidate(t *testing.T) {
	valid := Config{PolyModulusDegree: 4096, PlainModulusBitSize: 20, LogLevel: "warn"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown preset", func(c *Config) { c.Preset = "FastSet" }},
		{"zero degree", func(c *Config) { c.PolyModulusDegree = 0 }},
		{"negative plain bits", func(c *Config) { c.PlainModulusBitSize = -1 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	_, err := loadConfig(t, "--log-level=loud")
	assert.Error(t, err)
}
