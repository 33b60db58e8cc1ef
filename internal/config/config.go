// Package config loads the hectl settings from flags, the environment and an
// optional config file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/s0l0ist/PSA/pkg/he"
)

// Config holds the resolved settings.
type Config struct {
	Preset              string `mapstructure:"preset"`
	PolyModulusDegree   int    `mapstructure:"poly-modulus-degree"`
	PlainModulusBitSize int    `mapstructure:"plain-modulus-bit-size"`
	SecurityLevel       int    `mapstructure:"security-level"`
	CompressionMode     string `mapstructure:"compression-mode"`
	LogLevel            string `mapstructure:"log-level"`
	OutDir              string `mapstructure:"out-dir"`
}

// AddFlags registers every configuration key on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.String(ConfigFileKey, "", "Path to a YAML or JSON config file")
	fs.String(PresetKey, "", "Named parameter set (DefaultSet, TestSet, HighSecuritySet); overrides the individual parameters")
	fs.Int(PolyModulusDegreeKey, defaultPolyModulusDegree, "Polynomial modulus degree N")
	fs.Int(PlainModulusBitSizeKey, defaultPlainModulusBitSize, "Bit size of the batching plaintext modulus")
	fs.Int(SecurityLevelKey, defaultSecurityLevel, "Security level in bits (128, 192 or 256)")
	fs.String(CompressionModeKey, defaultCompressionMode, "Serialization compression (none, zlib or zstd)")
	fs.String(LogLevelKey, defaultLogLevel, "Log level (debug, info, warn, error)")
	fs.String(OutDirKey, defaultOutDir, "Directory for generated key files")
}

// BuildViper binds the flags and the HECTL_ environment variables.
// The config file is optional; when set it is read with the lowest precedence.
func BuildViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// Map flag names to env var names. Flags are capitalized, and hyphens are replaced with underscores.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if filename := v.GetString(ConfigFileKey); filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
		}
	}

	return v, nil
}

// SetDefaultConfigValues registers the defaults for keys that were not bound to a flag.
func SetDefaultConfigValues(v *viper.Viper) {
	v.SetDefault(PolyModulusDegreeKey, defaultPolyModulusDegree)
	v.SetDefault(PlainModulusBitSizeKey, defaultPlainModulusBitSize)
	v.SetDefault(SecurityLevelKey, defaultSecurityLevel)
	v.SetDefault(CompressionModeKey, defaultCompressionMode)
	v.SetDefault(LogLevelKey, defaultLogLevel)
	v.SetDefault(OutDirKey, defaultOutDir)
}

// BuildConfig unmarshals the settings. Each source takes precedence over the
// ones below it:
//  1. Flags
//  2. Environment variables
//  3. Config file
//  4. Defaults
func BuildConfig(v *viper.Viper) (Config, error) {
	SetDefaultConfigValues(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal viper config: %w", err)
	}
	return cfg, nil
}

// NewConfig builds and validates the settings.
func NewConfig(v *viper.Viper) (Config, error) {
	cfg, err := BuildConfig(v)
	if err != nil {
		return cfg, err
	}
	if err = cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("failed to validate configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings that cannot fall back to a default.
// Unknown security levels and compression modes are accepted here; the
// context factories map them to their defaults.
func (c *Config) Validate() error {
	if c.Preset != "" {
		if _, err := he.GetParameterSet(he.ParameterSetIdentifier(c.Preset)); err != nil {
			return err
		}
	}
	if c.PolyModulusDegree <= 0 {
		return fmt.Errorf("%s must be positive, got %d", PolyModulusDegreeKey, c.PolyModulusDegree)
	}
	if c.PlainModulusBitSize <= 0 {
		return fmt.Errorf("%s must be positive, got %d", PlainModulusBitSizeKey, c.PlainModulusBitSize)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid %s: %w", LogLevelKey, err)
	}
	return nil
}

// FactoryInputs returns the raw context factory inputs: the preset's values
// when one is named, and the individual settings otherwise. Security level
// and compression are passed through unmapped so that the factories apply
// and report their defaults.
func (c *Config) FactoryInputs() (polyModulusDegree, plainModulusBitSize, securityLevel int) {
	if c.Preset != "" {
		if ps, err := he.GetParameterSet(he.ParameterSetIdentifier(c.Preset)); err == nil {
			return ps.PolyModulusDegree, ps.PlainModulusBitSize, int(ps.SecurityLevel)
		}
	}
	return c.PolyModulusDegree, c.PlainModulusBitSize, c.SecurityLevel
}

// ParameterSet returns the parameter set the factory inputs resolve to.
func (c *Config) ParameterSet() he.ParameterSet {
	degree, plainBits, securityLevel := c.FactoryInputs()
	return he.ParameterSet{
		PolyModulusDegree:   degree,
		SecurityLevel:       he.GetSecurityLevel(securityLevel),
		PlainModulusBitSize: plainBits,
	}
}

// NewLogger builds a production zap logger at the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
