package config

const (
	// Command line option keys
	ConfigFileKey = "config-file"

	// Environment variable prefix. HECTL_SECURITY_LEVEL overrides security-level.
	EnvPrefix = "HECTL"

	// Top-level configuration keys
	PresetKey              = "preset"
	PolyModulusDegreeKey   = "poly-modulus-degree"
	PlainModulusBitSizeKey = "plain-modulus-bit-size"
	SecurityLevelKey       = "security-level"
	CompressionModeKey     = "compression-mode"
	LogLevelKey            = "log-level"
	OutDirKey              = "out-dir"
)

const (
	defaultPolyModulusDegree   = 8192
	defaultPlainModulusBitSize = 20
	defaultSecurityLevel       = 128
	defaultCompressionMode     = "zstd"
	defaultLogLevel            = "info"
	defaultOutDir              = "."
)
