// Package he builds BFV homomorphic encryption contexts for a client/server split.
// It wraps the Lattigo library: the client bundle owns the full key material,
// while the server bundle can only evaluate on ciphertexts.
package he

import (
	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/bgv"

	"github.com/s0l0ist/PSA/pkg/he/compression"
	"github.com/s0l0ist/PSA/pkg/he/params"
)

// Re-export types from the params and compression packages
type (
	ParameterSet           = params.ParameterSet
	ParameterSetIdentifier = params.ParameterSetIdentifier
	SecurityLevel          = params.SecurityLevel
	CompressionMode        = compression.Mode
)

// Define constants re-exported from params and compression
const (
	DefaultSet      = params.DefaultSet
	TestSet         = params.TestSet
	HighSecuritySet = params.HighSecuritySet

	TC128 = params.TC128
	TC192 = params.TC192
	TC256 = params.TC256

	CompressionNone = compression.None
	CompressionZlib = compression.Zlib
	CompressionZstd = compression.Zstd
)

// ErrInvalidParameters is returned when a parameter combination cannot produce a valid context.
var ErrInvalidParameters = params.ErrInvalidParameters

// GetParameterSet returns the predefined parameter set registered under the identifier.
func GetParameterSet(paramSetID ParameterSetIdentifier) (ParameterSet, error) {
	return params.GetParameterSet(paramSetID)
}

// GetSecurityLevel maps 128, 192 and 256 to the matching level and anything else to TC128.
func GetSecurityLevel(securityLevel int) SecurityLevel {
	return params.SecurityLevelFromInt(securityLevel)
}

// GetCompressionMode maps "none", "zlib" and "zstd" to the matching mode and anything else to zstd.
func GetCompressionMode(compressionMode string) CompressionMode {
	return compression.ModeFromString(compressionMode)
}

// KeyGenerator returns a new Lattigo key generator.
func KeyGenerator(parameters bgv.Parameters) *rlwe.KeyGenerator {
	return rlwe.NewKeyGenerator(parameters)
}

// NewEncoder creates and returns a new batch encoder.
func NewEncoder(parameters bgv.Parameters) *bgv.Encoder {
	return bgv.NewEncoder(parameters)
}

// NewEncryptor creates and returns a new RLWE encryptor from a public key.
func NewEncryptor(parameters bgv.Parameters, pk *rlwe.PublicKey) *rlwe.Encryptor {
	return rlwe.NewEncryptor(parameters, pk)
}

// NewDecryptor creates and returns a new RLWE decryptor from a secret key.
func NewDecryptor(parameters bgv.Parameters, sk *rlwe.SecretKey) *rlwe.Decryptor {
	return rlwe.NewDecryptor(parameters, sk)
}

// NewEvaluator creates a scale-invariant (BFV) evaluator. evk may be nil, in
// which case only operations that need no key switching are available.
func NewEvaluator(parameters bgv.Parameters, evk rlwe.EvaluationKeySet) *bgv.Evaluator {
	return bgv.NewEvaluator(parameters, evk, true)
}
