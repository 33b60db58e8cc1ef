package he

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/bgv"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/s0l0ist/PSA/pkg/he/compression"
	"github.com/s0l0ist/PSA/pkg/he/params"
)

// Fingerprint identifies a parameter set or a piece of key material.
type Fingerprint [32]byte

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:8])
}

// Context holds validated BFV parameters. It is immutable once created and
// may be shared by the bundles built on top of it.
type Context struct {
	params        bgv.Parameters
	parameterSet  params.ParameterSet
	parametersSet bool
	fingerprint   Fingerprint
}

// NewContext derives the engine parameters for ps and validates them against
// its security level. It fails with an error wrapping ErrInvalidParameters
// when the combination is not valid; no context is returned in that case.
func NewContext(ps ParameterSet, opts ...Option) (*Context, error) {
	return newContext(ps, newOptions(opts))
}

func newContext(ps ParameterSet, o options) (*Context, error) {
	bfvParams, err := params.GetBFVParameters(ps)
	if err != nil {
		o.logger.Debug("rejected parameter set", zap.Stringer("params", ps), zap.Error(err))
		return nil, fmt.Errorf("NewContext: %w", err)
	}

	ctx := &Context{
		params:        bfvParams,
		parameterSet:  ps,
		parametersSet: true,
		fingerprint:   parametersFingerprint(bfvParams),
	}

	o.logger.Debug("created context",
		zap.Int("logN", bfvParams.LogN()),
		zap.Int("qCount", len(bfvParams.Q())),
		zap.Int("pCount", len(bfvParams.P())),
		zap.Uint64("plainModulus", bfvParams.PlaintextModulus()),
		zap.Stringer("security", ps.SecurityLevel),
		zap.Stringer("fingerprint", ctx.fingerprint),
	)

	return ctx, nil
}

// newContextFromInputs applies the lenient mappings of the factory inputs.
func newContextFromInputs(polyModulusDegree, plainModulusBitSize, securityLevel int, o options) (*Context, error) {
	if !params.IsKnownSecurityLevel(securityLevel) {
		o.logger.Warn("unrecognized security level, using default",
			zap.Int("securityLevel", securityLevel),
			zap.Stringer("default", params.TC128),
		)
	}

	return newContext(ParameterSet{
		PolyModulusDegree:   polyModulusDegree,
		SecurityLevel:       params.SecurityLevelFromInt(securityLevel),
		PlainModulusBitSize: plainModulusBitSize,
	}, o)
}

func compressionFromInput(compressionMode string, o options) compression.Mode {
	if !compression.IsKnownMode(compressionMode) {
		o.logger.Warn("unrecognized compression mode, using default",
			zap.String("compressionMode", compressionMode),
			zap.Stringer("default", compression.Zstd),
		)
	}
	return compression.ModeFromString(compressionMode)
}

// parametersFingerprint hashes the ring degree, the modulus chain and the plaintext modulus.
func parametersFingerprint(p bgv.Parameters) Fingerprint {
	buf := binary.BigEndian.AppendUint64(nil, uint64(p.N()))
	buf = binary.BigEndian.AppendUint64(buf, p.PlaintextModulus())
	buf = binary.BigEndian.AppendUint64(buf, uint64(len(p.Q())))
	for _, qi := range p.Q() {
		buf = binary.BigEndian.AppendUint64(buf, qi)
	}
	buf = binary.BigEndian.AppendUint64(buf, uint64(len(p.P())))
	for _, pi := range p.P() {
		buf = binary.BigEndian.AppendUint64(buf, pi)
	}
	return blake3.Sum256(buf)
}

// KeyFingerprint hashes serialized key material.
func KeyFingerprint(data []byte) Fingerprint {
	return blake3.Sum256(data)
}

// Parameters returns the engine parameters.
func (c *Context) Parameters() bgv.Parameters {
	return c.params
}

// ParameterSet returns the parameter set the context was built from.
func (c *Context) ParameterSet() ParameterSet {
	return c.parameterSet
}

// ParametersSet reports whether the parameters passed validation. It is true
// for every context returned by NewContext.
func (c *Context) ParametersSet() bool {
	return c != nil && c.parametersSet
}

// Fingerprint returns a digest of the parameters. Two contexts with the same
// fingerprint accept each other's keys and ciphertexts.
func (c *Context) Fingerprint() Fingerprint {
	return c.fingerprint
}

// SlotCount returns the number of plaintext slots available for batching.
func (c *Context) SlotCount() int {
	return c.params.N()
}

// PlainModulus returns the plaintext modulus t.
func (c *Context) PlainModulus() uint64 {
	return c.params.PlaintextModulus()
}

// NewPlaintext allocates a plaintext at the maximum level.
func (c *Context) NewPlaintext() *rlwe.Plaintext {
	return bgv.NewPlaintext(c.params, c.params.MaxLevel())
}

// UnmarshalCiphertext decodes a blob produced by MarshalCiphertext.
// Payloads larger than a degree-2 ciphertext under the context's parameters
// are rejected before they are inflated in full.
func (c *Context) UnmarshalCiphertext(blob []byte) (*rlwe.Ciphertext, error) {
	data, err := compression.DecompressLimit(blob, c.maxCiphertextSize())
	if err != nil {
		return nil, fmt.Errorf("UnmarshalCiphertext: %w", err)
	}

	ct := bgv.NewCiphertext(c.params, 1, c.params.MaxLevel())
	if err = ct.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("UnmarshalCiphertext: %w", err)
	}
	if len(ct.Value) == 0 || len(ct.Value[0].Coeffs) == 0 || len(ct.Value[0].Coeffs[0]) != c.params.N() {
		return nil, fmt.Errorf("UnmarshalCiphertext: ring degree does not match N=%d: %w", c.params.N(), ErrKeyMismatch)
	}
	return ct, nil
}

// maxCiphertextSize bounds the serialized size of a ciphertext of degree at most 2.
func (c *Context) maxCiphertextSize() uint64 {
	moduli := uint64(len(c.params.Q()) + len(c.params.P()))
	return 3*uint64(c.params.N())*moduli*8 + 1<<12
}

// maxEvaluationKeysSize bounds the serialized size of a relinearization key
// and up to 2*LogN+1 Galois keys, each holding one key-switching element per
// Q prime over the extended basis QP. The bound is doubled for metadata.
func (c *Context) maxEvaluationKeysSize() uint64 {
	keys := uint64(2*c.params.LogN() + 2)
	perElement := 2 * uint64(c.params.N()) * uint64(len(c.params.Q())+len(c.params.P())) * 8
	return 2*keys*uint64(len(c.params.Q()))*perElement + 1<<16
}

// MarshalCiphertext serializes ct and compresses it with the mode.
func MarshalCiphertext(mode CompressionMode, ct *rlwe.Ciphertext) ([]byte, error) {
	if ct == nil {
		return nil, fmt.Errorf("MarshalCiphertext: ciphertext cannot be nil")
	}
	data, err := ct.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("MarshalCiphertext: %w", err)
	}
	return compression.Compress(mode, data)
}
