package he

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/bgv"
	"go.uber.org/zap"

	"github.com/s0l0ist/PSA/pkg/he/compression"
)

// ClientContext is the client side of the split. It owns the full key
// material; the secret key must never leave the process.
type ClientContext struct {
	Compression        CompressionMode
	Context            *Context
	Encoder            *bgv.Encoder
	KeyGenerator       *rlwe.KeyGenerator
	PublicKey          *rlwe.PublicKey
	SecretKey          *rlwe.SecretKey
	RelinearizationKey *rlwe.RelinearizationKey
	GaloisKeys         []*rlwe.GaloisKey
	Encryptor          *rlwe.Encryptor
	Decryptor          *rlwe.Decryptor
	Evaluator          *bgv.Evaluator
}

// NewClientContext builds a context and generates fresh key material for it:
// a key pair, a relinearization key and the default Galois keys.
// Unrecognized security levels fall back to 128 bits and unrecognized
// compression modes to zstd. Every call generates new keys.
func NewClientContext(polyModulusDegree, plainModulusBitSize, securityLevel int, compressionMode string, opts ...Option) (*ClientContext, error) {
	o := newOptions(opts)

	ctx, err := newContextFromInputs(polyModulusDegree, plainModulusBitSize, securityLevel, o)
	if err != nil {
		return nil, fmt.Errorf("NewClientContext: %w", err)
	}
	parameters := ctx.Parameters()

	kgen := KeyGenerator(parameters)
	sk, pk := kgen.GenKeyPairNew()
	rlk := kgen.GenRelinearizationKeyNew(sk)
	gks := kgen.GenGaloisKeysNew(DefaultGaloisElements(parameters), sk)

	c := &ClientContext{
		Compression:        compressionFromInput(compressionMode, o),
		Context:            ctx,
		Encoder:            NewEncoder(parameters),
		KeyGenerator:       kgen,
		PublicKey:          pk,
		SecretKey:          sk,
		RelinearizationKey: rlk,
		GaloisKeys:         gks,
		Encryptor:          NewEncryptor(parameters, pk),
		Decryptor:          NewDecryptor(parameters, sk),
		Evaluator:          NewEvaluator(parameters, rlwe.NewMemEvaluationKeySet(rlk, gks...)),
	}

	o.logger.Info("created client context",
		zap.Stringer("params", ctx.ParameterSet()),
		zap.Stringer("compression", c.Compression),
		zap.Int("galoisKeys", len(gks)),
	)

	return c, nil
}

// EvaluationKeys returns the shareable key material.
func (c *ClientContext) EvaluationKeys() *EvaluationKeys {
	return &EvaluationKeys{
		RelinearizationKey: c.RelinearizationKey,
		GaloisKeys:         c.GaloisKeys,
	}
}

// SerializeEvaluationKeys encodes the shareable key material with the
// context's compression mode, ready to be sent to a server.
func (c *ClientContext) SerializeEvaluationKeys() ([]byte, error) {
	blob, err := marshalEvaluationKeys(c.Compression, c.Context.Fingerprint(), c.EvaluationKeys())
	if err != nil {
		return nil, fmt.Errorf("SerializeEvaluationKeys: %w", err)
	}
	return blob, nil
}

// SerializePublicKey encodes the public key with the context's compression mode.
func (c *ClientContext) SerializePublicKey() ([]byte, error) {
	data, err := c.PublicKey.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("SerializePublicKey: %w", err)
	}
	return compression.Compress(c.Compression, data)
}

// SerializeSecretKey encodes the secret key for local storage only.
// The result is uncompressed and must never be sent to a server.
func (c *ClientContext) SerializeSecretKey() ([]byte, error) {
	data, err := c.SecretKey.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("SerializeSecretKey: %w", err)
	}
	return data, nil
}

// EncryptValues encodes values into the plaintext slots and encrypts them
// under the public key. At most SlotCount values are accepted; each is reduced
// modulo the plaintext modulus.
func (c *ClientContext) EncryptValues(values []uint64) (*rlwe.Ciphertext, error) {
	if len(values) > c.Context.SlotCount() {
		return nil, fmt.Errorf("EncryptValues: %d values exceed %d slots", len(values), c.Context.SlotCount())
	}

	pt := c.Context.NewPlaintext()
	if err := c.Encoder.Encode(values, pt); err != nil {
		return nil, fmt.Errorf("EncryptValues: encode failed: %w", err)
	}

	ct, err := c.Encryptor.EncryptNew(pt)
	if err != nil {
		return nil, fmt.Errorf("EncryptValues: encrypt failed: %w", err)
	}
	return ct, nil
}

// DecryptValues decrypts ct and decodes all of its slots.
func (c *ClientContext) DecryptValues(ct *rlwe.Ciphertext) ([]uint64, error) {
	if ct == nil {
		return nil, fmt.Errorf("DecryptValues: ciphertext cannot be nil")
	}

	pt := c.Decryptor.DecryptNew(ct)
	values := make([]uint64, c.Context.SlotCount())
	if err := c.Encoder.Decode(pt, values); err != nil {
		return nil, fmt.Errorf("DecryptValues: decode failed: %w", err)
	}
	return values, nil
}
