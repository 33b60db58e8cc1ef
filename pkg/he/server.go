package he

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/schemes/bgv"
	"go.uber.org/zap"
)

// ServerContext is the server side of the split. It holds no secret key and
// no decryptor: it can operate on ciphertexts but never decrypt them.
type ServerContext struct {
	Compression CompressionMode
	Context     *Context
	Encoder     *bgv.Encoder
	Evaluator   *bgv.Evaluator

	logger *zap.Logger
}

// NewServerContext builds a context without generating any key material.
// The evaluator starts without evaluation keys, so it supports additions and
// plaintext multiplications only; see WithEvaluationKeys.
// Unrecognized inputs fall back to the same defaults as NewClientContext.
func NewServerContext(polyModulusDegree, plainModulusBitSize, securityLevel int, compressionMode string, opts ...Option) (*ServerContext, error) {
	o := newOptions(opts)

	ctx, err := newContextFromInputs(polyModulusDegree, plainModulusBitSize, securityLevel, o)
	if err != nil {
		return nil, fmt.Errorf("NewServerContext: %w", err)
	}
	parameters := ctx.Parameters()

	s := &ServerContext{
		Compression: compressionFromInput(compressionMode, o),
		Context:     ctx,
		Encoder:     NewEncoder(parameters),
		Evaluator:   NewEvaluator(parameters, nil),
		logger:      o.logger,
	}

	o.logger.Info("created server context",
		zap.Stringer("params", ctx.ParameterSet()),
		zap.Stringer("compression", s.Compression),
	)

	return s, nil
}

// WithEvaluationKeys decodes keys serialized by a client and returns a new
// server bundle whose evaluator uses them. The receiver is left unchanged.
// Keys produced under other parameters are rejected with ErrKeyMismatch.
func (s *ServerContext) WithEvaluationKeys(blob []byte) (*ServerContext, error) {
	keys, err := unmarshalEvaluationKeys(s.Context.Fingerprint(), s.Context.maxEvaluationKeysSize(), blob)
	if err != nil {
		s.logger.Warn("rejected evaluation keys", zap.Error(err))
		return nil, fmt.Errorf("WithEvaluationKeys: %w", err)
	}

	s.logger.Debug("loaded evaluation keys",
		zap.Bool("relinearization", keys.RelinearizationKey != nil),
		zap.Int("galoisKeys", len(keys.GaloisKeys)),
	)

	return &ServerContext{
		Compression: s.Compression,
		Context:     s.Context,
		Encoder:     s.Encoder,
		Evaluator:   NewEvaluator(s.Context.Parameters(), keys.KeySet()),
		logger:      s.logger,
	}, nil
}
