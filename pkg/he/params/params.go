// Package params provides BFV parameter sets, security levels and the default modulus chains behind them.
package params

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/tuneinsight/lattigo/v6/schemes/bgv"
)

// ErrInvalidParameters is returned whenever a parameter combination cannot produce a valid context.
var ErrInvalidParameters = errors.New("invalid encryption parameters")

const (
	// MinPlainModulusBitSize is the smallest supported plaintext modulus bit size.
	MinPlainModulusBitSize = 2
	// MaxPlainModulusBitSize is the largest supported plaintext modulus bit size.
	MaxPlainModulusBitSize = 60
)

// ParameterSet is the user-facing description of a BFV configuration.
type ParameterSet struct {
	PolyModulusDegree   int
	SecurityLevel       SecurityLevel
	PlainModulusBitSize int
}

// String implements fmt.Stringer.
func (ps ParameterSet) String() string {
	return fmt.Sprintf("N=%d/%s/t=%dbit", ps.PolyModulusDegree, ps.SecurityLevel, ps.PlainModulusBitSize)
}

// ParameterSetIdentifier names one of the predefined parameter sets.
type ParameterSetIdentifier string

const (
	// DefaultSet is a general-purpose configuration: N = 8192, 128-bit security, 20-bit plaintext modulus.
	DefaultSet ParameterSetIdentifier = "DefaultSet"
	// TestSet is a faster configuration for tests with N = 4096.
	TestSet ParameterSetIdentifier = "TestSet"
	// HighSecuritySet targets 256-bit security with N = 16384.
	HighSecuritySet ParameterSetIdentifier = "HighSecuritySet"
)

// GetParameterSet returns the parameter set registered under the identifier.
func GetParameterSet(paramSetID ParameterSetIdentifier) (ps ParameterSet, err error) {
	switch paramSetID {
	case DefaultSet:
		ps = ParameterSet{PolyModulusDegree: 8192, SecurityLevel: TC128, PlainModulusBitSize: 20}
	case TestSet:
		ps = ParameterSet{PolyModulusDegree: 4096, SecurityLevel: TC128, PlainModulusBitSize: 20}
	case HighSecuritySet:
		ps = ParameterSet{PolyModulusDegree: 16384, SecurityLevel: TC256, PlainModulusBitSize: 20}
	default:
		return ps, fmt.Errorf("unknown parameter set identifier: %s", paramSetID)
	}
	return ps, nil
}

// GetBFVParametersLiteral builds the unchecked engine literal for the parameter set.
func GetBFVParametersLiteral(ps ParameterSet) (bgv.ParametersLiteral, error) {
	q, p, err := CoeffModulus(ps.PolyModulusDegree, ps.SecurityLevel)
	if err != nil {
		return bgv.ParametersLiteral{}, err
	}

	t, err := BatchingPlainModulus(ps.PolyModulusDegree, ps.PlainModulusBitSize)
	if err != nil {
		return bgv.ParametersLiteral{}, err
	}

	return bgv.ParametersLiteral{
		LogN:             bits.Len(uint(ps.PolyModulusDegree)) - 1,
		Q:                q,
		P:                p,
		PlaintextModulus: t,
	}, nil
}

// GetBFVParameters derives and validates the engine parameters for the parameter set.
func GetBFVParameters(ps ParameterSet) (params bgv.Parameters, err error) {
	literal, err := GetBFVParametersLiteral(ps)
	if err != nil {
		return params, err
	}

	if params, err = bgv.NewParametersFromLiteral(literal); err != nil {
		return params, fmt.Errorf("failed to create BFV parameters for %s: %v: %w", ps, err, ErrInvalidParameters)
	}

	if err = CheckSecurity(params, ps.SecurityLevel); err != nil {
		return bgv.Parameters{}, err
	}

	return params, nil
}

// CheckSecurity verifies that the parameters reach the security level and that
// the plaintext modulus fits below the ciphertext modulus.
func CheckSecurity(params bgv.Parameters, sec SecurityLevel) error {
	maxBits := MaxCoeffModulusBitCount(params.N(), sec)
	if maxBits == 0 {
		return fmt.Errorf("CheckSecurity: degree %d has no %s bound: %w", params.N(), sec, ErrInvalidParameters)
	}

	total := 0
	for _, qi := range params.Q() {
		total += bits.Len64(qi)
	}
	for _, pi := range params.P() {
		total += bits.Len64(pi)
	}
	if total > maxBits {
		return fmt.Errorf("CheckSecurity: modulus has %d bits, %s allows %d for N=%d: %w",
			total, sec, maxBits, params.N(), ErrInvalidParameters)
	}

	if params.PlaintextModulus() >= params.Q()[0] {
		return fmt.Errorf("CheckSecurity: plaintext modulus %d is not smaller than Q[0]=%d: %w",
			params.PlaintextModulus(), params.Q()[0], ErrInvalidParameters)
	}

	return nil
}
