package params

import (
	"fmt"
	"math/bits"

	"github.com/tuneinsight/lattigo/v6/ring"
)

// downstreamPrimes returns the n largest primes of exactly bitSize bits that
// are 1 mod nthRoot, in decreasing order. The whole range [2^(bitSize-1), 2^bitSize)
// is scanned.
func downstreamPrimes(bitSize int, nthRoot uint64, n int) ([]uint64, error) {
	if nthRoot == 0 || bitSize < 2 || bitSize > 63 {
		return nil, fmt.Errorf("no %d-bit primes 1 mod %d: %w", bitSize, nthRoot, ErrInvalidParameters)
	}

	lower := uint64(1) << (bitSize - 1)
	upper := uint64(1)<<bitSize - 1
	if upper <= nthRoot {
		return nil, fmt.Errorf("no %d-bit primes 1 mod %d: %w", bitSize, nthRoot, ErrInvalidParameters)
	}

	primes := make([]uint64, 0, n)
	// Largest candidate of the form k*nthRoot + 1 below 2^bitSize.
	for p := (upper-1)/nthRoot*nthRoot + 1; p >= lower; p -= nthRoot {
		if ring.IsPrime(p) {
			if primes = append(primes, p); len(primes) == n {
				return primes, nil
			}
		}
		if p-lower < nthRoot {
			break
		}
	}
	return nil, fmt.Errorf("only %d %d-bit primes are 1 mod %d: %w", len(primes), bitSize, nthRoot, ErrInvalidParameters)
}

// CoeffModulus returns the default ciphertext modulus chain for the degree at
// the given level, split into the Q chain and the key-switching prime P.
// Every prime has exactly the bit size listed by CoeffModulusBitSizes, so the
// chain never exceeds the security bound.
func CoeffModulus(polyModulusDegree int, sec SecurityLevel) (q, p []uint64, err error) {
	sizes, err := CoeffModulusBitSizes(polyModulusDegree, sec)
	if err != nil {
		return nil, nil, err
	}

	nthRoot := uint64(polyModulusDegree) << 1

	count := make(map[int]int)
	for _, size := range sizes {
		count[size]++
	}

	primes := make(map[int][]uint64, len(count))
	for size, n := range count {
		if primes[size], err = downstreamPrimes(size, nthRoot, n); err != nil {
			return nil, nil, fmt.Errorf("CoeffModulus: %w", err)
		}
	}

	chain := make([]uint64, len(sizes))
	for i, size := range sizes {
		chain[i] = primes[size][0]
		primes[size] = primes[size][1:]
	}

	if len(chain) == 1 {
		return chain, nil, nil
	}
	return chain[:len(chain)-1], chain[len(chain)-1:], nil
}

// BatchingPlainModulus returns the largest prime t of exactly bitSize bits
// with t = 1 mod 2N, so that the plaintext space supports SIMD batching.
func BatchingPlainModulus(polyModulusDegree, bitSize int) (uint64, error) {
	if bitSize < MinPlainModulusBitSize || bitSize > MaxPlainModulusBitSize {
		return 0, fmt.Errorf("BatchingPlainModulus: bit size %d out of range [%d, %d]: %w",
			bitSize, MinPlainModulusBitSize, MaxPlainModulusBitSize, ErrInvalidParameters)
	}
	if polyModulusDegree <= 0 || polyModulusDegree&(polyModulusDegree-1) != 0 {
		return 0, fmt.Errorf("BatchingPlainModulus: degree %d is not a power of two: %w", polyModulusDegree, ErrInvalidParameters)
	}

	nthRoot := uint64(polyModulusDegree) << 1
	// t = 1 mod 2N cannot be shorter than 2N itself.
	if bits.Len64(nthRoot) > bitSize {
		return 0, fmt.Errorf("BatchingPlainModulus: no %d-bit prime is 1 mod %d: %w", bitSize, nthRoot, ErrInvalidParameters)
	}

	primes, err := downstreamPrimes(bitSize, nthRoot, 1)
	if err != nil {
		return 0, fmt.Errorf("BatchingPlainModulus: %w", err)
	}
	return primes[0], nil
}
