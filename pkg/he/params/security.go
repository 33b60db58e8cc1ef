package params

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// SecurityLevel is the classical security level (in bits) a parameter set must reach.
type SecurityLevel int

const (
	// TC128 is 128-bit classical security.
	TC128 SecurityLevel = 128
	// TC192 is 192-bit classical security.
	TC192 SecurityLevel = 192
	// TC256 is 256-bit classical security.
	TC256 SecurityLevel = 256
)

// String returns the conventional name of the level (tc128, tc192, tc256).
func (s SecurityLevel) String() string {
	return fmt.Sprintf("tc%d", int(s))
}

// SecurityLevelFromInt maps 128, 192 and 256 to the matching level.
// Any other value maps to TC128.
func SecurityLevelFromInt(securityLevel int) SecurityLevel {
	switch securityLevel {
	case 128:
		return TC128
	case 192:
		return TC192
	case 256:
		return TC256
	default:
		return TC128
	}
}

// IsKnownSecurityLevel reports whether SecurityLevelFromInt maps v without falling back to the default.
func IsKnownSecurityLevel(v int) bool {
	switch v {
	case 128, 192, 256:
		return true
	}
	return false
}

// maxCoeffModulusBitCount is the largest total bit count of the ciphertext
// modulus (Q*P) allowed for each ring degree by the HE security standard.
var maxCoeffModulusBitCount = map[SecurityLevel]map[int]int{
	TC128: {1024: 27, 2048: 54, 4096: 109, 8192: 218, 16384: 438, 32768: 881},
	TC192: {1024: 19, 2048: 37, 4096: 75, 8192: 152, 16384: 305, 32768: 611},
	TC256: {1024: 14, 2048: 29, 4096: 58, 8192: 118, 16384: 237, 32768: 476},
}

// defaultCoeffModulus lists the prime bit sizes of the default BFV modulus
// chain per security level and degree. Each chain sums to at most the bound
// in maxCoeffModulusBitCount. The last entry is the key-switching prime.
var defaultCoeffModulus = map[SecurityLevel]map[int][]int{
	TC128: {
		1024:  {27},
		2048:  {54},
		4096:  {36, 36, 37},
		8192:  {43, 43, 44, 44, 44},
		16384: {48, 48, 48, 49, 49, 49, 49, 49, 49},
		32768: {55, 55, 55, 55, 55, 55, 55, 55, 55, 55, 55, 55, 55, 55, 55, 56},
	},
	TC192: {
		1024:  {19},
		2048:  {37},
		4096:  {25, 25, 25},
		8192:  {38, 38, 38, 38},
		16384: {50, 50, 51, 51, 51, 51},
		32768: {55, 55, 55, 55, 55, 55, 55, 55, 56, 56, 56},
	},
	TC256: {
		1024:  {14},
		2048:  {29},
		4096:  {29, 29},
		8192:  {39, 39, 40},
		16384: {47, 47, 47, 48, 48},
		32768: {53, 53, 53, 53, 53, 53, 53, 53, 52},
	},
}

// MaxCoeffModulusBitCount returns the largest total modulus bit count allowed
// for the degree at the given level, or 0 if the degree is not supported.
func MaxCoeffModulusBitCount(polyModulusDegree int, sec SecurityLevel) int {
	return maxCoeffModulusBitCount[sec][polyModulusDegree]
}

// CoeffModulusBitSizes returns a copy of the default modulus chain bit sizes
// for the degree at the given level.
func CoeffModulusBitSizes(polyModulusDegree int, sec SecurityLevel) ([]int, error) {
	table, ok := defaultCoeffModulus[sec]
	if !ok {
		return nil, fmt.Errorf("CoeffModulusBitSizes: unknown security level %d: %w", int(sec), ErrInvalidParameters)
	}
	sizes, ok := table[polyModulusDegree]
	if !ok {
		return nil, fmt.Errorf("CoeffModulusBitSizes: non-standard poly modulus degree %d for %s: %w", polyModulusDegree, sec, ErrInvalidParameters)
	}
	return slices.Clone(sizes), nil
}

// SupportedDegrees returns the polynomial modulus degrees that have a default
// modulus chain at the given level, in increasing order.
func SupportedDegrees(sec SecurityLevel) []int {
	degrees := maps.Keys(defaultCoeffModulus[sec])
	slices.Sort(degrees)
	return degrees
}
