// Package plain provides reference arithmetic over plaintext slot vectors
// modulo a plaintext modulus t. It mirrors what the homomorphic operations
// compute, so results can be checked after decryption.
//
// A slot vector of length N is laid out as two rows of N/2 slots, the layout
// used by BFV batching.
package plain

import (
	"fmt"
	"math/bits"
)

// Add performs slot-wise addition C = A + B mod t.
// Vectors A and B must have identical lengths.
func Add(a, b []uint64, t uint64) ([]uint64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("plain: lengths must be identical for addition, A has %d, B has %d", len(a), len(b))
	}
	if t == 0 {
		return nil, fmt.Errorf("plain: modulus cannot be zero")
	}

	c := make([]uint64, len(a))
	for i := range a {
		c[i] = (a[i]%t + b[i]%t) % t
	}
	return c, nil
}

// Subtract performs slot-wise subtraction C = A - B mod t.
// Vectors A and B must have identical lengths.
func Subtract(a, b []uint64, t uint64) ([]uint64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("plain: lengths must be identical for subtraction, A has %d, B has %d", len(a), len(b))
	}
	if t == 0 {
		return nil, fmt.Errorf("plain: modulus cannot be zero")
	}

	c := make([]uint64, len(a))
	for i := range a {
		c[i] = (a[i]%t + t - b[i]%t) % t
	}
	return c, nil
}

// Multiply performs slot-wise multiplication C = A * B mod t.
// Vectors A and B must have identical lengths.
func Multiply(a, b []uint64, t uint64) ([]uint64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("plain: lengths must be identical for multiplication, A has %d, B has %d", len(a), len(b))
	}
	if t == 0 {
		return nil, fmt.Errorf("plain: modulus cannot be zero")
	}

	c := make([]uint64, len(a))
	for i := range a {
		c[i] = mulMod(a[i], b[i], t)
	}
	return c, nil
}

// ScalarMultiply multiplies every slot by s mod t.
func ScalarMultiply(a []uint64, s, t uint64) ([]uint64, error) {
	if t == 0 {
		return nil, fmt.Errorf("plain: modulus cannot be zero")
	}

	c := make([]uint64, len(a))
	for i := range a {
		c[i] = mulMod(a[i], s, t)
	}
	return c, nil
}

// RotateColumns rotates each of the two rows left by k slots. Negative k rotates right.
func RotateColumns(a []uint64, k int) ([]uint64, error) {
	rowSize, err := rowSizeOf(a)
	if err != nil {
		return nil, err
	}

	k %= rowSize
	if k < 0 {
		k += rowSize
	}

	c := make([]uint64, len(a))
	for row := 0; row < 2; row++ {
		base := row * rowSize
		for i := 0; i < rowSize; i++ {
			c[base+i] = a[base+(i+k)%rowSize]
		}
	}
	return c, nil
}

// RotateRows swaps the two rows.
func RotateRows(a []uint64) ([]uint64, error) {
	rowSize, err := rowSizeOf(a)
	if err != nil {
		return nil, err
	}

	c := make([]uint64, len(a))
	copy(c, a[rowSize:])
	copy(c[rowSize:], a[:rowSize])
	return c, nil
}

// InnerSum replaces every slot with the sum mod t of the n slots starting at
// it, wrapping around within its row. Slot 0 thus holds the sum of the first n slots.
func InnerSum(a []uint64, n int, t uint64) ([]uint64, error) {
	rowSize, err := rowSizeOf(a)
	if err != nil {
		return nil, err
	}
	if n <= 0 || n > rowSize {
		return nil, fmt.Errorf("plain: window %d out of range (0, %d]", n, rowSize)
	}
	if t == 0 {
		return nil, fmt.Errorf("plain: modulus cannot be zero")
	}

	c := make([]uint64, len(a))
	for row := 0; row < 2; row++ {
		base := row * rowSize
		for i := 0; i < rowSize; i++ {
			var sum uint64
			for j := 0; j < n; j++ {
				sum = (sum + a[base+(i+j)%rowSize]%t) % t
			}
			c[base+i] = sum
		}
	}
	return c, nil
}

// Pad returns a copy of a extended with zeros to length n.
func Pad(a []uint64, n int) []uint64 {
	if len(a) >= n {
		return append([]uint64(nil), a...)
	}
	c := make([]uint64, n)
	copy(c, a)
	return c
}

func rowSizeOf(a []uint64) (int, error) {
	if len(a) == 0 || len(a)%2 != 0 {
		return 0, fmt.Errorf("plain: slot vector length %d is not a positive even number", len(a))
	}
	return len(a) / 2, nil
}

func mulMod(a, b, t uint64) uint64 {
	hi, lo := bits.Mul64(a%t, b%t)
	return bits.Rem64(hi, lo, t)
}
