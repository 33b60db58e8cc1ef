package he

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/bgv"

	"github.com/s0l0ist/PSA/pkg/plain"
)

// decryptAndCompare decrypts ct with the client and checks every slot against want.
func decryptAndCompare(t *testing.T, client *ClientContext, ct *rlwe.Ciphertext, want []uint64) {
	t.Helper()
	got, err := client.DecryptValues(ct)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAddCiphertexts(t *testing.T) {
	client, server := newTestPair(t, TestSet)
	tm := client.Context.PlainModulus()
	n := client.Context.SlotCount()

	a := testValues(n, tm)
	b := make([]uint64, n)
	for i := range b {
		b[i] = tm - 1 - a[i]/2
	}

	ctA, err := client.EncryptValues(a)
	require.NoError(t, err)
	ctB, err := client.EncryptValues(b)
	require.NoError(t, err)

	ctOut, err := AddCiphertexts(ctA, ctB, server.Evaluator)
	require.NoError(t, err)

	want, err := plain.Add(a, b, tm)
	require.NoError(t, err)
	decryptAndCompare(t, client, ctOut, want)

	_, err = AddCiphertexts(nil, ctB, server.Evaluator)
	assert.Error(t, err)
	_, err = AddCiphertexts(ctA, ctB, nil)
	assert.Error(t, err)
}

func TestScalarMulCiphertext(t *testing.T) {
	client, server := newTestPair(t, DefaultSet)
	tm := client.Context.PlainModulus()
	n := client.Context.SlotCount()

	values := testValues(n, tm)
	scalar := uint64(12345)

	ctIn, err := client.EncryptValues(values)
	require.NoError(t, err)

	ctOut, err := ScalarMulCiphertext(scalar, ctIn, server.Evaluator)
	require.NoError(t, err)

	want, err := plain.ScalarMultiply(values, scalar, tm)
	require.NoError(t, err)
	decryptAndCompare(t, client, ctOut, want)

	_, err = ScalarMulCiphertext(scalar, nil, server.Evaluator)
	assert.Error(t, err)
}

func TestMulPlainCiphertext(t *testing.T) {
	client, server := newTestPair(t, DefaultSet)
	tm := client.Context.PlainModulus()
	n := client.Context.SlotCount()

	values := testValues(n, tm)
	weights := make([]uint64, n)
	for i := range weights {
		weights[i] = uint64(i % 17)
	}

	ctIn, err := client.EncryptValues(values)
	require.NoError(t, err)

	ctOut, err := MulPlainCiphertext(weights, ctIn, server.Evaluator)
	require.NoError(t, err)

	want, err := plain.Multiply(values, weights, tm)
	require.NoError(t, err)
	decryptAndCompare(t, client, ctOut, want)
}

func TestMulCiphertexts(t *testing.T) {
	client, server := newTestPair(t, DefaultSet)
	tm := client.Context.PlainModulus()
	n := client.Context.SlotCount()

	a := testValues(n, tm)
	b := make([]uint64, n)
	for i := range b {
		b[i] = uint64(i) % tm
	}

	ctA, err := client.EncryptValues(a)
	require.NoError(t, err)
	ctB, err := client.EncryptValues(b)
	require.NoError(t, err)

	ctOut, err := MulCiphertexts(ctA, ctB, server.Evaluator)
	require.NoError(t, err)
	assert.Equal(t, 1, ctOut.Degree(), "product should be relinearized")

	want, err := plain.Multiply(a, b, tm)
	require.NoError(t, err)
	decryptAndCompare(t, client, ctOut, want)

	_, err = MulCiphertexts(ctA, nil, server.Evaluator)
	assert.Error(t, err)
}

func TestMulCiphertextsNeedsRelinearizationKey(t *testing.T) {
	client, err := NewClientContext(4096, 20, 128, "zstd")
	require.NoError(t, err)
	server, err := NewServerContext(4096, 20, 128, "zstd")
	require.NoError(t, err)

	ct, err := client.EncryptValues([]uint64{1, 2, 3})
	require.NoError(t, err)

	_, err = MulCiphertexts(ct, ct, server.Evaluator)
	assert.Error(t, err)
}

func TestInnerSum(t *testing.T) {
	client, server := newTestPair(t, TestSet)
	tm := client.Context.PlainModulus()
	n := client.Context.SlotCount()

	values := testValues(n, tm)
	ctIn, err := client.EncryptValues(values)
	require.NoError(t, err)

	for _, window := range []int{1, 2, 8, n / 2} {
		ctOut, err := InnerSum(ctIn, window, server.Evaluator)
		require.NoError(t, err, "InnerSum(n=%d)", window)

		want, err := plain.InnerSum(values, window, tm)
		require.NoError(t, err)
		decryptAndCompare(t, client, ctOut, want)
	}

	tests := []struct {
		name string
		n    int
	}{
		{"zero", 0},
		{"not a power of two", 3},
		{"larger than a row", n},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InnerSum(ctIn, tt.n, server.Evaluator)
			assert.Error(t, err)
		})
	}
}

func TestApplyParallel(t *testing.T) {
	client, server := newTestPair(t, TestSet)
	tm := client.Context.PlainModulus()

	inputs := make([][]uint64, 6)
	cts := make([]*rlwe.Ciphertext, len(inputs))
	for i := range inputs {
		inputs[i] = testValues(32+i, tm)
		ct, err := client.EncryptValues(inputs[i])
		require.NoError(t, err)
		cts[i] = ct
	}

	sumRows := func(ct *rlwe.Ciphertext, eval *bgv.Evaluator) (*rlwe.Ciphertext, error) {
		return InnerSum(ct, 64, eval)
	}

	results, err := ApplyParallel(cts, sumRows, server.Evaluator, 3)
	require.NoError(t, err)
	require.Len(t, results, len(cts))

	n := client.Context.SlotCount()
	for i, ct := range results {
		want, err := plain.InnerSum(plain.Pad(inputs[i], n), 64, tm)
		require.NoError(t, err)
		decryptAndCompare(t, client, ct, want)
	}
}

func TestApplyParallelStopsOnError(t *testing.T) {
	client, server := newTestPair(t, TestSet)

	cts := make([]*rlwe.Ciphertext, 8)
	for i := range cts {
		ct, err := client.EncryptValues([]uint64{uint64(i)})
		require.NoError(t, err)
		cts[i] = ct
	}

	errBoom := errors.New("boom")
	failing := func(ct *rlwe.Ciphertext, eval *bgv.Evaluator) (*rlwe.Ciphertext, error) {
		return nil, errBoom
	}

	results, err := ApplyParallel(cts, failing, server.Evaluator, 4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBoom))
	assert.Nil(t, results)

	cts[3] = nil
	identity := func(ct *rlwe.Ciphertext, eval *bgv.Evaluator) (*rlwe.Ciphertext, error) {
		return ct, nil
	}
	_, err = ApplyParallel(cts, identity, server.Evaluator, 2)
	assert.Error(t, err)

	_, err = ApplyParallel(cts, nil, server.Evaluator, 2)
	assert.Error(t, err)

	results, err = ApplyParallel(nil, identity, server.Evaluator, 2)
	require.NoError(t, err)
	assert.Empty(t, results)
}
