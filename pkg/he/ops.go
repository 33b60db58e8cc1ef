package he

import (
	"fmt"
	"sync"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/bgv"
)

// AddCiphertexts performs homomorphic addition of two ciphertexts.
// It computes Enc(W1 + W2) slot-wise modulo the plaintext modulus.
func AddCiphertexts(ct1, ct2 *rlwe.Ciphertext, evaluator *bgv.Evaluator) (ctOut *rlwe.Ciphertext, err error) {
	if evaluator == nil {
		return nil, fmt.Errorf("AddCiphertexts: evaluator cannot be nil")
	}
	if ct1 == nil || ct2 == nil {
		return nil, fmt.Errorf("AddCiphertexts: input ciphertexts cannot be nil")
	}

	if ctOut, err = evaluator.AddNew(ct1, ct2); err != nil {
		return nil, fmt.Errorf("AddCiphertexts: AddNew failed: %w", err)
	}
	return ctOut, nil
}

// ScalarMulCiphertext multiplies every slot of an encrypted vector by a plaintext scalar.
// It computes v * Enc(W) = Enc(v * W) and needs no evaluation key.
func ScalarMulCiphertext(scalar uint64, ctIn *rlwe.Ciphertext, evaluator *bgv.Evaluator) (ctOut *rlwe.Ciphertext, err error) {
	if evaluator == nil {
		return nil, fmt.Errorf("ScalarMulCiphertext: evaluator cannot be nil")
	}
	if ctIn == nil {
		return nil, fmt.Errorf("ScalarMulCiphertext: input ciphertext cannot be nil")
	}

	if ctOut, err = evaluator.MulNew(ctIn, scalar); err != nil {
		return nil, fmt.Errorf("ScalarMulCiphertext: MulNew failed: %w", err)
	}
	return ctOut, nil
}

// MulPlainCiphertext multiplies an encrypted vector slot-wise by a plaintext vector.
func MulPlainCiphertext(values []uint64, ctIn *rlwe.Ciphertext, evaluator *bgv.Evaluator) (ctOut *rlwe.Ciphertext, err error) {
	if evaluator == nil {
		return nil, fmt.Errorf("MulPlainCiphertext: evaluator cannot be nil")
	}
	if ctIn == nil {
		return nil, fmt.Errorf("MulPlainCiphertext: input ciphertext cannot be nil")
	}

	if ctOut, err = evaluator.MulNew(ctIn, values); err != nil {
		return nil, fmt.Errorf("MulPlainCiphertext: MulNew failed: %w", err)
	}
	return ctOut, nil
}

// MulCiphertexts performs homomorphic multiplication of two ciphertexts.
// The product is relinearized back to degree 1, so the evaluator must hold a
// relinearization key.
func MulCiphertexts(ct1, ct2 *rlwe.Ciphertext, evaluator *bgv.Evaluator) (ctOut *rlwe.Ciphertext, err error) {
	if evaluator == nil {
		return nil, fmt.Errorf("MulCiphertexts: evaluator cannot be nil")
	}
	if ct1 == nil || ct2 == nil {
		return nil, fmt.Errorf("MulCiphertexts: input ciphertexts cannot be nil")
	}

	if ctOut, err = evaluator.MulRelinNew(ct1, ct2); err != nil {
		return nil, fmt.Errorf("MulCiphertexts: MulRelinNew failed: %w", err)
	}
	return ctOut, nil
}

// InnerSum sums the first n slots of a row and leaves the total in slot 0.
// It uses log2(n) power-of-two column rotations, so n must be a power of two
// no larger than half the slot count, and the evaluator needs the matching
// Galois keys (DefaultGaloisElements covers them).
func InnerSum(ctIn *rlwe.Ciphertext, n int, evaluator *bgv.Evaluator) (*rlwe.Ciphertext, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("InnerSum: evaluator cannot be nil")
	}
	if ctIn == nil {
		return nil, fmt.Errorf("InnerSum: input ciphertext cannot be nil")
	}
	if n <= 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("InnerSum: n must be a positive power of two, got %d", n)
	}
	if rowSize := evaluator.GetParameters().N() >> 1; n > rowSize {
		return nil, fmt.Errorf("InnerSum: n=%d exceeds the row size %d", n, rowSize)
	}

	resultCt := ctIn.CopyNew()
	tempCt := ctIn.CopyNew()

	for rotation := 1; rotation < n; rotation <<= 1 {
		if err := evaluator.RotateColumns(resultCt, rotation, tempCt); err != nil {
			return nil, fmt.Errorf("InnerSum: rotation %d failed: %w", rotation, err)
		}
		if err := evaluator.Add(resultCt, tempCt, resultCt); err != nil {
			return nil, fmt.Errorf("InnerSum: add after rotation %d failed: %w", rotation, err)
		}
	}

	return resultCt, nil
}

// ApplyParallel applies fn to every ciphertext using numWorkers goroutines.
// Each worker gets its own shallow copy of the evaluator, since evaluators
// carry scratch buffers that cannot be shared. The first error stops the
// remaining work and is returned.
func ApplyParallel(
	cts []*rlwe.Ciphertext,
	fn func(ct *rlwe.Ciphertext, evaluator *bgv.Evaluator) (*rlwe.Ciphertext, error),
	evaluator *bgv.Evaluator,
	numWorkers int,
) ([]*rlwe.Ciphertext, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("ApplyParallel: evaluator cannot be nil")
	}
	if fn == nil {
		return nil, fmt.Errorf("ApplyParallel: fn cannot be nil")
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if numWorkers > len(cts) {
		numWorkers = len(cts)
	}

	results := make([]*rlwe.Ciphertext, len(cts))
	jobs := make(chan int)
	done := make(chan struct{})

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(eval *bgv.Evaluator) {
			defer wg.Done()
			for i := range jobs {
				if cts[i] == nil {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("ApplyParallel: cts[%d] cannot be nil", i)
						close(done)
					})
					continue
				}
				ct, err := fn(cts[i], eval)
				if err != nil {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("ApplyParallel: cts[%d]: %w", i, err)
						close(done)
					})
					continue
				}
				results[i] = ct
			}
		}(evaluator.ShallowCopy())
	}

feed:
	for i := range cts {
		select {
		case jobs <- i:
		case <-done:
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
