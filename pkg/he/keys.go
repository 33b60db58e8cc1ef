package he

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/bgv"
	"golang.org/x/exp/slices"

	"github.com/s0l0ist/PSA/pkg/he/compression"
)

// ErrKeyMismatch is returned when key material or a ciphertext was produced
// under parameters other than the receiving context's.
var ErrKeyMismatch = errors.New("key material does not match context parameters")

// EvaluationKeys is the shareable part of a client's key material: everything
// a server needs to relinearize and rotate, and nothing that decrypts.
type EvaluationKeys struct {
	RelinearizationKey *rlwe.RelinearizationKey
	GaloisKeys         []*rlwe.GaloisKey
}

// KeySet returns the keys as an engine evaluation key set.
func (k *EvaluationKeys) KeySet() *rlwe.MemEvaluationKeySet {
	return rlwe.NewMemEvaluationKeySet(k.RelinearizationKey, k.GaloisKeys...)
}

// DefaultGaloisElements returns the Galois elements of the default key set:
// column rotations by plus and minus every power of two below N/2, and the row swap.
func DefaultGaloisElements(p bgv.Parameters) []uint64 {
	galEls := make([]uint64, 0, 2*p.LogN())
	for i := 0; i < p.LogN()-1; i++ {
		k := 1 << i
		galEls = append(galEls, p.GaloisElement(k), p.GaloisElement(-k))
	}
	galEls = append(galEls, p.GaloisElementForRowRotation())

	// Rotating by +N/4 and -N/4 are the same automorphism.
	slices.Sort(galEls)
	return slices.Compact(galEls)
}

// The serialized form is a compression frame around:
//
//	fingerprint [32]byte | has rlk uint8 | rlk length uint64 | rlk
//	| galois key count uint32 | (length uint64 | galois key)*
func marshalEvaluationKeys(mode compression.Mode, fp Fingerprint, keys *EvaluationKeys) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(fp[:])

	if keys.RelinearizationKey != nil {
		data, err := keys.RelinearizationKey.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("relinearization key: %w", err)
		}
		buf.WriteByte(1)
		writeChunk(&buf, data)
	} else {
		buf.WriteByte(0)
	}

	_ = binary.Write(&buf, binary.BigEndian, uint32(len(keys.GaloisKeys)))
	for i, gk := range keys.GaloisKeys {
		data, err := gk.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("galois key %d: %w", i, err)
		}
		writeChunk(&buf, data)
	}

	return compression.Compress(mode, buf.Bytes())
}

func unmarshalEvaluationKeys(fp Fingerprint, maxSize uint64, blob []byte) (*EvaluationKeys, error) {
	data, err := compression.DecompressLimit(blob, maxSize)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(data)

	var got Fingerprint
	if _, err = io.ReadFull(r, got[:]); err != nil {
		return nil, fmt.Errorf("fingerprint: %w", err)
	}
	if got != fp {
		return nil, fmt.Errorf("keys for parameters %s, context has %s: %w", got, fp, ErrKeyMismatch)
	}

	keys := new(EvaluationKeys)

	hasRlk, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("relinearization key flag: %w", err)
	}
	switch hasRlk {
	case 0:
	case 1:
		chunk, err := readChunk(r)
		if err != nil {
			return nil, fmt.Errorf("relinearization key: %w", err)
		}
		keys.RelinearizationKey = new(rlwe.RelinearizationKey)
		if err = keys.RelinearizationKey.UnmarshalBinary(chunk); err != nil {
			return nil, fmt.Errorf("relinearization key: %w", err)
		}
	default:
		return nil, fmt.Errorf("relinearization key flag must be 0 or 1, got %d", hasRlk)
	}

	var count uint32
	if err = binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("galois key count: %w", err)
	}
	// Each key needs at least its length prefix.
	if int64(count)*8 > int64(r.Len()) {
		return nil, fmt.Errorf("galois key count %d exceeds payload: %w", count, io.ErrUnexpectedEOF)
	}

	keys.GaloisKeys = make([]*rlwe.GaloisKey, count)
	for i := range keys.GaloisKeys {
		chunk, err := readChunk(r)
		if err != nil {
			return nil, fmt.Errorf("galois key %d: %w", i, err)
		}
		gk := new(rlwe.GaloisKey)
		if err = gk.UnmarshalBinary(chunk); err != nil {
			return nil, fmt.Errorf("galois key %d: %w", i, err)
		}
		keys.GaloisKeys[i] = gk
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after evaluation keys", r.Len())
	}

	return keys, nil
}

func writeChunk(buf *bytes.Buffer, data []byte) {
	_ = binary.Write(buf, binary.BigEndian, uint64(len(data)))
	buf.Write(data)
}

func readChunk(r *bytes.Reader) ([]byte, error) {
	var n uint64
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	if n > uint64(r.Len()) {
		return nil, fmt.Errorf("chunk of %d bytes exceeds remaining %d: %w", n, r.Len(), io.ErrUnexpectedEOF)
	}
	chunk := make([]byte, n)
	if _, err := io.ReadFull(r, chunk); err != nil {
		return nil, err
	}
	return chunk, nil
}
