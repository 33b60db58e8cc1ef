// Package compression implements the serialization-time compression modes
// applied to key and ciphertext byte representations.
//
// Every compressed blob starts with a one-byte header naming the mode, so a
// receiver can decompress without knowing the sender's configuration.
package compression

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Mode selects the compression codec.
type Mode uint8

const (
	// None stores the payload as is.
	None Mode = iota
	// Zlib compresses with DEFLATE in a zlib container.
	Zlib
	// Zstd compresses with Zstandard.
	Zstd
)

// DefaultMaxSize caps the output of Decompress.
const DefaultMaxSize uint64 = 4 << 30

// ErrTooLarge is returned when a payload inflates beyond the allowed size.
var ErrTooLarge = errors.New("decompressed payload too large")

// ErrUnknownMode is returned when a blob header names no known mode.
var ErrUnknownMode = errors.New("unknown compression mode")

// ModeFromString maps "none", "zlib" and "zstd" to the matching mode.
// Any other string maps to Zstd.
func ModeFromString(compression string) Mode {
	switch compression {
	case "none":
		return None
	case "zlib":
		return Zlib
	case "zstd":
		return Zstd
	default:
		return Zstd
	}
}

// IsKnownMode reports whether ModeFromString maps s without falling back to the default.
func IsKnownMode(s string) bool {
	switch s {
	case "none", "zlib", "zstd":
		return true
	}
	return false
}

func (m Mode) String() string {
	switch m {
	case None:
		return "none"
	case Zlib:
		return "zlib"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Compress returns data compressed with the mode, prefixed by the mode header.
func Compress(m Mode, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(m))

	switch m {
	case None:
		buf.Write(data)
	case Zlib:
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("Compress: zlib: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("Compress: zlib: %w", err)
		}
	case Zstd:
		w, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("Compress: zstd: %w", err)
		}
		if _, err = w.Write(data); err != nil {
			w.Close()
			return nil, fmt.Errorf("Compress: zstd: %w", err)
		}
		if err = w.Close(); err != nil {
			return nil, fmt.Errorf("Compress: zstd: %w", err)
		}
	default:
		return nil, fmt.Errorf("Compress: %s: %w", m, ErrUnknownMode)
	}

	return buf.Bytes(), nil
}

// Decompress reads the mode header of blob and returns the original payload,
// refusing payloads larger than DefaultMaxSize.
func Decompress(blob []byte) ([]byte, error) {
	return DecompressLimit(blob, DefaultMaxSize)
}

// DecompressLimit is Decompress with an explicit cap on the payload size.
// Blobs come from untrusted peers, so callers should pass the largest size
// a legitimate payload can have.
func DecompressLimit(blob []byte, maxSize uint64) ([]byte, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("Decompress: empty input: %w", io.ErrUnexpectedEOF)
	}
	if maxSize == 0 {
		return nil, fmt.Errorf("Decompress: zero size limit: %w", ErrTooLarge)
	}

	m, payload := Mode(blob[0]), blob[1:]
	switch m {
	case None:
		if uint64(len(payload)) > maxSize {
			return nil, fmt.Errorf("Decompress: %d bytes exceed %d: %w", len(payload), maxSize, ErrTooLarge)
		}
		return bytes.Clone(payload), nil
	case Zlib:
		r, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("Decompress: zlib: %w", err)
		}
		defer r.Close()
		// One byte past the limit tells an exact fit from an overflow.
		data, err := io.ReadAll(io.LimitReader(r, int64(maxSize)+1))
		if err != nil {
			return nil, fmt.Errorf("Decompress: zlib: %w", err)
		}
		if uint64(len(data)) > maxSize {
			return nil, fmt.Errorf("Decompress: zlib: payload exceeds %d bytes: %w", maxSize, ErrTooLarge)
		}
		return data, nil
	case Zstd:
		d, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxSize))
		if err != nil {
			return nil, fmt.Errorf("Decompress: zstd: %w", err)
		}
		defer d.Close()
		data, err := d.DecodeAll(payload, nil)
		switch {
		case errors.Is(err, zstd.ErrDecoderSizeExceeded), errors.Is(err, zstd.ErrWindowSizeExceeded),
			errors.Is(err, zstd.ErrFrameSizeExceeded):
			return nil, fmt.Errorf("Decompress: zstd: payload exceeds %d bytes: %w", maxSize, ErrTooLarge)
		case err != nil:
			return nil, fmt.Errorf("Decompress: zstd: %w", err)
		}
		if uint64(len(data)) > maxSize {
			return nil, fmt.Errorf("Decompress: zstd: payload exceeds %d bytes: %w", maxSize, ErrTooLarge)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("Decompress: header byte %d: %w", blob[0], ErrUnknownMode)
	}
}

// ModeOf returns the mode recorded in the blob header.
func ModeOf(blob []byte) (Mode, error) {
	if len(blob) == 0 {
		return 0, fmt.Errorf("ModeOf: empty input: %w", io.ErrUnexpectedEOF)
	}
	if m := Mode(blob[0]); m <= Zstd {
		return m, nil
	}
	return 0, fmt.Errorf("ModeOf: header byte %d: %w", blob[0], ErrUnknownMode)
}
