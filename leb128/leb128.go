// Package leb128 implements LEB128 variable-length integer encoding, the
// integer representation used throughout the Wasm binary format.
package leb128

import (
	"errors"
	"io"
)

// ErrOverflow is returned when a LEB128 sequence would need more than 10
// bytes to represent a 64-bit value (the maximum a well-formed encoding of
// a 64-bit integer can occupy).
var ErrOverflow = errors.New("leb128: value overflows 64 bits")

const maxBytes = 10

// EncodeU64 encodes v as unsigned LEB128.
func EncodeU64(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			break
		}
	}
	return out
}

// DecodeU64 reads an unsigned LEB128 value from r, returning the value, the
// number of bytes consumed, and an error. Reading zero bytes (immediate EOF)
// is not an error: it reports n == 0 and v == 0, treating end-of-stream at a
// value boundary as benign.
func DecodeU64(r io.Reader) (uint64, int, error) {
	var result uint64
	var shift uint
	var buf [1]byte
	n := 0
	for {
		nRead, err := r.Read(buf[:])
		if nRead == 0 {
			if err != nil && errors.Is(err, io.EOF) && n == 0 {
				return 0, 0, nil
			}
			if err == nil {
				continue
			}
			return 0, n, err
		}
		n++
		b := buf[0]
		if n == maxBytes {
			// The 10th byte of a 64-bit LEB128 may only carry the single
			// leftover high bit; anything else overflows.
			if b&0x80 != 0 || b > 1 {
				return 0, n, ErrOverflow
			}
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, n, nil
		}
		shift += 7
	}
}

// EncodeS64 encodes v as signed LEB128.
func EncodeS64(v int64) []byte {
	var out []byte
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}

// DecodeS64 reads a signed LEB128 value from r, returning the value, the
// number of bytes consumed, and an error. As with DecodeU64, immediate EOF
// is reported as (0, 0, nil).
func DecodeS64(r io.Reader) (int64, int, error) {
	var result int64
	var shift uint
	var buf [1]byte
	n := 0
	for {
		nRead, err := r.Read(buf[:])
		if nRead == 0 {
			if err != nil && errors.Is(err, io.EOF) && n == 0 {
				return 0, 0, nil
			}
			if err == nil {
				continue
			}
			return 0, n, err
		}
		n++
		b := buf[0]
		if n == maxBytes {
			signExtend := int8(b<<1) >> 1
			if b&0x80 != 0 || (signExtend != 0 && signExtend != -1) {
				return 0, n, ErrOverflow
			}
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				result |= -1 << shift
			}
			return result, n, nil
		}
	}
}
