// Package leb128 decodes the variable-length integer encoding used
// throughout the WebAssembly binary format.
//
// See https://www.w3.org/TR/2019/REC-wasm-core-1-20191205/#binary-uint
package leb128

import (
	"fmt"
	"io"
)

// maxVarintLenN mirrors the wire format's width limits: 32-bit values may
// span at most five continuation bytes, 64-bit values at most ten.
const (
	maxVarintLen32 = 5
	maxVarintLen64 = 10
)

// DecodeUint32 reads an unsigned LEB128 value bound to 32 bits, returning the
// value, the number of bytes consumed, and an error if the stream ends early
// or the value overflows 32 bits.
func DecodeUint32(r io.ByteReader) (ret uint32, bytesRead uint64, err error) {
	var shift int
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, 0, fmt.Errorf("unexpected EOF decoding uint32: %w", err)
		}
		bytesRead++
		if bytesRead > maxVarintLen32 {
			return 0, 0, fmt.Errorf("invalid uint32: too large")
		}
		if bytesRead == maxVarintLen32 && b&0x70 != 0 {
			// Only the low 4 value bits of the fifth byte may be set (32 useful bits total).
			return 0, 0, fmt.Errorf("invalid uint32: too large")
		}
		ret |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return ret, bytesRead, nil
		}
		shift += 7
	}
}

// DecodeInt32 reads a signed LEB128 value bound to 32 bits, sign-extending
// from the last bit read.
func DecodeInt32(r io.ByteReader) (ret int32, bytesRead uint64, err error) {
	var shift int
	var b byte
	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, 0, fmt.Errorf("unexpected EOF decoding int32: %w", err)
		}
		bytesRead++
		if bytesRead > maxVarintLen32 {
			return 0, 0, fmt.Errorf("invalid int32: too large")
		}
		ret |= int32(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 32 && b&0x40 != 0 {
		ret |= -1 << shift
	}
	return ret, bytesRead, nil
}

// DecodeUint64 reads an unsigned LEB128 value bound to 64 bits.
func DecodeUint64(r io.ByteReader) (ret uint64, bytesRead uint64, err error) {
	var shift int
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, 0, fmt.Errorf("unexpected EOF decoding uint64: %w", err)
		}
		bytesRead++
		if bytesRead > maxVarintLen64 {
			return 0, 0, fmt.Errorf("invalid uint64: too large")
		}
		if bytesRead == maxVarintLen64 && b&0xfe != 0 {
			// Only bit 0 of the tenth byte may be set (64 useful bits total).
			return 0, 0, fmt.Errorf("invalid uint64: too large")
		}
		ret |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return ret, bytesRead, nil
		}
		shift += 7
	}
}

// DecodeInt64 reads a signed LEB128 value bound to 64 bits, sign-extending
// from the last bit read.
func DecodeInt64(r io.ByteReader) (ret int64, bytesRead uint64, err error) {
	var shift int
	var b byte
	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, 0, fmt.Errorf("unexpected EOF decoding int64: %w", err)
		}
		bytesRead++
		if bytesRead > maxVarintLen64 {
			return 0, 0, fmt.Errorf("invalid int64: too large")
		}
		ret |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && b&0x40 != 0 {
		ret |= -1 << shift
	}
	return ret, bytesRead, nil
}
