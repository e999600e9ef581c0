// Package utf16x decodes little/big-endian UTF-16 byte runs into UTF-8,
// for reassembled VFAT long-name fragments (which are always UTF-16LE,
// but the decoder takes byte order explicitly rather than assuming it;
// packed on-disk fields are part of the wire contract, not something to
// infer from host endianness).
package utf16x

import (
	"encoding/binary"
	"errors"
	"unicode/utf16"
	"unicode/utf8"
)

const (
	// 0xd800-0xdc00 encodes the high 10 bits of a surrogate pair.
	// 0xdc00-0xe000 encodes the low 10 bits of a surrogate pair.
	// The value is those 20 bits plus 0x10000.
	surr1 = 0xd800
	surr2 = 0xdc00
	surr3 = 0xe000
)

const replacementChar = '�'

var (
	errOddLength    = errors.New("utf16x: byte length must be a multiple of 2")
	errShortDst     = errors.New("utf16x: destination buffer too short")
	errInvalidUTF16 = errors.New("utf16x: invalid surrogate sequence")
)

// ToUTF8 decodes srcUTF16 (a byte run in the given order) into dstUTF8,
// returning the number of bytes written.
func ToUTF8(dstUTF8, srcUTF16 []byte, order16 binary.ByteOrder) (int, error) {
	if len(srcUTF16)%2 != 0 {
		return 0, errOddLength
	}
	n := 0
	for len(srcUTF16) > 1 {
		r, size := decodeRune(srcUTF16, order16)
		if r == utf8.RuneError {
			return n, errInvalidUTF16
		}
		if utf8.RuneLen(r) > len(dstUTF8[n:]) {
			return n, errShortDst
		}
		srcUTF16 = srcUTF16[size:]
		n += utf8.EncodeRune(dstUTF8[n:], r)
	}
	return n, nil
}

// decodeRune reads one code point (one or two code units) from the
// front of srcUTF16.
func decodeRune(srcUTF16 []byte, order16 binary.ByteOrder) (r rune, size int) {
	if len(srcUTF16) < 2 {
		return replacementChar, 1
	}
	r = rune(order16.Uint16(srcUTF16))
	switch {
	case r < surr1, surr3 <= r:
		return r, 2
	case surr1 <= r && r < surr2:
		if len(srcUTF16) < 4 {
			return replacementChar, 2
		}
		r2 := rune(order16.Uint16(srcUTF16[2:]))
		if !(surr2 <= r2 && r2 < surr3) {
			return replacementChar, 2
		}
		return utf16.DecodeRune(r, r2), 4
	default:
		return replacementChar, 2
	}
}
