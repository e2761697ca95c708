package envelope

import "math"

// maxVarintLen32 is the longest LEB128 encoding of a uint32.
const maxVarintLen32 = 5

// EncodeUint32 encodes v as an unsigned LEB128 varint: 7 bit groups, least
// significant first, with the high bit set on every byte except the last.
func EncodeUint32(v uint32) []byte {
	b := make([]byte, 0, maxVarintLen32)
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// DecodeUint32 decodes an unsigned LEB128 varint starting at b[offset]. It
// returns the value and the index of the first byte after it.
func DecodeUint32(b []byte, offset int) (value uint32, next int, err error) {
	if offset < 0 || offset >= len(b) {
		return 0, 0, truncated("decode varint")
	}

	var shift uint
	for i := offset; i < len(b); i++ {
		c := b[i]
		if i-offset == maxVarintLen32-1 && c > 0x0f {
			// The 5th byte only has room for the top 4 bits, and must
			// terminate.
			return 0, 0, &EncodingError{Op: "decode varint", Err: ErrVarintOverflow}
		}
		value |= uint32(c&0x7f) << shift
		if c&0x80 == 0 {
			return value, i + 1, nil
		}
		shift += 7
	}

	return 0, 0, truncated("decode varint")
}

// encodeLength encodes a buffer length as a varint, rejecting lengths that a
// uint32 cannot hold.
func encodeLength(n int) ([]byte, error) {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return nil, &EncodingError{Op: "encode varint", Err: ErrVarintOverflow}
	}
	return EncodeUint32(uint32(n)), nil
}
