package envelope

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeUint32(t *testing.T) {
	tests := []struct {
		in  uint32
		out []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
		{16383, []byte{0xff, 0x7f}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{math.MaxUint32, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.out, EncodeUint32(tt.in), "EncodeUint32(%d)", tt.in)

		v, next, err := DecodeUint32(tt.out, 0)
		require.NoError(t, err)
		assert.Equal(t, tt.in, v)
		assert.Equal(t, len(tt.out), next)
	}
}

func TestVarintRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	values := []uint32{0, 1 << 7, 1<<7 - 1, 1 << 14, 1 << 21, 1 << 28, 1<<28 - 1, math.MaxUint32}
	for i := 0; i < 10000; i++ {
		values = append(values, r.Uint32())
	}

	for _, v := range values {
		b := EncodeUint32(v)
		got, next, err := DecodeUint32(b, 0)
		require.NoError(t, err)
		if got != v || next != len(b) {
			t.Fatalf("DecodeUint32(EncodeUint32(%d)) => (%d, %d); want (%d, %d)", v, got, next, v, len(b))
		}
	}
}

func TestDecodeUint32_Offset(t *testing.T) {
	b := append([]byte{0xde, 0xad}, EncodeUint32(300)...)
	b = append(b, 0xff)

	v, next, err := DecodeUint32(b, 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(300), v)
	assert.Equal(t, 4, next)
}

func TestDecodeUint32_Errors(t *testing.T) {
	tests := []struct {
		name   string
		in     []byte
		offset int
		err    error
	}{
		{"overflowing fifth byte", []byte{0xff, 0xff, 0xff, 0xff, 0x10}, 0, ErrVarintOverflow},
		{"six bytes", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}, 0, ErrVarintOverflow},
		{"unterminated", []byte{0x80, 0x80}, 0, ErrTruncatedEnvelope},
		{"empty", []byte{}, 0, ErrTruncatedEnvelope},
		{"offset past end", []byte{0x01}, 1, ErrTruncatedEnvelope},
		{"negative offset", []byte{0x01}, -1, ErrTruncatedEnvelope},
	}

	for _, tt := range tests {
		_, _, err := DecodeUint32(tt.in, tt.offset)

		var encErr *EncodingError
		require.True(t, errors.As(err, &encErr), tt.name)
		assert.True(t, errors.Is(err, tt.err), "%s: got %v", tt.name, err)
	}
}

func TestEncodeLength(t *testing.T) {
	b, err := encodeLength(17)
	require.NoError(t, err)
	assert.Equal(t, []byte{17}, b)

	_, err = encodeLength(-1)
	assert.True(t, errors.Is(err, ErrVarintOverflow))

	if math.MaxInt > math.MaxUint32 {
		n := uint64(math.MaxUint32) + 1
		_, err = encodeLength(int(n))
		assert.True(t, errors.Is(err, ErrVarintOverflow))
	}
}
