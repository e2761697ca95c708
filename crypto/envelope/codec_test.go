package envelope

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	iv := bytes.Repeat([]byte{0x01}, IVSize)
	tag := bytes.Repeat([]byte{0x02}, TagSize)
	wrapped := []byte("wrapped-key-bytes")
	ciphertext := []byte("ciphertext")

	payload, err := encode(iv, tag, wrapped, ciphertext)
	require.NoError(t, err)

	d, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, iv, d.IV)
	assert.Equal(t, tag, d.Tag)
	assert.Equal(t, base64.StdEncoding.EncodeToString(wrapped), d.Keys)
	assert.Equal(t, ciphertext, d.Ciphertext)
}

func TestDecode_Layout(t *testing.T) {
	iv := bytes.Repeat([]byte{0xaa}, IVSize)
	tag := bytes.Repeat([]byte{0xbb}, TagSize)
	wrapped := bytes.Repeat([]byte{0xcc}, 300)

	payload, err := encode(iv, tag, wrapped, []byte{0xdd})
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	require.Len(t, raw, HeaderSize+2+300+1)
	assert.Equal(t, []byte{0xac, 0x02}, raw[HeaderSize:HeaderSize+2])
	assert.Equal(t, byte(0xdd), raw[len(raw)-1])
}

func TestDecode_EmptyParts(t *testing.T) {
	payload, err := encode(make([]byte, IVSize), make([]byte, TagSize), nil, nil)
	require.NoError(t, err)

	d, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, "", d.Keys)
	assert.Empty(t, d.Ciphertext)
}

func TestDecode_Idempotent(t *testing.T) {
	payload, err := Encrypt("Full speed ahead", testKey, testWrappedKey, testAAD)
	require.NoError(t, err)

	a, err := Decode(payload)
	require.NoError(t, err)
	b, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecode_Truncated(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty", nil},
		{"header only", make([]byte, HeaderSize)},
		{"wrapped key longer than buffer", append(make([]byte, HeaderSize), 5, 'a', 'b')},
		{"unterminated varint", append(make([]byte, HeaderSize), 0x80)},
	}

	for _, tt := range tests {
		_, err := Decode(base64.StdEncoding.EncodeToString(tt.raw))

		var encErr *EncodingError
		require.True(t, errors.As(err, &encErr), "%s: got %v", tt.name, err)
		assert.True(t, errors.Is(err, ErrTruncatedEnvelope), tt.name)
	}
}

func TestDecode_ExactWrappedKey(t *testing.T) {
	raw := append(make([]byte, HeaderSize), 2, 'a', 'b')

	d, err := Decode(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("ab")), d.Keys)
	assert.Empty(t, d.Ciphertext)
}

func TestDecode_Overflow(t *testing.T) {
	raw := append(make([]byte, HeaderSize), 0xff, 0xff, 0xff, 0xff, 0x7f)

	_, err := Decode(base64.StdEncoding.EncodeToString(raw))
	assert.True(t, errors.Is(err, ErrVarintOverflow))
}

func TestDecode_InvalidBase64(t *testing.T) {
	_, err := Decode("not base64!")

	var encErr *EncodingError
	assert.True(t, errors.As(err, &encErr))
	assert.True(t, IsPermanent(err))
}
