package envelope

import (
	"encoding/base64"
)

// Decode parses a base64 envelope into its parts. It does no cryptography, so
// a successful Decode says nothing about whether the envelope is authentic.
func Decode(payload string) (*Decoded, error) {
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &EncodingError{Op: "decode envelope", Err: err}
	}

	// Minimum is the header plus a single byte varint.
	if len(b) < HeaderSize+1 {
		return nil, truncated("decode envelope")
	}

	keyLen, next, err := DecodeUint32(b, HeaderSize)
	if err != nil {
		return nil, err
	}

	end := uint64(next) + uint64(keyLen)
	if end > uint64(len(b)) {
		return nil, truncated("decode envelope")
	}

	return &Decoded{
		IV:         b[:IVSize:IVSize],
		Tag:        b[IVSize:HeaderSize:HeaderSize],
		Keys:       base64.StdEncoding.EncodeToString(b[next:end]),
		Ciphertext: b[end:],
	}, nil
}

// encode lays out an envelope in a single buffer and base64 encodes it.
func encode(iv, tag, wrappedKey, ciphertext []byte) (string, error) {
	prefix, err := encodeLength(len(wrappedKey))
	if err != nil {
		return "", err
	}

	b := make([]byte, 0, len(iv)+len(tag)+len(prefix)+len(wrappedKey)+len(ciphertext))
	b = append(b, iv...)
	b = append(b, tag...)
	b = append(b, prefix...)
	b = append(b, wrappedKey...)
	b = append(b, ciphertext...)

	return base64.StdEncoding.EncodeToString(b), nil
}
