package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// Encrypt seals plaintext with AES-256-GCM under dataKey, binding aad, and
// returns a base64 envelope that carries wrappedKeys alongside the ciphertext.
//
// dataKey is base64 encoded raw key material and must decode to 32 bytes.
// wrappedKeys is the base64 wrapped data key returned by the KeyService; it is
// stored as is.
func Encrypt(plaintext, dataKey, wrappedKeys, aad string) (string, error) {
	return EncryptBytes([]byte(plaintext), dataKey, wrappedKeys, aad)
}

// EncryptBytes is Encrypt for a binary plaintext.
func EncryptBytes(plaintext []byte, dataKey, wrappedKeys, aad string) (string, error) {
	return encrypt(rand.Reader, plaintext, dataKey, wrappedKeys, aad)
}

func encrypt(random io.Reader, plaintext []byte, dataKey, wrappedKeys, aad string) (string, error) {
	gcm, err := newGCM(dataKey)
	if err != nil {
		return "", err
	}

	wrapped, err := base64.StdEncoding.DecodeString(wrappedKeys)
	if err != nil {
		return "", &EncodingError{Op: "decode wrapped key", Err: err}
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(random, iv); err != nil {
		return "", &EncryptionError{Err: err}
	}

	sealed := gcm.Seal(nil, iv, plaintext, []byte(aad))
	if len(sealed) < TagSize {
		return "", &EncryptionError{Err: fmt.Errorf("sealed output is %d bytes", len(sealed))}
	}
	ciphertext, tag := sealed[:len(sealed)-TagSize], sealed[len(sealed)-TagSize:]

	return encode(iv, tag, wrapped, ciphertext)
}

// Decrypt decodes a base64 envelope and opens it with dataKey and aad.
func Decrypt(payload, dataKey, aad string) (string, error) {
	plaintext, err := DecryptBytes(payload, dataKey, aad)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// DecryptBytes is Decrypt for a binary plaintext.
func DecryptBytes(payload, dataKey, aad string) ([]byte, error) {
	d, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	return openDecoded(d, dataKey, aad)
}

// DecryptDecoded opens an envelope that was already parsed with Decode. This
// is the usual path when the wrapped key in d.Keys had to be unwrapped first.
func DecryptDecoded(d *Decoded, dataKey, aad string) (string, error) {
	plaintext, err := openDecoded(d, dataKey, aad)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func openDecoded(d *Decoded, dataKey, aad string) ([]byte, error) {
	if d == nil || len(d.IV) != IVSize || len(d.Tag) != TagSize {
		return nil, truncated("open envelope")
	}

	gcm, err := newGCM(dataKey)
	if err != nil {
		return nil, err
	}

	// GCM expects the tag at the end of the ciphertext. Build a new buffer
	// so the decoded slices are left alone.
	sealed := make([]byte, 0, len(d.Ciphertext)+TagSize)
	sealed = append(sealed, d.Ciphertext...)
	sealed = append(sealed, d.Tag...)

	plaintext, err := gcm.Open(nil, d.IV, sealed, []byte(aad))
	if err != nil {
		return nil, &AuthenticationError{Err: err}
	}
	return plaintext, nil
}

func newGCM(dataKey string) (cipher.AEAD, error) {
	key, err := base64.StdEncoding.DecodeString(dataKey)
	if err != nil {
		return nil, &CryptoKeyError{Err: err}
	}
	if len(key) != KeySize {
		return nil, &CryptoKeyError{Err: fmt.Errorf("got %d bytes of key material, want %d", len(key), KeySize)}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, &CryptoKeyError{Err: err}
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, IVSize)
	if err != nil {
		return nil, &CryptoKeyError{Err: err}
	}
	return gcm, nil
}
