package envelope

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
)

// KeyContext is metadata bound to a data key by the KeyService, like an object
// id or a tenant. It is not secret, but unwrapping a data key with a different
// KeyContext than it was created with must fail.
type KeyContext map[string]string

// Equal reports whether both contexts hold the same pairs. A nil and an empty
// KeyContext are equal.
func (kc KeyContext) Equal(other KeyContext) bool {
	if len(kc) != len(other) {
		return false
	}
	for k, v := range kc {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// DataKey is a plaintext data key. Key is base64 encoded raw key material.
type DataKey struct {
	Key string `json:"key"`
	ID  string `json:"id"`
}

// DataKeyPair is a freshly generated data key, together with the same key
// wrapped by the KeyService's master key.
type DataKeyPair struct {
	Context KeyContext `json:"context"`
	DataKey DataKey    `json:"data_key"`
	// EncryptedKeys is the wrapped data key, base64 encoded. It is opaque to
	// this package.
	EncryptedKeys string `json:"encrypted_keys"`
}

// DecryptDataKeyInput identifies a wrapped data key to unwrap.
type DecryptDataKeyInput struct {
	// ID of the data key, if the KeyService needs it.
	ID            string
	EncryptedKeys string
	Context       KeyContext
}

// KeyService issues and unwraps data keys. Implementations hold the master key;
// callers only ever see data keys.
type KeyService interface {
	CreateDataKey(ctx context.Context, kc KeyContext) (*DataKeyPair, error)
	DecryptDataKey(ctx context.Context, in DecryptDataKeyInput) (*DataKey, error)
}

// GenerateRandomKey generates a secure 256 bit random key.
func GenerateRandomKey() [KeySize]byte {
	var key [KeySize]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		panic(err)
	}
	return key
}

func encodeKey(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
