package envelope

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

// SecretBoxKeyService is a KeyService that wraps data keys locally with NaCl
// secretbox under a static master key. It's suitable for tests and for
// deployments without a KMS.
//
// A key design decision here is that consumers of this object never have
// direct access to the master key used to wrap data keys.
type SecretBoxKeyService struct {
	// ID is reported as the DataKey ID of every key this keyring issues.
	ID string

	GenerateRandomKey func() [KeySize]byte

	masterKey [KeySize]byte
}

func NewSecretBoxKeyService(id string, masterKey [KeySize]byte) *SecretBoxKeyService {
	return &SecretBoxKeyService{
		ID:        id,
		masterKey: masterKey,
	}
}

// wrappedKey is what gets sealed under the master key. Sealing the context
// along with the key binds the two together.
type wrappedKey struct {
	Key     []byte     `json:"key"`
	Context KeyContext `json:"context"`
}

// CreateDataKey generates a random 256 bit data key and wraps it.
func (s *SecretBoxKeyService) CreateDataKey(ctx context.Context, kc KeyContext) (*DataKeyPair, error) {
	genKey := s.GenerateRandomKey
	if genKey == nil {
		genKey = GenerateRandomKey
	}
	key := genKey()

	raw, err := json.Marshal(wrappedKey{Key: key[:], Context: kc})
	if err != nil {
		return nil, &KeyServiceError{Op: "CreateDataKey", Err: err}
	}

	box, err := seal(raw, s.masterKey)
	if err != nil {
		return nil, &KeyServiceError{Op: "CreateDataKey", Err: err}
	}

	return &DataKeyPair{
		Context:       kc,
		DataKey:       DataKey{Key: encodeKey(key[:]), ID: s.ID},
		EncryptedKeys: encodeKey(box),
	}, nil
}

// DecryptDataKey unwraps a data key created by CreateDataKey. It fails if the
// box was sealed under a different master key or KeyContext.
func (s *SecretBoxKeyService) DecryptDataKey(ctx context.Context, in DecryptDataKeyInput) (*DataKey, error) {
	box, err := base64.StdEncoding.DecodeString(in.EncryptedKeys)
	if err != nil {
		return nil, &EncodingError{Op: "decode wrapped key", Err: err}
	}

	raw, err := open(box, s.masterKey)
	if err != nil {
		return nil, &KeyServiceError{Op: "DecryptDataKey", Err: err}
	}

	var w wrappedKey
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, &KeyServiceError{Op: "DecryptDataKey", Err: err}
	}
	if !w.Context.Equal(in.Context) {
		return nil, &KeyServiceError{Op: "DecryptDataKey", Err: fmt.Errorf("key context mismatch")}
	}

	return &DataKey{Key: encodeKey(w.Key), ID: s.ID}, nil
}

// Simple helper around calling secretbox.Seal, handling nonce generation
// automatically.
func seal(m []byte, key [KeySize]byte) ([]byte, error) {
	// Since the nonce here is 192 bits long, a random value provides a
	// sufficiently small probability of repeats.
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], m, &nonce, &key), nil
}

// Simple helper around calling secretbox.Open with something sealed with seal.
// The nonce is stored in the first 24 bytes of the box.
func open(box []byte, key [KeySize]byte) ([]byte, error) {
	if len(box) < 24+secretbox.Overhead {
		return nil, fmt.Errorf("wrapped key too short")
	}
	var nonce [24]byte
	copy(nonce[:], box[:24])
	decrypted, ok := secretbox.Open(nil, box[24:], &nonce, &key)
	if !ok {
		return nil, fmt.Errorf("unable to unwrap data key")
	}
	return decrypted, nil
}
