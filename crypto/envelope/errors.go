package envelope

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrTruncatedEnvelope is returned when an envelope is shorter than its
	// header, or declares a wrapped key longer than the remaining buffer.
	ErrTruncatedEnvelope = errors.New("truncated envelope")

	// ErrVarintOverflow is returned when a length prefix does not fit in a
	// uint32.
	ErrVarintOverflow = errors.New("varint overflows uint32")
)

// EncodingError is returned when the bytes of an envelope, or one of its base64
// inputs, are malformed.
type EncodingError struct {
	Op  string
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("envelope: %s: %v", e.Op, e.Err)
}

func (e *EncodingError) Cause() error  { return e.Err }
func (e *EncodingError) Unwrap() error { return e.Err }

// CryptoKeyError is returned when data key material is not a valid AES-256
// key.
type CryptoKeyError struct {
	Err error
}

func (e *CryptoKeyError) Error() string {
	return fmt.Sprintf("envelope: invalid data key: %v", e.Err)
}

func (e *CryptoKeyError) Cause() error  { return e.Err }
func (e *CryptoKeyError) Unwrap() error { return e.Err }

// AuthenticationError is returned when an envelope fails GCM verification.
// This means it was tampered with, or the key or associated data are not the
// ones it was sealed with. Retrying will never succeed.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("envelope: message authentication failed: %v", e.Err)
}

func (e *AuthenticationError) Cause() error  { return e.Err }
func (e *AuthenticationError) Unwrap() error { return e.Err }

// EncryptionError is returned when sealing fails for reasons other than bad
// input, like the system random source being unavailable.
type EncryptionError struct {
	Err error
}

func (e *EncryptionError) Error() string {
	return fmt.Sprintf("envelope: encryption failed: %v", e.Err)
}

func (e *EncryptionError) Cause() error  { return e.Err }
func (e *EncryptionError) Unwrap() error { return e.Err }

// KeyServiceError is returned when a KeyService call fails.
type KeyServiceError struct {
	Op  string
	Err error

	temporary bool
}

func (e *KeyServiceError) Error() string {
	return fmt.Sprintf("envelope: key service %s: %v", e.Op, e.Err)
}

func (e *KeyServiceError) Cause() error  { return e.Err }
func (e *KeyServiceError) Unwrap() error { return e.Err }

// Temporary reports whether the call may succeed if retried.
func (e *KeyServiceError) Temporary() bool { return e.temporary }

// IsPermanent returns true if err is one of the codec errors. These are never
// transient and must not be retried.
func IsPermanent(err error) bool {
	var (
		encErr  *EncodingError
		keyErr  *CryptoKeyError
		authErr *AuthenticationError
		sealErr *EncryptionError
	)
	return errors.As(err, &encErr) ||
		errors.As(err, &keyErr) ||
		errors.As(err, &authErr) ||
		errors.As(err, &sealErr)
}

// IsTemporary returns true if err is a KeyServiceError that may succeed on a
// later attempt.
func IsTemporary(err error) bool {
	var ksErr *KeyServiceError
	if errors.As(err, &ksErr) {
		return ksErr.Temporary()
	}
	return false
}

func truncated(op string) error {
	return &EncodingError{Op: op, Err: ErrTruncatedEnvelope}
}
