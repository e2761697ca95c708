// Package envelope provides envelope encryption for small secrets, producing a
// single self-describing base64 blob per value.
//
// Envelope encryption is the process of setting up an encryption chain, where
// keys are encrypted with other keys higher up the chain. Here a per-object
// AES-256 data key encrypts the plaintext, and that data key is wrapped by a
// KeyService (like a KMS CMK) that this package never sees the master key of.
//
// The binary layout of an envelope is:
//
//	IV (32 bytes) | TAG (16 bytes) | UVARINT(len(WrappedKey)) | WrappedKey | Ciphertext
//
// and the whole buffer is encoded with standard padded base64. The wrapped key
// is carried verbatim and never interpreted; only the KeyService that produced
// it can unwrap it.
package envelope

const (
	// IVSize is the length of the AES-GCM nonce stored at the start of an
	// envelope. This is not the conventional 12 byte GCM nonce, and must stay
	// 32 bytes to read envelopes that already exist.
	IVSize = 32

	// TagSize is the length of the GCM authentication tag.
	TagSize = 16

	// HeaderSize is the offset of the wrapped key length prefix.
	HeaderSize = IVSize + TagSize

	// KeySize is the required length of raw data key material (AES-256).
	KeySize = 32
)

// Decoded is a parsed envelope. IV, Tag and Ciphertext are slices of the single
// buffer that was decoded from base64, and must be treated as read only.
type Decoded struct {
	IV  []byte
	Tag []byte
	// Keys is the wrapped data key, base64 encoded, exactly as the
	// KeyService returned it at encryption time.
	Keys       string
	Ciphertext []byte
}
