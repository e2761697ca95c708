package envelope

import (
	"context"
	"encoding/base64"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/kms"
	"github.com/aws/aws-sdk-go/service/kms/kmsiface"
)

// KMSKeyService is a KeyService backed by AWS KMS. Data keys are generated by
// kms.GenerateDataKey and wrapped under the CMK, with the KeyContext passed as
// the KMS encryption context.
type KMSKeyService struct {
	// The KMS Customer Master Key to use for encryption.
	KeyId string

	kms kmsiface.KMSAPI
}

func NewKMSKeyService(c client.ConfigProvider, keyId string) *KMSKeyService {
	return &KMSKeyService{KeyId: keyId, kms: kms.New(c)}
}

// CreateDataKey generates a 256 bit data key under the CMK.
func (s *KMSKeyService) CreateDataKey(ctx context.Context, kc KeyContext) (*DataKeyPair, error) {
	resp, err := s.kms.GenerateDataKeyWithContext(ctx, &kms.GenerateDataKeyInput{
		KeyId:             aws.String(s.KeyId),
		KeySpec:           aws.String(kms.DataKeySpecAes256),
		EncryptionContext: encryptionContext(kc),
	})
	if err != nil {
		return nil, kmsError("GenerateDataKey", err)
	}

	return &DataKeyPair{
		Context: kc,
		DataKey: DataKey{
			Key: encodeKey(resp.Plaintext),
			ID:  aws.StringValue(resp.KeyId),
		},
		EncryptedKeys: encodeKey(resp.CiphertextBlob),
	}, nil
}

// DecryptDataKey unwraps a data key with kms.Decrypt. The KeyContext must be
// the one the key was created with.
func (s *KMSKeyService) DecryptDataKey(ctx context.Context, in DecryptDataKeyInput) (*DataKey, error) {
	blob, err := base64.StdEncoding.DecodeString(in.EncryptedKeys)
	if err != nil {
		return nil, &EncodingError{Op: "decode wrapped key", Err: err}
	}

	input := &kms.DecryptInput{
		CiphertextBlob:    blob,
		EncryptionContext: encryptionContext(in.Context),
	}
	if in.ID != "" {
		input.KeyId = aws.String(in.ID)
	}

	resp, err := s.kms.DecryptWithContext(ctx, input)
	if err != nil {
		return nil, kmsError("Decrypt", err)
	}

	return &DataKey{
		Key: encodeKey(resp.Plaintext),
		ID:  aws.StringValue(resp.KeyId),
	}, nil
}

func encryptionContext(kc KeyContext) map[string]*string {
	if len(kc) == 0 {
		return nil
	}
	return aws.StringMap(kc)
}

func kmsError(op string, err error) error {
	return &KeyServiceError{
		Op:        op,
		Err:       err,
		temporary: request.IsErrorRetryable(err) || request.IsErrorThrottle(err),
	}
}
