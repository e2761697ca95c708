package envelope

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/remind101/vault/logger"
	"github.com/remind101/vault/metrics"
	"github.com/remind101/vault/retry"
)

// Vault encrypts values with a fresh data key from a KeyService each time,
// and decrypts them by unwrapping the data key carried in the envelope.
type Vault struct {
	Keys KeyService

	// Retrier is used for KeyService calls. Only errors reporting
	// themselves as temporary are retried.
	Retrier *retry.Retrier
}

func NewVault(keys KeyService) *Vault {
	return &Vault{
		Keys:    keys,
		Retrier: retry.NewRetrier("envelope.keys", retry.DefaultBackOffOpts, IsTemporary),
	}
}

// Encrypt encrypts data under a new data key bound to kc. aad is bound to the
// ciphertext and must be passed again to Decrypt.
func (v *Vault) Encrypt(ctx context.Context, data string, kc KeyContext, aad string) (payload string, err error) {
	t := metrics.Time("vault.encrypt.time", nil, 1.0)
	defer func() { v.done(t, "vault.encrypt", err) }()

	val, err := v.retry(ctx, func() (interface{}, error) {
		return v.Keys.CreateDataKey(ctx, kc)
	})
	if err != nil {
		return "", errors.Wrap(err, "creating data key")
	}
	pair, ok := val.(*DataKeyPair)
	if !ok || pair == nil {
		return "", &KeyServiceError{Op: "CreateDataKey", Err: fmt.Errorf("no data key returned")}
	}

	return Encrypt(data, pair.DataKey.Key, pair.EncryptedKeys, aad)
}

// Decrypt decrypts a payload produced by Encrypt. kc and aad must match the
// values used at encryption.
func (v *Vault) Decrypt(ctx context.Context, payload string, kc KeyContext, aad string) (data string, err error) {
	t := metrics.Time("vault.decrypt.time", nil, 1.0)
	defer func() { v.done(t, "vault.decrypt", err) }()

	d, err := Decode(payload)
	if err != nil {
		return "", err
	}

	val, err := v.retry(ctx, func() (interface{}, error) {
		return v.Keys.DecryptDataKey(ctx, DecryptDataKeyInput{
			EncryptedKeys: d.Keys,
			Context:       kc,
		})
	})
	if err != nil {
		return "", errors.Wrap(err, "decrypting data key")
	}
	key, ok := val.(*DataKey)
	if !ok || key == nil {
		return "", &KeyServiceError{Op: "DecryptDataKey", Err: fmt.Errorf("no data key returned")}
	}

	data, err = DecryptDecoded(d, key.Key, aad)
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		logger.Error(ctx, "envelope failed authentication", "key_id", key.ID, "error", err)
		metrics.Count("vault.decrypt.auth_failure", 1, nil, 1.0)
	}
	return data, err
}

func (v *Vault) retry(ctx context.Context, f func() (interface{}, error)) (interface{}, error) {
	if v.Retrier == nil {
		return f()
	}
	return v.Retrier.Retry(ctx, f)
}

func (v *Vault) done(t *metrics.Timer, name string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	tags := map[string]string{"result": result}
	t.SetTags(tags)
	t.Done()
	metrics.Count(name, 1, tags, 1.0)
}
