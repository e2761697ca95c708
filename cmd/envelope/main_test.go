package main

import (
	"testing"

	"github.com/remind101/vault/crypto/envelope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyContext(t *testing.T) {
	kc, err := parseKeyContext([]string{"object_id=secret_123", "query=a=b", "empty="})
	require.NoError(t, err)
	assert.Equal(t, envelope.KeyContext{
		"object_id": "secret_123",
		"query":     "a=b",
		"empty":     "",
	}, kc)

	for _, bad := range []string{"novalue", "=value"} {
		_, err := parseKeyContext([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestRegionOrNil(t *testing.T) {
	assert.Nil(t, regionOrNil(""))
	assert.Equal(t, "us-east-1", *regionOrNil("us-east-1"))
}
