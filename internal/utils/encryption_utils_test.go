package utils

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveTokenKey(t *testing.T) {
	key1, err := DeriveTokenKey("a short secret")
	require.NoError(t, err)
	assert.Len(t, key1, 32)

	key2, err := DeriveTokenKey("a short secret")
	require.NoError(t, err)
	assert.Equal(t, key1, key2, "derivation must be deterministic")

	other, err := DeriveTokenKey("another secret")
	require.NoError(t, err)
	assert.NotEqual(t, key1, other)

	_, err = DeriveTokenKey("")
	assert.Error(t, err)
}

func TestEncryptKey(t *testing.T) {
	token := "EAABsbCS1iHgBAKZC-page-token"
	encryptionKey := bytes.Repeat([]byte("a"), 32)

	encrypted, err := EncryptKey(token, encryptionKey)
	require.NoError(t, err)
	assert.NotEqual(t, token, encrypted)

	_, err = base64.StdEncoding.DecodeString(encrypted)
	assert.NoError(t, err)

	again, err := EncryptKey(token, encryptionKey)
	require.NoError(t, err)
	assert.NotEqual(t, encrypted, again, "random nonce should produce distinct ciphertexts")

	_, err = EncryptKey(token, []byte("short"))
	assert.ErrorIs(t, err, ErrEncryptionKeyTooShort)
}

func TestDecryptKey(t *testing.T) {
	encryptionKey, err := DeriveTokenKey("config secret")
	require.NoError(t, err)

	encrypted, err := EncryptKey("page-token", encryptionKey)
	require.NoError(t, err)

	plain, err := DecryptKey(encrypted, encryptionKey)
	require.NoError(t, err)
	assert.Equal(t, "page-token", plain)

	wrongKey, err := DeriveTokenKey("other secret")
	require.NoError(t, err)
	_, err = DecryptKey(encrypted, wrongKey)
	assert.Error(t, err)

	_, err = DecryptKey("%%%not-base64", encryptionKey)
	assert.Error(t, err)

	_, err = DecryptKey(base64.StdEncoding.EncodeToString([]byte("tiny")), encryptionKey)
	assert.EqualError(t, err, "ciphertext too short")
}
