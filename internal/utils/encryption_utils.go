package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// tokenKeyInfo binds derived keys to their purpose so the same secret can't
// decrypt data written for another use.
const tokenKeyInfo = "pageguard page access token v1"

// ErrEncryptionKeyTooShort is returned when a raw AES key is shorter than 32 bytes.
var ErrEncryptionKeyTooShort = errors.New("encryption key must be at least 32 bytes")

// DeriveTokenKey expands a configured secret of any length into a 32-byte
// AES-256 key using HKDF-SHA256.
func DeriveTokenKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("token encryption secret is empty")
	}

	key := make([]byte, 32)
	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(tokenKeyInfo))
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

// EncryptKey encrypts a secret value using AES-256-GCM.
// The nonce is prepended to the ciphertext and the result is base64 encoded.
//
// Parameters:
//   - key: The plaintext value to encrypt, such as a page access token
//   - encryptionKey: The key to use for encryption (must be at least 32 bytes)
func EncryptKey(key string, encryptionKey []byte) (string, error) {
	gcm, err := newGCM(encryptionKey)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to create nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(key), nil)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptKey decrypts a value that was encrypted with EncryptKey.
//
// Parameters:
//   - encryptedKey: The base64-encoded ciphertext
//   - encryptionKey: The key used for encryption (must be at least 32 bytes)
func DecryptKey(encryptedKey string, encryptionKey []byte) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encryptedKey)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	gcm, err := newGCM(encryptionKey)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plaintext), nil
}

func newGCM(encryptionKey []byte) (cipher.AEAD, error) {
	if len(encryptionKey) < 32 {
		return nil, ErrEncryptionKeyTooShort
	}

	block, err := aes.NewCipher(encryptionKey[:32])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
