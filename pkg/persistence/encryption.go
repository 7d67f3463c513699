package persistence

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNotEncrypted is returned when stored data lacks the encrypted envelope.
var ErrNotEncrypted = errors.New("data is missing encrypted envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

// ParseKey decodes a base64 AES-256 key.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes (AES-256), got %d", len(key))
	}
	return key, nil
}

type envelope struct {
	Encrypted string `json:"__encrypted__"`
}

// EncryptedCodec wraps another codec and seals its output with AES-GCM.
type EncryptedCodec struct {
	inner  Codec
	config EncryptionConfig
}

// NewEncryptedCodec creates an encrypting codec. A nil inner codec means JSON.
func NewEncryptedCodec(inner Codec, config EncryptionConfig) (*EncryptedCodec, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	for i, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, fmt.Errorf("fallback key %d must be 32 bytes (AES-256)", i)
		}
	}
	if inner == nil {
		inner = JSON
	}
	return &EncryptedCodec{inner: inner, config: config}, nil
}

func (c *EncryptedCodec) Marshal(v any) ([]byte, error) {
	plainText, err := c.inner.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	ciphertext, err := encrypt(plainText, c.config.ActiveKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt record: %w", err)
	}

	return json.Marshal(envelope{Encrypted: base64.StdEncoding.EncodeToString(ciphertext)})
}

func (c *EncryptedCodec) Unmarshal(data []byte, v any) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Encrypted == "" {
		return ErrNotEncrypted
	}

	ciphertext, err := base64.StdEncoding.DecodeString(env.Encrypted)
	if err != nil {
		return fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, c.config.ActiveKey, c.config.FallbackKeys)
	if err != nil {
		return fmt.Errorf("failed to decrypt record: %w", err)
	}

	if err := c.inner.Unmarshal(plainText, v); err != nil {
		return fmt.Errorf("failed to unmarshal decrypted record: %w", err)
	}
	return nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encrypt(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}
