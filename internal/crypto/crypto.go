package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
)

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// EncryptionService handles at-rest encryption and blind indexing
type EncryptionService struct {
	encryptionKey []byte // 32 bytes for AES-256
	blindIndexKey []byte // Separate key for HMAC blind indexing
}

// NewEncryptionService creates a new encryption service
// encryptionKey should be 32 bytes for AES-256
// blindIndexKey should be 32 bytes for HMAC-SHA256
func NewEncryptionService(encryptionKey, blindIndexKey []byte) (*EncryptionService, error) {
	if len(encryptionKey) != 32 {
		return nil, errors.New("encryption key must be 32 bytes")
	}
	if len(blindIndexKey) != 32 {
		return nil, errors.New("blind index key must be 32 bytes")
	}
	return &EncryptionService{
		encryptionKey: encryptionKey,
		blindIndexKey: blindIndexKey,
	}, nil
}

// Encrypt returns base64 AES-256-GCM ciphertext with the nonce prepended.
// Empty input stays empty.
func (s *EncryptionService) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	return seal(s.encryptionKey, plaintext)
}

// Decrypt reverses Encrypt.
func (s *EncryptionService) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	return open(s.encryptionKey, ciphertext)
}

// GenerateBlindIndex creates a deterministic hash for searching encrypted data
// Uses HMAC-SHA256 to create a searchable index without revealing the plaintext
func (s *EncryptionService) GenerateBlindIndex(plaintext string) string {
	if plaintext == "" {
		return ""
	}

	h := hmac.New(sha256.New, s.blindIndexKey)
	h.Write([]byte(plaintext))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// EncryptWithBlindIndex encrypts data and returns both encrypted value and blind index
func (s *EncryptionService) EncryptWithBlindIndex(plaintext string) (encrypted, blindIndex string, err error) {
	encrypted, err = s.Encrypt(plaintext)
	if err != nil {
		return "", "", err
	}
	return encrypted, s.GenerateBlindIndex(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func seal(key []byte, plaintext string) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	out := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(out), nil
}

func open(key []byte, ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	n := gcm.NonceSize()
	if len(data) < n {
		return "", ErrCiphertextTooShort
	}
	plaintext, err := gcm.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
