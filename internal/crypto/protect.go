package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize        = 32
	pbkdf2Rounds    = 100000
	derivedKeySize  = 32
	protectHashCost = 12
)

// MaxPasswordLen keeps salt prefix plus password inside bcrypt's 72 byte input.
const MaxPasswordLen = 56

var (
	ErrWrongPassword    = errors.New("wrong password")
	ErrPasswordTooLong  = errors.New("password too long")
	ErrPasswordRequired = errors.New("password must not be empty")
)

// Sealed is the stored form of a password protected entry.
type Sealed struct {
	Ciphertext   string
	PasswordHash string
	Salt         string // hex
}

// Protect seals content under a key derived from password. The password
// itself is kept only as a salted bcrypt hash.
func Protect(content, password string) (Sealed, error) {
	switch {
	case password == "":
		return Sealed{}, ErrPasswordRequired
	case len(password) > MaxPasswordLen:
		return Sealed{}, ErrPasswordTooLong
	}
	raw := make([]byte, saltSize)
	if _, err := rand.Read(raw); err != nil {
		return Sealed{}, err
	}
	salt := hex.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword(pepper(password, salt), protectHashCost)
	if err != nil {
		return Sealed{}, err
	}
	ct, err := seal(deriveKey(password, salt), content)
	if err != nil {
		return Sealed{}, err
	}
	return Sealed{Ciphertext: ct, PasswordHash: string(hash), Salt: salt}, nil
}

// Unprotect checks password against the stored hash and opens the content.
func Unprotect(s Sealed, password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), pepper(password, s.Salt)); err != nil {
		return "", ErrWrongPassword
	}
	return open(deriveKey(password, s.Salt), s.Ciphertext)
}

func deriveKey(password, salt string) []byte {
	return pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Rounds, derivedKeySize, sha256.New)
}

func pepper(password, salt string) []byte {
	if len(salt) > 16 {
		salt = salt[:16]
	}
	return []byte(salt + password)
}
