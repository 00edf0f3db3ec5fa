package services

import (
	"errors"

	"memoryjournal/internal/crypto"
	"memoryjournal/internal/models"
)

// ErrNotProtected is returned when unlocking an entry without a password.
var ErrNotProtected = errors.New("journal is not password protected")

// EncryptionService wraps the crypto service with domain-specific methods
type EncryptionService struct {
	crypto *crypto.EncryptionService
}

// NewEncryptionService creates a new encryption service
func NewEncryptionService(encryptionKey, blindIndexKey []byte) (*EncryptionService, error) {
	cryptoSvc, err := crypto.NewEncryptionService(encryptionKey, blindIndexKey)
	if err != nil {
		return nil, err
	}
	return &EncryptionService{crypto: cryptoSvc}, nil
}

// EncryptUser encrypts sensitive user fields before storing in DB
func (s *EncryptionService) EncryptUser(user *models.User) error {
	encryptedEmail, blindIndex, err := s.crypto.EncryptWithBlindIndex(user.Email)
	if err != nil {
		return err
	}
	user.Email = encryptedEmail
	user.EmailBlindIndex = blindIndex
	return nil
}

// DecryptUser decrypts sensitive user fields after retrieving from DB
func (s *EncryptionService) DecryptUser(user *models.User) error {
	decryptedEmail, err := s.crypto.Decrypt(user.Email)
	if err != nil {
		return err
	}
	user.Email = decryptedEmail
	return nil
}

// GenerateEmailBlindIndex generates a blind index for email lookup
func (s *EncryptionService) GenerateEmailBlindIndex(email string) string {
	return s.crypto.GenerateBlindIndex(email)
}

// SealJournal prepares journal content for storage. With a password the
// content is sealed under that password and cleared; otherwise it is
// encrypted with the server key.
func (s *EncryptionService) SealJournal(journal *models.Journal, password string) error {
	if password != "" {
		sealed, err := crypto.Protect(journal.Content, password)
		if err != nil {
			return err
		}
		journal.IsProtected = true
		journal.Content = ""
		journal.EncryptedContent = &sealed.Ciphertext
		journal.PasswordHash = &sealed.PasswordHash
		journal.Salt = &sealed.Salt
		return nil
	}

	encrypted, err := s.crypto.Encrypt(journal.Content)
	if err != nil {
		return err
	}
	journal.Content = encrypted
	journal.IsProtected = false
	journal.EncryptedContent = nil
	journal.PasswordHash = nil
	journal.Salt = nil
	return nil
}

// OpenJournal decrypts server-side encrypted content. Protected entries are
// left without content until UnlockJournal is called.
func (s *EncryptionService) OpenJournal(journal *models.Journal) error {
	if journal.IsProtected {
		journal.Content = ""
		return nil
	}
	decrypted, err := s.crypto.Decrypt(journal.Content)
	if err != nil {
		return err
	}
	journal.Content = decrypted
	return nil
}

// UnlockJournal fills in the content of a protected entry.
func (s *EncryptionService) UnlockJournal(journal *models.Journal, password string) error {
	if !journal.IsProtected || journal.EncryptedContent == nil || journal.PasswordHash == nil || journal.Salt == nil {
		return ErrNotProtected
	}
	content, err := crypto.Unprotect(crypto.Sealed{
		Ciphertext:   *journal.EncryptedContent,
		PasswordHash: *journal.PasswordHash,
		Salt:         *journal.Salt,
	}, password)
	if err != nil {
		return err
	}
	journal.Content = content
	return nil
}
