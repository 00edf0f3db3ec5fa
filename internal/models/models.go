package models

import (
	"database/sql/driver"
	"errors"
	"time"

	json "github.com/goccy/go-json"

	"memoryjournal/internal/mood"
	"memoryjournal/internal/recurrence"
)

type User struct {
	ID              int       `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`                         // Encrypted in DB
	EmailBlindIndex string    `db:"email_blind_index" json:"-"`                 // HMAC hash for searching
	PasswordHash    string    `db:"password_hash" json:"-"`
	Name            *string   `db:"name" json:"name,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type Category string

const (
	CategoryPersonal     Category = "personal"
	CategoryProfessional Category = "professional"
)

type Journal struct {
	ID       int       `db:"id" json:"id"`
	UserID   int       `db:"user_id" json:"user_id"`
	Title    string    `db:"title" json:"title"`
	Content  string    `db:"content" json:"content,omitempty"` // Encrypted in DB
	Category Category  `db:"category" json:"category"`
	Mood     mood.Mood `db:"mood" json:"mood"`
	Tags     Tags      `db:"tags" json:"tags"`
	Location *string   `db:"location" json:"location,omitempty"`

	// Password protected entries keep their content sealed under a key
	// derived from the entry password; Content stays empty.
	IsProtected      bool    `db:"is_protected" json:"is_protected"`
	EncryptedContent *string `db:"encrypted_content" json:"-"`
	PasswordHash     *string `db:"password_hash" json:"-"`
	Salt             *string `db:"salt" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Media []Media `db:"-" json:"media,omitempty"`
}

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaAudio MediaType = "audio"
	MediaVideo MediaType = "video"
)

func (t MediaType) Valid() bool {
	switch t {
	case MediaImage, MediaAudio, MediaVideo:
		return true
	}
	return false
}

type Media struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	JournalID *int      `db:"journal_id" json:"journal_id,omitempty"`
	Type      MediaType `db:"type" json:"type"`
	URL       string    `db:"url" json:"url"`
	PublicID  string    `db:"public_id" json:"public_id"`
	Caption   string    `db:"caption" json:"caption"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	MimeType  *string   `db:"mime_type" json:"mime_type,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Reminder struct {
	ID               int                 `db:"id" json:"id"`
	UserID           int                 `db:"user_id" json:"user_id"`
	Title            string              `db:"title" json:"title"`
	Description      string              `db:"description" json:"description"`
	ReminderDate     time.Time           `db:"reminder_date" json:"reminder_date"`
	IsRecurring      bool                `db:"is_recurring" json:"is_recurring"`
	RecurringPattern *recurrence.Pattern `db:"recurring_pattern" json:"recurring_pattern"`
	IsActive         bool                `db:"is_active" json:"is_active"`
	CreatedAt        time.Time           `db:"created_at" json:"created_at"`
}

// Schedule is the part of the reminder the recurrence engine works on.
func (r Reminder) Schedule() recurrence.Reminder {
	s := recurrence.Reminder{
		Date:      r.ReminderDate,
		Active:    r.IsActive,
		Recurring: r.IsRecurring,
	}
	if r.RecurringPattern != nil {
		s.Pattern = *r.RecurringPattern
	}
	return s
}

// Tags is stored as a JSONB array.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *Tags) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("tags: unsupported source type")
	}
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*t = out
	return nil
}
