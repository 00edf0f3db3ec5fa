package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    email TEXT NOT NULL,
    email_blind_index TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    name TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS journal_entries (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title VARCHAR(100) NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL CHECK (category IN ('personal', 'professional')),
    mood TEXT NOT NULL DEFAULT 'neutral'
        CHECK (mood IN ('happy', 'sad', 'angry', 'anxious', 'neutral', 'excited', 'calm', 'other')),
    tags JSONB NOT NULL DEFAULT '[]',
    location TEXT,
    is_protected BOOLEAN NOT NULL DEFAULT false,
    encrypted_content TEXT,
    password_hash TEXT,
    salt TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS journal_entries_user_created_idx ON journal_entries (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS journal_entries_user_category_idx ON journal_entries (user_id, category, created_at DESC);

CREATE TABLE IF NOT EXISTS media (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    journal_id INTEGER REFERENCES journal_entries(id) ON DELETE SET NULL,
    type TEXT NOT NULL CHECK (type IN ('image', 'audio', 'video')),
    url TEXT NOT NULL,
    public_id TEXT NOT NULL,
    caption VARCHAR(200) NOT NULL DEFAULT '',
    file_size BIGINT NOT NULL DEFAULT 0,
    mime_type TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS media_user_created_idx ON media (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS media_journal_type_idx ON media (journal_id, type);
CREATE INDEX IF NOT EXISTS media_public_id_idx ON media (public_id);

CREATE TABLE IF NOT EXISTS reminders (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title VARCHAR(100) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    reminder_date TIMESTAMPTZ NOT NULL,
    is_recurring BOOLEAN NOT NULL DEFAULT false,
    recurring_pattern TEXT CHECK (recurring_pattern IN ('daily', 'weekly', 'monthly', 'yearly')),
    is_active BOOLEAN NOT NULL DEFAULT true,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS reminders_user_date_idx ON reminders (user_id, reminder_date);
CREATE INDEX IF NOT EXISTS reminders_due_idx ON reminders (reminder_date) WHERE is_active;
`

// RunMigrations creates the schema. Every statement is safe to run
// repeatedly.
func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
