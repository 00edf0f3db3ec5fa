package handlers

import (
	"context"
	"time"

	"memoryjournal/internal/models"
	"memoryjournal/internal/mood"
	"memoryjournal/internal/store"
)

// The handlers depend on these views of *store.Store.

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByEmailIndex(ctx context.Context, blindIndex string) (models.User, error)
	UserByID(ctx context.Context, id int) (models.User, error)
	UpdateUserName(ctx context.Context, id int, name *string) error
	DeleteUser(ctx context.Context, id int) error
}

type JournalStore interface {
	CreateJournal(ctx context.Context, j *models.Journal) error
	CreateJournalWithMedia(ctx context.Context, j *models.Journal, media []models.Media) error
	ListJournals(ctx context.Context, userID int, f store.JournalFilter) ([]models.Journal, int, error)
	GetJournal(ctx context.Context, userID, id int) (models.Journal, error)
	UpdateJournal(ctx context.Context, j *models.Journal) error
	DeleteJournal(ctx context.Context, userID, id int) error
	MediaByJournal(ctx context.Context, userID int, journalIDs []int) (map[int][]models.Media, error)
}

type MoodEntryStore interface {
	FindEntriesByUserAndWindow(ctx context.Context, userID int, since *time.Time, exclude []mood.Mood) ([]mood.Entry, error)
}

type ReminderStore interface {
	CreateReminder(ctx context.Context, r *models.Reminder) error
	ListReminders(ctx context.Context, userID int, f store.ReminderFilter) ([]models.Reminder, error)
	GetReminder(ctx context.Context, userID, id int) (models.Reminder, error)
	UpdateReminder(ctx context.Context, r *models.Reminder) error
	DeleteReminder(ctx context.Context, userID, id int) error
}

type MediaStore interface {
	CreateMedia(ctx context.Context, m *models.Media) error
	CreateMediaBatch(ctx context.Context, media []models.Media) error
	ListMedia(ctx context.Context, userID int, f store.MediaFilter) ([]models.Media, int, error)
	DeleteMedia(ctx context.Context, userID, id int) (models.Media, error)
}

var (
	_ UserStore      = (*store.Store)(nil)
	_ JournalStore   = (*store.Store)(nil)
	_ MoodEntryStore = (*store.Store)(nil)
	_ ReminderStore  = (*store.Store)(nil)
	_ MediaStore     = (*store.Store)(nil)
)
