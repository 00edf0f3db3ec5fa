package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"memoryjournal/internal/models"
	"memoryjournal/internal/mood"
)

const journalColumns = `id, user_id, title, content, category, mood, tags, location,
	is_protected, encrypted_content, password_hash, salt, created_at, updated_at`

// JournalFilter narrows a journal listing. Zero values mean no filter.
type JournalFilter struct {
	Start    *time.Time
	End      *time.Time
	Mood     mood.Mood
	Category models.Category
	Tags     []string
	Page
}

func (f JournalFilter) where(userID int) (string, []any) {
	clauses := []string{"user_id=$1"}
	args := []any{userID}
	add := func(expr string, v any) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(expr, len(args)))
	}
	if f.Start != nil && f.End != nil {
		add("created_at >= $%d", *f.Start)
		add("created_at <= $%d", *f.End)
	}
	if f.Mood != "" {
		add("mood = $%d", string(f.Mood))
	}
	if f.Category != "" {
		add("category = $%d", string(f.Category))
	}
	if len(f.Tags) > 0 {
		add("EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) t WHERE t = ANY($%d::text[]))", f.Tags)
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// CreateJournal inserts j and fills in id and timestamps. Content must
// already be sealed.
func (s *Store) CreateJournal(ctx context.Context, j *models.Journal) error {
	return insertJournal(ctx, s.db, j)
}

func insertJournal(ctx context.Context, q sqlx.QueryerContext, j *models.Journal) error {
	return q.QueryRowxContext(ctx,
		`INSERT INTO journal_entries
		   (user_id, title, content, category, mood, tags, location, is_protected, encrypted_content, password_hash, salt)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		j.UserID, j.Title, j.Content, string(j.Category), string(j.Mood), j.Tags, j.Location,
		j.IsProtected, j.EncryptedContent, j.PasswordHash, j.Salt,
	).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt)
}

// ListJournals returns one page, newest first, plus the number of entries
// matching the filter.
func (s *Store) ListJournals(ctx context.Context, userID int, f JournalFilter) ([]models.Journal, int, error) {
	where, args := f.where(userID)

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM journal_entries `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count journals: %w", err)
	}

	args = append(args, f.Limit, f.Offset())
	query := fmt.Sprintf(`SELECT %s FROM journal_entries %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		journalColumns, where, len(args)-1, len(args))

	out := []models.Journal{}
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list journals: %w", err)
	}
	return out, total, nil
}

func (s *Store) GetJournal(ctx context.Context, userID, id int) (models.Journal, error) {
	var j models.Journal
	err := s.db.GetContext(ctx, &j,
		`SELECT `+journalColumns+` FROM journal_entries WHERE id=$1 AND user_id=$2`, id, userID)
	return j, notFound(err)
}

// UpdateJournal overwrites the editable fields of j.
func (s *Store) UpdateJournal(ctx context.Context, j *models.Journal) error {
	err := s.db.QueryRowxContext(ctx,
		`UPDATE journal_entries SET
		   title=$1, content=$2, category=$3, mood=$4, tags=$5, location=$6,
		   is_protected=$7, encrypted_content=$8, password_hash=$9, salt=$10, updated_at=NOW()
		 WHERE id=$11 AND user_id=$12
		 RETURNING updated_at`,
		j.Title, j.Content, string(j.Category), string(j.Mood), j.Tags, j.Location,
		j.IsProtected, j.EncryptedContent, j.PasswordHash, j.Salt, j.ID, j.UserID,
	).Scan(&j.UpdatedAt)
	return notFound(err)
}

func (s *Store) DeleteJournal(ctx context.Context, userID, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// FindEntriesByUserAndWindow loads the mood and timestamp of the user's
// entries created at or after since (all entries when since is nil),
// oldest first, skipping the excluded moods.
func (s *Store) FindEntriesByUserAndWindow(ctx context.Context, userID int, since *time.Time, exclude []mood.Mood) ([]mood.Entry, error) {
	excluded := make([]string, 0, len(exclude))
	for _, m := range exclude {
		excluded = append(excluded, string(m))
	}

	query := `SELECT mood, created_at FROM journal_entries WHERE user_id=$1 AND mood <> ALL($2::text[])`
	args := []any{userID, excluded}
	if since != nil {
		query += ` AND created_at >= $3`
		args = append(args, *since)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	var rows []struct {
		Mood      string    `db:"mood"`
		CreatedAt time.Time `db:"created_at"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("load mood entries: %w", err)
	}
	out := make([]mood.Entry, len(rows))
	for i, r := range rows {
		out[i] = mood.Entry{Mood: mood.Mood(r.Mood), CreatedAt: r.CreatedAt}
	}
	return out, nil
}
