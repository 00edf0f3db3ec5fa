package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"memoryjournal/internal/models"
)

const mediaColumns = `id, user_id, journal_id, type, url, public_id, caption, file_size, mime_type, created_at`

type MediaFilter struct {
	Type      models.MediaType
	JournalID *int
	Page
}

// journalOwned reports whether journalID exists and belongs to userID.
func journalOwned(ctx context.Context, q sqlx.QueryerContext, userID, journalID int) (bool, error) {
	var ok bool
	err := sqlx.GetContext(ctx, q, &ok,
		`SELECT EXISTS (SELECT 1 FROM journal_entries WHERE id=$1 AND user_id=$2)`, journalID, userID)
	return ok, err
}

func insertMedia(ctx context.Context, q sqlx.QueryerContext, m *models.Media) error {
	if m.JournalID != nil {
		ok, err := journalOwned(ctx, q, m.UserID, *m.JournalID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
	}
	return q.QueryRowxContext(ctx,
		`INSERT INTO media (user_id, journal_id, type, url, public_id, caption, file_size, mime_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		m.UserID, m.JournalID, string(m.Type), m.URL, m.PublicID, m.Caption, m.FileSize, m.MimeType,
	).Scan(&m.ID, &m.CreatedAt)
}

// CreateMedia stores a media record. A journal id must belong to the same
// user, otherwise ErrNotFound is returned.
func (s *Store) CreateMedia(ctx context.Context, m *models.Media) error {
	return insertMedia(ctx, s.db, m)
}

// CreateMediaBatch stores all records or none. Any journal id that is not
// the user's own aborts the batch with ErrNotFound.
func (s *Store) CreateMediaBatch(ctx context.Context, media []models.Media) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		for i := range media {
			if err := insertMedia(ctx, tx, &media[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateJournalWithMedia inserts the entry and its media in one
// transaction, linking every media record to the new entry.
func (s *Store) CreateJournalWithMedia(ctx context.Context, j *models.Journal, media []models.Media) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertJournal(ctx, tx, j); err != nil {
			return err
		}
		for i := range media {
			media[i].UserID = j.UserID
			media[i].JournalID = &j.ID
			if err := insertMedia(ctx, tx, &media[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (f MediaFilter) where(userID int) (string, []any) {
	clauses := []string{"user_id=$1"}
	args := []any{userID}
	if f.Type != "" {
		args = append(args, string(f.Type))
		clauses = append(clauses, fmt.Sprintf("type=$%d", len(args)))
	}
	if f.JournalID != nil {
		args = append(args, *f.JournalID)
		clauses = append(clauses, fmt.Sprintf("journal_id=$%d", len(args)))
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// ListMedia returns one page, newest first, plus the number of records
// matching the filter.
func (s *Store) ListMedia(ctx context.Context, userID int, f MediaFilter) ([]models.Media, int, error) {
	where, args := f.where(userID)

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM media `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count media: %w", err)
	}

	args = append(args, f.Limit, f.Offset())
	query := fmt.Sprintf(`SELECT %s FROM media %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		mediaColumns, where, len(args)-1, len(args))

	out := []models.Media{}
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list media: %w", err)
	}
	return out, total, nil
}

// MediaByJournal groups the media of the given journals by journal id.
func (s *Store) MediaByJournal(ctx context.Context, userID int, journalIDs []int) (map[int][]models.Media, error) {
	out := make(map[int][]models.Media)
	if len(journalIDs) == 0 {
		return out, nil
	}
	ids := make([]int64, len(journalIDs))
	for i, id := range journalIDs {
		ids[i] = int64(id)
	}
	var rows []models.Media
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT `+mediaColumns+` FROM media WHERE user_id=$1 AND journal_id = ANY($2::int[]) ORDER BY created_at ASC, id ASC`,
		userID, ids); err != nil {
		return nil, fmt.Errorf("load journal media: %w", err)
	}
	for _, m := range rows {
		out[*m.JournalID] = append(out[*m.JournalID], m)
	}
	return out, nil
}

func (s *Store) DeleteMedia(ctx context.Context, userID, id int) (models.Media, error) {
	var m models.Media
	err := s.db.GetContext(ctx, &m,
		`DELETE FROM media WHERE id=$1 AND user_id=$2 RETURNING `+mediaColumns, id, userID)
	return m, notFound(err)
}
