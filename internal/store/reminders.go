package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"memoryjournal/internal/models"
)

const reminderColumns = `id, user_id, title, description, reminder_date, is_recurring, recurring_pattern, is_active, created_at`

type ReminderFilter struct {
	Start       *time.Time
	End         *time.Time
	IsActive    *bool
	IsRecurring *bool
}

func (s *Store) CreateReminder(ctx context.Context, r *models.Reminder) error {
	return s.db.QueryRowxContext(ctx,
		`INSERT INTO reminders (user_id, title, description, reminder_date, is_recurring, recurring_pattern, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		r.UserID, r.Title, r.Description, r.ReminderDate, r.IsRecurring, patternArg(r), r.IsActive,
	).Scan(&r.ID, &r.CreatedAt)
}

// ListReminders returns the user's reminders ordered by due date.
func (s *Store) ListReminders(ctx context.Context, userID int, f ReminderFilter) ([]models.Reminder, error) {
	clauses := []string{"user_id=$1"}
	args := []any{userID}
	add := func(expr string, v any) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(expr, len(args)))
	}
	if f.Start != nil && f.End != nil {
		add("reminder_date >= $%d", *f.Start)
		add("reminder_date <= $%d", *f.End)
	}
	if f.IsActive != nil {
		add("is_active = $%d", *f.IsActive)
	}
	if f.IsRecurring != nil {
		add("is_recurring = $%d", *f.IsRecurring)
	}

	out := []models.Reminder{}
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY reminder_date ASC`
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return out, nil
}

func (s *Store) GetReminder(ctx context.Context, userID, id int) (models.Reminder, error) {
	var r models.Reminder
	err := s.db.GetContext(ctx, &r, `SELECT `+reminderColumns+` FROM reminders WHERE id=$1 AND user_id=$2`, id, userID)
	return r, notFound(err)
}

func (s *Store) UpdateReminder(ctx context.Context, r *models.Reminder) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET title=$1, description=$2, reminder_date=$3, is_recurring=$4, recurring_pattern=$5, is_active=$6
		 WHERE id=$7 AND user_id=$8`,
		r.Title, r.Description, r.ReminderDate, r.IsRecurring, patternArg(r), r.IsActive, r.ID, r.UserID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (s *Store) DeleteReminder(ctx context.Context, userID, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// FindDueReminders returns active reminders of every user due between now
// and now+horizon inclusive.
func (s *Store) FindDueReminders(ctx context.Context, now time.Time, horizon time.Duration) ([]models.Reminder, error) {
	out := []models.Reminder{}
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE is_active AND reminder_date >= $1 AND reminder_date <= $2
		 ORDER BY reminder_date ASC`,
		now, now.Add(horizon))
	if err != nil {
		return nil, fmt.Errorf("find due reminders: %w", err)
	}
	return out, nil
}

// AdvanceReminder moves a reminder from prev to next. It reports false when
// the row no longer holds prev or is inactive, which happens when another
// scan got there first.
func (s *Store) AdvanceReminder(ctx context.Context, id int, prev, next time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET reminder_date=$1 WHERE id=$2 AND reminder_date=$3 AND is_active`,
		next, id, prev)
	if err != nil {
		return false, err
	}
	return changed(res)
}

// DeactivateReminder switches off an active reminder. It reports false when
// the reminder was already inactive.
func (s *Store) DeactivateReminder(ctx context.Context, id int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE reminders SET is_active=false WHERE id=$1 AND is_active`, id)
	if err != nil {
		return false, err
	}
	return changed(res)
}

func patternArg(r *models.Reminder) any {
	if r.RecurringPattern == nil {
		return nil
	}
	return string(*r.RecurringPattern)
}
