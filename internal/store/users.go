package store

import (
	"context"

	"memoryjournal/internal/models"
)

const userColumns = `id, email, email_blind_index, password_hash, name, created_at`

// CreateUser inserts u, whose email must already be encrypted, and fills in
// the generated id and timestamp.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return s.db.QueryRowxContext(ctx,
		`INSERT INTO users (email, email_blind_index, password_hash, name) VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		u.Email, u.EmailBlindIndex, u.PasswordHash, u.Name).Scan(&u.ID, &u.CreatedAt)
}

func (s *Store) UserByEmailIndex(ctx context.Context, blindIndex string) (models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email_blind_index=$1`, blindIndex)
	return u, notFound(err)
}

func (s *Store) UserByID(ctx context.Context, id int) (models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	return u, notFound(err)
}

func (s *Store) UpdateUserName(ctx context.Context, id int, name *string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET name=$1 WHERE id=$2`, name, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (s *Store) DeleteUser(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}
