package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/NordCoder/trenes-alerts/internal/domain/user"
)

var _ user.Repo = (*UserRepo)(nil)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const (
	qUserInsert = `
INSERT INTO users (id, chat_id, username, first_name, last_name)
VALUES ($1, $2, NULLIF($3, ''), $4, $5)
RETURNING created_at;`

	qUserByID = `
SELECT id, chat_id, COALESCE(username, ''), first_name, last_name, created_at
FROM users
WHERE id = $1;`
)

func (r *UserRepo) Register(ctx context.Context, u *user.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	err := r.db.execQueryer(ctx).
		QueryRow(ctx, qUserInsert, u.ID, u.ChatID, u.Username, u.FirstName, u.LastName).
		Scan(&u.CreatedAt)
	if err != nil {
		if mapped := mapWriteErr(err); errors.Is(mapped, ErrConflict) {
			return ErrConflict
		}
		return fmt.Errorf("user insert: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	err := r.db.execQueryer(ctx).QueryRow(ctx, qUserByID, id).
		Scan(&u.ID, &u.ChatID, &u.Username, &u.FirstName, &u.LastName, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
