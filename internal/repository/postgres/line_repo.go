package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/NordCoder/trenes-alerts/internal/domain/line"
)

var _ line.Repo = (*LineRepo)(nil)

type LineRepo struct {
	db *DB
}

func NewLineRepo(db *DB) *LineRepo { return &LineRepo{db: db} }

const (
	qLinesAll = `
SELECT id, name
FROM lines
ORDER BY name, id;`

	qLinesByUser = `
SELECT l.id, l.name
FROM lines l
JOIN subscriptions s ON s.line_id = l.id
WHERE s.user_id = $1
ORDER BY l.name, l.id;`

	qLinesAvailable = `
SELECT l.id, l.name
FROM lines l
WHERE NOT EXISTS (
    SELECT 1 FROM subscriptions s
    WHERE s.line_id = l.id AND s.user_id = $1
)
ORDER BY l.name, l.id;`
)

func (r *LineRepo) List(ctx context.Context) ([]line.Line, error) {
	return r.query(ctx, "lines", qLinesAll)
}

func (r *LineRepo) ListByUser(ctx context.Context, userID int64) ([]line.Line, error) {
	return r.query(ctx, "lines by user", qLinesByUser, userID)
}

func (r *LineRepo) ListAvailable(ctx context.Context, userID int64) ([]line.Line, error) {
	return r.query(ctx, "lines available", qLinesAvailable, userID)
}

func (r *LineRepo) query(ctx context.Context, op, sql string, args ...any) ([]line.Line, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (line.Line, error) {
		var l line.Line
		err := row.Scan(&l.ID, &l.Name)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s scan: %w", op, err)
	}
	return out, nil
}
