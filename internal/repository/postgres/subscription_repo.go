package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/NordCoder/trenes-alerts/internal/domain/subscription"
)

var _ subscription.Repo = (*SubscriptionRepo)(nil)

type SubscriptionRepo struct {
	db *DB
}

func NewSubscriptionRepo(db *DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

const (
	fkSubscriptionUser = "subscriptions_user_id_fkey"
	fkSubscriptionLine = "subscriptions_line_id_fkey"
)

const (
	qSubInsert = `
INSERT INTO subscriptions (user_id, line_id)
VALUES ($1, $2);`

	qSubDelete = `
DELETE FROM subscriptions
WHERE user_id = $1 AND line_id = $2;`

	qSubChatIDs = `
SELECT u.chat_id
FROM subscriptions s
JOIN users u ON u.id = s.user_id
WHERE s.line_id = $1
ORDER BY u.chat_id;`
)

// Add subscribes the user. A repeated subscription returns ErrConflict. A missing
// user or line returns ErrConstraint joined with subscription.ErrUnknownUser or
// subscription.ErrUnknownLine.
func (r *SubscriptionRepo) Add(ctx context.Context, s subscription.Subscription) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.execQueryer(ctx).Exec(ctx, qSubInsert, s.UserID, s.LineID); err != nil {
		return subscriptionInsertErr(err)
	}
	return nil
}

func subscriptionInsertErr(err error) error {
	mapped := mapWriteErr(err)
	switch {
	case errors.Is(mapped, ErrConflict):
		return mapped
	case errors.Is(mapped, ErrConstraint):
		switch constraintName(err) {
		case fkSubscriptionUser:
			return fmt.Errorf("%w: %w", ErrConstraint, subscription.ErrUnknownUser)
		case fkSubscriptionLine:
			return fmt.Errorf("%w: %w", ErrConstraint, subscription.ErrUnknownLine)
		}
		return mapped
	}
	return fmt.Errorf("subscription insert: %w", err)
}

func (r *SubscriptionRepo) Remove(ctx context.Context, s subscription.Subscription) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qSubDelete, s.UserID, s.LineID)
	if err != nil {
		return false, fmt.Errorf("subscription delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *SubscriptionRepo) ChatIDsByLine(ctx context.Context, lineID int64) ([]int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qSubChatIDs, lineID)
	if err != nil {
		return nil, fmt.Errorf("subscribers: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("subscribers scan: %w", err)
	}
	return ids, nil
}
