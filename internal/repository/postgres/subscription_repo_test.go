package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/NordCoder/trenes-alerts/internal/domain/subscription"
)

func TestSubscriptionInsertErr(t *testing.T) {
	fk := func(name string) error {
		return &pgconn.PgError{Code: codeForeignKeyViolation, ConstraintName: name}
	}

	err := subscriptionInsertErr(fk(fkSubscriptionUser))
	assert.ErrorIs(t, err, ErrConstraint)
	assert.ErrorIs(t, err, subscription.ErrUnknownUser)
	assert.NotErrorIs(t, err, subscription.ErrUnknownLine)

	err = subscriptionInsertErr(fk(fkSubscriptionLine))
	assert.ErrorIs(t, err, ErrConstraint)
	assert.ErrorIs(t, err, subscription.ErrUnknownLine)
	assert.NotErrorIs(t, err, subscription.ErrUnknownUser)

	err = subscriptionInsertErr(fk("other_fkey"))
	assert.ErrorIs(t, err, ErrConstraint)
	assert.NotErrorIs(t, err, subscription.ErrUnknownUser)
	assert.NotErrorIs(t, err, subscription.ErrUnknownLine)

	assert.ErrorIs(t, subscriptionInsertErr(&pgconn.PgError{Code: codeUniqueViolation}), ErrConflict)

	boom := errors.New("boom")
	assert.ErrorIs(t, subscriptionInsertErr(boom), boom)
}
