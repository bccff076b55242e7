package repo

import (
	"context"
	"errors"

	"github.com/NordCoder/trenes-alerts/internal/domain/alert"
	"github.com/NordCoder/trenes-alerts/internal/domain/subscription"
	"github.com/NordCoder/trenes-alerts/internal/domain/user"
	pg "github.com/NordCoder/trenes-alerts/internal/repository/postgres"
	"github.com/NordCoder/trenes-alerts/internal/services/bot"
)

type Users struct{ R user.Repo }
type Subscriptions struct{ R subscription.Repo }
type Alerts struct{ R alert.Repo }

func (a Users) Register(ctx context.Context, u *user.User) error {
	err := a.R.Register(ctx, u)
	if errors.Is(err, pg.ErrConflict) {
		return bot.ErrAlreadyRegistered
	}
	return err
}

func (a Subscriptions) Add(ctx context.Context, s subscription.Subscription) error {
	err := a.R.Add(ctx, s)
	switch {
	case errors.Is(err, pg.ErrConflict):
		return bot.ErrAlreadySubscribed
	case errors.Is(err, subscription.ErrUnknownUser):
		return bot.ErrNotRegistered
	case errors.Is(err, subscription.ErrUnknownLine):
		return bot.ErrLineGone
	}
	return err
}

func (a Subscriptions) Remove(ctx context.Context, s subscription.Subscription) (bool, error) {
	return a.R.Remove(ctx, s)
}

func (a Alerts) ListByUser(ctx context.Context, userID int64) ([]alert.LineAlerts, error) {
	return a.R.ListByUser(ctx, userID)
}
