package bot

import (
	"context"
	"errors"

	"github.com/NordCoder/trenes-alerts/internal/domain/alert"
	"github.com/NordCoder/trenes-alerts/internal/domain/line"
	"github.com/NordCoder/trenes-alerts/internal/domain/subscription"
	"github.com/NordCoder/trenes-alerts/internal/domain/user"
)

var (
	ErrAlreadyRegistered = errors.New("user already registered")
	ErrAlreadySubscribed = errors.New("already subscribed")
	// ErrNotRegistered is returned when a subscription refers to an unknown user.
	ErrNotRegistered = errors.New("user not registered")
	// ErrLineGone is returned when the line behind a keyboard button no longer exists.
	ErrLineGone = errors.New("line no longer exists")
)

type UserRegistrar interface {
	Register(ctx context.Context, u *user.User) error
}

type LineReader interface {
	ListByUser(ctx context.Context, userID int64) ([]line.Line, error)
	ListAvailable(ctx context.Context, userID int64) ([]line.Line, error)
}

type SubscriptionWriter interface {
	Add(ctx context.Context, s subscription.Subscription) error
	Remove(ctx context.Context, s subscription.Subscription) (bool, error)
}

type AlertReader interface {
	ListByUser(ctx context.Context, userID int64) ([]alert.LineAlerts, error)
}
