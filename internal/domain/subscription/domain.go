package subscription

import "errors"

var (
	ErrUnknownUser = errors.New("subscription: unknown user")
	ErrUnknownLine = errors.New("subscription: unknown line")
)

type Subscription struct {
	UserID int64
	LineID int64
}
