package subscription

import "context"

type Repo interface {
	Add(ctx context.Context, s Subscription) error
	Remove(ctx context.Context, s Subscription) (bool, error)
	// ChatIDsByLine returns the chat ids of every user subscribed to the line.
	ChatIDsByLine(ctx context.Context, lineID int64) ([]int64, error)
}
