package line

import "context"

type Repo interface {
	List(ctx context.Context) ([]Line, error)
	ListByUser(ctx context.Context, userID int64) ([]Line, error)
	// ListAvailable returns the lines the user is not subscribed to.
	ListAvailable(ctx context.Context, userID int64) ([]Line, error)
}
