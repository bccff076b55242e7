package alert

import "context"

type Repo interface {
	ListKeys(ctx context.Context) (KeySet, error)
	// InsertMany skips rows whose key already exists and returns the keys it actually wrote.
	InsertMany(ctx context.Context, rows []Persisted) ([]Key, error)
	DeleteKeys(ctx context.Context, keys []Key) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]LineAlerts, error)
}
