package syncer

import (
	"context"

	"github.com/NordCoder/trenes-alerts/internal/domain/alert"
	"github.com/NordCoder/trenes-alerts/internal/domain/event"
	"github.com/NordCoder/trenes-alerts/internal/domain/line"
)

type Source interface {
	Fetch(ctx context.Context) (map[string][]alert.Raw, error)
}

type LineReader interface {
	List(ctx context.Context) ([]line.Line, error)
}

// SnapshotStore is the persisted set of alert keys from the previous cycle.
type SnapshotStore interface {
	// LoadPreviousKeys returns the whole snapshot or an error, never a partial set.
	LoadPreviousKeys(ctx context.Context) (alert.KeySet, error)
	// Insert is a no-op for no rows and returns only the keys it wrote.
	Insert(ctx context.Context, rows []alert.Persisted) ([]alert.Key, error)
	// Delete is a no-op for no keys.
	Delete(ctx context.Context, keys []alert.Key) (int64, error)
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventSink records alert changes in the same transaction as the snapshot mutation.
type EventSink interface {
	Enqueue(ctx context.Context, evs []event.AlertChanged) error
}

type SubscriberLookup interface {
	ChatIDsByLine(ctx context.Context, lineID int64) ([]int64, error)
}

type Messenger interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// CycleLock excludes cycles running in other processes.
type CycleLock interface {
	Acquire(ctx context.Context) (release func(), ok bool, err error)
}
