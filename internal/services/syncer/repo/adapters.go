package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NordCoder/trenes-alerts/internal/domain/alert"
	"github.com/NordCoder/trenes-alerts/internal/domain/event"
	"github.com/NordCoder/trenes-alerts/internal/domain/line"
	"github.com/NordCoder/trenes-alerts/internal/domain/outbox"
	"github.com/NordCoder/trenes-alerts/internal/domain/subscription"
)

type Lines struct{ R line.Repo }
type Snapshot struct{ R alert.Repo }
type Subscribers struct{ R subscription.Repo }
type Events struct{ Outbox outbox.Repository }

func (a Lines) List(ctx context.Context) ([]line.Line, error) {
	return a.R.List(ctx)
}

func (s Snapshot) LoadPreviousKeys(ctx context.Context) (alert.KeySet, error) {
	return s.R.ListKeys(ctx)
}

func (s Snapshot) Insert(ctx context.Context, rows []alert.Persisted) ([]alert.Key, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	return s.R.InsertMany(ctx, rows)
}

func (s Snapshot) Delete(ctx context.Context, keys []alert.Key) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	return s.R.DeleteKeys(ctx, keys)
}

func (s Subscribers) ChatIDsByLine(ctx context.Context, lineID int64) ([]int64, error) {
	return s.R.ChatIDsByLine(ctx, lineID)
}

// Enqueue writes one outbox message per change. Keys include the change time so a
// key that is retracted and later reappears is published again.
func (e Events) Enqueue(ctx context.Context, evs []event.AlertChanged) error {
	for _, ev := range evs {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal alert change: %w", err)
		}
		if err := e.Outbox.Enqueue(ctx, IdempotencyKey(ev), outbox.KindAlertChanged, data); err != nil {
			return err
		}
	}
	return nil
}

func IdempotencyKey(ev event.AlertChanged) string {
	return fmt.Sprintf("alert:%s:%d:%s:%d", ev.Change, ev.LineID, ev.Hash, ev.At.UnixNano())
}
