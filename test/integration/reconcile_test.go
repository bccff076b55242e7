//go:build integration

package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NordCoder/trenes-alerts/internal/domain/alert"
	"github.com/NordCoder/trenes-alerts/internal/domain/outbox"
	pg "github.com/NordCoder/trenes-alerts/internal/repository/postgres"
	"github.com/NordCoder/trenes-alerts/internal/services/syncer"
	syncrepo "github.com/NordCoder/trenes-alerts/internal/services/syncer/repo"
)

type staticSource map[string][]alert.Raw

func (s staticSource) Fetch(context.Context) (map[string][]alert.Raw, error) { return s, nil }

type recordingMessenger struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func (m *recordingMessenger) Send(_ context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sent == nil {
		m.sent = map[int64][]string{}
	}
	m.sent[chatID] = append(m.sent[chatID], text)
	return nil
}

func TestCycle_AgainstPostgres(t *testing.T) {
	cfg := LoadCfg()
	sqlDB := DBOpen(t, cfg.DBDSN)
	db := PoolOpen(t, cfg.DBDSN)
	ResetSnapshot(t, sqlDB)

	id := RandID()
	name := fmt.Sprintf("it-cycle-%d", id)
	lineID := SeedLine(t, sqlDB, name)
	SeedUser(t, sqlDB, id, id+7)
	SeedSubscription(t, sqlDB, id, lineID)

	h1 := alert.Raw{Type: alert.TypeDanger, Title: "h1", Description: "d1"}
	h2 := alert.Raw{Type: alert.TypeInfo, Title: "h2", Description: "d2"}
	h3 := alert.Raw{Type: alert.TypeSuccess, Title: "h3", Description: "d3"}

	out := &recordingMessenger{}
	outboxRepo := pg.NewOutboxRepo(db)
	newUC := func(src syncer.Source) *syncer.Usecase {
		rec := &syncer.Reconciler{
			Store:          syncrepo.Snapshot{R: pg.NewAlertRepo(db)},
			Tx:             pg.NewTransactor(db, zap.NewNop()),
			Events:         syncrepo.Events{Outbox: outboxRepo},
			PersistTimeout: 10 * time.Second,
			Log:            zap.NewNop(),
		}
		b := &syncer.Broadcaster{
			Subs:    syncrepo.Subscribers{R: pg.NewSubscriptionRepo(db)},
			Out:     out,
			Workers: 2,
			Log:     zap.NewNop(),
		}
		return syncer.NewUC(src, syncrepo.Lines{R: pg.NewLineRepo(db)}, rec, b, zap.NewNop())
	}

	res, err := newUC(staticSource{name: {h1, h2}, "Línea inexistente": {h3}}).Cycle(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"Línea inexistente"}, res.Dropped)
	assert.Equal(t, 2, CountAlerts(t, sqlDB, lineID))
	require.Len(t, out.sent[id+7], 1)

	res, err = newUC(staticSource{name: {h2, h3}}).Cycle(t.Context())
	require.NoError(t, err)
	assert.Len(t, res.Outcome.Plan.Insert, 1)
	assert.Len(t, res.Outcome.Plan.Delete, 1)
	require.Len(t, out.sent[id+7], 2)
	assert.Contains(t, out.sent[id+7][1], "h3")
	assert.NotContains(t, out.sent[id+7][1], "h1")

	res, err = newUC(staticSource{name: {h2, h3}}).Cycle(t.Context())
	require.NoError(t, err)
	assert.Empty(t, res.Outcome.Plan.Insert)
	assert.Len(t, out.sent[id+7], 2, "an unchanged page sends nothing")

	// h1, h2 inserted, h3 inserted, h1 retracted
	msgs, err := outboxRepo.PickBatch(t.Context(), 10, time.Minute)
	require.NoError(t, err)
	assert.Len(t, msgs, 4)
	for _, m := range msgs {
		assert.Equal(t, outbox.KindAlertChanged, m.Kind)
	}
}
