package syncer

import (
	"context"
	"errors"
	"sync"

	"github.com/NordCoder/trenes-alerts/internal/domain/alert"
	"github.com/NordCoder/trenes-alerts/internal/domain/event"
	"github.com/NordCoder/trenes-alerts/internal/domain/line"
)

var errBoom = errors.New("boom")

type fakeSource struct {
	out map[string][]alert.Raw
	err error
}

func (f *fakeSource) Fetch(context.Context) (map[string][]alert.Raw, error) { return f.out, f.err }

type fakeLines struct {
	lines []line.Line
	err   error
}

func (f *fakeLines) List(context.Context) ([]line.Line, error) { return f.lines, f.err }

// memStore is an in-memory snapshot with the same conflict semantics as the alerts table.
type memStore struct {
	mu      sync.Mutex
	rows    map[alert.Key]alert.Persisted
	loadErr error
	insErr  error
	delErr  error
	// foreign keys appear right before Insert runs, as if written by another process.
	foreign []alert.Persisted

	inserts, deletes int
	calls            []string
}

func newMemStore(rows ...alert.Persisted) *memStore {
	s := &memStore{rows: map[alert.Key]alert.Persisted{}}
	for _, r := range rows {
		s.rows[r.Key] = r
	}
	return s
}

func (s *memStore) LoadPreviousKeys(context.Context) (alert.KeySet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := alert.KeySet{}
	for k := range s.rows {
		out.Add(k)
	}
	return out, nil
}

func (s *memStore) Insert(_ context.Context, rows []alert.Persisted) ([]alert.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "insert")
	if len(rows) == 0 {
		return nil, nil
	}
	if s.insErr != nil {
		return nil, s.insErr
	}
	for _, f := range s.foreign {
		s.rows[f.Key] = f
	}
	s.inserts++
	var out []alert.Key
	for _, r := range rows {
		if _, ok := s.rows[r.Key]; ok {
			continue
		}
		s.rows[r.Key] = r
		out = append(out, r.Key)
	}
	return out, nil
}

func (s *memStore) Delete(_ context.Context, keys []alert.Key) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "delete")
	if len(keys) == 0 {
		return 0, nil
	}
	if s.delErr != nil {
		return 0, s.delErr
	}
	s.deletes++
	var n int64
	for _, k := range keys {
		if _, ok := s.rows[k]; ok {
			delete(s.rows, k)
			n++
		}
	}
	return n, nil
}

func (s *memStore) keys() alert.KeySet {
	ks, _ := s.LoadPreviousKeys(context.Background())
	return ks
}

type fakeTx struct {
	calls int
	// ctxErrs records ctx.Err() as seen when each transaction started.
	ctxErrs []error
}

func (f *fakeTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	return fn(ctx)
}

type fakeEvents struct {
	evs []event.AlertChanged
	err error
}

func (f *fakeEvents) Enqueue(_ context.Context, evs []event.AlertChanged) error {
	if f.err != nil {
		return f.err
	}
	f.evs = append(f.evs, evs...)
	return nil
}

type fakeSubs struct {
	byLine map[int64][]int64
	errFor map[int64]error
}

func (f *fakeSubs) ChatIDsByLine(_ context.Context, lineID int64) ([]int64, error) {
	if err := f.errFor[lineID]; err != nil {
		return nil, err
	}
	return f.byLine[lineID], nil
}

type sent struct {
	ChatID int64
	Text   string
}

type fakeMessenger struct {
	mu     sync.Mutex
	sent   []sent
	failOn map[int64]error
	hook   func(chatID int64)
}

func (f *fakeMessenger) Send(ctx context.Context, chatID int64, text string) error {
	if f.hook != nil {
		f.hook(chatID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.failOn[chatID]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{ChatID: chatID, Text: text})
	return nil
}

func (f *fakeMessenger) chats() map[int64]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[int64]int{}
	for _, s := range f.sent {
		out[s.ChatID]++
	}
	return out
}

func persisted(lineID int64, r alert.Raw) alert.Persisted {
	return alert.Persisted{Key: alert.KeyOf(lineID, r), Raw: r}
}
