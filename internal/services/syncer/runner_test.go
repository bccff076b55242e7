package syncer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cyclerFunc func(ctx context.Context) (*CycleResult, error)

func (f cyclerFunc) Cycle(ctx context.Context) (*CycleResult, error) { return f(ctx) }

type fakeLock struct {
	ok       bool
	err      error
	released atomic.Int32
}

func (l *fakeLock) Acquire(context.Context) (func(), bool, error) {
	if l.err != nil || !l.ok {
		return nil, false, l.err
	}
	return func() { l.released.Add(1) }, true, nil
}

func TestRunOnce_NoOverlap(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	r := NewRunner(zap.NewNop(), cyclerFunc(func(context.Context) (*CycleResult, error) {
		close(entered)
		<-release
		return &CycleResult{ID: "c1"}, nil
	}), time.Hour, nil)

	done := make(chan error, 1)
	go func() {
		_, err := r.RunOnce(t.Context())
		done <- err
	}()
	<-entered

	assert.True(t, r.Running())
	_, err := r.RunOnce(t.Context())
	assert.ErrorIs(t, err, ErrCycleInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, r.Running())
}

func TestRunOnce_RecoversPanic(t *testing.T) {
	r := NewRunner(zap.NewNop(), cyclerFunc(func(context.Context) (*CycleResult, error) {
		panic("kaboom")
	}), time.Hour, nil)

	_, err := r.RunOnce(t.Context())
	require.Error(t, err)
	assert.Equal(t, StagePanic, StageOf(err))

	// The runner stays usable after a panic.
	_, err = r.RunOnce(t.Context())
	assert.Equal(t, StagePanic, StageOf(err))
}

func TestRunOnce_DistributedLock(t *testing.T) {
	var calls atomic.Int32
	uc := cyclerFunc(func(context.Context) (*CycleResult, error) {
		calls.Add(1)
		return &CycleResult{}, nil
	})

	held := &fakeLock{ok: false}
	_, err := NewRunner(zap.NewNop(), uc, time.Hour, held).RunOnce(t.Context())
	assert.ErrorIs(t, err, ErrLockHeld)
	assert.Zero(t, calls.Load())

	broken := &fakeLock{err: errBoom}
	_, err = NewRunner(zap.NewNop(), uc, time.Hour, broken).RunOnce(t.Context())
	assert.Equal(t, StageLock, StageOf(err))

	free := &fakeLock{ok: true}
	_, err = NewRunner(zap.NewNop(), uc, time.Hour, free).RunOnce(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(1), free.released.Load())
}

func TestRun_FirstTickImmediateAndErrorsDoNotStopLoop(t *testing.T) {
	var calls atomic.Int32
	r := NewRunner(zap.NewNop(), cyclerFunc(func(context.Context) (*CycleResult, error) {
		if calls.Add(1) == 1 {
			return &CycleResult{ID: "x"}, stageErr(StageSource, errBoom)
		}
		return &CycleResult{ID: "y"}, nil
	}), 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRun_Trigger(t *testing.T) {
	var calls atomic.Int32
	r := NewRunner(zap.NewNop(), cyclerFunc(func(context.Context) (*CycleResult, error) {
		calls.Add(1)
		return &CycleResult{}, nil
	}), time.Hour, nil)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, r.Trigger, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestTriggerHandler(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	r := NewRunner(zap.NewNop(), cyclerFunc(func(context.Context) (*CycleResult, error) {
		entered <- struct{}{}
		<-release
		return &CycleResult{}, nil
	}), time.Hour, nil)
	h := r.TriggerHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/syncz", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/syncz", nil))
	assert.Equal(t, http.StatusConflict, rec.Code, "a cycle is already queued")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.RunOnce(t.Context())
	}()
	<-entered

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/syncz", nil))
	assert.Equal(t, http.StatusConflict, rec.Code, "a cycle is running")

	close(release)
	<-done
}
