package syncer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type Cycler interface {
	Cycle(ctx context.Context) (*CycleResult, error)
}

// Runner drives cycles on a fixed interval and on demand, never two at a time.
type Runner struct {
	Log      *zap.Logger
	UC       Cycler
	Lock     CycleLock
	Interval time.Duration

	mu      sync.Mutex
	running atomic.Bool
	trigger chan struct{}
}

func NewRunner(log *zap.Logger, uc Cycler, interval time.Duration, lock CycleLock) *Runner {
	if log == nil {
		log = zap.L()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Runner{
		Log:      log.With(zap.String("component", "syncer.runner")),
		UC:       uc,
		Lock:     lock,
		Interval: interval,
		trigger:  make(chan struct{}, 1),
	}
}

// RunOnce runs a single cycle unless one is already in progress here or, with a
// lock configured, in another process. Panics are turned into errors.
func (r *Runner) RunOnce(ctx context.Context) (res *CycleResult, err error) {
	if !r.mu.TryLock() {
		return nil, ErrCycleInProgress
	}
	defer r.mu.Unlock()
	r.running.Store(true)
	defer r.running.Store(false)

	if r.Lock != nil {
		release, ok, lerr := r.Lock.Acquire(ctx)
		if lerr != nil {
			return nil, stageErr(StageLock, lerr)
		}
		if !ok {
			return nil, ErrLockHeld
		}
		defer release()
	}

	defer func() {
		if p := recover(); p != nil {
			r.Log.Error("sync cycle panic", zap.Any("panic", p), zap.ByteString("stack", debug.Stack()))
			res, err = nil, stageErr(StagePanic, fmt.Errorf("panic: %v", p))
		}
	}()
	return r.UC.Cycle(ctx)
}

// Running reports whether a cycle is executing in this process.
func (r *Runner) Running() bool { return r.running.Load() }

// Trigger asks Run for an extra cycle. It returns false if one is already queued.
func (r *Runner) Trigger() bool {
	select {
	case r.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

func (r *Runner) tick(ctx context.Context) {
	start := time.Now()
	res, err := r.RunOnce(ctx)
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, ErrCycleInProgress), errors.Is(err, ErrLockHeld):
		mCycles.WithLabelValues("skipped").Inc()
		r.Log.Info("sync cycle skipped", zap.Error(err))
		return
	case err != nil:
		stage := StageOf(err)
		mCycles.WithLabelValues("error").Inc()
		mCycleErrors.WithLabelValues(string(stage)).Inc()
		fields := []zap.Field{zap.String("stage", string(stage)), zap.Duration("elapsed", elapsed), zap.Error(err)}
		if res != nil {
			fields = append(fields, zap.String("cycle_id", res.ID))
		}
		r.Log.Warn("sync cycle failed", fields...)
	default:
		mCycles.WithLabelValues("ok").Inc()
		mLastSuccess.SetToCurrentTime()
		r.Log.Debug("sync cycle done", zap.String("cycle_id", res.ID), zap.Duration("elapsed", elapsed))
	}
	mCycleDur.Observe(elapsed.Seconds())
}

// Run ticks immediately and then every Interval until ctx is done. A tick that
// arrives while a cycle runs is dropped by the ticker.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		case <-r.trigger:
			r.tick(ctx)
		}
	}
}

// TriggerHandler queues a cycle. It answers 409 while a cycle runs or one is already queued.
func (r *Runner) TriggerHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if r.Running() || !r.Trigger() {
			http.Error(w, "sync already in progress", http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("sync queued\n"))
	})
}
