package syncer

import (
	"errors"
	"fmt"
)

type Stage string

const (
	StageSource  Stage = "source"
	StageLines   Stage = "lines"
	StageLoad    Stage = "load"
	StagePersist Stage = "persist"
	StageLock    Stage = "lock"
	StagePanic   Stage = "panic"
)

var (
	// ErrCycleInProgress is returned when a cycle is requested while another one runs.
	ErrCycleInProgress = errors.New("sync cycle already in progress")
	// ErrLockHeld means another process holds the cycle lock.
	ErrLockHeld = errors.New("sync lock held by another process")
)

// StageError tells which step of the cycle failed. Only persist can fail after a mutation started.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the failing stage or "" when err carries none.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
