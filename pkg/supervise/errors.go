package supervise

import (
	"errors"
	"fmt"
)

// ErrSupervisorUsed is returned by Start on a supervisor that has
// already run. A supervisor owns exactly one process lifecycle; a
// fresh one is required per invocation.
var ErrSupervisorUsed = errors.New("supervise: supervisor already used")

// SpawnError reports that the OS process could not be created.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawning %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// GuardError reports a failed precondition. No process was spawned.
type GuardError struct {
	Guard string
	Err   error
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("precondition %q failed: %v", e.Guard, e.Err)
}

func (e *GuardError) Unwrap() error { return e.Err }

// ResolveError reports that the command's argument list could not be
// resolved. No process was spawned.
type ResolveError struct {
	Err error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolving command arguments: %v", e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }
