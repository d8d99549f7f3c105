package supervise

import (
	"context"
	"errors"
)

// Command describes what to run. It is a plain value; nothing is
// resolved or validated until Supervisor.Start, and it must not be
// mutated once the process has started.
type Command struct {
	// Path is the executable to launch.
	Path string

	// Args is the fixed argument list. Ignored when ArgsFunc is set.
	Args []string

	// ArgsFunc resolves the argument list lazily at start time, for
	// arguments that are expensive or asynchronous to obtain (a token
	// fetched from an API, for example). It is called exactly once
	// per start.
	ArgsFunc func(ctx context.Context) ([]string, error)

	// Input is written to the process's stdin immediately after the
	// spawn, before any output is read.
	Input string

	// Dir is the working directory. Empty means inherit.
	Dir string

	// Env is the environment. Nil means inherit.
	Env []string
}

func (c Command) resolveArgs(ctx context.Context) ([]string, error) {
	args := c.Args
	if c.ArgsFunc != nil {
		resolved, err := c.ArgsFunc(ctx)
		if err != nil {
			return nil, &ResolveError{Err: err}
		}
		args = resolved
	}
	if len(args) == 0 {
		return nil, &ResolveError{Err: errors.New("no arguments resolved")}
	}
	return args, nil
}
