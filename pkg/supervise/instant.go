package supervise

import (
	"context"
	"strings"
)

// RunResult is the outcome of an instant-mode run: captured output
// and the exit code. A non-zero exit code is data, not an error;
// callers decide what it means.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Reducer folds one event into the result being built by Run,
// replacing the default per-channel text accumulation.
type Reducer func(res *RunResult, ev ProcessOutput)

// Run executes the full supervised lifecycle, drains all output, and
// returns the captured result once the process exits. It never
// exposes a live handle; use a Supervisor directly for streaming or
// interactive runs.
//
// By default stdout and stderr chunks are accumulated as text, joined
// with newlines. WithReducer replaces that accumulation.
func Run(ctx context.Context, cmd Command, opts ...Option) (*RunResult, error) {
	sup := New(cmd, opts...)
	h, err := sup.Start(ctx)
	if err != nil {
		return nil, err
	}
	defer sup.Stop()

	res := &RunResult{}
	var outParts, errParts []string
	for ev := range h.Events() {
		if sup.opts.reducer != nil {
			sup.opts.reducer(res, ev)
			continue
		}
		switch ev.Channel {
		case Stdout:
			outParts = append(outParts, ev.Text())
		case Stderr:
			errParts = append(errParts, ev.Text())
		}
	}

	if sup.opts.reducer == nil {
		res.Stdout = strings.Join(outParts, "\n")
		res.Stderr = strings.Join(errParts, "\n")
	}
	res.ExitCode = h.ExitCode()

	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	return res, nil
}
