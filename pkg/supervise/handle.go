package supervise

import "context"

// Handle is the live view of a running process: the merged event
// sequence, a safe write-to-stdin operation, and convenience
// sub-streams. It is a borrowed view; the Supervisor stays the sole
// owner of the OS process.
type Handle struct {
	s *Supervisor
}

// ID returns the run identifier.
func (h *Handle) ID() string { return h.s.id }

// Events returns the merged output sequence. Per-channel order is
// preserved; stdout and stderr interleave in arrival order. The
// channel closes once both streams have ended and the process has
// been reaped.
func (h *Handle) Events() <-chan ProcessOutput {
	return h.s.events
}

// Write writes raw bytes to the process's stdin. Errors are
// swallowed; the process may already have exited.
func (h *Handle) Write(data []byte) {
	h.s.writeStdin(data, false)
}

// WriteLine writes a line to the process's stdin, appending a
// newline when the text does not already end in one.
func (h *Handle) WriteLine(line string) {
	h.s.writeStdin([]byte(line), true)
}

// Filter returns a view of the event sequence containing only events
// for which keep returns true. The underlying streams are still read
// fully; filtered-out events are simply dropped.
func (h *Handle) Filter(keep func(ProcessOutput) bool) <-chan ProcessOutput {
	out := make(chan ProcessOutput)
	go func() {
		defer close(out)
		for ev := range h.s.events {
			if !keep(ev) {
				continue
			}
			select {
			case out <- ev:
			case <-h.s.stopped:
				return
			}
		}
	}()
	return out
}

// Stdout returns only stdout events, draining stderr in the
// background.
func (h *Handle) Stdout() <-chan ProcessOutput {
	return h.Filter(func(ev ProcessOutput) bool { return ev.Channel == Stdout })
}

// Stderr returns only stderr events, draining stdout in the
// background.
func (h *Handle) Stderr() <-chan ProcessOutput {
	return h.Filter(func(ev ProcessOutput) bool { return ev.Channel == Stderr })
}

// Drain consumes and discards all remaining output, waits for the
// process to exit, and returns its exit code. Responders still run
// for every chunk, so Drain is how callers run an interactive child
// "in the background" until it finishes.
func (h *Handle) Drain(ctx context.Context) (int, error) {
	for {
		select {
		case <-ctx.Done():
			return -1, ctx.Err()
		case _, ok := <-h.s.events:
			if !ok {
				return h.ExitCode(), nil
			}
		}
	}
}

// Running reports whether the process has not yet been reaped.
func (h *Handle) Running() bool {
	select {
	case <-h.s.waitDone:
		return false
	default:
		return true
	}
}

// ExitCode returns the process's exit code, or -1 while it is still
// running or when it was killed by a signal.
func (h *Handle) ExitCode() int {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return h.s.exitCode
}

// Signal returns the name of the signal that terminated the process,
// or the empty string when it exited on its own (or is still
// running).
func (h *Handle) Signal() string {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return h.s.signal
}

// PID returns the OS process ID.
func (h *Handle) PID() int {
	return h.s.proc.Process.Pid
}
