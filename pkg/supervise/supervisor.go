package supervise

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
)

type state int

const (
	stateCreated state = iota
	stateStarting
	stateRunning
	stateStopping
	stateStopped
)

// Supervisor owns the full lifecycle of one process run: guard
// checks, spawn, stream wiring, and guaranteed teardown. It is spent
// after one run; construct a new one per invocation.
type Supervisor struct {
	cmd  Command
	opts options
	id   string
	log  *slog.Logger

	mu  sync.Mutex
	st  state
	ctx context.Context

	proc    *exec.Cmd
	stdinMu sync.Mutex
	stdin   io.WriteCloser
	ptmx    *os.File

	events chan ProcessOutput

	exitCode int
	signal   string

	// waitDone closes once the process has been reaped and both
	// readers have drained. stopping closes at the start of teardown
	// to unblock readers stuck on a full event channel; stopped
	// closes when teardown has fully settled.
	waitDone chan struct{}
	stopping chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// New builds a supervisor for cmd. Nothing runs until Start.
func New(cmd Command, opts ...Option) *Supervisor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	id := uuid.NewString()
	return &Supervisor{
		cmd:      cmd,
		opts:     o,
		id:       id,
		log:      o.logger.With("run", id),
		exitCode: -1,
		waitDone: make(chan struct{}),
		stopping: make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// ID returns the unique identifier of this run, also attached to all
// of its log records.
func (s *Supervisor) ID() string { return s.id }

// Start resolves the command's arguments, checks all guards, spawns
// the process, and wires its output streams into the merged event
// sequence. It returns a live Handle on success. Cancelling ctx
// while the process runs triggers the same teardown as Stop.
//
// Callers must pair every successful Start with Stop, normally via
// defer. A supervisor that has already started rejects further calls
// with ErrSupervisorUsed.
func (s *Supervisor) Start(ctx context.Context) (*Handle, error) {
	s.mu.Lock()
	if s.st != stateCreated {
		s.mu.Unlock()
		return nil, ErrSupervisorUsed
	}
	s.st = stateStarting
	s.ctx = ctx
	s.mu.Unlock()

	args, err := s.cmd.resolveArgs(ctx)
	if err != nil {
		s.abortStart()
		return nil, err
	}

	for _, g := range s.opts.guards {
		if err := g.Check(ctx); err != nil {
			s.abortStart()
			return nil, &GuardError{Guard: g.Name, Err: err}
		}
	}

	proc := exec.Command(s.cmd.Path, args...)
	proc.Dir = s.cmd.Dir
	proc.Env = s.cmd.Env

	s.events = make(chan ProcessOutput, s.opts.bufferSize)

	var readers sync.WaitGroup
	if s.opts.usePTY {
		ptmx, err := spawnPTY(proc)
		if err != nil {
			s.abortStart()
			return nil, &SpawnError{Path: s.cmd.Path, Err: err}
		}
		s.ptmx = ptmx
		readers.Add(1)
		go s.readStream(ptmx, Stdout, &readers)
	} else {
		stdin, err := proc.StdinPipe()
		if err != nil {
			s.abortStart()
			return nil, &SpawnError{Path: s.cmd.Path, Err: err}
		}
		stdout, err := proc.StdoutPipe()
		if err != nil {
			s.abortStart()
			return nil, &SpawnError{Path: s.cmd.Path, Err: err}
		}
		stderr, err := proc.StderrPipe()
		if err != nil {
			s.abortStart()
			return nil, &SpawnError{Path: s.cmd.Path, Err: err}
		}
		if err := proc.Start(); err != nil {
			s.abortStart()
			return nil, &SpawnError{Path: s.cmd.Path, Err: err}
		}
		s.stdin = stdin
		readers.Add(2)
		go s.readStream(stdout, Stdout, &readers)
		go s.readStream(stderr, Stderr, &readers)
	}
	s.proc = proc

	if s.cmd.Input != "" {
		s.writeStdin([]byte(s.cmd.Input), false)
	}

	// Reaper: pipe readers must finish before Wait reclaims the
	// pipes, and the event channel closes only after the exit status
	// is recorded.
	go func() {
		readers.Wait()
		s.recordExit(proc.Wait())
		s.stdinMu.Lock()
		if s.stdin != nil {
			_ = s.stdin.Close()
			s.stdin = nil
		}
		if s.ptmx != nil {
			_ = s.ptmx.Close()
			s.ptmx = nil
		}
		s.stdinMu.Unlock()
		close(s.waitDone)
		close(s.events)
	}()

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.stopped:
		}
	}()

	s.mu.Lock()
	s.st = stateRunning
	s.mu.Unlock()
	s.log.Info("process started", "path", s.cmd.Path, "pid", proc.Process.Pid)

	return &Handle{s: s}, nil
}

// Stop tears the run down: close stdin, SIGTERM, wait up to the grace
// period, SIGKILL, then join all background readers. It is idempotent
// and safe to call from any goroutine; concurrent callers block until
// the first teardown settles. Stopping an already-exited process does
// nothing beyond joining the readers.
func (s *Supervisor) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		started := s.proc != nil
		s.st = stateStopping
		s.mu.Unlock()

		close(s.stopping)
		if started {
			s.terminate()
			<-s.waitDone
		}

		s.mu.Lock()
		s.st = stateStopped
		s.mu.Unlock()
		close(s.stopped)
	})
	<-s.stopped
}

// abortStart marks a supervisor spent after a pre-spawn failure.
func (s *Supervisor) abortStart() {
	s.mu.Lock()
	s.st = stateStopped
	s.mu.Unlock()
}

func (s *Supervisor) terminate() {
	select {
	case <-s.waitDone:
		return // already exited, nothing to signal
	default:
	}

	// Closing stdin first tells well-behaved children no more input
	// is coming. The PTY master doubles as the child's stdin.
	s.stdinMu.Lock()
	if s.stdin != nil {
		_ = s.stdin.Close()
		s.stdin = nil
	}
	if s.ptmx != nil {
		_ = s.ptmx.Close()
		s.ptmx = nil
	}
	s.stdinMu.Unlock()

	s.log.Info("terminating process", "pid", s.proc.Process.Pid)
	_ = s.proc.Process.Signal(syscall.SIGTERM)

	select {
	case <-s.waitDone:
	case <-time.After(s.opts.grace):
		s.log.Warn("grace period elapsed, killing process", "pid", s.proc.Process.Pid)
		_ = s.proc.Process.Kill()
	}
}

func (s *Supervisor) recordExit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ps := s.proc.ProcessState; ps != nil {
		s.exitCode = ps.ExitCode()
		if status, ok := ps.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			s.signal = status.Signal().String()
		}
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		s.log.Error("waiting for process failed", "error", err)
	}
	s.log.Info("process exited", "exit_code", s.exitCode, "signal", s.signal)
}

// readStream pulls chunks from one stream until EOF, runs them
// through the responders, and feeds the merged event channel. A read
// failure ends this stream only; the other channel keeps going.
func (s *Supervisor) readStream(rd io.Reader, channel OutputChannel, readers *sync.WaitGroup) {
	defer readers.Done()
	br := bufio.NewReader(rd)
	for {
		chunk, err := s.opts.chunker(br, channel)
		if err != nil {
			if errors.Is(err, ErrSkipChunk) {
				continue
			}
			if !streamClosed(err) {
				s.log.Error("stream read failed", "channel", channel.String(), "error", err)
			}
			return
		}
		s.deliver(chunk, channel)
	}
}

// streamClosed reports errors that just mean the stream ended: plain
// EOF, a pipe closed underneath us during teardown, or the EIO a PTY
// master returns once the child side is gone.
func streamClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, syscall.EIO)
}

func (s *Supervisor) deliver(chunk []byte, channel OutputChannel) {
	for _, r := range s.opts.responders {
		if reply := s.callResponder(r, chunk, channel); reply != nil {
			s.writeStdin(reply, true)
		}
	}
	ev := ProcessOutput{Data: chunk, Channel: channel, Time: time.Now().UTC()}
	select {
	case s.events <- ev:
	case <-s.stopping:
		// Teardown in progress and the consumer is gone; drop the
		// event so the reader can drain to EOF.
	}
}

func (s *Supervisor) callResponder(r Responder, chunk []byte, channel OutputChannel) (reply []byte) {
	defer func() {
		if p := recover(); p != nil {
			s.log.Error("responder panicked", "channel", channel.String(), "panic", p)
			reply = nil
		}
	}()
	return r(s.ctx, chunk, channel)
}

// writeStdin writes to the child's stdin, appending a trailing
// newline when asked and one is missing. Failures are swallowed: the
// process may legitimately have exited between chunk and reply.
func (s *Supervisor) writeStdin(data []byte, appendNewline bool) {
	s.stdinMu.Lock()
	defer s.stdinMu.Unlock()

	var w io.Writer
	switch {
	case s.ptmx != nil:
		w = s.ptmx
	case s.stdin != nil:
		w = s.stdin
	default:
		return
	}

	if _, err := w.Write(data); err != nil {
		s.log.Debug("stdin write failed", "error", err)
		return
	}
	if appendNewline && (len(data) == 0 || data[len(data)-1] != '\n') {
		if _, err := w.Write([]byte("\n")); err != nil {
			s.log.Debug("stdin write failed", "error", err)
		}
	}
}
