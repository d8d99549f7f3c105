package supervise

import (
	"log/slog"
	"time"
)

const (
	// DefaultGracePeriod is how long Stop waits after SIGTERM before
	// escalating to SIGKILL.
	DefaultGracePeriod = 2 * time.Second

	// DefaultBufferSize is the capacity of the merged event channel.
	DefaultBufferSize = 100
)

type options struct {
	chunker    Chunker
	responders []Responder
	guards     []Guard
	grace      time.Duration
	bufferSize int
	usePTY     bool
	logger     *slog.Logger
	reducer    Reducer
}

func defaultOptions() options {
	return options{
		chunker:    LineChunker,
		grace:      DefaultGracePeriod,
		bufferSize: DefaultBufferSize,
		logger:     slog.Default(),
	}
}

// Option configures a Supervisor (or a Run call).
type Option func(*options)

// WithChunker replaces the default line-oriented chunking policy.
func WithChunker(c Chunker) Option {
	return func(o *options) { o.chunker = c }
}

// WithResponders appends responders, invoked per chunk in the order
// given.
func WithResponders(rs ...Responder) Option {
	return func(o *options) { o.responders = append(o.responders, rs...) }
}

// WithGuards appends preconditions, checked in the order given before
// the process is spawned.
func WithGuards(gs ...Guard) Option {
	return func(o *options) { o.guards = append(o.guards, gs...) }
}

// WithGracePeriod sets the SIGTERM-to-SIGKILL escalation timeout.
func WithGracePeriod(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.grace = d
		}
	}
}

// WithBufferSize sets the capacity of the merged event channel.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithPTY spawns the process under a pseudo-terminal instead of
// plain pipes. All output arrives on the Stdout channel, since a
// terminal has no separate error stream, and writes go to the
// terminal master.
func WithPTY() Option {
	return func(o *options) { o.usePTY = true }
}

// WithLogger sets the structured logger for run events and recovered
// read/responder failures. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithReducer replaces Run's default output accumulation with a
// custom fold over the event stream. Streaming supervisors ignore it.
func WithReducer(r Reducer) Option {
	return func(o *options) { o.reducer = r }
}
