package supervise

import "time"

// OutputChannel identifies which stream of the child process a chunk
// was read from. The set is closed: there are exactly two channels.
type OutputChannel int

const (
	Stdout OutputChannel = iota
	Stderr
)

func (c OutputChannel) String() string {
	switch c {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// ProcessOutput is one delivered unit of process output: the chunk
// bytes, the channel they came from, and the capture time.
type ProcessOutput struct {
	Data    []byte
	Channel OutputChannel
	Time    time.Time
}

// Text returns the chunk data as a string.
func (o ProcessOutput) Text() string {
	return string(o.Data)
}
