package supervise

import (
	"bufio"
	"errors"
	"io"
	"regexp"
)

// ErrSkipChunk is returned by a Chunker to suppress the current read
// without ending the stream. It must never be confused with io.EOF:
// skipping means "nothing to deliver this time, keep reading".
var ErrSkipChunk = errors.New("supervise: no chunk this read")

// Chunker groups raw stream bytes into delivered units. It is called
// repeatedly on one stream until it returns io.EOF. Returning
// ErrSkipChunk drops the current read and continues; any other error
// is logged and treated as end of that stream only.
type Chunker func(r *bufio.Reader, channel OutputChannel) ([]byte, error)

// LineChunker is the default policy: one line per chunk with the
// trailing newline stripped. Lines that are empty after stripping are
// skipped.
func LineChunker(r *bufio.Reader, _ OutputChannel) ([]byte, error) {
	line, err := r.ReadBytes('\n')
	if len(line) == 0 {
		if err != nil {
			return nil, err
		}
		return nil, ErrSkipChunk
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	line = trimEOL(line)
	if len(line) == 0 {
		return nil, ErrSkipChunk
	}
	return line, nil
}

// BufferChunker returns a policy that delivers raw reads of at most
// size bytes, with no line splitting and no skipping.
func BufferChunker(size int) Chunker {
	return func(r *bufio.Reader, _ OutputChannel) ([]byte, error) {
		buf := make([]byte, size)
		n, err := r.Read(buf)
		if n > 0 {
			return buf[:n], nil
		}
		if err != nil {
			return nil, err
		}
		return nil, ErrSkipChunk
	}
}

// MatchChunker returns a line-oriented policy that delivers only the
// part of each line matching re. If the expression has a capture
// group, the first group is delivered; otherwise the whole match.
// Non-matching lines are skipped. This is how callers extract a
// single interesting token (a URL, a connection ID) from a chatty
// log stream.
func MatchChunker(re *regexp.Regexp) Chunker {
	return func(r *bufio.Reader, channel OutputChannel) ([]byte, error) {
		line, err := LineChunker(r, channel)
		if err != nil {
			return nil, err
		}
		m := re.FindSubmatch(line)
		if m == nil {
			return nil, ErrSkipChunk
		}
		if len(m) > 1 {
			return m[1], nil
		}
		return m[0], nil
	}
}

func trimEOL(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}
