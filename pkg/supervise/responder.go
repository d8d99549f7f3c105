package supervise

import (
	"bytes"
	"context"
	"regexp"

	"github.com/gobwas/glob"
)

// Responder inspects a chunk before it is delivered downstream and
// may produce a reply for the process's stdin. Returning nil means no
// reply. All registered responders run for every chunk, in
// registration order; a non-nil reply is written to stdin immediately
// with a trailing newline appended when missing.
//
// A responder that panics is recovered and logged; the remaining
// responders and the run itself continue.
type Responder func(ctx context.Context, data []byte, channel OutputChannel) []byte

// ReplyWhen replies with the fixed text whenever a chunk contains
// substr, on either channel.
func ReplyWhen(substr, reply string) Responder {
	needle := []byte(substr)
	return func(_ context.Context, data []byte, _ OutputChannel) []byte {
		if bytes.Contains(data, needle) {
			return []byte(reply)
		}
		return nil
	}
}

// ReplyMatch replies with the fixed text whenever a chunk matches re.
func ReplyMatch(re *regexp.Regexp, reply string) Responder {
	return func(_ context.Context, data []byte, _ OutputChannel) []byte {
		if re.Match(data) {
			return []byte(reply)
		}
		return nil
	}
}

// ReplyGlob replies with the fixed text whenever a chunk matches the
// glob pattern (e.g. "*continue? [y/N]*"). The pattern is compiled
// once; an invalid pattern is reported here, not at match time.
func ReplyGlob(pattern, reply string) (Responder, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return func(_ context.Context, data []byte, _ OutputChannel) []byte {
		if g.Match(string(data)) {
			return []byte(reply)
		}
		return nil
	}, nil
}

// OnChannel restricts a responder to chunks from one channel.
func OnChannel(channel OutputChannel, r Responder) Responder {
	return func(ctx context.Context, data []byte, ch OutputChannel) []byte {
		if ch != channel {
			return nil
		}
		return r(ctx, data, ch)
	}
}
