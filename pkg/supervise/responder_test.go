package supervise

import (
	"context"
	"regexp"
	"testing"
)

func TestReplyWhen(t *testing.T) {
	r := ReplyWhen("PASSWORD:", "secret")

	if got := r(context.Background(), []byte("enter PASSWORD: now"), Stdout); string(got) != "secret" {
		t.Errorf("matching chunk: got %q; want %q", got, "secret")
	}
	if got := r(context.Background(), []byte("nothing to see"), Stdout); got != nil {
		t.Errorf("non-matching chunk: got %q; want nil", got)
	}
}

func TestReplyMatch(t *testing.T) {
	r := ReplyMatch(regexp.MustCompile(`continue\? \[y/N\]`), "y")

	if got := r(context.Background(), []byte("continue? [y/N]"), Stderr); string(got) != "y" {
		t.Errorf("got %q; want %q", got, "y")
	}
	if got := r(context.Background(), []byte("done"), Stderr); got != nil {
		t.Errorf("got %q; want nil", got)
	}
}

func TestReplyGlob(t *testing.T) {
	r, err := ReplyGlob("*overwrite*", "n")
	if err != nil {
		t.Fatalf("compiling glob: %v", err)
	}

	if got := r(context.Background(), []byte("overwrite existing file?"), Stdout); string(got) != "n" {
		t.Errorf("got %q; want %q", got, "n")
	}
	if got := r(context.Background(), []byte("all good"), Stdout); got != nil {
		t.Errorf("got %q; want nil", got)
	}
}

func TestReplyGlobInvalidPattern(t *testing.T) {
	if _, err := ReplyGlob("[", "x"); err == nil {
		t.Fatal("expected an error for an invalid pattern")
	}
}

func TestOnChannel(t *testing.T) {
	r := OnChannel(Stderr, ReplyWhen("prompt", "ack"))

	if got := r(context.Background(), []byte("prompt"), Stdout); got != nil {
		t.Errorf("stdout chunk must not trigger a stderr-only responder, got %q", got)
	}
	if got := r(context.Background(), []byte("prompt"), Stderr); string(got) != "ack" {
		t.Errorf("got %q; want %q", got, "ack")
	}
}
