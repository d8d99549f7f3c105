package supervise

import (
	"bufio"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
)

// drainChunker runs a chunker over input until EOF and returns the
// delivered chunks as strings.
func drainChunker(t *testing.T, c Chunker, input string) []string {
	t.Helper()
	r := bufio.NewReader(strings.NewReader(input))
	var chunks []string
	for {
		chunk, err := c(r, Stdout)
		if errors.Is(err, ErrSkipChunk) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return chunks
		}
		if err != nil {
			t.Fatalf("chunker failed: %v", err)
		}
		chunks = append(chunks, string(chunk))
	}
}

func TestLineChunker(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain lines", "a\nb\n", []string{"a", "b"}},
		{"empty lines skipped", "a\n\nb\n\n", []string{"a", "b"}},
		{"crlf stripped", "a\r\nb\r\n", []string{"a", "b"}},
		{"final line without newline", "a\nb", []string{"a", "b"}},
		{"only empty lines", "\n\n\n", nil},
		{"empty input", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := drainChunker(t, LineChunker, tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v chunks %v; want %v", len(got), got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d = %q; want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBufferChunker(t *testing.T) {
	got := drainChunker(t, BufferChunker(5), "hello world")
	joined := strings.Join(got, "")
	if joined != "hello world" {
		t.Errorf("reassembled %q; want %q", joined, "hello world")
	}
	for i, chunk := range got {
		if len(chunk) > 5 {
			t.Errorf("chunk %d has %d bytes; max is 5", i, len(chunk))
		}
	}
}

func TestMatchChunkerCaptureGroup(t *testing.T) {
	re := regexp.MustCompile(`(https://[a-z0-9-]+\.example\.com)`)
	input := "starting up\nvisit https://blue-fox.example.com to connect\nready\n"

	got := drainChunker(t, MatchChunker(re), input)
	if len(got) != 1 || got[0] != "https://blue-fox.example.com" {
		t.Errorf("got %v; want the extracted URL only", got)
	}
}

func TestMatchChunkerWholeMatch(t *testing.T) {
	re := regexp.MustCompile(`ready`)
	got := drainChunker(t, MatchChunker(re), "booting\nserver ready now\n")
	if len(got) != 1 || got[0] != "ready" {
		t.Errorf("got %v; want [ready]", got)
	}
}
