package render

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
	}{
		{
			name:     "heading",
			input:    "# Status",
			contains: []string{"<h1", "Status"},
		},
		{
			name:     "code block",
			input:    "```\nexit 0\n```",
			contains: []string{"<pre>", "<code>", "exit 0"},
		},
		{
			name:     "list",
			input:    "- one\n- two",
			contains: []string{"<ul>", "<li>one</li>", "<li>two</li>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToHTML(tt.input)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("output %q missing %q", got, want)
				}
			}
		})
	}
}

func TestToHTMLStripsScripts(t *testing.T) {
	got := ToHTML(`hello <script>alert("x")</script> world`)
	if strings.Contains(got, "<script>") {
		t.Errorf("script tag survived sanitization: %q", got)
	}
	if !strings.Contains(got, "hello") {
		t.Errorf("benign content lost: %q", got)
	}
}

func TestToPlainHTML(t *testing.T) {
	got := ToPlainHTML("a < b\nnext")
	if !strings.Contains(got, "a &lt; b") {
		t.Errorf("angle bracket not escaped: %q", got)
	}
	if !strings.HasPrefix(got, "<pre>") || !strings.HasSuffix(got, "</pre>") {
		t.Errorf("missing pre wrapper: %q", got)
	}
}
