package textutil

import "testing"

func TestStripMarkdown(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bold and italics", "This is **bold** and *italic* text.", "This is bold and italic text."},
		{"strikethrough", "was ~~wrong~~ right", "was wrong right"},
		{"header", "## Revenue\nIt grew.", "Revenue\nIt grew."},
		{"link keeps label", "see [the report](http://x/r.pdf) for details", "see the report for details"},
		{"blockquote", "> quoted line", "quoted line"},
		{"bullets", "- first\n- second", "first\nsecond"},
		{"ordered list", "1. first\n2. second", "first\nsecond"},
		{"plain passthrough", "no markup here", "no markup here"},
		{"trims whitespace", "  padded  ", "padded"},
	}
	for _, tc := range cases {
		if got := StripMarkdown(tc.in); got != tc.want {
			t.Errorf("%s: StripMarkdown(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}
