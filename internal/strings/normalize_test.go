package strings

import "testing"

func TestNormalizeWhitespace(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only",
			input: " \n\t ",
			want:  "",
		},
		{
			name:  "single token",
			input: "report",
			want:  "report",
		},
		{
			name:  "collapses spaces",
			input: "write   the    report",
			want:  "write the report",
		},
		{
			name:  "collapses newlines",
			input: "write\n\n the\treport",
			want:  "write the report",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeWhitespace(tc.input)
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNormalizeLowerTrimSpace(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "  Thesis ", want: "thesis"},
		{input: "#FF00AA", want: "#ff00aa"},
	}

	for _, tc := range cases {
		if got := NormalizeLowerTrimSpace(tc.input); got != tc.want {
			t.Errorf("NormalizeLowerTrimSpace(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank(" \n\t") {
		t.Error("expected whitespace to be blank")
	}
	if IsBlank(" x ") {
		t.Error("expected text not to be blank")
	}
}

func TestNormalizeNewlines(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "lf untouched", input: "a\nb", want: "a\nb"},
		{name: "crlf", input: "a\r\nb\r\n", want: "a\nb\n"},
		{name: "bare cr", input: "a\rb", want: "a\nb"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeNewlines(tc.input); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestTrimTrailingNewlines(t *testing.T) {
	if got := TrimTrailingNewlines("notes\r\n\n"); got != "notes" {
		t.Fatalf("expected trailing newlines removed, got %q", got)
	}
	if got := TrimTrailingNewlines("\nnotes"); got != "\nnotes" {
		t.Fatalf("expected leading newline kept, got %q", got)
	}
}

func TestIndentBlock(t *testing.T) {
	if got := IndentBlock("a\nb", 2); got != "  a\n  b" {
		t.Fatalf("unexpected indent: %q", got)
	}
	if got := IndentBlock("a", 0); got != "a" {
		t.Fatalf("expected no indent, got %q", got)
	}
}
