package ui

import "testing"

func TestPrefixLength(t *testing.T) {
	tests := []struct {
		name   string
		length map[string]int
		id     string
		want   int
	}{
		{
			name:   "case insensitive lookup",
			length: map[string]int{"abc123": 4},
			id:     "ABC123",
			want:   4,
		},
		{
			name:   "missing id",
			length: map[string]int{"abc123": 4},
			id:     "",
			want:   0,
		},
		{
			name:   "nil map",
			length: nil,
			id:     "ABC123",
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrefixLength(tt.length, tt.id); got != tt.want {
				t.Fatalf("PrefixLength() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPrefixLengthsUsesShortestUniquePrefix(t *testing.T) {
	lengths := PrefixLengths([]string{"abcd1234", "abce5678", "zzzz0000"})

	if got := PrefixLength(lengths, "abcd1234"); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	if got := PrefixLength(lengths, "zzzz0000"); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestHighlightIDWithoutColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	if got := HighlightID("abcd1234", 4); got != "abcd1234" {
		t.Fatalf("expected plain id, got %q", got)
	}
}
