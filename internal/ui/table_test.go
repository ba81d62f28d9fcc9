package ui

import (
	"strings"
	"testing"
)

func withViewport(t *testing.T, width int) {
	t.Helper()
	original := tableViewportWidth
	tableViewportWidth = func() int { return width }
	t.Cleanup(func() { tableViewportWidth = original })
}

func TestTruncateTableCellCountsRunes(t *testing.T) {
	value := strings.Repeat("a", tableCellMaxWidth-1) + "é"

	got := TruncateTableCell(value)

	if got != value {
		t.Fatalf("expected value to remain untruncated, got %q", got)
	}
}

func TestTruncateTableCellAddsEllipsis(t *testing.T) {
	value := strings.Repeat("a", tableCellMaxWidth+10)

	got := TruncateTableCell(value)

	if displayWidth(got) != tableCellMaxWidth || !strings.HasSuffix(got, tableCellEllipsis) {
		t.Fatalf("expected %d wide value ending in ellipsis, got %q", tableCellMaxWidth, got)
	}
}

func TestTruncateTableCellNormalizesLineBreaks(t *testing.T) {
	value := "Hello\nWorld\r\nAgain\tTab"

	got := TruncateTableCell(value)

	if got != "Hello World Again Tab" {
		t.Fatalf("expected line breaks to normalize, got %q", got)
	}
}

func TestTruncateTableCellIgnoresANSICodes(t *testing.T) {
	value := "\x1b[1m\x1b[36m" + strings.Repeat("a", tableCellMaxWidth) + "\x1b[0m"

	got := TruncateTableCell(value)

	if got != value {
		t.Fatalf("expected value to remain untruncated, got %q", got)
	}
}

func TestFormatTableNormalizesLineBreaks(t *testing.T) {
	withViewport(t, 0)
	headers := []string{"COL"}
	rows := [][]string{{"Hello\nWorld\r\nAgain\tTab"}}

	got := FormatTable(headers, rows)

	expected := "COL                  \nHello World Again Tab\n"
	if got != expected {
		t.Fatalf("expected normalized table output, got %q", got)
	}
}

func TestFormatTableAlignsColumns(t *testing.T) {
	withViewport(t, 0)
	builder := NewTableBuilder([]string{"ID", "TITLE"}, 2)
	builder.AddRow("a1", "Write report")
	builder.AddRow("b22", "Read")

	got := builder.String()

	expected := "ID   TITLE       \na1   Write report\nb22  Read        \n"
	if got != expected {
		t.Fatalf("unexpected table:\n%q\nwant\n%q", got, expected)
	}
}

func TestFormatTableCutsToViewportWidth(t *testing.T) {
	withViewport(t, 10)

	headers := []string{"COL1", "COL2"}
	rows := [][]string{{"A", strings.Repeat("B", 30)}}

	got := FormatTable(headers, rows)

	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	for _, line := range lines {
		if width := displayWidth(line); width != 10 {
			t.Fatalf("expected table width 10, got %d in %q", width, line)
		}
	}
}
