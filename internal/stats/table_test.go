package stats

import "testing"

func TestFormatTableAlignsCyrillicColumns(t *testing.T) {
	headers := []string{"Feature", "Entries"}
	rows := [][]string{
		{"муж.р.", "12"},
		{"мн.ч.", "3"},
	}
	lines := formatTable(headers, rows, map[int]bool{1: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Feature Entries" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "муж.р.       12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "мн.ч.         3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}
