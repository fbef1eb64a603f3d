package styles

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer title", 8, "a longe…"},
		{"anything", 0, ""},
		{"日本語のタイトル", 7, "日本語…"},
	}
	for _, tt := range tests {
		got := Truncate(tt.in, tt.width)
		if got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
		if runewidth.StringWidth(got) > tt.width {
			t.Errorf("Truncate(%q, %d) is %d cells wide", tt.in, tt.width, runewidth.StringWidth(got))
		}
	}
}

func TestPadLeft(t *testing.T) {
	if got := PadLeft("3:05", 6); got != "  3:05" {
		t.Errorf("PadLeft() = %q", got)
	}
	if Width("日本") != 4 {
		t.Errorf("Width(日本) = %d, want 4", Width("日本"))
	}
}

func TestProgressBar(t *testing.T) {
	for _, percent := range []float64{-10, 0, 50, 100, 250} {
		bar := ProgressBar(percent, 10)
		cells := strings.Count(bar, "━") + strings.Count(bar, "─")
		if cells != 10 {
			t.Errorf("ProgressBar(%v, 10) has %d cells", percent, cells)
		}
	}
	if got := strings.Count(ProgressBar(50, 10), "━"); got != 5 {
		t.Errorf("ProgressBar(50, 10) filled %d cells, want 5", got)
	}
	if ProgressBar(50, 0) != "" {
		t.Error("zero width bar should be empty")
	}
}
