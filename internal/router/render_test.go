package router

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ZakisM/general-notifier/internal/alert"
)

func TestRenderAlertsTable(t *testing.T) {
	t.Parallel()
	alerts := []alert.Alert{
		{Ordinal: 1, URL: "https://example.com/a", MatchingText: "restock"},
		{Ordinal: 2, URL: "https://example.com/b", MatchingText: "sale"},
	}

	got := renderAlerts(alerts)
	lines := strings.Split(got, "\n")
	if lines[0] != "# | URL | Matching Text" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "1. | https://example.com/a | restock" {
		t.Fatalf("row 1 = %q", lines[1])
	}
	if lines[2] != "2. | https://example.com/b | sale" {
		t.Fatalf("row 2 = %q", lines[2])
	}
}

func TestRenderAlertsWrapsLongColumns(t *testing.T) {
	t.Parallel()
	longURL := "https://example.com/" + strings.Repeat("x", 150)
	got := renderAlerts([]alert.Alert{{Ordinal: 1, URL: longURL, MatchingText: "p"}})

	lines := strings.Split(got, "\n")
	// header + 2 wrapped rows
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3: %q", len(lines), got)
	}
	if !strings.HasPrefix(lines[1], "1. | ") {
		t.Fatalf("first row missing ordinal: %q", lines[1])
	}
	// Continuation row carries no ordinal.
	if !strings.HasPrefix(lines[2], " | ") {
		t.Fatalf("continuation row = %q", lines[2])
	}
	joined := strings.Split(lines[1], " | ")[1] + strings.Split(lines[2], " | ")[1]
	if joined != longURL {
		t.Fatalf("wrapped URL does not reassemble: %q", joined)
	}
}

func TestChunkText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		in     string
		limit  int
		chunks int
	}{
		{name: "short", in: "hello", limit: 1900, chunks: 1},
		{name: "exact", in: strings.Repeat("a", 1900), limit: 1900, chunks: 1},
		{name: "over", in: strings.Repeat("a", 1901), limit: 1900, chunks: 2},
		{name: "multiple", in: strings.Repeat("a", 4000), limit: 1900, chunks: 3},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := chunkText(tt.in, tt.limit)
			if len(got) != tt.chunks {
				t.Fatalf("chunks = %d, want %d", len(got), tt.chunks)
			}
			if strings.Join(got, "") != tt.in {
				t.Fatal("chunks do not reassemble to the input")
			}
			for i, c := range got {
				if n := len([]rune(c)); n > tt.limit {
					t.Fatalf("chunk %d has %d runes", i, n)
				}
			}
		})
	}
}

func TestChunkTextRuneSafe(t *testing.T) {
	t.Parallel()
	in := strings.Repeat("é", 10)
	got := chunkText(in, 3)
	if strings.Join(got, "") != in {
		t.Fatal("chunks do not reassemble to the input")
	}
	for i, c := range got {
		if !utf8.ValidString(c) {
			t.Fatalf("chunk %d split a rune: %q", i, c)
		}
	}
}
