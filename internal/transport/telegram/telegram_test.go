package telegram

import (
	"strings"
	"testing"

	logx "github.com/ZakisM/general-notifier/pkg/logx"
)

func TestSplitTextShort(t *testing.T) {
	t.Parallel()
	got := splitText("hello", 100)
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("got %#v", got)
	}
}

func TestSplitTextPrefersNewlines(t *testing.T) {
	t.Parallel()
	in := strings.Repeat("line one\n", 10) // 90 runes
	got := splitText(in, 50)

	if len(got) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(got))
	}
	for i, c := range got {
		if len([]rune(c)) > 50 {
			t.Fatalf("chunk %d exceeds limit: %q", i, c)
		}
		// Newline-preferred splits never cut a line in half.
		for _, line := range strings.Split(c, "\n") {
			if line != "line one" {
				t.Fatalf("chunk %d contains partial line %q", i, line)
			}
		}
	}
}

func TestSplitTextNoNewlines(t *testing.T) {
	t.Parallel()
	in := strings.Repeat("a", 120)
	got := splitText(in, 50)
	if len(got) != 3 {
		t.Fatalf("chunks = %d, want 3", len(got))
	}
	if strings.Join(got, "") != in {
		t.Fatal("chunks do not reassemble to the input")
	}
}

func TestNewRequiresToken(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{}, logx.Nop()); err == nil {
		t.Fatal("expected error for empty token")
	}
}
