package alert

import (
	"strings"
	"testing"
)

func TestNewValidates(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		url     string
		text    string
		wantErr string
	}{
		{name: "ok", url: "https://example.com/news", text: "breaking"},
		{name: "relative url", url: "/news", text: "breaking", wantErr: "valid URL"},
		{name: "no host", url: "https://", text: "breaking", wantErr: "valid URL"},
		{name: "not a url", url: "::::", text: "breaking", wantErr: "valid URL"},
		{name: "empty pattern", url: "https://example.com", text: "", wantErr: "missing matching text"},
		{name: "bad regex", url: "https://example.com", text: "(unclosed", wantErr: "invalid matching text"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.url, tt.text, false, 42, 1)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("New error: %v", err)
				}
				if a.ID == "" || a.Ordinal != 1 || a.UserID != 42 {
					t.Fatalf("unexpected alert: %+v", a)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDeriveIDStable(t *testing.T) {
	t.Parallel()
	a := DeriveID("https://example.com", "foo", false, 7)
	b := DeriveID("https://example.com", "foo", false, 7)
	if a != b {
		t.Fatalf("same inputs produced different ids: %s vs %s", a, b)
	}
	if a != strings.ToLower(a) {
		t.Fatalf("id not lower-case hex: %s", a)
	}
}

func TestDeriveIDDistinguishesFields(t *testing.T) {
	t.Parallel()
	base := DeriveID("https://example.com", "foo", false, 7)
	variants := []string{
		DeriveID("https://example.org", "foo", false, 7),
		DeriveID("https://example.com", "bar", false, 7),
		DeriveID("https://example.com", "foo", true, 7),
		DeriveID("https://example.com", "foo", false, 8),
	}
	for i, v := range variants {
		if v == base {
			t.Fatalf("variant %d collides with base id %s", i, base)
		}
	}
}

func TestDeriveIDNegativeUserID(t *testing.T) {
	t.Parallel()
	// Negative ids must round-trip through the bit reinterpretation without
	// colliding with their positive counterparts.
	if DeriveID("https://example.com", "foo", false, -1) == DeriveID("https://example.com", "foo", false, 1) {
		t.Fatal("negative and positive user ids collide")
	}
}

func TestNewOrdinalsIndependentOfID(t *testing.T) {
	t.Parallel()
	a1, err := New("https://example.com", "foo", false, 7, 1)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	a2, err := New("https://example.com", "foo", false, 7, 5)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if a1.ID != a2.ID {
		t.Fatal("ordinal leaked into the derived id")
	}
}
