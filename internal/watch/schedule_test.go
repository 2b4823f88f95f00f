package watch

import (
	"testing"
	"time"
)

func TestParseScheduleVariants(t *testing.T) {
	t.Parallel()
	// Cron expressions are evaluated in the local timezone, so anchor the
	// base time there.
	base := time.Date(2024, 6, 1, 12, 0, 30, 0, time.Local)

	tests := []struct {
		name string
		raw  string
		next time.Time
	}{
		{name: "default", raw: "", next: base.Add(5 * time.Minute)},
		{name: "duration", raw: "10m", next: base.Add(10 * time.Minute)},
		{name: "prefixed interval", raw: "interval:45s", next: base.Add(45 * time.Second)},
		{name: "every prefix", raw: "every:1h", next: base.Add(time.Hour)},
		{name: "cron", raw: "*/5 * * * *", next: time.Date(2024, 6, 1, 12, 5, 0, 0, time.Local)},
		{name: "prefixed cron", raw: "cron:0 9 * * *", next: time.Date(2024, 6, 2, 9, 0, 0, 0, time.Local)},
		{name: "descriptor", raw: "@hourly", next: time.Date(2024, 6, 1, 13, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseSchedule(tt.raw)
			if err != nil {
				t.Fatalf("ParseSchedule(%q) error: %v", tt.raw, err)
			}
			if got := s.Next(base); !got.Equal(tt.next) {
				t.Fatalf("Next = %v, want %v", got, tt.next)
			}
		})
	}
}

func TestParseScheduleInvalid(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"soon", "cron:", "interval:0s", "500ms", "* * *"} {
		if _, err := ParseSchedule(raw); err == nil {
			t.Fatalf("ParseSchedule(%q): expected error", raw)
		}
	}
}
