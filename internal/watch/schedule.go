package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule decides when the next polling cycle starts. Two forms are
// supported:
//   - Interval duration: "5m", "2h30m" ("interval:"/"every:" prefixes accepted)
//   - Cron (crontab.guru-style): "*/5 * * * *", "@hourly" ("cron:" prefix accepted)
//
// Cycles never overlap either way: the worker computes the next activation
// only after the previous cycle finished.
type Schedule struct {
	every time.Duration
	cron  cron.Schedule
	raw   string
}

// ParseSchedule parses a schedule string. Empty input defaults to 5 minutes.
func ParseSchedule(raw string) (Schedule, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Schedule{every: 5 * time.Minute, raw: "5m"}, nil
	}

	low := strings.ToLower(s)
	switch {
	case strings.HasPrefix(low, "cron:"):
		expr := strings.TrimSpace(s[len("cron:"):])
		return parseCron(expr)
	case strings.HasPrefix(low, "interval:"):
		return parseEvery(strings.TrimSpace(s[len("interval:"):]))
	case strings.HasPrefix(low, "every:"):
		return parseEvery(strings.TrimSpace(s[len("every:"):]))
	}

	// Heuristic: whitespace or a leading '@' means cron.
	if strings.ContainsAny(s, " \t") || strings.HasPrefix(s, "@") {
		return parseCron(s)
	}
	return parseEvery(s)
}

func parseCron(expr string) (Schedule, error) {
	if expr == "" {
		return Schedule{}, fmt.Errorf("cron schedule required")
	}
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}
	return Schedule{cron: sched, raw: expr}, nil
}

func parseEvery(v string) (Schedule, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid interval %q: %w", v, err)
	}
	if d < time.Second {
		return Schedule{}, fmt.Errorf("interval %q too short", v)
	}
	return Schedule{every: d, raw: v}, nil
}

// Next returns the next activation strictly after t.
func (s Schedule) Next(t time.Time) time.Time {
	if s.cron != nil {
		return s.cron.Next(t)
	}
	return t.Add(s.every)
}

func (s Schedule) String() string { return s.raw }
