// Package watch runs the polling worker: load all alerts, group them by URL,
// fetch each URL once, evaluate every pattern in the group, push
// notifications onto the bounded channel and retire fired alerts.
package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/ZakisM/general-notifier/internal/alert"
	"github.com/ZakisM/general-notifier/internal/match"
	logx "github.com/ZakisM/general-notifier/pkg/logx"
)

// Store is the repository slice the worker needs.
type Store interface {
	All(ctx context.Context) ([]alert.Alert, error)
	DeleteByID(ctx context.Context, userID int64, alertID string) error
}

// Fetcher returns the rendered text body of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, target string) (string, error)
}

type Config struct {
	// Schedule is a ParseSchedule string. Empty means every 5 minutes.
	Schedule string
}

// Worker runs strictly serial polling cycles. A cycle never overlaps the
// next: the sleep starts only after all groups were processed, which bounds
// concurrent renderer load.
type Worker struct {
	store Store
	fetch Fetcher
	out   chan<- alert.ResponseMessage
	sched Schedule
	log   logx.Logger
}

func New(cfg Config, store Store, fetch Fetcher, out chan<- alert.ResponseMessage, log logx.Logger) (*Worker, error) {
	sched, err := ParseSchedule(cfg.Schedule)
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Worker{store: store, fetch: fetch, out: out, sched: sched, log: log}, nil
}

// Run loops until ctx is cancelled. The first cycle starts immediately.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("polling worker started", logx.String("schedule", w.sched.String()))
	for {
		w.runCycle(ctx)

		next := w.sched.Next(time.Now())
		tmr := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			if !tmr.Stop() {
				<-tmr.C
			}
			return ctx.Err()
		case <-tmr.C:
		}
	}
}

// runCycle performs one full pass. Failure to load the alert set skips the
// whole cycle; a failing group is logged and the remaining groups proceed.
func (w *Worker) runCycle(ctx context.Context) {
	alerts, err := w.store.All(ctx)
	if err != nil {
		w.log.Error("failed to read all alerts", logx.Err(err))
		return
	}
	if len(alerts) == 0 {
		return
	}

	start := time.Now()
	groups := groupByURL(alerts)
	for url, group := range groups {
		if ctx.Err() != nil {
			return
		}
		if err := w.checkGroup(ctx, url, group); err != nil {
			w.log.Error("failed to check alert group", logx.String("url", url), logx.Err(err))
		}
	}
	w.log.Debug("polling cycle finished",
		logx.Int("alerts", len(alerts)),
		logx.Int("urls", len(groups)),
		logx.Duration("dur", time.Since(start)))
}

// groupByURL amortizes fetches: one HTTP request per distinct URL per cycle
// regardless of how many users subscribe to it.
func groupByURL(alerts []alert.Alert) map[string][]alert.Alert {
	groups := make(map[string][]alert.Alert)
	for _, a := range alerts {
		groups[a.URL] = append(groups[a.URL], a)
	}
	return groups
}

func (w *Worker) checkGroup(ctx context.Context, url string, group []alert.Alert) error {
	body, err := w.fetch.Fetch(ctx, url)
	if err != nil {
		return err
	}
	w.log.Info("sent request", logx.String("url", url))

	// Alerts in a group are independent: one failing must not mask another.
	for _, a := range group {
		re, err := match.Compile(a.MatchingText)
		if err != nil {
			// Registration validates patterns, so this is a logic error.
			w.log.Error("stored pattern does not compile, skipping alert",
				logx.String("alert_id", a.ID), logx.Err(err))
			continue
		}
		if !match.Notify(re, body, a.Invert) {
			continue
		}

		msg := alert.ResponseMessage{
			UserID: a.UserID,
			Text:   fmt.Sprintf("Found matching text: [%s] at URL: %s", a.MatchingText, a.URL),
		}
		if err := w.send(ctx, msg); err != nil {
			// Not enqueued, so the alert is retained for the next cycle.
			w.log.Error("failed to enqueue notification",
				logx.String("alert_id", a.ID), logx.Err(err))
			continue
		}

		// Delete strictly after a successful enqueue. A crash in between
		// repeats the notification next cycle (at-least-once delivery).
		if err := w.store.DeleteByID(ctx, a.UserID, a.ID); err != nil {
			w.log.Error("failed to retire fired alert",
				logx.String("alert_id", a.ID), logx.Err(err))
		}
	}
	return nil
}

// send blocks when the channel is full; that backpressure slows the polling
// loop down while the chat side is stalled. No message is silently dropped.
func (w *Worker) send(ctx context.Context, msg alert.ResponseMessage) error {
	select {
	case w.out <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
