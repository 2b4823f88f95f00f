package egress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ZakisM/general-notifier/internal/alert"
	"github.com/ZakisM/general-notifier/internal/transport"
	logx "github.com/ZakisM/general-notifier/pkg/logx"
)

type captureSender struct {
	mu   sync.Mutex
	sent []transport.ChatTarget
	err  error
}

func (c *captureSender) SendText(ctx context.Context, to transport.ChatTarget, text string, opt *transport.SendOptions) (transport.MessageRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return transport.MessageRef{}, c.err
	}
	c.sent = append(c.sent, to)
	return transport.MessageRef{ChatID: to.ChatID}, nil
}

func (c *captureSender) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func TestRunDeliversToUserChat(t *testing.T) {
	t.Parallel()
	sender := &captureSender{}
	in := make(chan alert.ResponseMessage, 2)
	e := New(Config{RatePerSec: 100}, sender, in, logx.Nop())

	in <- alert.ResponseMessage{UserID: 42, Text: "hit"}
	in <- alert.ResponseMessage{UserID: 43, Text: "hit"}
	close(in)

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.sent) != 2 {
		t.Fatalf("delivered %d, want 2", len(sender.sent))
	}
	if sender.sent[0].ChatID != 42 || sender.sent[1].ChatID != 43 {
		t.Fatalf("targets = %+v", sender.sent)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()
	in := make(chan alert.ResponseMessage)
	e := New(Config{}, &captureSender{}, in, logx.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestDeliverDropsOnCancelledContext(t *testing.T) {
	t.Parallel()
	sender := &captureSender{}
	in := make(chan alert.ResponseMessage)
	e := New(Config{}, sender, in, logx.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e.deliver(ctx, alert.ResponseMessage{UserID: 1, Text: "late"})
	if sender.count() != 0 {
		t.Fatalf("sent = %d, want 0", sender.count())
	}
}

func TestRunContinuesAfterSendFailure(t *testing.T) {
	t.Parallel()
	sender := &captureSender{err: errors.New("forbidden")}
	in := make(chan alert.ResponseMessage, 2)
	e := New(Config{RatePerSec: 100}, sender, in, logx.Nop())

	in <- alert.ResponseMessage{UserID: 1, Text: "a"}
	in <- alert.ResponseMessage{UserID: 2, Text: "b"}
	close(in)

	// Failures are logged, not fatal, and never re-queued.
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if sender.count() != 0 {
		t.Fatalf("sent = %d, want 0", sender.count())
	}
}
