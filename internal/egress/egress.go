// Package egress drains the notification channel and delivers each message
// to the user's direct-message chat.
package egress

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/ZakisM/general-notifier/internal/alert"
	"github.com/ZakisM/general-notifier/internal/transport"
	logx "github.com/ZakisM/general-notifier/pkg/logx"
)

// Sender is the outgoing half of the chat adapter.
type Sender interface {
	SendText(ctx context.Context, to transport.ChatTarget, text string, opt *transport.SendOptions) (transport.MessageRef, error)
}

type Config struct {
	// RatePerSec caps DM deliveries so a burst of firing alerts cannot trip
	// chat-platform flood control. Default 3.
	RatePerSec int
}

// Egress is the single consumer of the notification channel. Delivery
// failures are logged and the message is not re-queued (bounded effort).
type Egress struct {
	sender  Sender
	in      <-chan alert.ResponseMessage
	limiter *rate.Limiter
	log     logx.Logger
}

func New(cfg Config, sender Sender, in <-chan alert.ResponseMessage, log logx.Logger) *Egress {
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 3
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Egress{
		sender:  sender,
		in:      in,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		log:     log,
	}
}

// Run receives until ctx is cancelled or the channel closes.
func (e *Egress) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-e.in:
			if !ok {
				return nil
			}
			e.deliver(ctx, msg)
		}
	}
}

func (e *Egress) deliver(ctx context.Context, msg alert.ResponseMessage) {
	if err := e.limiter.Wait(ctx); err != nil {
		// Happens at shutdown; the alert was already retired, so record
		// the dropped message.
		e.log.Debug("notification dropped before delivery",
			logx.Int64("user_id", msg.UserID), logx.Err(err))
		return
	}

	// For direct messages the chat id is the user id.
	to := transport.ChatTarget{ChatID: msg.UserID}

	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := e.sender.SendText(sendCtx, to, msg.Text, &transport.SendOptions{DisablePreview: true}); err != nil {
		e.log.Warn("failed to deliver notification",
			logx.Int64("user_id", msg.UserID), logx.Err(err))
		return
	}
	e.log.Debug("notification delivered", logx.Int64("user_id", msg.UserID))
}
