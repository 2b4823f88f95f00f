// Package router dispatches ~-prefixed chat commands (add, list, delete) to
// the alert repository and replies to the issuing user by direct message.
package router

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/ZakisM/general-notifier/internal/alert"
	"github.com/ZakisM/general-notifier/internal/transport"
	logx "github.com/ZakisM/general-notifier/pkg/logx"
)

// Repository is the repository slice the command surface needs.
type Repository interface {
	List(ctx context.Context, userID int64) ([]alert.Alert, error)
	Count(ctx context.Context, userID int64) (int64, error)
	Insert(ctx context.Context, a alert.Alert) error
	Delete(ctx context.Context, userID, ordinal int64) error
}

// Sender is the outgoing half of the chat adapter.
type Sender interface {
	SendText(ctx context.Context, to transport.ChatTarget, text string, opt *transport.SendOptions) (transport.MessageRef, error)
}

type Config struct {
	// Prefix is the command prefix. Default "~".
	Prefix string

	// CommandTimeout bounds a single command including its replies.
	// Default 30s.
	CommandTimeout time.Duration
}

type Router struct {
	repo    Repository
	sender  Sender
	prefix  string
	timeout time.Duration
	log     logx.Logger
}

func New(cfg Config, repo Repository, sender Sender, log logx.Logger) *Router {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "~"
	}
	timeout := cfg.CommandTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Router{repo: repo, sender: sender, prefix: prefix, timeout: timeout, log: log}
}

// Run consumes updates until ctx is cancelled or the channel closes.
func (r *Router) Run(ctx context.Context, in <-chan transport.Update) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case up, ok := <-in:
			if !ok {
				return nil
			}
			if up.Message == nil {
				continue
			}
			r.handle(ctx, up.Message)
		}
	}
}

func (r *Router) handle(ctx context.Context, m *transport.Message) {
	text := strings.TrimSpace(m.Text)
	if !strings.HasPrefix(text, r.prefix) {
		return
	}
	tokens := tokenizeCommandLine(strings.TrimPrefix(text, r.prefix))
	if len(tokens) == 0 {
		return
	}
	name := strings.ToLower(tokens[0])
	args := tokens[1:]

	cmdCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var err error
	switch name {
	case "add":
		err = r.cmdAdd(cmdCtx, m.FromID, args)
	case "list":
		err = r.cmdList(cmdCtx, m.FromID)
	case "delete":
		err = r.cmdDelete(cmdCtx, m.FromID, args)
	default:
		err = fmt.Errorf("unknown command")
	}

	if err != nil {
		r.log.Error("command returned error",
			logx.String("command", name), logx.Int64("user_id", m.FromID), logx.Err(err))
		r.replyError(cmdCtx, m.FromID, name, err)
		return
	}
	r.log.Info("processed command",
		logx.String("command", name), logx.Int64("user_id", m.FromID))
}

// reply sends a plain DM to the user.
func (r *Router) reply(ctx context.Context, userID int64, text string) error {
	to := transport.ChatTarget{ChatID: userID}
	_, err := r.sender.SendText(ctx, to, text, &transport.SendOptions{DisablePreview: true})
	return err
}

// replyPre sends text inside a preformatted block, chunked so each message
// stays under the safe size.
func (r *Router) replyPre(ctx context.Context, userID int64, text string) error {
	to := transport.ChatTarget{ChatID: userID}
	opt := &transport.SendOptions{ParseMode: "HTML", DisablePreview: true}
	for _, chunk := range chunkText(text, replyChunkLimit) {
		wrapped := "<pre>" + html.EscapeString(chunk) + "</pre>"
		if _, err := r.sender.SendText(ctx, to, wrapped, opt); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) replyError(ctx context.Context, userID int64, name string, cmdErr error) {
	msg := fmt.Sprintf("Failed to run command %q due to error: %s", r.prefix+name, cmdErr)
	if err := r.replyPre(ctx, userID, msg); err != nil {
		r.log.Error("failed to send error to user",
			logx.Int64("user_id", userID), logx.Err(err))
	}
}
