package transport

import "context"

// Update is a platform-neutral incoming event. Only plain text messages are
// carried; the command router ignores everything else.
type Update struct {
	Message *Message
}

type Message struct {
	ID     int
	ChatID int64
	FromID int64
	Text   string
}

// ChatTarget addresses an outgoing message. For direct messages the chat id
// equals the platform user id.
type ChatTarget struct {
	ChatID int64
}

type MessageRef struct {
	ChatID    int64
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Adapter is the chat platform boundary. Implementations must be safe for
// concurrent SendText calls.
type Adapter interface {
	Start(ctx context.Context, out chan<- Update) error
	Stop(ctx context.Context) error

	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}
