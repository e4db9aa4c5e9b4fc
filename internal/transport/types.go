// Package transport defines the outbound messaging port used by the notifier.
package transport

import "context"

// ChatTarget addresses a chat. Recipient is a numeric chat id ("-100123")
// or a public username ("@channel").
type ChatTarget struct {
	Recipient string
	ThreadID  int // telegram forum topic thread id (0 if none)
}

type MessageRef struct {
	Recipient string
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Sender delivers text messages.
type Sender interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)

func (f SenderFunc) SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error) {
	return f(ctx, to, text, opt)
}
