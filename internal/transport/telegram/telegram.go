// Package telegram implements transport.Sender over the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"scioperibot/internal/transport"
	logx "scioperibot/pkg/logx"
)

const defaultTimeout = 15 * time.Second

type Config struct {
	Token string
	// APIURL overrides the Bot API base URL (default https://api.telegram.org).
	APIURL  string
	Timeout time.Duration
}

// Adapter is a send-only Telegram client: it never polls for updates.
type Adapter struct {
	bot *tele.Bot
	log logx.Logger
}

var _ transport.Sender = (*Adapter)(nil)

// New creates the client and verifies the token (getMe). Any error here is
// a startup failure.
func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		URL:    strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/"),
		Client: &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	a := &Adapter{bot: b, log: log.With(logx.String("comp", "telegram"))}
	if b.Me != nil {
		a.log.Debug("telegram bot ready", logx.String("username", b.Me.Username))
	}
	return a, nil
}

// recipient lets telebot address chats by id or @username.
type recipient string

func (r recipient) Recipient() string { return string(r) }

func (a *Adapter) SendText(ctx context.Context, to transport.ChatTarget, text string, opt *transport.SendOptions) (transport.MessageRef, error) {
	if opt == nil {
		opt = &transport.SendOptions{}
	}
	if strings.TrimSpace(to.Recipient) == "" {
		return transport.MessageRef{}, errors.New("telegram recipient is empty")
	}

	chunks := splitTelegramText(text, telegramTextLimit, opt.ParseMode)
	if len(chunks) == 0 {
		chunks = []string{""}
	}

	// Once the first chunk is out the message counts as delivered; a later
	// failure is logged so the caller records it and does not resend the head.
	var first transport.MessageRef
	for i, chunk := range chunks {
		var err error
		if ctx != nil {
			err = ctx.Err()
		}
		var msg *tele.Message
		if err == nil {
			msg, err = a.bot.Send(recipient(to.Recipient), chunk, &tele.SendOptions{
				ParseMode:             opt.ParseMode,
				DisableWebPagePreview: opt.DisablePreview,
				ThreadID:              to.ThreadID,
			})
		}
		if err != nil {
			if i == 0 {
				return first, err
			}
			a.log.Warn("telegram partial send, remaining chunks dropped",
				logx.String("recipient", to.Recipient),
				logx.Int("sent", i), logx.Int("chunks", len(chunks)), logx.Err(err))
			return first, nil
		}
		if i == 0 && msg != nil {
			first = transport.MessageRef{Recipient: to.Recipient, MessageID: msg.ID}
		}
	}
	return first, nil
}

const telegramTextLimit = 4000

// splitTelegramText splits long messages into chunks Telegram accepts.
// It prefers newline boundaries and avoids splitting inside an HTML tag when
// parseMode is HTML.
func splitTelegramText(s string, limit int, parseMode string) []string {
	if limit <= 0 {
		limit = telegramTextLimit
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return []string{s}
	}

	out := make([]string, 0, (len(rs)+limit-1)/limit)
	start := 0
	for start < len(rs) {
		end := min(start+limit, len(rs))

		if end < len(rs) {
			for i := end - 1; i > start; i-- {
				// Avoid tiny chunks.
				if rs[i] == '\n' && i-start >= limit/3 {
					end = i + 1
					break
				}
			}
		}

		if strings.EqualFold(parseMode, "HTML") && end < len(rs) {
			lastOpen, lastClose := -1, -1
			for i := start; i < end; i++ {
				switch rs[i] {
				case '<':
					lastOpen = i
				case '>':
					lastClose = i
				}
			}
			if lastOpen > lastClose && lastOpen > start+1 {
				end = lastOpen
			}
		}

		out = append(out, strings.TrimRight(string(rs[start:end]), "\n"))
		start = end
		for start < len(rs) && rs[start] == '\n' {
			start++
		}
	}
	return out
}
