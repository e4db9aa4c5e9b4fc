package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"scioperibot/internal/history"
	"scioperibot/internal/i18n"
	"scioperibot/internal/metrics"
	"scioperibot/internal/strike"
	"scioperibot/internal/transport"
	logx "scioperibot/pkg/logx"
	"scioperibot/pkg/tghtml"
)

// ErrDelivery wraps transport failures.
var ErrDelivery = errors.New("notification not delivered")

type Config struct {
	Target   transport.ChatTarget
	Language string
	// RatePerSec caps sends; 0 disables throttling.
	RatePerSec int
	// DryRun logs messages instead of sending. The record still goes to the
	// store, which the caller makes in-memory for dry runs.
	DryRun bool
}

type Notifier struct {
	cfg     Config
	sender  transport.Sender
	store   history.Store
	loc     func(string) string
	limiter *rate.Limiter
	rec     metrics.Recorder
	log     logx.Logger
	now     func() time.Time
}

func New(cfg Config, sender transport.Sender, store history.Store, tr i18n.Translator, rec metrics.Recorder, log logx.Logger) *Notifier {
	if log.IsZero() {
		log = logx.Nop()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerSec > 0 {
		lim = rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)
	}
	return &Notifier{
		cfg:     cfg,
		sender:  sender,
		store:   store,
		loc:     i18n.Bind(tr, cfg.Language),
		limiter: lim,
		rec:     rec,
		log:     log.With(logx.String("comp", "notifier")),
		now:     time.Now,
	}
}

// Notify renders and delivers one record whose identity is id, then records
// it in history. The caller has already checked that id is not in history.
//
// Only delivery failures are returned (wrapping ErrDelivery).
func (n *Notifier) Notify(ctx context.Context, cond strike.Condition, r strike.Record, id string) error {
	text := Render(cond, r, n.loc)
	log := n.log.With(logx.String("strike_id", id), logx.String("condition", cond.Name))

	if n.cfg.DryRun {
		log.Info("dry run: message not sent", logx.String("text", text))
	} else if err := n.deliver(ctx, log, text); err != nil {
		return err
	}

	entry := history.Entry{
		StrikeID: id,
		Date:     r.Date.String(),
		Sector:   r.Sector.String(),
		Region:   r.Region.String(),
		Province: r.Province.String(),
		SentAt:   n.now(),
	}
	if err := n.store.Append(ctx, entry); err != nil {
		n.rec.HistoryError("append")
		log.Warn("history save failed; strike may be notified again", logx.Err(err))
	}
	return nil
}

func (n *Notifier) deliver(ctx context.Context, log logx.Logger, text string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	ref, err := n.sender.SendText(ctx, n.cfg.Target, text, &transport.SendOptions{
		ParseMode:      tghtml.ParseMode,
		DisablePreview: true,
	})
	if err != nil {
		n.rec.SendFailed()
		log.Error("telegram send failed; will retry next run", logx.Err(err))
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	n.rec.Sent()
	log.Info("message sent", logx.Int("message_id", ref.MessageID))
	return nil
}
