// Package pipeline runs one notification pass: fetch the feed, extract strike
// records, match them against the configured conditions and notify every
// match not already in history.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"scioperibot/internal/conditions"
	"scioperibot/internal/feed"
	"scioperibot/internal/history"
	"scioperibot/internal/i18n"
	"scioperibot/internal/metrics"
	"scioperibot/internal/notifier"
	"scioperibot/internal/strike"
	"scioperibot/internal/transport"
	logx "scioperibot/pkg/logx"
)

type Config struct {
	ConditionsFile   string
	TranslationsFile string
	Language         string
	Target           transport.ChatTarget
	RatePerSec       int
	DryRun           bool
}

// Summary counts what one run did.
type Summary struct {
	RunID    string
	Entries  int
	Matches  int
	Sent     int
	Skipped  int
	Failed   int
	Duration time.Duration
}

type Pipeline struct {
	cfg    Config
	source feed.Source
	store  history.Store
	sender transport.Sender
	rec    metrics.Recorder
	log    logx.Logger
}

func New(cfg Config, source feed.Source, store history.Store, sender transport.Sender, rec metrics.Recorder, log logx.Logger) *Pipeline {
	if log.IsZero() {
		log = logx.Nop()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Pipeline{cfg: cfg, source: source, store: store, sender: sender, rec: rec, log: log}
}

// Run executes one pass. It fails only when there is nothing to work with
// (conditions unreadable, feed unavailable); per-record send failures are
// counted in the summary and logged.
func (p *Pipeline) Run(ctx context.Context) (sum Summary, err error) {
	start := time.Now()
	sum.RunID = uuid.NewString()
	log := p.log.With(logx.String("run_id", sum.RunID))
	defer func() {
		sum.Duration = time.Since(start)
		p.rec.RunFinished(sum.Duration, err)
	}()

	conds, err := conditions.Load(p.cfg.ConditionsFile)
	if err != nil {
		log.Error("load conditions failed", logx.String("path", p.cfg.ConditionsFile), logx.Err(err))
		return sum, err
	}

	tr, terr := i18n.Load(p.cfg.TranslationsFile)
	if terr != nil {
		fields := []logx.Field{logx.String("path", p.cfg.TranslationsFile), logx.Err(terr)}
		if errors.Is(terr, os.ErrNotExist) {
			log.Debug("translations not found; using source language", fields...)
		} else {
			log.Warn("load translations failed; using source language", fields...)
		}
	}

	entries, err := p.source.Fetch(ctx)
	if err != nil {
		log.Error("fetch feed failed", logx.Err(err))
		return sum, fmt.Errorf("fetch feed: %w", err)
	}
	sum.Entries = len(entries)
	p.rec.FeedEntries(len(entries))

	records := strike.ExtractAll(feed.Titles(entries))
	matches := strike.MatchAll(conds, records)

	n := notifier.New(notifier.Config{
		Target:     p.cfg.Target,
		Language:   p.cfg.Language,
		RatePerSec: p.cfg.RatePerSec,
		DryRun:     p.cfg.DryRun,
	}, p.sender, p.store, tr, p.rec, log)

	for _, m := range matches {
		if len(m.Records) == 0 {
			continue
		}
		p.rec.Matched(m.Condition.Name, len(m.Records))
		sum.Matches += len(m.Records)
		log.Info("matches found", logx.String("condition", m.Condition.Name), logx.Int("count", len(m.Records)))

		for _, r := range m.Records {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			id := strike.ID(r)
			rlog := log.With(logx.String("strike_id", id), logx.String("condition", m.Condition.Name))

			seen, cerr := p.store.Contains(ctx, id)
			if cerr != nil {
				p.rec.HistoryError("contains")
				rlog.Warn("history lookup failed; treating as new", logx.Err(cerr))
			}
			if seen {
				sum.Skipped++
				p.rec.Skipped()
				rlog.Info("strike already sent, skipping")
				continue
			}

			if err := n.Notify(ctx, m.Condition, r, id); err != nil {
				sum.Failed++
				if ctx.Err() != nil {
					return sum, ctx.Err()
				}
				continue
			}
			sum.Sent++
		}
	}

	log.Info("run complete",
		logx.Int("entries", sum.Entries),
		logx.Int("matches", sum.Matches),
		logx.Int("sent", sum.Sent),
		logx.Int("skipped", sum.Skipped),
		logx.Int("failed", sum.Failed),
		logx.Duration("took", time.Since(start)),
	)
	return sum, nil
}
