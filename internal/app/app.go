// Package app wires configuration into the pipeline and runs it once or on a
// schedule.
package app

import (
	"context"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"scioperibot/internal/config"
	"scioperibot/internal/feed"
	"scioperibot/internal/history"
	"scioperibot/internal/metrics"
	"scioperibot/internal/pipeline"
	"scioperibot/internal/transport"
	"scioperibot/internal/transport/telegram"
	logx "scioperibot/pkg/logx"
)

// SenderFactory builds the outbound transport for a Telegram config.
type SenderFactory func(cfg telegram.Config, log logx.Logger) (transport.Sender, error)

type Options struct {
	ConfigPath string
	// DryRun renders messages without sending; history is kept in memory.
	DryRun bool
	// Lookup reads environment variables (default os.LookupEnv).
	Lookup config.LookupFunc
	// NewSender defaults to the telebot adapter.
	NewSender SenderFactory
}

type App struct {
	opts Options
	cfgm *config.Manager
	logs *logx.Service
	log  logx.Logger

	reg *prometheus.Registry
	rec metrics.Recorder

	mu        sync.Mutex
	sender    transport.Sender
	senderKey string
}

// New loads and validates the config and sets up logging. Missing Telegram
// credentials are a startup error unless DryRun is set.
func New(opts Options) (*App, error) {
	if opts.NewSender == nil {
		opts.NewSender = func(cfg telegram.Config, log logx.Logger) (transport.Sender, error) {
			ad, err := telegram.New(cfg, log)
			if err != nil {
				return nil, err
			}
			return ad, nil
		}
	}
	cfgm := config.NewManager(opts.ConfigPath, opts.Lookup)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(!opts.DryRun); err != nil {
		return nil, err
	}
	if _, err := mapHistoryConfig(cfg); err != nil {
		return nil, err
	}

	logSvc, log := logx.NewService(mapLogConfig(cfg))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &App{
		opts: opts,
		cfgm: cfgm,
		logs: logSvc,
		log:  log.With(logx.String("comp", "app")),
		reg:  reg,
		rec:  metrics.NewCollector(reg),
	}, nil
}

// Config returns the active config.
func (a *App) Config() *config.Config { return a.cfgm.Get() }

func (a *App) Close() error {
	if a.logs != nil {
		return a.logs.Close()
	}
	return nil
}

// RunOnce executes a single pipeline pass with the loaded config.
func (a *App) RunOnce(ctx context.Context) (pipeline.Summary, error) {
	cfg := a.cfgm.Get()
	if _, err := a.senderFor(cfg); err != nil {
		a.log.Error("telegram init failed", logx.Err(err))
		return pipeline.Summary{}, err
	}
	return a.run(ctx, cfg)
}

func (a *App) run(ctx context.Context, cfg *config.Config) (pipeline.Summary, error) {
	fc, err := mapFeedConfig(cfg)
	if err != nil {
		return pipeline.Summary{}, err
	}
	hc, err := mapHistoryConfig(cfg)
	if err != nil {
		return pipeline.Summary{}, err
	}
	if a.opts.DryRun {
		hc.Driver = "memory"
	}
	sender, err := a.senderFor(cfg)
	if err != nil {
		return pipeline.Summary{}, err
	}

	store, err := history.Open(hc, a.log.With(logx.String("comp", "history")))
	if err != nil {
		// An unreadable history counts as "nothing sent yet".
		a.log.Warn("history open failed, continuing with empty history",
			logx.String("driver", hc.Driver), logx.String("path", hc.Path), logx.Err(err))
		a.rec.HistoryError("open")
		store = history.NewMemory(hc.Policy())
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.log.Warn("history close failed", logx.Err(err))
		}
	}()

	p := pipeline.New(
		mapPipelineConfig(cfg, a.opts.DryRun),
		feed.NewHTTPSource(fc, a.log),
		store,
		sender,
		a.rec,
		a.log.With(logx.String("comp", "pipeline")),
	)
	return p.Run(ctx)
}

// senderFor returns the cached transport, rebuilding it when the token or
// API URL changed.
func (a *App) senderFor(cfg *config.Config) (transport.Sender, error) {
	if a.opts.DryRun {
		return dryRunSender, nil
	}
	tc, err := mapTelegramConfig(cfg)
	if err != nil {
		return nil, err
	}
	key := tc.Token + "|" + strings.TrimSpace(tc.APIURL)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sender != nil && a.senderKey == key {
		return a.sender, nil
	}
	s, err := a.opts.NewSender(tc, a.log)
	if err != nil {
		return nil, err
	}
	a.sender, a.senderKey = s, key
	return s, nil
}

// dryRunSender is never reached in dry-run mode; the notifier logs instead.
var dryRunSender = transport.SenderFunc(func(_ context.Context, to transport.ChatTarget, _ string, _ *transport.SendOptions) (transport.MessageRef, error) {
	return transport.MessageRef{Recipient: to.Recipient}, nil
})
