package app

import (
	"context"
	"errors"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"scioperibot/internal/config"
	"scioperibot/internal/metrics"
	"scioperibot/internal/runtime/supervisor"
	"scioperibot/internal/scheduler"
	logx "scioperibot/pkg/logx"
)

const shutdownTimeout = 10 * time.Second

// RunDaemon runs the pipeline on the configured schedule until ctx is done.
// Config file changes apply from the next run; schedule and log level changes
// apply immediately. The metrics address is read once at startup.
func (a *App) RunDaemon(ctx context.Context) error {
	cfg := a.cfgm.Get()
	if _, err := a.senderFor(cfg); err != nil {
		a.log.Error("telegram init failed", logx.Err(err))
		return err
	}

	sup := supervisor.New(ctx,
		supervisor.WithLogger(a.log.With(logx.String("comp", "supervisor"))),
		supervisor.WithCancelOnError(true),
	)

	sched, err := scheduler.New(mapSchedulerConfig(cfg), func(ctx context.Context) error {
		_, err := a.run(ctx, a.cfgm.Get())
		return err
	}, a.log)
	if err != nil {
		return err
	}

	a.cfgm.SetValidator(validateReload(a.opts.DryRun))
	updates := a.cfgm.Subscribe()
	sup.GoRestart("config.watch", a.cfgm.Watch, time.Second, 30*time.Second)
	sup.Go("config.apply", func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case next := <-updates:
				a.apply(sched, next)
			}
		}
	})
	if addr := cfg.Metrics.Addr; addr != "" {
		sup.Go("metrics", func(ctx context.Context) error {
			return metrics.Serve(ctx, addr, a.reg, a.log.With(logx.String("comp", "metrics")))
		})
	}

	sched.Start(sup.Context())
	a.notify(daemon.SdNotifyReady)
	a.log.Info("daemon started", logx.String("schedule", sched.Spec().String()), logx.Bool("dry_run", a.opts.DryRun))

	<-sup.Context().Done()
	a.notify(daemon.SdNotifyStopping)
	a.log.Info("daemon stopping")

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	sched.Stop(stopCtx)
	err = sup.Stop(stopCtx)
	if errors.Is(err, context.DeadlineExceeded) {
		a.log.Warn("shutdown timed out")
		return nil
	}
	return err
}

func (a *App) apply(sched *scheduler.Scheduler, cfg *config.Config) {
	if cfg == nil {
		return
	}
	a.logs.Apply(mapLogConfig(cfg))
	if err := sched.Apply(mapSchedulerConfig(cfg)); err != nil {
		a.log.Warn("schedule change rejected", logx.String("schedule", cfg.Schedule), logx.Err(err))
	}
}

// notify reports state to systemd when running under a unit with NOTIFY_SOCKET.
func (a *App) notify(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		a.log.Warn("sd_notify failed", logx.String("state", state), logx.Err(err))
		return
	}
	if sent {
		a.log.Debug("sd_notify sent", logx.String("state", state))
	}
}
