package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	logx "scioperibot/pkg/logx"
)

type Config struct {
	Schedule string
	Timezone string
	// RunOnStart triggers one run as soon as Start is called.
	RunOnStart bool
}

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

type Scheduler struct {
	mu     sync.Mutex
	cfg    Config
	spec   ParsedSpec
	loc    *time.Location
	parser cron.Parser
	c      *cron.Cron
	entry  cron.EntryID
	ctx    context.Context

	job     Job
	wrapped cron.Job
	log     logx.Logger
}

// New validates cfg and returns a stopped scheduler.
func New(cfg Config, job Job, log logx.Logger) (*Scheduler, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Scheduler{
		cfg: cfg,
		job: job,
		log: log.With(logx.String("comp", "scheduler")),
		// SecondOptional allows both 5-field and 6-field (with seconds) cron specs.
		parser: cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
	cl := cronLogger{log: s.log}
	// One wrapped job for the scheduler's lifetime: the skip guard must
	// survive reschedules.
	s.wrapped = cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(s.run))

	spec, err := ParseSchedule(cfg.Schedule)
	if err != nil {
		return nil, err
	}
	if _, err := s.schedule(spec); err != nil {
		return nil, err
	}
	s.spec = spec
	return s, nil
}

// Spec returns the active schedule.
func (s *Scheduler) Spec() ParsedSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spec
}

// Start begins triggering. ctx is passed to every run and stops the triggers
// when done.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.c != nil {
		s.mu.Unlock()
		return
	}
	s.ctx = ctx
	s.startLocked()
	runNow := s.cfg.RunOnStart
	s.mu.Unlock()

	if runNow {
		go s.wrapped.Run()
	}
	go func() {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Stop(stopCtx)
	}()
}

// Apply swaps in a new schedule or timezone. An invalid schedule is rejected
// and the previous one stays active.
func (s *Scheduler) Apply(cfg Config) error {
	spec, err := ParseSchedule(cfg.Schedule)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.cfg
	s.cfg = cfg
	s.spec = spec
	if s.c == nil {
		return nil
	}
	if strings.TrimSpace(old.Timezone) != strings.TrimSpace(cfg.Timezone) {
		s.restartLocked()
		return nil
	}
	if old.Schedule != cfg.Schedule {
		s.c.Remove(s.entry)
		if err := s.addLocked(); err != nil {
			return err
		}
		s.log.Info("rescheduled", logx.String("schedule", spec.String()), logx.String("next", s.nextLocked()))
	}
	return nil
}

// Stop halts triggering and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	start := time.Now()
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
	s.log.Info("scheduler stopped", logx.Duration("took", time.Since(start)))
}

func (s *Scheduler) run() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}
	if err := s.job(ctx); err != nil {
		s.log.Error("scheduled run failed", logx.Err(err))
	}
}

func (s *Scheduler) startLocked() {
	s.loc = s.loadLocationLocked()
	s.c = cron.New(cron.WithParser(s.parser), cron.WithLocation(s.loc))
	if err := s.addLocked(); err != nil {
		s.log.Error("schedule rejected", logx.String("schedule", s.cfg.Schedule), logx.Err(err))
	}
	s.c.Start()
	s.log.Info("scheduler started",
		logx.String("schedule", s.spec.String()),
		logx.String("tz", s.loc.String()),
		logx.String("next", s.nextLocked()),
	)
}

// restartLocked does not wait for a running job; the shared skip guard keeps
// it from overlapping with runs triggered by the new cron.
func (s *Scheduler) restartLocked() {
	if s.c != nil {
		s.c.Stop()
	}
	s.startLocked()
}

func (s *Scheduler) addLocked() error {
	sched, err := s.schedule(s.spec)
	if err != nil {
		return err
	}
	s.entry = s.c.Schedule(sched, s.wrapped)
	return nil
}

func (s *Scheduler) schedule(spec ParsedSpec) (cron.Schedule, error) {
	if spec.Kind == SpecInterval {
		return cron.Every(spec.Every), nil
	}
	sched, err := s.parser.Parse(spec.Cron)
	if err != nil {
		return nil, fmt.Errorf("invalid cron %q: %w", spec.Cron, err)
	}
	return sched, nil
}

func (s *Scheduler) nextLocked() string {
	if s.c == nil {
		return ""
	}
	e := s.c.Entry(s.entry)
	if e.Schedule == nil {
		return ""
	}
	return e.Schedule.Next(time.Now().In(s.loc)).Format("2006-01-02 15:04:05")
}

func (s *Scheduler) loadLocationLocked() *time.Location {
	tz := strings.TrimSpace(s.cfg.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		s.log.Warn("invalid timezone; falling back to Local", logx.String("tz", tz), logx.Err(err))
		return time.Local
	}
	return loc
}

// cronLogger routes robfig/cron chain messages into logx.
type cronLogger struct{ log logx.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Info(msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(kvFields(keysAndValues), logx.Err(err))...)
}

func kvFields(kv []any) []logx.Field {
	out := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			k = fmt.Sprint(kv[i])
		}
		out = append(out, logx.Any(k, kv[i+1]))
	}
	return out
}

// Next reports the next trigger time, or "" when stopped.
func (s *Scheduler) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextLocked()
}
