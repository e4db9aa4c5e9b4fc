package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	logx "scioperibot/pkg/logx"
)

func TestNewRejectsInvalidSchedule(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{Schedule: "nope"}, func(context.Context) error { return nil }, logx.Nop()); err == nil {
		t.Fatal("expected error")
	}
	if _, err := New(Config{Schedule: "cron:61 * * * *"}, func(context.Context) error { return nil }, logx.Nop()); err == nil {
		t.Fatal("expected error for out of range cron field")
	}
}

func TestRunOnStart(t *testing.T) {
	t.Parallel()
	ran := make(chan struct{}, 1)
	s, err := New(Config{Schedule: "1h", RunOnStart: true}, func(context.Context) error {
		ran <- struct{}{}
		return nil
	}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop(context.Background())

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
}

func TestSkipIfStillRunning(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	s, err := New(Config{Schedule: "1h"}, func(context.Context) error {
		calls.Add(1)
		close(started)
		<-release
		return nil
	}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan struct{})
	go func() {
		s.wrapped.Run()
		close(done)
	}()
	<-started
	// Overlapping trigger returns immediately without running the job.
	s.wrapped.Run()
	close(release)
	<-done

	if got := calls.Load(); got != 1 {
		t.Fatalf("job ran %d times, want 1", got)
	}
}

func TestApply(t *testing.T) {
	t.Parallel()
	s, err := New(Config{Schedule: "30m"}, func(context.Context) error { return nil }, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop(context.Background())

	if err := s.Apply(Config{Schedule: "garbage"}); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
	if got := s.Spec().Every; got != 30*time.Minute {
		t.Fatalf("invalid Apply changed schedule to %v", got)
	}

	if err := s.Apply(Config{Schedule: "0 7 * * *", Timezone: "Europe/Rome"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := s.Spec(); got.Kind != SpecCron || got.Cron != "0 7 * * *" {
		t.Fatalf("Spec() = %+v", got)
	}
	if got := s.Next(); got == "" {
		t.Fatal("expected a next run after Apply")
	}
}

func TestStopCancelsFutureRuns(t *testing.T) {
	t.Parallel()
	s, err := New(Config{Schedule: "1h"}, func(context.Context) error { return nil }, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Next() == "" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("scheduler still active after context cancel")
}
