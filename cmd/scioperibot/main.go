package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"scioperibot/internal/app"
)

func main() {
	var (
		cfgPath string
		daemon  bool
		dryRun  bool
	)
	flag.StringVar(&cfgPath, "config", "", "path to config file (json or yaml); environment variables override it")
	flag.BoolVar(&daemon, "daemon", false, "run on the configured schedule instead of once")
	flag.BoolVar(&dryRun, "dry-run", false, "log messages instead of sending them; history is not written")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(app.Options{ConfigPath: cfgPath, DryRun: dryRun})
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}

	if daemon {
		err = a.RunDaemon(ctx)
	} else {
		_, err = a.RunOnce(ctx)
	}
	_ = a.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}
