// Package scheduler triggers the pipeline on a schedule in daemon mode.
//
// Schedules are parsed by ParseSchedule and driven by robfig/cron. A run that
// is still in progress when the next tick fires causes that tick to be
// skipped, so at most one run is active per process.
package scheduler
