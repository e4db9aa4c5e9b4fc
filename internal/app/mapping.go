package app

import (
	"fmt"
	"strings"
	"time"

	"scioperibot/internal/config"
	"scioperibot/internal/feed"
	"scioperibot/internal/history"
	"scioperibot/internal/pipeline"
	"scioperibot/internal/scheduler"
	"scioperibot/internal/transport"
	"scioperibot/internal/transport/telegram"
	logx "scioperibot/pkg/logx"
)

func mapLogConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapHistoryConfig(cfg *config.Config) (history.Config, error) {
	maxAge, err := cfg.HistoryMaxAge()
	if err != nil {
		return history.Config{}, err
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.History.Driver))
	switch driver {
	case "", "csv", "sqlite", "sqlite3", "memory", "none":
	default:
		return history.Config{}, fmt.Errorf("unknown history.driver: %s", cfg.History.Driver)
	}
	path := strings.TrimSpace(cfg.History.Path)
	// the default path names the CSV file; sqlite gets its own default
	if (driver == "sqlite" || driver == "sqlite3") && path == config.DefaultHistoryPath {
		path = history.DefaultSQLitePath
	}
	return history.Config{
		Driver:     driver,
		Path:       path,
		MaxEntries: cfg.History.MaxEntries,
		MaxAge:     maxAge,
	}, nil
}

func mapFeedConfig(cfg *config.Config) (feed.Config, error) {
	timeout, err := cfg.FeedTimeout()
	if err != nil {
		return feed.Config{}, err
	}
	return feed.Config{
		URL:       strings.TrimSpace(cfg.Feed.URL),
		Timeout:   timeout,
		UserAgent: cfg.Feed.UserAgent,
	}, nil
}

func mapTelegramConfig(cfg *config.Config) (telegram.Config, error) {
	timeout, err := cfg.SendTimeout()
	if err != nil {
		return telegram.Config{}, err
	}
	return telegram.Config{
		Token:   strings.TrimSpace(cfg.Telegram.Token),
		APIURL:  cfg.Telegram.APIURL,
		Timeout: timeout,
	}, nil
}

func mapPipelineConfig(cfg *config.Config, dryRun bool) pipeline.Config {
	return pipeline.Config{
		ConditionsFile:   cfg.ConditionsFile,
		TranslationsFile: cfg.TranslationsFile,
		Language:         cfg.Language,
		Target: transport.ChatTarget{
			Recipient: strings.TrimSpace(cfg.Telegram.ChannelID),
			ThreadID:  cfg.Telegram.ThreadID,
		},
		RatePerSec: cfg.Telegram.RatePerSec,
		DryRun:     dryRun,
	}
}

func mapSchedulerConfig(cfg *config.Config) scheduler.Config {
	return scheduler.Config{
		Schedule:   cfg.Schedule,
		Timezone:   cfg.Timezone,
		RunOnStart: true,
	}
}

// validateReload rejects a reloaded config the daemon could not run with.
func validateReload(dryRun bool) func(cfg *config.Config) error {
	return func(cfg *config.Config) error {
		if err := cfg.Validate(!dryRun); err != nil {
			return err
		}
		if _, err := mapHistoryConfig(cfg); err != nil {
			return err
		}
		if _, err := scheduler.ParseSchedule(cfg.Schedule); err != nil {
			return fmt.Errorf("schedule: %w", err)
		}
		if tz := strings.TrimSpace(cfg.Timezone); tz != "" && !strings.EqualFold(tz, "local") {
			if _, err := time.LoadLocation(tz); err != nil {
				return fmt.Errorf("timezone: invalid %q: %w", tz, err)
			}
		}
		return nil
	}
}
