package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var (
	ErrMissingChannel = errors.New("telegram channel id is required (CHANNEL_ID or telegram.channel_id)")
	ErrMissingToken   = errors.New("telegram bot token is required (BOT_TOKEN or telegram.token)")
)

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// Load builds the config: defaults, then the optional file at path (JSON or
// YAML, strict), then environment overrides.
func Load(path string, lookup LookupFunc) (*Config, error) {
	cfg := Default()
	if p := strings.TrimSpace(path); p != "" {
		if err := DecodeFile(p, cfg, true); err != nil {
			return nil, fmt.Errorf("config %s: %w", p, err)
		}
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := ApplyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from environment variables. Empty values are ignored.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("RSS_URL", &cfg.Feed.URL)
	str("FEED_TIMEOUT", &cfg.Feed.Timeout)
	str("CHANNEL_ID", &cfg.Telegram.ChannelID)
	str("BOT_TOKEN", &cfg.Telegram.Token)
	str("TELEGRAM_API_URL", &cfg.Telegram.APIURL)
	str("LANGUAGE", &cfg.Language)
	str("HISTORY_DRIVER", &cfg.History.Driver)
	str("STRIKES_CSV_FILE", &cfg.History.Path)
	str("CONFIG_FILE", &cfg.ConditionsFile)
	str("TRANSLATIONS_FILE", &cfg.TranslationsFile)
	str("SCHEDULE", &cfg.Schedule)
	str("TZ_NAME", &cfg.Timezone)
	str("METRICS_ADDR", &cfg.Metrics.Addr)
	str("LOG_LEVEL", &cfg.Logging.Level)

	if v, ok := lookup("MAX_STRIKES_TO_STORE"); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("MAX_STRIKES_TO_STORE: invalid integer %q", v)
		}
		cfg.History.MaxEntries = n
	}
	return nil
}

// Validate checks the config. requireTelegram is false for dry runs.
func (c *Config) Validate(requireTelegram bool) error {
	if requireTelegram {
		if strings.TrimSpace(c.Telegram.ChannelID) == "" {
			return ErrMissingChannel
		}
		if strings.TrimSpace(c.Telegram.Token) == "" {
			return ErrMissingToken
		}
	}
	if strings.TrimSpace(c.Feed.URL) == "" {
		return errors.New("feed.url is required")
	}
	if c.History.MaxEntries < 0 {
		return fmt.Errorf("history.max_entries must be >= 0")
	}
	if c.Telegram.RatePerSec < 0 {
		return fmt.Errorf("telegram.rate_per_sec must be >= 0")
	}
	if _, err := c.FeedTimeout(); err != nil {
		return err
	}
	if _, err := c.SendTimeout(); err != nil {
		return err
	}
	if _, err := c.HistoryMaxAge(); err != nil {
		return err
	}
	return nil
}
