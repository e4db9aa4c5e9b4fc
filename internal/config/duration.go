package config

import (
	"fmt"
	"strings"
	"time"
)

// ParseDurationField parses a Go duration string at a config path ("feed.timeout").
// Empty means 0.
func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// ParseDurationOrDefault is ParseDurationField with a fallback for 0/empty.
func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}

// FeedTimeout returns feed.timeout (default 20s).
func (c *Config) FeedTimeout() (time.Duration, error) {
	return ParseDurationOrDefault("feed.timeout", c.Feed.Timeout, 20*time.Second)
}

// SendTimeout returns telegram.timeout (default 15s).
func (c *Config) SendTimeout() (time.Duration, error) {
	return ParseDurationOrDefault("telegram.timeout", c.Telegram.Timeout, 15*time.Second)
}

// HistoryMaxAge returns history.max_age (0 = disabled).
func (c *Config) HistoryMaxAge() (time.Duration, error) {
	return ParseDurationField("history.max_age", c.History.MaxAge)
}
