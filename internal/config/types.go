package config

// Defaults mirror the environment-only deployment of the bot.
const (
	DefaultFeedURL          = "https://scioperi.mit.gov.it/mit2/public/scioperi/rss"
	DefaultFeedTimeout      = "20s"
	DefaultLanguage         = "en"
	DefaultHistoryDriver    = "csv"
	DefaultHistoryPath      = "strikes_history.csv"
	DefaultMaxEntries       = 10
	DefaultConditionsFile   = "config.json"
	DefaultTranslationsFile = "translations.json"
	DefaultSchedule         = "30m"
	DefaultRatePerSec       = 1
	DefaultSendTimeout      = "15s"
)

// Config is the whole runtime configuration. It is built once at startup
// (defaults < file < environment) and handed to every component.
type Config struct {
	Feed     FeedConfig     `json:"feed"`
	Telegram TelegramConfig `json:"telegram"`

	// Language is the target language of notifications ("it" disables translation).
	Language string `json:"language"`

	History HistoryConfig `json:"history"`

	// ConditionsFile is a JSON/YAML list of {name, sectors, regions}.
	ConditionsFile string `json:"conditions_file"`
	// TranslationsFile is a JSON/YAML map of lang -> source text -> translation.
	TranslationsFile string `json:"translations_file"`

	// Schedule and Timezone are only used in daemon mode.
	// Schedule accepts cron ("*/30 * * * *"), Go durations ("30m") or HH:MM ("00:30").
	Schedule string `json:"schedule"`
	Timezone string `json:"timezone,omitempty"`

	Metrics MetricsConfig `json:"metrics"`
	Logging LoggingConfig `json:"logging"`
}

type FeedConfig struct {
	URL string `json:"url"`
	// Timeout is a Go duration string (e.g. "20s").
	Timeout   string `json:"timeout"`
	UserAgent string `json:"user_agent,omitempty"`
}

// TelegramConfig holds the destination channel and bot credential.
// ChannelID accepts a numeric chat id ("-100123...") or a public "@channel".
type TelegramConfig struct {
	Token     string `json:"token"`
	ChannelID string `json:"channel_id"`
	ThreadID  int    `json:"thread_id,omitempty"`
	// APIURL overrides the Bot API endpoint (self-hosted bot API server).
	APIURL string `json:"api_url,omitempty"`
	// RatePerSec throttles sends within one run.
	RatePerSec int `json:"rate_per_sec"`
	// Timeout is a Go duration string applied to each Bot API request.
	Timeout string `json:"timeout"`
}

// HistoryConfig controls the dedup history.
//
// Example:
//
//	"history": { "driver": "sqlite", "path": "./data/history.db", "max_entries": 50 }
type HistoryConfig struct {
	Driver     string `json:"driver"`
	Path       string `json:"path"`
	MaxEntries int    `json:"max_entries"`
	// MaxAge optionally drops entries older than this Go duration ("0s" disables).
	MaxAge string `json:"max_age,omitempty"`
}

// MetricsConfig controls the optional Prometheus endpoint (daemon mode).
type MetricsConfig struct {
	Addr string `json:"addr,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// Default returns a config with every optional field populated.
func Default() *Config {
	return &Config{
		Feed: FeedConfig{
			URL:     DefaultFeedURL,
			Timeout: DefaultFeedTimeout,
		},
		Telegram: TelegramConfig{
			RatePerSec: DefaultRatePerSec,
			Timeout:    DefaultSendTimeout,
		},
		Language: DefaultLanguage,
		History: HistoryConfig{
			Driver:     DefaultHistoryDriver,
			Path:       DefaultHistoryPath,
			MaxEntries: DefaultMaxEntries,
		},
		ConditionsFile:   DefaultConditionsFile,
		TranslationsFile: DefaultTranslationsFile,
		Schedule:         DefaultSchedule,
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}
