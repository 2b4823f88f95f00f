package config

// Config is the whole bot configuration. The file may be JSON or YAML;
// unknown fields are rejected.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "5m").
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Database DatabaseConfig `json:"database"`
	Logging  LoggingConfig  `json:"logging,omitempty"`
	Watch    WatchConfig    `json:"watch,omitempty"`
	Commands CommandsConfig `json:"commands,omitempty"`
}

type TelegramConfig struct {
	// Token may be left empty in the file and supplied via TELEGRAM_TOKEN.
	Token       string `json:"token,omitempty"`
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type DatabaseConfig struct {
	// URL is the sqlite path or sqlite: DSN. DATABASE_URL overrides it.
	URL         string `json:"url,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"`
	MaxConns    int    `json:"max_conns,omitempty"`
}

type LoggingConfig struct {
	Level   string     `json:"level,omitempty"`
	Console bool       `json:"console,omitempty"`
	File    FileConfig `json:"file,omitempty"`
}

type FileConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// WatchConfig controls the polling worker and notification pipeline.
//
// Defaults (when fields are omitted/zero):
//   - schedule: "5m" (a cron expression is also accepted)
//   - render_url: "http://splash:8050"
//   - fetch_timeout: "10s"
//   - queue_size: 100
//   - rate_per_sec: 3 (DM deliveries)
type WatchConfig struct {
	Schedule     string `json:"schedule,omitempty"`
	RenderURL    string `json:"render_url,omitempty"`
	FetchTimeout string `json:"fetch_timeout,omitempty"`
	QueueSize    int    `json:"queue_size,omitempty"`
	RatePerSec   int    `json:"rate_per_sec,omitempty"`
}

type CommandsConfig struct {
	// Prefix is the command prefix. Default "~".
	Prefix string `json:"prefix,omitempty"`
}
