package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/yegors/voxrelay/internal/transcription"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Telegram  TelegramConfig  `toml:"telegram"`  // Chat platform access settings
	Deepgram  DeepgramConfig  `toml:"deepgram"`  // Speech provider settings
	Languages LanguagesConfig `toml:"languages"` // Transcription language settings
	Storage   StorageConfig   `toml:"storage"`   // Session persistence settings
	Server    ServerConfig    `toml:"server"`    // Optional status HTTP endpoint settings
	Logging   LoggingConfig   `toml:"logging"`   // Application logging settings
}

// TelegramConfig contains chat platform access configuration
type TelegramConfig struct {
	BotToken        string  `toml:"bot_token"`            // Bot access token from @BotFather (or TELEGRAM_BOT_TOKEN env)
	AllowedUserIDs  []int64 `toml:"allowed_user_ids"`     // Sender IDs permitted to use the bot (or ALLOWED_USER_ID env)
	PollTimeoutSecs int     `toml:"poll_timeout_seconds"` // Long-poll timeout for fetching updates (default: 30)
}

// DeepgramConfig contains speech provider configuration
type DeepgramConfig struct {
	APIKey         string `toml:"api_key"`         // Deepgram API key (or DEEPGRAM_API_KEY env)
	BaseURL        string `toml:"base_url"`        // Optional API base URL override (e.g., for proxies); defaults to https://api.deepgram.com
	Model          string `toml:"model"`           // Transcription model (default: "nova-2")
	TimeoutSeconds int    `toml:"timeout_seconds"` // HTTP timeout for transcription requests in seconds (default: 120)

	// Formatting flags sent with every transcription request
	SmartFormat    bool `toml:"smart_format"`    // Apply smart formatting to numbers, dates, etc.
	Punctuate      bool `toml:"punctuate"`       // Add punctuation and capitalization
	Diarize        bool `toml:"diarize"`         // Attribute utterances to speakers
	Paragraphs     bool `toml:"paragraphs"`      // Segment the transcript into paragraphs
	DetectLanguage bool `toml:"detect_language"` // Ask the provider to detect the spoken language
}

// LanguagesConfig contains transcription language settings
type LanguagesConfig struct {
	Default string `toml:"default"` // Language applied to a conversation that never selected one (default: "en")
}

// StorageConfig contains session persistence configuration
type StorageConfig struct {
	Type       string `toml:"type"`        // Session store backend: "memory" (default) or "sqlite"
	SQLitePath string `toml:"sqlite_path"` // Path to the SQLite database file (sqlite backend only)
}

// ServerConfig contains the optional status HTTP endpoint configuration
type ServerConfig struct {
	Enabled          bool   `toml:"enabled"`               // Serve the status API (default: false)
	Host             string `toml:"host"`                  // Host address to bind to (default: 127.0.0.1)
	Port             int    `toml:"port"`                  // HTTP port for the status API (default: 8090)
	ReadTimeoutSecs  int    `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request
	WriteTimeoutSecs int    `toml:"write_timeout_seconds"` // Maximum duration for writing the response
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// defaultConfigPaths are searched in order when no explicit path is given
var defaultConfigPaths = []string{
	"configs/voxrelay.toml",
	"voxrelay.toml",
}

// Load reads and parses the configuration file at the given path, then
// applies environment overrides and defaults
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return cfg, nil
}

// LoadWithFallback loads the preferred path if given, otherwise searches the
// default locations. If no config file exists anywhere, a config built from
// environment variables and defaults alone is returned, so containerized
// deployments can run without a file.
func LoadWithFallback(preferredPath string) (*Config, error) {
	if preferredPath != "" {
		return Load(preferredPath)
	}

	for _, path := range defaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	cfg := &Config{}
	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnvOverrides lets credentials come from the environment instead of
// (or in addition to) the config file
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("DEEPGRAM_API_KEY"); v != "" {
		c.Deepgram.APIKey = v
	}
	if v := os.Getenv("ALLOWED_USER_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.AllowedUserIDs = append(c.Telegram.AllowedUserIDs, id)
		}
	}
}

// applyDefaults fills in every optional setting left at its zero value
func (c *Config) applyDefaults() {
	if c.Telegram.PollTimeoutSecs <= 0 {
		c.Telegram.PollTimeoutSecs = 30
	}
	if c.Deepgram.Model == "" {
		c.Deepgram.Model = "nova-2"
	}
	if c.Deepgram.TimeoutSeconds <= 0 {
		c.Deepgram.TimeoutSeconds = 120
	}
	if c.Languages.Default == "" {
		c.Languages.Default = "en"
	}
	if c.Storage.Type == "" {
		c.Storage.Type = "memory"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "voxrelay.db"
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port <= 0 {
		c.Server.Port = 8090
	}
	if c.Server.ReadTimeoutSecs <= 0 {
		c.Server.ReadTimeoutSecs = 15
	}
	if c.Server.WriteTimeoutSecs <= 0 {
		c.Server.WriteTimeoutSecs = 15
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate checks that the configuration is usable. A failure here is the
// only process-fatal condition.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is required (set telegram.bot_token or TELEGRAM_BOT_TOKEN)")
	}
	if len(c.Telegram.AllowedUserIDs) == 0 {
		return fmt.Errorf("at least one allowed user ID is required (set telegram.allowed_user_ids or ALLOWED_USER_ID)")
	}
	if c.Deepgram.APIKey == "" {
		return fmt.Errorf("deepgram API key is required (set deepgram.api_key or DEEPGRAM_API_KEY)")
	}
	if _, ok := transcription.LanguageByCode(c.Languages.Default); !ok {
		return fmt.Errorf("default language %q is not in the supported language set", c.Languages.Default)
	}
	switch c.Storage.Type {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unknown storage type %q (expected \"memory\" or \"sqlite\")", c.Storage.Type)
	}
	return nil
}
