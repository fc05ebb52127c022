package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voxrelay.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
[telegram]
bot_token = "tok"
allowed_user_ids = [123]
poll_timeout_seconds = 10

[deepgram]
api_key = "dg-key"
model = "nova-2"
smart_format = true
punctuate = true
diarize = true
paragraphs = true
detect_language = true

[languages]
default = "nl"

[storage]
type = "sqlite"
sqlite_path = "/tmp/sessions.db"

[logging]
level = "debug"
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "tok", cfg.Telegram.BotToken)
	assert.Equal(t, []int64{123}, cfg.Telegram.AllowedUserIDs)
	assert.Equal(t, 10, cfg.Telegram.PollTimeoutSecs)
	assert.Equal(t, "dg-key", cfg.Deepgram.APIKey)
	assert.True(t, cfg.Deepgram.Diarize)
	assert.Equal(t, "nl", cfg.Languages.Default)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[telegram]
bot_token = "tok"
allowed_user_ids = [123]

[deepgram]
api_key = "dg-key"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 30, cfg.Telegram.PollTimeoutSecs)
	assert.Equal(t, "nova-2", cfg.Deepgram.Model)
	assert.Equal(t, 120, cfg.Deepgram.TimeoutSeconds)
	assert.Equal(t, "en", cfg.Languages.Default)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-tok")
	t.Setenv("DEEPGRAM_API_KEY", "env-key")
	t.Setenv("ALLOWED_USER_ID", "456")

	path := writeConfig(t, `
[telegram]
bot_token = "file-tok"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-tok", cfg.Telegram.BotToken)
	assert.Equal(t, "env-key", cfg.Deepgram.APIKey)
	assert.Contains(t, cfg.Telegram.AllowedUserIDs, int64(456))
	assert.NoError(t, cfg.Validate())
}

func TestValidateMissingCredentials(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing token", func(c *Config) { c.Telegram.BotToken = "" }, "bot token"},
		{"missing allow-list", func(c *Config) { c.Telegram.AllowedUserIDs = nil }, "allowed user"},
		{"missing api key", func(c *Config) { c.Deepgram.APIKey = "" }, "API key"},
		{"unknown default language", func(c *Config) { c.Languages.Default = "xx" }, "language"},
		{"unknown storage type", func(c *Config) { c.Storage.Type = "redis" }, "storage type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Telegram.BotToken = "tok"
			cfg.Telegram.AllowedUserIDs = []int64{1}
			cfg.Deepgram.APIKey = "key"
			cfg.applyDefaults()

			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadWithFallbackNoFile(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-tok")
	t.Setenv("DEEPGRAM_API_KEY", "env-key")
	t.Setenv("ALLOWED_USER_ID", "456")

	// Run from a directory with no config file anywhere
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	cfg, err := LoadWithFallback("")
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "env-tok", cfg.Telegram.BotToken)
}
