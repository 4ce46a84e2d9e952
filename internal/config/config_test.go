package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8090", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "en", cfg.Site.DefaultLanguage)
	assert.Equal(t, []string{"en"}, cfg.Site.Languages)
	assert.Equal(t, "/media", cfg.Site.MediaPrefix)
	assert.Empty(t, cfg.Site.PagesFile)
	assert.Equal(t, "", cfg.Cache.Addr)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.False(t, cfg.Editor.Enabled)
	assert.Equal(t, "normal", cfg.Logging.ConsoleLogger.Level)
}

func TestLoadOverlay(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "localhost:9000"
site:
  default_language: fr
  languages: [fr, en-GB]
  pages_file: /var/lib/splitscreen/pages.yaml
  translations:
    fr:
      Home: Accueil
cache:
  addr: "localhost:6379"
editor:
  enabled: true
  secret: "0123456789abcdef0123"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost:9000", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"fr", "en-GB"}, cfg.Site.Languages)
	assert.Equal(t, "/var/lib/splitscreen/pages.yaml", cfg.Site.PagesFile)
	assert.Equal(t, "Accueil", cfg.Site.Translations["fr"]["Home"])
	assert.Equal(t, "localhost:6379", cfg.Cache.Addr)
	assert.Equal(t, "0123456789abcdef0123", cfg.Editor.Secret.Value())
	assert.Equal(t, "kdex-splitscreen", cfg.Editor.Issuer)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown key", content: "nope: 1\n"},
		{name: "bad version", content: "version: 2\n"},
		{name: "bad language", content: "site:\n  default_language: \"not a tag!\"\n"},
		{name: "editor without secret", content: "editor:\n  enabled: true\n"},
		{name: "short secret", content: "editor:\n  enabled: true\n  secret: short\n"},
		{name: "bad log level", content: "logging:\n  console:\n    level: loud\n"},
		{name: "bad media prefix", content: "site:\n  media_prefix: media\n"},
		{name: "bad translation language", content: "site:\n  translations:\n    \"not a tag!\":\n      Home: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDumpHidesSecret(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Editor.Secret = "0123456789abcdef0123"

	data, err := Dump(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), SecretStringValue)
	assert.NotContains(t, string(data), "0123456789abcdef0123")
	assert.Equal(t, SecretStringValue, cfg.Editor.Secret.String())
}

func TestLogger(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "splitscreen.log")
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "debug", Destination: dest},
	}

	log, sync, err := conf.Logger()
	require.NoError(t, err)
	log.V(1).Info("traced", "key", "value")
	log.Info("hello")
	sync()

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "traced")
	assert.Contains(t, string(data), "hello")
}

func TestLoggerFileWithoutDestination(t *testing.T) {
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "normal"},
	}
	_, _, err := conf.Logger()
	assert.Error(t, err)
}
