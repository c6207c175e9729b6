package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"EMAIL_USER", "EMAIL_PASS", "EMAIL_RECEIVER", "SMTP_HOST", "SMTP_PORT",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "HTTPS_PROXY", "TICKER_LIST_URL",
	"SCANNER_CRON", "LOG_LEVEL",
}

// isolate runs the test in an empty directory with every config variable unset.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ".NS", cfg.Universe.SymbolSuffix)
	assert.Equal(t, []string{"DUMMYHDLVR"}, cfg.Universe.Exclude)
	assert.Equal(t, 60, cfg.Universe.WindowDays)
	assert.Equal(t, "^NSEI", cfg.Scanner.Benchmark)
	assert.Equal(t, DefaultSymbols, cfg.Scanner.Symbols)
	assert.Equal(t, "IT", cfg.Scanner.Sectors["TCS"])
	assert.Equal(t, cfg.Universe.Range, cfg.Scanner.Range)
	assert.Equal(t, "smtp.gmail.com", cfg.Email.SMTPHost)
	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.Equal(t, 8, cfg.Fetch.Workers)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Email.Sender)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	yamlDoc := `
universe:
  window_days: 40
  range: 6mo
scanner:
  symbols: [WIPRO.NS]
  sectors:
    WIPRO: IT
email:
  sender: yaml@example.com
  smtp_port: 2525
fetch:
  workers: 3
  timeout: 5s
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))
	t.Setenv("EMAIL_USER", "env@example.com")
	t.Setenv("EMAIL_PASS", "secret")
	t.Setenv("SCANNER_CRON", "0 30 16 * * 1-5")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 40, cfg.Universe.WindowDays)
	assert.Equal(t, "6mo", cfg.Scanner.Range)
	assert.Equal(t, []string{"WIPRO.NS"}, cfg.Scanner.Symbols)
	assert.Equal(t, map[string]string{"WIPRO": "IT"}, cfg.Scanner.Sectors)
	assert.Equal(t, "env@example.com", cfg.Email.Sender)
	assert.Equal(t, "secret", cfg.Email.Password)
	assert.Equal(t, 2525, cfg.Email.SMTPPort)
	assert.Equal(t, 3, cfg.Fetch.Workers)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "0 30 16 * * 1-5", cfg.Schedule.Cron)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("EMAIL_USER=dotenv@example.com\nEMAIL_PASS=pw\n"), 0o600))
	t.Setenv("EMAIL_PASS", "process")

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "dotenv@example.com", cfg.Email.Sender)
	assert.Equal(t, "process", cfg.Email.Password)
}

func TestLoad_BadInput(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("universe: [oops"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)

	t.Setenv("SMTP_PORT", "not-a-number")
	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolate(t)
	base := func() *Config {
		cfg, err := Load("missing.yaml")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"window too small", func(c *Config) { c.Universe.WindowDays = 1 }},
		{"no workers", func(c *Config) { c.Fetch.Workers = -1 }},
		{"bad timeout", func(c *Config) { c.Fetch.Timeout = -time.Second }},
		{"blank benchmark", func(c *Config) { c.Scanner.Benchmark = " " }},
		{"bad port", func(c *Config) { c.Email.SMTPPort = 70000 }},
		{"bad cron", func(c *Config) { c.Schedule.Cron = "every day" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
