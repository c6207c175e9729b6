package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Universe struct {
		ListURL      string   `yaml:"list_url"`
		SymbolSuffix string   `yaml:"symbol_suffix"`
		Exclude      []string `yaml:"exclude"`
		Range        string   `yaml:"range"`
		WindowDays   int      `yaml:"window_days"`
	} `yaml:"universe"`
	Scanner struct {
		Benchmark string            `yaml:"benchmark"`
		Symbols   []string          `yaml:"symbols"`
		Sectors   map[string]string `yaml:"sectors"`
		Range     string            `yaml:"range"`
	} `yaml:"scanner"`
	Email struct {
		SMTPHost string `yaml:"smtp_host"`
		SMTPPort int    `yaml:"smtp_port"`
		Sender   string `yaml:"sender"`
		Password string `yaml:"password"`
		Receiver string `yaml:"receiver"`
	} `yaml:"email"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Fetch struct {
		Workers int           `yaml:"workers"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"fetch"`
	Output struct {
		HTMLPath    string `yaml:"html_path"`
		FallbackDir string `yaml:"fallback_dir"`
	} `yaml:"output"`
	Proxy    string `yaml:"proxy"`
	LogLevel string `yaml:"log_level"`
}

// DefaultSymbols is the scanner watchlist used when none is configured.
var DefaultSymbols = []string{
	"TCS.NS", "INFY.NS", "HCLTECH.NS", "SUNPHARMA.NS",
	"TITAN.NS", "MARUTI.NS", "ULTRACEMCO.NS", "ONGC.NS",
}

// DefaultSectors maps display symbols to sectors for DefaultSymbols.
var DefaultSectors = map[string]string{
	"TCS":        "IT",
	"INFY":       "IT",
	"HCLTECH":    "IT",
	"SUNPHARMA":  "PHARMA",
	"TITAN":      "CONSUMER",
	"MARUTI":     "AUTO",
	"ULTRACEMCO": "CEMENT",
	"ONGC":       "ENERGY",
}

// Load reads config from a YAML file, then .env, then applies environment
// variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the process environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("EMAIL_USER"); v != "" {
		cfg.Email.Sender = v
	}
	if v := os.Getenv("EMAIL_PASS"); v != "" {
		cfg.Email.Password = v
	}
	if v := os.Getenv("EMAIL_RECEIVER"); v != "" {
		cfg.Email.Receiver = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Email.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		cfg.Email.SMTPPort = port
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("TICKER_LIST_URL"); v != "" {
		cfg.Universe.ListURL = v
	}
	if v := os.Getenv("SCANNER_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Universe.ListURL == "" {
		cfg.Universe.ListURL = "https://archives.nseindia.com/content/indices/ind_nifty500list.csv"
	}
	if cfg.Universe.SymbolSuffix == "" {
		cfg.Universe.SymbolSuffix = ".NS"
	}
	if cfg.Universe.Exclude == nil {
		cfg.Universe.Exclude = []string{"DUMMYHDLVR"}
	}
	if cfg.Universe.Range == "" {
		cfg.Universe.Range = "3mo"
	}
	if cfg.Universe.WindowDays == 0 {
		cfg.Universe.WindowDays = 60
	}
	if cfg.Scanner.Benchmark == "" {
		cfg.Scanner.Benchmark = "^NSEI"
	}
	if len(cfg.Scanner.Symbols) == 0 {
		cfg.Scanner.Symbols = append([]string(nil), DefaultSymbols...)
	}
	if cfg.Scanner.Sectors == nil {
		cfg.Scanner.Sectors = make(map[string]string, len(DefaultSectors))
		for k, v := range DefaultSectors {
			cfg.Scanner.Sectors[k] = v
		}
	}
	if cfg.Scanner.Range == "" {
		cfg.Scanner.Range = cfg.Universe.Range
	}
	if cfg.Email.SMTPHost == "" {
		cfg.Email.SMTPHost = "smtp.gmail.com"
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Fetch.Workers == 0 {
		cfg.Fetch.Workers = 8
	}
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 30 * time.Second
	}
	if cfg.Output.FallbackDir == "" {
		cfg.Output.FallbackDir = "reports"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// Validate checks structural correctness. Mail credentials are not required
// here: a run without them still computes and logs, and only the send step
// is skipped.
func (c *Config) Validate() error {
	if c.Universe.WindowDays < 2 {
		return fmt.Errorf("universe.window_days must be at least 2")
	}
	if c.Fetch.Workers < 1 {
		return fmt.Errorf("fetch.workers must be positive")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive")
	}
	if strings.TrimSpace(c.Scanner.Benchmark) == "" {
		return fmt.Errorf("scanner.benchmark is required")
	}
	if c.Email.SMTPPort < 1 || c.Email.SMTPPort > 65535 {
		return fmt.Errorf("email.smtp_port out of range: %d", c.Email.SMTPPort)
	}
	if c.Schedule.Cron != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(c.Schedule.Cron); err != nil {
			return fmt.Errorf("schedule.cron: %w", err)
		}
	}
	return nil
}
