package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"MarketScanner/internal/collector"
	"MarketScanner/internal/config"
	"MarketScanner/internal/notifier"
	"MarketScanner/internal/pipeline"
	"MarketScanner/internal/scanner"
	"MarketScanner/internal/scheduler"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "path to YAML config (CONFIG_PATH overrides)")
	noEmail := flag.Bool("no-email", false, "compute and print the report without mailing it")
	outPath := flag.String("out", "", "write the HTML report to this file")
	cronSpec := flag.String("cron", "", "run on this 6-field cron schedule instead of once")
	once := flag.Bool("once", false, "run once even when a schedule is configured")
	flag.Parse()

	setupLogging("info")

	path := *cfgPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if *cronSpec != "" {
		cfg.Schedule.Cron = *cronSpec
	}
	if *outPath != "" {
		cfg.Output.HTMLPath = *outPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	setupLogging(cfg.LogLevel)

	fetcher := collector.NewYahooFetcher("", cfg.Proxy, cfg.Fetch.Timeout)
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")

	palette := notifier.PlainPalette()
	if isatty.IsTerminal(os.Stdout.Fd()) {
		palette = notifier.ANSIPalette()
	}

	p := &pipeline.Pipeline{
		Fetcher: fetcher,
		Tickers: collector.NewNSETickerList(cfg.Universe.ListURL, cfg.Universe.SymbolSuffix,
			cfg.Universe.Exclude, cfg.Proxy, cfg.Fetch.Timeout),
		Scanner: scanner.New(cfg.Scanner.Sectors, cfg.Universe.SymbolSuffix),
		Mailer: &notifier.Mailer{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Sender:   cfg.Email.Sender,
			Password: cfg.Email.Password,
			Receiver: cfg.Email.Receiver,
			FromName: "Market Scanner",
			Timeout:  cfg.Fetch.Timeout,
		},
		Telegram: notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, cfg.Fetch.Timeout),
		Console:  os.Stdout,
		Palette:  palette,
		Options: pipeline.Options{
			UniverseRange: cfg.Universe.Range,
			WindowDays:    cfg.Universe.WindowDays,
			ScannerRange:  cfg.Scanner.Range,
			Benchmark:     cfg.Scanner.Benchmark,
			Symbols:       cfg.Scanner.Symbols,
			Workers:       cfg.Fetch.Workers,
			SendEmail:     !*noEmail,
			HTMLPath:      cfg.Output.HTMLPath,
			FallbackDir:   cfg.Output.FallbackDir,
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once || cfg.Schedule.Cron == "" {
		if _, err := p.Run(ctx); err != nil {
			log.Error().Err(err).Msg("run failed")
			stop()
			os.Exit(1)
		}
		return
	}

	sched := scheduler.NewScheduler(ctx, func(ctx context.Context) error {
		_, err := p.Run(ctx)
		return err
	})
	if _, err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatal().Err(err).Msg("register schedule")
	}
	sched.Start()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, running now")
		sched.Trigger()
	}

	log.Info().Str("cron", cfg.Schedule.Cron).Msg("scanner is running, press Ctrl+C to stop")
	<-ctx.Done()

	log.Info().Msg("shutdown signal received, stopping")
	sched.Stop()
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}
