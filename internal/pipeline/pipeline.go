// Package pipeline wires one scanner run: breadth, scan, render, send.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"MarketScanner/internal/breadth"
	"MarketScanner/internal/chart"
	"MarketScanner/internal/collector"
	"MarketScanner/internal/model"
	"MarketScanner/internal/notifier"
	"MarketScanner/internal/scanner"
)

// Mailer delivers a composed report.
type Mailer interface {
	Send(ctx context.Context, msg notifier.Message) error
}

// Options are the per-run settings taken from configuration and flags.
type Options struct {
	UniverseRange string
	WindowDays    int
	ScannerRange  string
	Benchmark     string
	Symbols       []string
	Workers       int
	SendEmail     bool
	HTMLPath      string
	FallbackDir   string
}

// Pipeline runs the breadth engine and the signal scanner, renders the report
// and delivers it. A Pipeline holds no state between runs.
type Pipeline struct {
	Fetcher  collector.Fetcher
	Tickers  collector.TickerSource
	Scanner  *scanner.Scanner
	Mailer   Mailer
	Telegram *notifier.TelegramNotifier
	Console  io.Writer
	Palette  notifier.Palette
	Options  Options

	Now func() time.Time
}

// Run executes one full run. Per-symbol and delivery failures are logged and
// never returned; only rendering and explicit file output can fail the run.
func (p *Pipeline) Run(ctx context.Context) (*model.Report, error) {
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()
	logger.Info().Msg("run started")

	col := collector.NewCollector(p.Fetcher, p.Options.Workers)

	res := p.breadth(ctx, col, logger)
	candidates := p.scan(ctx, col, logger)

	report := &model.Report{
		RunID:       runID,
		GeneratedAt: p.now(),
		Signal:      res.Signal,
		Ratio:       res.Current,
		Delta:       res.Delta,
		Chart:       res.Chart,
		Candidates:  candidates,
	}

	body, err := notifier.RenderHTML(report)
	if err != nil {
		return report, err
	}

	if p.Console != nil {
		if err := notifier.WriteSummary(p.Console, p.Palette, report); err != nil {
			logger.Warn().Err(err).Msg("write console summary")
		}
	}

	if p.Options.HTMLPath != "" {
		if err := writeFile(p.Options.HTMLPath, body); err != nil {
			return report, fmt.Errorf("write html report: %w", err)
		}
		logger.Info().Str("path", p.Options.HTMLPath).Msg("html report written")
	}

	if p.Options.SendEmail && p.Mailer != nil {
		p.deliver(ctx, report, body, logger)
	}

	if p.Telegram.Configured() {
		if err := p.Telegram.Send(ctx, notifier.FormatTelegramSummary(report)); err != nil {
			logger.Error().Err(err).Msg("telegram summary failed")
		}
	}

	logger.Info().
		Str("signal", report.Signal.Label).
		Float64("ratio", report.Ratio).
		Int("candidates", len(report.Candidates)).
		Msg("run finished")
	return report, nil
}

func (p *Pipeline) breadth(ctx context.Context, col *collector.Collector, logger zerolog.Logger) *model.BreadthResult {
	var symbols []string
	if p.Tickers != nil {
		var err error
		symbols, err = p.Tickers.FetchTickers(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("ticker list unavailable, breadth universe is empty")
			symbols = nil
		}
	}

	universe, failures := col.FetchUniverse(ctx, symbols, p.Options.UniverseRange)
	if len(failures) > 0 {
		logger.Warn().Int("failed", len(failures)).Int("requested", len(symbols)).Msg("universe fetch incomplete")
	}
	universe = breadth.LastSessions(universe, p.Options.WindowDays)

	res := breadth.Compute(universe)
	logger.Info().
		Int("symbols", len(universe)).
		Int("points", len(res.Series)).
		Str("signal", res.Signal.Label).
		Msg("breadth computed")

	if res.Available() {
		png, err := chart.RenderBreadth(res.Series, res.Signal, breadth.StrongThreshold)
		if err != nil {
			logger.Warn().Err(err).Msg("breadth chart not rendered")
		} else {
			res.Chart = png
		}
	}
	return res
}

func (p *Pipeline) scan(ctx context.Context, col *collector.Collector, logger zerolog.Logger) []model.Candidate {
	if len(p.Options.Symbols) == 0 {
		return nil
	}

	var benchmark []model.PricePoint
	bench, err := col.FetchSeries(ctx, p.Options.Benchmark, p.Options.ScannerRange)
	if err != nil {
		logger.Warn().Err(err).Str("benchmark", p.Options.Benchmark).Msg("benchmark unavailable")
	} else {
		benchmark = bench.Closes()
	}

	series, _ := col.FetchUniverse(ctx, p.Options.Symbols, p.Options.ScannerRange)
	bars := make(map[string][]model.OHLCV, len(series))
	for _, s := range series {
		bars[s.Symbol] = s.Bars
	}

	outcomes := p.Scanner.Scan(p.Options.Symbols, bars, benchmark)
	for _, o := range outcomes {
		if o.Skipped() {
			logger.Debug().Str("symbol", o.Symbol).Err(o.Err).Msg("symbol skipped")
		}
	}
	candidates := scanner.Candidates(outcomes)
	logger.Info().Int("scanned", len(outcomes)).Int("candidates", len(candidates)).Msg("scan complete")
	return candidates
}

func (p *Pipeline) deliver(ctx context.Context, report *model.Report, body string, logger zerolog.Logger) {
	err := p.Mailer.Send(ctx, notifier.Message{
		Subject: notifier.Subject(report),
		HTML:    body,
		Text:    notifier.FormatText(report),
		Chart:   report.Chart,
	})
	switch {
	case err == nil:
		logger.Info().Msg("report mailed")
	case errors.Is(err, notifier.ErrMissingCredentials):
		logger.Error().Msg("credentials missing, report not sent")
	default:
		logger.Error().Err(err).Msg("send mail failed")
		if p.Options.HTMLPath == "" {
			p.saveFallback(body, report.GeneratedAt, logger)
		}
	}
}

func (p *Pipeline) saveFallback(body string, now time.Time, logger zerolog.Logger) {
	if p.Options.FallbackDir == "" {
		return
	}
	path := filepath.Join(p.Options.FallbackDir, fmt.Sprintf("market_report_%s.html", now.Format("20060102_150405")))
	if err := writeFile(path, body); err != nil {
		logger.Error().Err(err).Msg("save fallback report")
		return
	}
	logger.Info().Str("path", path).Msg("report saved to fallback")
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func writeFile(path, body string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(body), 0o644)
}
