package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler runs a job on a seconds-resolution cron schedule. Scheduled and
// manual runs share one skip-if-running chain, so runs never overlap.
type Scheduler struct {
	Cron *cron.Cron
	Ctx  context.Context
	job  Job

	chained cron.Job
	manual  sync.WaitGroup
}

// NewScheduler creates a new Scheduler whose runs use ctx.
func NewScheduler(ctx context.Context, job Job) *Scheduler {
	logger := cronLogger{log.Logger}
	s := &Scheduler{
		Cron: cron.New(cron.WithSeconds(), cron.WithLogger(logger)),
		Ctx:  ctx,
		job:  job,
	}
	s.chained = cron.NewChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)).Then(cron.FuncJob(s.run))
	return s
}

// Register schedules the job with the given cron spec.
func (s *Scheduler) Register(spec string) (cron.EntryID, error) {
	id, err := s.Cron.AddJob(spec, s.chained)
	if err != nil {
		return 0, fmt.Errorf("register job %q: %w", spec, err)
	}
	return id, nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the scheduler and waits for scheduled and manual runs to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.manual.Wait()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes the job immediately, outside the schedule. It is skipped
// when a run is already in progress.
func (s *Scheduler) RunNow() {
	s.manual.Add(1)
	defer s.manual.Done()
	s.chained.Run()
}

// Trigger runs the job in the background like RunNow. Stop waits for it.
func (s *Scheduler) Trigger() {
	s.manual.Add(1)
	go func() {
		defer s.manual.Done()
		s.chained.Run()
	}()
}

func (s *Scheduler) run() {
	if err := s.Ctx.Err(); err != nil {
		return
	}
	if err := s.job(s.Ctx); err != nil {
		log.Error().Err(err).Msg("scheduled run failed")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
