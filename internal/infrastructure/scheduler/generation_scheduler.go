package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sponsorship/backend/internal/domain/recurring"
	"github.com/sponsorship/backend/internal/infrastructure/config"
)

// InvoiceGenerator starts a generation run over all due contract groups
type InvoiceGenerator interface {
	GenerateDue(ctx context.Context) (*recurring.Invoicer, error)
}

// GenerationScheduler triggers the daily recurring-invoice generation run.
// It ticks at the configured check interval and fires once per day at the
// configured hour.
type GenerationScheduler struct {
	config    config.SchedulerConfig
	generator InvoiceGenerator
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastRunAt *time.Time
	nextRunAt time.Time
	now       func() time.Time
}

// NewGenerationScheduler creates a new daily generation scheduler
func NewGenerationScheduler(cfg config.SchedulerConfig, generator InvoiceGenerator, logger *zap.Logger) *GenerationScheduler {
	return &GenerationScheduler{
		config:    cfg,
		generator: generator,
		logger:    logger,
		now:       time.Now,
	}
}

// Start starts the scheduler loop
func (s *GenerationScheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("generation scheduler disabled")
		return nil
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.nextRunAt = s.nextRunAfter(s.now())
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("generation scheduler started",
		zap.Int("daily_hour", s.config.DailyHour),
		zap.Duration("check_interval", s.config.CheckInterval),
		zap.Time("next_run_at", s.nextRunAt),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *GenerationScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("generation scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// loop fires the daily run whenever a tick crosses the scheduled time
func (s *GenerationScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs the generation once the scheduled time has passed. Using a
// stored next-run time instead of an hour comparison keeps the trigger
// correct for any check interval.
func (s *GenerationScheduler) tick(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	due := !now.Before(s.nextRunAt)
	if due {
		s.lastRunAt = &now
		s.nextRunAt = s.nextRunAfter(now)
	}
	s.mu.Unlock()

	if !due {
		return
	}

	s.runGeneration(ctx)
}

// nextRunAfter returns the first scheduled time strictly after t
func (s *GenerationScheduler) nextRunAfter(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), s.config.DailyHour, 0, 0, 0, t.Location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// runGeneration starts the daily generation run
func (s *GenerationScheduler) runGeneration(ctx context.Context) {
	s.logger.Info("starting daily invoice generation")

	invoicer, err := s.generator.GenerateDue(ctx)
	if err != nil {
		s.logger.Error("daily invoice generation failed", zap.Error(err))
		return
	}
	if invoicer == nil {
		s.logger.Info("daily invoice generation found no due groups")
		return
	}

	s.logger.Info("daily invoice generation enqueued",
		zap.String("invoicer_id", invoicer.ID.String()),
	)
}

// TriggerManualRun fires the generation immediately, outside the daily
// schedule
func (s *GenerationScheduler) TriggerManualRun(ctx context.Context) {
	s.runGeneration(ctx)
}
