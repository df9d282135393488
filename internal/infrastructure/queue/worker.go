package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sponsorship/backend/internal/infrastructure/config"
	"github.com/sponsorship/backend/internal/infrastructure/persistence/models"
)

// JobHandler runs one job payload. A returned error sends the job through
// the retry cycle.
type JobHandler func(ctx context.Context, payload []byte) error

// WorkerConfig holds configuration for the channel worker
type WorkerConfig struct {
	PollInterval time.Duration
	RetryDelay   time.Duration
	LeaseTTL     time.Duration
}

// WorkerConfigFromQueue derives worker settings from the queue section of
// the application configuration
func WorkerConfigFromQueue(cfg config.QueueConfig) WorkerConfig {
	return WorkerConfig{
		PollInterval: cfg.PollInterval,
		RetryDelay:   cfg.RetryDelay,
		LeaseTTL:     cfg.LeaseTTL,
	}
}

// ChannelWorker drains one channel serially in the background. It claims one
// job at a time, so jobs on the channel never overlap even across retries.
type ChannelWorker struct {
	queue    *GormTaskQueue
	lease    ChannelLease
	channel  string
	handlers map[string]JobHandler
	config   WorkerConfig
	logger   *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewChannelWorker creates a worker for one channel
func NewChannelWorker(
	queue *GormTaskQueue,
	lease ChannelLease,
	channel string,
	config WorkerConfig,
	logger *zap.Logger,
) *ChannelWorker {
	return &ChannelWorker{
		queue:    queue,
		lease:    lease,
		channel:  channel,
		handlers: make(map[string]JobHandler),
		config:   config,
		logger:   logger,
	}
}

// Register binds a handler to a job type. Must be called before Start.
func (w *ChannelWorker) Register(jobType string, handler JobHandler) {
	w.handlers[jobType] = handler
}

// Start starts the background polling loop
func (w *ChannelWorker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.pollLoop(ctx)

	w.logger.Info("channel worker started",
		zap.String("channel", w.channel),
		zap.Duration("poll_interval", w.config.PollInterval),
	)

	return nil
}

// Stop gracefully stops the worker, waiting for a running job to finish
func (w *ChannelWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("channel worker stopped", zap.String("channel", w.channel))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pollLoop claims and runs due jobs until the context is cancelled
func (w *ChannelWorker) pollLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain runs due jobs back to back while the channel lease is held
func (w *ChannelWorker) drain(ctx context.Context) {
	ok, err := w.lease.Acquire(ctx, w.channel, w.config.LeaseTTL)
	if err != nil {
		w.logger.Error("failed to acquire channel lease",
			zap.String("channel", w.channel), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	defer func() {
		if err := w.lease.Release(ctx, w.channel); err != nil {
			w.logger.Warn("failed to release channel lease",
				zap.String("channel", w.channel), zap.Error(err))
		}
	}()

	// Holding the lease means no other worker is running this channel, so
	// any started job older than the lease belongs to a dead worker.
	if n, err := w.queue.requeueStale(ctx, w.channel, w.config.LeaseTTL, time.Now()); err != nil {
		w.logger.Error("failed to recover abandoned jobs",
			zap.String("channel", w.channel), zap.Error(err))
	} else if n > 0 {
		w.logger.Warn("requeued jobs abandoned by a dead worker",
			zap.String("channel", w.channel), zap.Int64("count", n))
	}

	for {
		if ctx.Err() != nil {
			return
		}
		job, err := w.queue.claimNext(ctx, w.channel, time.Now())
		if err != nil {
			w.logger.Error("failed to claim job",
				zap.String("channel", w.channel), zap.Error(err))
			return
		}
		if job == nil {
			return
		}

		if err := w.lease.Renew(ctx, w.channel, w.config.LeaseTTL); err != nil {
			w.logger.Warn("channel lease renewal failed, stopping drain",
				zap.String("channel", w.channel), zap.Error(err))
			return
		}

		w.runJob(ctx, job)
	}
}

// runJob dispatches a claimed job to its handler and records the outcome
func (w *ChannelWorker) runJob(ctx context.Context, job *models.QueueJobModel) {
	handler, ok := w.handlers[job.JobType]
	if !ok {
		err := fmt.Errorf("no handler registered for job type %q", job.JobType)
		w.logger.Error("unknown job type",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", job.JobType),
		)
		w.finishFailed(ctx, job, err)
		return
	}

	start := time.Now()
	if err := handler(ctx, job.Payload); err != nil {
		w.logger.Error("job failed",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", job.JobType),
			zap.Int("attempts", job.Attempts),
			zap.Error(err),
		)
		w.finishFailed(ctx, job, err)
		return
	}

	if err := w.queue.markDone(ctx, job.ID, time.Now()); err != nil {
		w.logger.Error("failed to mark job done",
			zap.String("job_id", job.ID.String()), zap.Error(err))
		return
	}

	w.logger.Info("job completed",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", job.JobType),
		zap.Duration("duration", time.Since(start)),
	)
}

func (w *ChannelWorker) finishFailed(ctx context.Context, job *models.QueueJobModel, jobErr error) {
	if err := w.queue.markFailed(ctx, job, jobErr, w.config.RetryDelay, time.Now()); err != nil {
		w.logger.Error("failed to record job failure",
			zap.String("job_id", job.ID.String()), zap.Error(err))
	}
}
