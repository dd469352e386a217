package workers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"rescueconnect/internal/domain"
	"rescueconnect/internal/metrics"
	"rescueconnect/pkg/e"
)

const (
	defaultMaxAttempts = 3
	defaultBackoff     = time.Second
	defaultPopTimeout  = 5 * time.Second
	depthInterval      = 15 * time.Second
)

// DistributionPool drains the distribution queue with a fixed number of workers.
type DistributionPool struct {
	source   JobSource
	runner   JobRunner
	logger   *slog.Logger
	poolSize int

	MaxAttempts int
	Backoff     time.Duration
	PopTimeout  time.Duration
}

func NewDistributionPool(source JobSource, runner JobRunner, logger *slog.Logger, poolSize int) *DistributionPool {
	if poolSize < 1 {
		poolSize = 1
	}
	return &DistributionPool{
		source:      source,
		runner:      runner,
		logger:      logger,
		poolSize:    poolSize,
		MaxAttempts: defaultMaxAttempts,
		Backoff:     defaultBackoff,
		PopTimeout:  defaultPopTimeout,
	}
}

// Run blocks until ctx is canceled and every worker has returned.
func (p *DistributionPool) Run(ctx context.Context) {
	p.logger.Info("distribution pool STARTED", slog.Int("workers", p.poolSize))

	var wg sync.WaitGroup
	for i := 0; i < p.poolSize; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.worker(ctx, id)
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.reportDepth(ctx)
	}()
	wg.Wait()

	p.logger.Info("distribution pool STOPPED", slog.String("reason", context.Cause(ctx).Error()))
}

func (p *DistributionPool) worker(ctx context.Context, id int) {
	for {
		if ctx.Err() != nil {
			return
		}

		job, err := p.source.BRPop(ctx, p.PopTimeout)
		if err != nil {
			if errors.Is(err, e.ErrQueueEmpty) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("BRPop failed", slog.Int("worker", id), slog.Any("error", err))
			if !sleepCtx(ctx, 500*time.Millisecond) {
				return
			}
			continue
		}

		p.process(ctx, job)
	}
}

// process retries with a linear backoff; a job that keeps failing is dropped.
func (p *DistributionPool) process(ctx context.Context, job domain.DistributionJob) {
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			p.logger.Info("stop retries due to context cancel", slog.String("alert_id", job.AlertID.String()))
			return
		}

		_, err := p.runner.Distribute(ctx, job)
		if err == nil {
			return
		}

		p.logger.Warn("distribution failed",
			slog.Int("attempt", attempt),
			slog.String("alert_id", job.AlertID.String()),
			slog.Any("error", err),
		)

		if attempt < p.MaxAttempts && !sleepCtx(ctx, time.Duration(attempt)*p.Backoff) {
			return
		}
	}

	metrics.DistributionDropped.Inc()
	p.logger.Error("distribution job dropped",
		slog.String("alert_id", job.AlertID.String()),
		slog.Int("attempts", p.MaxAttempts),
	)
}

func (p *DistributionPool) reportDepth(ctx context.Context) {
	ticker := time.NewTicker(depthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.source.Len(ctx)
			if err != nil {
				p.logger.Warn("queue length unavailable", slog.Any("error", err))
				continue
			}
			metrics.DistributionQueueDepth.Set(float64(n))
		}
	}
}
