package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"rescueconnect/internal/domain"
	"rescueconnect/internal/metrics"
	"rescueconnect/pkg/e"

	"github.com/google/uuid"
)

// Distributor resolves who should see an alert and records it in their visible set.
type Distributor struct {
	agencies AgencyRepository
	logger   *slog.Logger
}

func NewDistributor(agencies AgencyRepository, logger *slog.Logger) *Distributor {
	return &Distributor{agencies: agencies, logger: logger}
}

// Distribute is safe to run more than once for the same job.
func (d *Distributor) Distribute(ctx context.Context, job domain.DistributionJob) (domain.DistributionResult, error) {
	const op = "service.Distributor.Distribute"

	res := domain.DistributionResult{AlertID: job.AlertID}

	nearby, err := d.agencies.FindNearby(ctx, job.Coordinates, job.RadiusKM, job.CreatedBy)
	if err != nil {
		metrics.DistributionRuns.WithLabelValues(metrics.ResultFailed).Inc()
		return res, fmt.Errorf("%s: find nearby: %w: %w", op, e.ErrDependencyUnavailable, err)
	}
	res.Nearby = len(nearby)

	recipients := mergeRecipients(nearby, job.Recipients)
	res.Recipients = len(recipients)

	if len(recipients) > 0 {
		added, err := d.agencies.AddVisibleAlert(ctx, job.AlertID, recipients)
		if err != nil {
			metrics.DistributionRuns.WithLabelValues(metrics.ResultFailed).Inc()
			return res, fmt.Errorf("%s: fan-out: %w: %w", op, e.ErrDependencyUnavailable, err)
		}
		res.Added = added
	}

	metrics.DistributionRuns.WithLabelValues(metrics.ResultOK).Inc()
	metrics.DistributionRecipients.Observe(float64(res.Recipients))

	d.logger.Info("alert distributed",
		slog.String("alert_id", job.AlertID.String()),
		slog.Int("nearby", res.Nearby),
		slog.Int("recipients", res.Recipients),
		slog.Int64("added", res.Added),
	)
	return res, nil
}

// mergeRecipients unions proximity matches with explicit recipients, keeping first-seen order.
func mergeRecipients(nearby, explicit []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(nearby)+len(explicit))
	seen := make(map[uuid.UUID]struct{}, len(nearby)+len(explicit))
	for _, list := range [][]uuid.UUID{nearby, explicit} {
		for _, id := range list {
			if id == uuid.Nil {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// InlineDispatcher runs distribution in-process, in the background, so the
// create request returns as soon as the alert is stored.
type InlineDispatcher struct {
	distributor *Distributor
	timeout     time.Duration
	wg          sync.WaitGroup
}

func NewInlineDispatcher(distributor *Distributor, timeout time.Duration) *InlineDispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &InlineDispatcher{distributor: distributor, timeout: timeout}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, job domain.DistributionJob) error {
	// A client hanging up must not cut the fan-out short.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()

		if _, err := d.distributor.Distribute(ctx, job); err != nil {
			metrics.DispatchFailures.Inc()
			d.distributor.logger.Error("inline distribution failed",
				slog.String("alert_id", job.AlertID.String()),
				slog.Any("error", err),
			)
		}
	}()
	return nil
}

// Wait blocks until every background distribution has finished.
func (d *InlineDispatcher) Wait() {
	d.wg.Wait()
}

// QueueDispatcher defers distribution to the worker pool and falls back to
// the given dispatcher when the queue cannot take the job.
type QueueDispatcher struct {
	queue    DistributionQueue
	fallback Dispatcher
	logger   *slog.Logger
}

func NewQueueDispatcher(queue DistributionQueue, fallback Dispatcher, logger *slog.Logger) *QueueDispatcher {
	return &QueueDispatcher{queue: queue, fallback: fallback, logger: logger}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, job domain.DistributionJob) error {
	err := d.queue.Enqueue(ctx, job)
	if err == nil {
		d.logger.Debug("distribution job enqueued", slog.String("alert_id", job.AlertID.String()))
		return nil
	}

	d.logger.Warn("enqueue distribution job failed, distributing inline",
		slog.String("alert_id", job.AlertID.String()),
		slog.Any("error", err),
	)
	if d.fallback == nil {
		return err
	}
	return d.fallback.Dispatch(ctx, job)
}
