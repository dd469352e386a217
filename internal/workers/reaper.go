package workers

import (
	"context"
	"log/slog"
	"time"

	"rescueconnect/internal/metrics"
)

// Reaper deletes expired alerts on a fixed interval. Reads already hide
// them, so a late sweep only costs storage.
type Reaper struct {
	alerts   ExpiredPurger
	interval time.Duration
	logger   *slog.Logger
}

func NewReaper(alerts ExpiredPurger, interval time.Duration, logger *slog.Logger) *Reaper {
	return &Reaper{alerts: alerts, interval: interval, logger: logger}
}

func (r *Reaper) Run(ctx context.Context) {
	r.logger.Info("reaper STARTED", slog.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper STOPPED")
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	n, err := r.alerts.PurgeExpired(ctx)
	if err != nil {
		r.logger.Error("purge expired alerts failed", slog.Any("error", err))
		return
	}
	if n > 0 {
		metrics.AlertsPurged.Add(float64(n))
		r.logger.Info("expired alerts purged", slog.Int64("count", n))
	}
}
