package workers

import (
	"context"
	"time"

	"rescueconnect/internal/domain"
)

//go:generate mockgen -source=workers.go -destination=mocks/mock.go
type JobSource interface {
	BRPop(ctx context.Context, timeout time.Duration) (domain.DistributionJob, error)
	Len(ctx context.Context) (int64, error)
}

type JobRunner interface {
	Distribute(ctx context.Context, job domain.DistributionJob) (domain.DistributionResult, error)
}

type ExpiredPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
