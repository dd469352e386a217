package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rescueconnect/internal/domain"
	"rescueconnect/pkg/e"

	"github.com/redis/go-redis/v9"
)

// DistributionQueue is a FIFO of fan-out jobs: LPUSH on enqueue, BRPOP on consume.
type DistributionQueue struct {
	client redis.Cmdable
	key    string
}

func NewDistributionQueue(client redis.Cmdable, key string) *DistributionQueue {
	return &DistributionQueue{client: client, key: key}
}

func (q *DistributionQueue) Enqueue(ctx context.Context, job domain.DistributionJob) error {
	const op = "redis.DistributionQueue.Enqueue"

	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := q.client.LPush(ctx, q.key, b).Err(); err != nil {
		return fmt.Errorf("%s: %w: %v", op, e.ErrDependencyUnavailable, err)
	}
	return nil
}

func (q *DistributionQueue) BRPop(ctx context.Context, timeout time.Duration) (domain.DistributionJob, error) {
	var job domain.DistributionJob

	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return job, e.ErrQueueEmpty
		}
		return job, err
	}
	if len(res) < 2 {
		return job, e.ErrQueueEmpty
	}
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return job, err
	}
	return job, nil
}

func (q *DistributionQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
