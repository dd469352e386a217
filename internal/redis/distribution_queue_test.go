//go:build integration

package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"rescueconnect/internal/domain"
	"rescueconnect/pkg/e"
)

var testClient *redis.Client

func TestMain(m *testing.M) {
	ctx := context.Background()

	tc, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		fmt.Println("cannot start container:", err)
		os.Exit(1)
	}

	host, _ := tc.Host(ctx)
	port, _ := tc.MappedPort(ctx, "6379/tcp")
	testClient = redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})

	code := m.Run()

	_ = testClient.Close()
	_ = tc.Terminate(ctx)
	os.Exit(code)
}

func newQueue(t *testing.T) *DistributionQueue {
	t.Helper()
	key := "test:" + uuid.NewString()
	t.Cleanup(func() { testClient.Del(context.Background(), key) })
	return NewDistributionQueue(testClient, key)
}

func TestDistributionQueue_FIFO(t *testing.T) {
	ctx := context.Background()
	q := newQueue(t)

	first := domain.DistributionJob{
		AlertID:     uuid.New(),
		CreatedBy:   uuid.New(),
		Coordinates: domain.Coordinates{30.5, 50.4},
		RadiusKM:    12.5,
		Recipients:  []uuid.UUID{uuid.New()},
	}
	second := domain.DistributionJob{AlertID: uuid.New(), RadiusKM: 1}

	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	got, err := q.BRPop(ctx, time.Second)
	require.NoError(t, err)
	require.Equal(t, first, got)

	got, err = q.BRPop(ctx, time.Second)
	require.NoError(t, err)
	require.Equal(t, second.AlertID, got.AlertID)
}

func TestDistributionQueue_BRPop_EmptyTimesOut(t *testing.T) {
	q := newQueue(t)

	_, err := q.BRPop(context.Background(), 200*time.Millisecond)
	require.True(t, errors.Is(err, e.ErrQueueEmpty), "got %v", err)
}

func TestDistributionQueue_Enqueue_Unavailable(t *testing.T) {
	dead := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer dead.Close()

	err := NewDistributionQueue(dead, "k").Enqueue(context.Background(), domain.DistributionJob{AlertID: uuid.New()})
	require.ErrorIs(t, err, e.ErrDependencyUnavailable)
}
