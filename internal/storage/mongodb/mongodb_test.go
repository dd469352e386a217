//go:build integration

package mongodb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rescueconnect/internal/domain"
	"rescueconnect/pkg/e"
)

var (
	testDB *mongo.Database
	testM  *MongoDB
	tc     testcontainers.Container
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("27017/tcp"),
			wait.ForLog("Waiting for connections"),
		).WithDeadline(90 * time.Second),
	}

	var err error
	tc, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Println("cannot start container:", err)
		os.Exit(1)
	}

	host, _ := tc.Host(ctx)
	mappedPort, _ := tc.MappedPort(ctx, "27017/tcp")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(fmt.Sprintf("mongodb://%s:%s", host, mappedPort.Port())))
	if err != nil {
		fmt.Println("mongo.Connect:", err)
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	testDB = client.Database("rescueconnect_test")
	if err := EnsureIndexes(ctx, testDB); err != nil {
		fmt.Println("EnsureIndexes:", err)
		_ = client.Disconnect(ctx)
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	testM = New(testDB, slog.New(slog.NewTextHandler(io.Discard, nil)))

	code := m.Run()

	_ = client.Disconnect(ctx)
	_ = tc.Terminate(ctx)
	os.Exit(code)
}

func resetCollections(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for _, name := range []string{agenciesCollection, alertsCollection} {
		_, err := testDB.Collection(name).DeleteMany(ctx, map[string]any{})
		require.NoError(t, err, "reset %s", name)
	}
}

func mustAgency(t *testing.T, name string, lng, lat float64) *domain.Agency {
	t.Helper()
	a := &domain.Agency{Name: name, Coordinates: domain.Coordinates{lng, lat}}
	require.NoError(t, testM.Agency.Create(context.Background(), a))
	return a
}

func mustAlert(t *testing.T, creator uuid.UUID, expiresIn time.Duration, recipients ...uuid.UUID) *domain.Alert {
	t.Helper()
	a := &domain.Alert{
		Title:       "Wildfire",
		Message:     "Evacuate sector 4",
		Severity:    domain.SeverityHigh,
		Coordinates: domain.Coordinates{0, 0},
		RadiusKM:    10,
		CreatedBy:   creator,
		Recipients:  recipients,
		ExpiresAt:   time.Now().UTC().Add(expiresIn),
	}
	require.NoError(t, testM.Alert.Create(context.Background(), a))
	return a
}

func TestAgency_FindNearby_SphericalRadius(t *testing.T) {
	resetCollections(t)

	creator := mustAgency(t, "Creator", 0, 0)
	near := mustAgency(t, "Near", 0, 0.05)
	_ = mustAgency(t, "Far", 0, 5)

	ids, err := testM.Agency.FindNearby(context.Background(), domain.Coordinates{0, 0}, 10, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{near.ID}, ids)
}

func TestAgency_FindNearby_InvalidInput(t *testing.T) {
	_, err := testM.Agency.FindNearby(context.Background(), domain.Coordinates{-181, 0}, 10, uuid.Nil)
	assert.ErrorIs(t, err, e.ErrInvalidCoordinates)
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	_, err = testM.Agency.FindNearby(context.Background(), domain.Coordinates{0, 0}, 0, uuid.Nil)
	assert.ErrorIs(t, err, e.ErrInvalidInput)
	assert.NotErrorIs(t, err, e.ErrInvalidCoordinates)
}

func TestAgency_UpdateLocation(t *testing.T) {
	resetCollections(t)

	a := mustAgency(t, "Mobile unit", 10, 10)
	require.NoError(t, testM.Agency.UpdateLocation(context.Background(), a.ID, domain.Coordinates{0, 0.01}))

	got, err := testM.Agency.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{0, 0.01}, got.Coordinates)

	err = testM.Agency.UpdateLocation(context.Background(), uuid.New(), domain.Coordinates{0, 0})
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestAgency_AddVisibleAlert_Idempotent(t *testing.T) {
	resetCollections(t)

	creator := mustAgency(t, "Creator", 0, 0)
	target := mustAgency(t, "Target", 0, 0.01)
	alert := mustAlert(t, creator.ID, time.Hour)

	added, err := testM.Agency.AddVisibleAlert(context.Background(), alert.ID, []uuid.UUID{target.ID, uuid.New()})
	require.NoError(t, err)
	assert.EqualValues(t, 1, added)

	added, err = testM.Agency.AddVisibleAlert(context.Background(), alert.ID, []uuid.UUID{target.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 0, added)

	got, err := testM.Agency.Get(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{alert.ID}, got.Alerts)
}

func TestAlert_ListForAgency_BothChannels_NoDoubleCount(t *testing.T) {
	resetCollections(t)

	creator := mustAgency(t, "Creator", 0, 0)
	reader := mustAgency(t, "Reader", 0, 0.01)

	both := mustAlert(t, creator.ID, time.Hour, reader.ID)
	_, err := testM.Agency.AddVisibleAlert(context.Background(), both.ID, []uuid.UUID{reader.ID})
	require.NoError(t, err)
	fanned := mustAlert(t, creator.ID, time.Hour)
	_, err = testM.Agency.AddVisibleAlert(context.Background(), fanned.ID, []uuid.UUID{reader.ID})
	require.NoError(t, err)
	_ = mustAlert(t, creator.ID, time.Hour)

	list, err := testM.Alert.ListForAgency(context.Background(), reader.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Creator", list[0].Creator.Name)

	cnt, err := testM.Alert.CountUnread(context.Background(), reader.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, cnt)

	require.NoError(t, testM.Alert.AddReader(context.Background(), fanned.ID, reader.ID))
	cnt, err = testM.Alert.CountUnread(context.Background(), reader.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cnt)
}

func TestAlert_AddReader_Concurrent_NoDuplicates(t *testing.T) {
	resetCollections(t)

	creator := mustAgency(t, "Creator", 0, 0)
	var readers []uuid.UUID
	for i := 0; i < 6; i++ {
		readers = append(readers, mustAgency(t, fmt.Sprintf("Reader %d", i), 0, 0.01).ID)
	}
	alert := mustAlert(t, creator.ID, time.Hour, readers...)

	var wg sync.WaitGroup
	errs := make(chan error, len(readers)*2)
	for _, id := range readers {
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func(id uuid.UUID) {
				defer wg.Done()
				errs <- testM.Alert.AddReader(context.Background(), alert.ID, id)
			}(id)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := testM.Alert.Get(context.Background(), alert.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, readers, got.ReadBy)
}

func TestAlert_Expired_Invisible(t *testing.T) {
	resetCollections(t)

	creator := mustAgency(t, "Creator", 0, 0)
	reader := mustAgency(t, "Reader", 0, 0.01)
	alert := mustAlert(t, creator.ID, time.Second, reader.ID)

	time.Sleep(1500 * time.Millisecond)

	_, err := testM.Alert.Get(context.Background(), alert.ID)
	assert.True(t, errors.Is(err, e.ErrNotFound), "expected ErrNotFound, got %v", err)

	list, err := testM.Alert.ListForAgency(context.Background(), reader.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, testM.Alert.Deactivate(context.Background(), alert.ID), e.ErrNotFound)
	assert.ErrorIs(t, testM.Alert.AddReader(context.Background(), alert.ID, reader.ID), e.ErrNotFound)

	// The TTL monitor may already have removed it.
	_, err = testM.Alert.PurgeExpired(context.Background())
	require.NoError(t, err)
}

func TestAlert_Deactivate_HiddenFromRecipients(t *testing.T) {
	resetCollections(t)

	creator := mustAgency(t, "Creator", 0, 0)
	reader := mustAgency(t, "Reader", 0, 0.01)
	alert := mustAlert(t, creator.ID, time.Hour, reader.ID)

	require.NoError(t, testM.Alert.Deactivate(context.Background(), alert.ID))

	got, err := testM.Alert.Get(context.Background(), alert.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertInactive, got.Status)

	list, err := testM.Alert.ListForAgency(context.Background(), reader.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, testM.Alert.AddReader(context.Background(), alert.ID, reader.ID))
	got, err = testM.Alert.Get(context.Background(), alert.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ReadBy, "inactive alert must not record acks")

	assert.ErrorIs(t, testM.Alert.Deactivate(context.Background(), uuid.New()), e.ErrNotFound)
}

func TestAlert_PurgeExpired_PrunesVisibleSets(t *testing.T) {
	resetCollections(t)
	ctx := context.Background()

	creator := mustAgency(t, "Creator", 0, 0)
	reader := mustAgency(t, "Reader", 0, 0.01)

	expired := mustAlert(t, creator.ID, time.Second)
	swept := mustAlert(t, creator.ID, time.Hour)
	live := mustAlert(t, creator.ID, time.Hour)
	for _, a := range []*domain.Alert{expired, swept, live} {
		_, err := testM.Agency.AddVisibleAlert(ctx, a.ID, []uuid.UUID{reader.ID})
		require.NoError(t, err)
	}

	// Stands in for the TTL monitor removing a document behind our back.
	_, err := testDB.Collection(alertsCollection).DeleteOne(ctx, map[string]any{"_id": swept.ID.String()})
	require.NoError(t, err)

	time.Sleep(1500 * time.Millisecond)

	_, err = testM.Alert.PurgeExpired(ctx)
	require.NoError(t, err)

	var doc agencyDoc
	require.NoError(t, testDB.Collection(agenciesCollection).FindOne(ctx, map[string]any{"_id": reader.ID.String()}).Decode(&doc))
	assert.Equal(t, []string{live.ID.String()}, doc.Alerts)
}

func TestAlert_ListSentBy_ResolvesRecipientNames(t *testing.T) {
	resetCollections(t)

	creator := mustAgency(t, "Creator", 0, 0)
	reader := mustAgency(t, "Odesa EMS", 0, 0.01)
	ghost := uuid.New()
	_ = mustAlert(t, creator.ID, time.Hour, reader.ID, ghost)

	sent, err := testM.Alert.ListSentBy(context.Background(), creator.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, []domain.AgencyRef{
		{ID: reader.ID, Name: "Odesa EMS"},
		{ID: ghost, Name: ""},
	}, sent[0].Recipients)
}
