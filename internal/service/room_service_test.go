package service

import (
	"context"
	"testing"
	"time"

	"hotelops/internal/models"
	"hotelops/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoomService(t *testing.T, bufferHours int) (*RoomService, *models.Room) {
	t.Helper()
	db := newTestStore(t)
	logger := zerolog.Nop()
	settings := repository.NewMemorySettingsRepository(bufferHours)
	svc := NewRoomService(db, settings, nil, &logger)

	room := &models.Room{
		Name:     "301",
		Category: models.RoomCategoryFirstClass,
		Price:    decimal.NewFromInt(12000),
	}
	require.NoError(t, svc.CreateRoom(context.Background(), room))
	return svc, room
}

func TestCreateRoom_Validation(t *testing.T) {
	db := newTestStore(t)
	logger := zerolog.Nop()
	svc := NewRoomService(db, repository.NewMemorySettingsRepository(models.DefaultBufferHours), nil, &logger)
	ctx := context.Background()

	err := svc.CreateRoom(ctx, &models.Room{Category: models.RoomCategoryEconomy, Price: decimal.NewFromInt(100)})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	err = svc.CreateRoom(ctx, &models.Room{Name: "102", Category: "penthouse", Price: decimal.NewFromInt(100)})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	err = svc.CreateRoom(ctx, &models.Room{Name: "102", Category: models.RoomCategoryEconomy, Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestRoomTurnoverCycle(t *testing.T) {
	svc, room := newRoomService(t, 2)
	now := time.Date(2026, 6, 3, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	occupied, err := svc.CheckIn(ctx, room.ID, "front-desk")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusOccupied, occupied.Status)

	cleaning, err := svc.Checkout(ctx, room.ID, 0, "front-desk")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusCleaning, cleaning.Status)
	require.NotNil(t, cleaning.CleaningEndTime)
	assert.True(t, cleaning.CleaningEndTime.Equal(now.Add(2*time.Hour)))

	ready, err := svc.MarkReady(ctx, room.ID, "housekeeping")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusAvailable, ready.Status)
	assert.Nil(t, ready.CleaningEndTime)
}

func TestCheckout_RequiresOccupied(t *testing.T) {
	svc, room := newRoomService(t, 3)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, room.ID, 0, "front-desk")
	assert.ErrorIs(t, err, ErrInvalidRoomState)
}

func TestCheckIn_RejectedWhileCleaning(t *testing.T) {
	svc, room := newRoomService(t, 3)
	now := time.Date(2026, 6, 3, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, room.ID, "front-desk")
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, room.ID, 0, "front-desk")
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, room.ID, "front-desk")
	assert.ErrorIs(t, err, ErrInvalidRoomState)
}

func TestCheckIn_AllowedAfterBufferExpiry(t *testing.T) {
	svc, room := newRoomService(t, 2)
	now := time.Date(2026, 6, 3, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, room.ID, "front-desk")
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, room.ID, 0, "front-desk")
	require.NoError(t, err)

	now = now.Add(2*time.Hour + time.Minute)
	occupied, err := svc.CheckIn(ctx, room.ID, "front-desk")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusOccupied, occupied.Status)
}

func TestGetRoom_AppliesLazyExpiry(t *testing.T) {
	svc, room := newRoomService(t, 1)
	now := time.Date(2026, 6, 3, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, room.ID, "front-desk")
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, room.ID, 0, "front-desk")
	require.NoError(t, err)

	now = now.Add(90 * time.Minute)
	got, err := svc.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusAvailable, got.Status)
	assert.Nil(t, got.CleaningEndTime)

	// The reconcile write must have landed, not just the projection.
	stored, err := svc.store.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusAvailable, stored.Status)
}

func TestBufferWidthBakedAtCheckout(t *testing.T) {
	db := newTestStore(t)
	logger := zerolog.Nop()
	settings := repository.NewMemorySettingsRepository(2)
	svc := NewRoomService(db, settings, nil, &logger)
	now := time.Date(2026, 6, 3, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	room := &models.Room{Name: "105", Category: models.RoomCategoryBusiness, Price: decimal.NewFromInt(8000)}
	require.NoError(t, svc.CreateRoom(ctx, room))

	_, err := svc.CheckIn(ctx, room.ID, "front-desk")
	require.NoError(t, err)
	cleaning, err := svc.Checkout(ctx, room.ID, 0, "front-desk")
	require.NoError(t, err)

	// Widening the buffer afterwards must not move this room's end time.
	require.NoError(t, settings.SetBufferHours(ctx, 5))
	got, err := svc.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CleaningEndTime)
	assert.True(t, got.CleaningEndTime.Equal(*cleaning.CleaningEndTime))
}

func TestMarkReady_RequiresCleaning(t *testing.T) {
	svc, room := newRoomService(t, 3)
	ctx := context.Background()

	_, err := svc.MarkReady(ctx, room.ID, "housekeeping")
	assert.ErrorIs(t, err, ErrInvalidRoomState)
}

func TestSweepExpired(t *testing.T) {
	svc, room := newRoomService(t, 1)
	now := time.Date(2026, 6, 3, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, room.ID, "front-desk")
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, room.ID, 0, "front-desk")
	require.NoError(t, err)

	count, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "buffer still running")

	now = now.Add(61 * time.Minute)
	count, err = svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := svc.store.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusAvailable, stored.Status)
	assert.Nil(t, stored.CleaningEndTime)
}

func TestSeedCleaningGauge(t *testing.T) {
	db := newTestStore(t)
	logger := zerolog.Nop()
	settings := repository.NewMemorySettingsRepository(2)
	svc := NewRoomService(db, settings, nil, &logger)
	now := time.Date(2026, 6, 3, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	inBuffer := &models.Room{Name: "401", Category: models.RoomCategoryEconomy, Price: decimal.NewFromInt(4000)}
	require.NoError(t, svc.CreateRoom(ctx, inBuffer))
	_, err := svc.CheckIn(ctx, inBuffer.ID, "front-desk")
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, inBuffer.ID, 0, "front-desk")
	require.NoError(t, err)

	idle := &models.Room{Name: "402", Category: models.RoomCategoryEconomy, Price: decimal.NewFromInt(4000)}
	require.NoError(t, svc.CreateRoom(ctx, idle))

	count, err := svc.SeedCleaningGauge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// An expired buffer no longer counts.
	now = now.Add(3 * time.Hour)
	count, err = svc.SeedCleaningGauge(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBufferHours_ClampsSettingsValue(t *testing.T) {
	db := newTestStore(t)
	logger := zerolog.Nop()
	svc := NewRoomService(db, stubSettings{hours: 99}, nil, &logger)

	assert.Equal(t, models.MaxBufferHours, svc.bufferHours(context.Background()))

	svc.settings = stubSettings{hours: 0}
	assert.Equal(t, models.MinBufferHours, svc.bufferHours(context.Background()))

	svc.settings = stubSettings{err: context.DeadlineExceeded}
	assert.Equal(t, models.DefaultBufferHours, svc.bufferHours(context.Background()))
}

type stubSettings struct {
	hours int
	err   error
}

func (s stubSettings) GetBufferHours(ctx context.Context) (int, error) { return s.hours, s.err }
func (s stubSettings) SetBufferHours(ctx context.Context, hours int) error {
	return nil
}
