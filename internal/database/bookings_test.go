package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"hotelops/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	return db
}

func createTestRoom(t *testing.T, db *DB) *models.Room {
	t.Helper()
	room := &models.Room{
		Name:     "101",
		Category: models.RoomCategoryEconomy,
		Price:    decimal.NewFromInt(5000),
		Status:   models.RoomStatusAvailable,
	}
	require.NoError(t, db.CreateRoom(context.Background(), room))
	return room
}

func createTestBooking(t *testing.T, db *DB, roomID int64) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		RoomID:      roomID,
		GuestName:   "Ivan Petrov",
		GuestEmail:  "ivan@example.com",
		CheckIn:     time.Now().AddDate(0, 0, 1),
		CheckOut:    time.Now().AddDate(0, 0, 3),
		Nights:      2,
		Guests:      2,
		TotalAmount: decimal.NewFromInt(10000),
		FinalAmount: decimal.NewFromInt(10000),
	}
	require.NoError(t, db.CreateBooking(context.Background(), booking))
	return booking
}

func TestCreateBooking_Defaults(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	room := createTestRoom(t, db)
	booking := createTestBooking(t, db, room.ID)

	assert.NotZero(t, booking.ID)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, models.PaymentStatusNone, booking.PaymentStatus)
	assert.Equal(t, int64(1), booking.Version)

	stored, err := db.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.GuestName, stored.GuestName)
	assert.True(t, stored.TotalAmount.Equal(decimal.NewFromInt(10000)))
	assert.Nil(t, stored.PaidAt)
}

func TestGetBooking_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetBooking(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateBookingStateWithVersion(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	room := createTestRoom(t, db)
	booking := createTestBooking(t, db, room.ID)

	booking.Status = models.BookingStatusConfirmed
	booking.PaymentStatus = models.PaymentStatusPending
	require.NoError(t, db.UpdateBookingStateWithVersion(context.Background(), booking, 1))
	assert.Equal(t, int64(2), booking.Version)

	stored, err := db.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, stored.Status)
	assert.Equal(t, models.PaymentStatusPending, stored.PaymentStatus)
	assert.Equal(t, int64(2), stored.Version)
}

func TestUpdateBookingStateWithVersion_StaleVersion(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	room := createTestRoom(t, db)
	booking := createTestBooking(t, db, room.ID)

	booking.Status = models.BookingStatusConfirmed
	require.NoError(t, db.UpdateBookingStateWithVersion(context.Background(), booking, 1))

	// A writer still holding version 1 must lose.
	stale := *booking
	stale.Status = models.BookingStatusCancelled
	err := db.UpdateBookingStateWithVersion(context.Background(), &stale, 1)
	assert.ErrorIs(t, err, ErrConcurrentModification)

	stored, err := db.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, stored.Status)
}

func TestGetPaidBookingsBetween(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	room := createTestRoom(t, db)

	paidInWindow := createTestBooking(t, db, room.ID)
	paidAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	paidInWindow.Status = models.BookingStatusConfirmed
	paidInWindow.PaymentStatus = models.PaymentStatusPaid
	paidInWindow.PaidAt = &paidAt
	require.NoError(t, db.UpdateBookingStateWithVersion(ctx, paidInWindow, 1))

	paidOutside := createTestBooking(t, db, room.ID)
	outsideAt := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	paidOutside.Status = models.BookingStatusConfirmed
	paidOutside.PaymentStatus = models.PaymentStatusPaid
	paidOutside.PaidAt = &outsideAt
	require.NoError(t, db.UpdateBookingStateWithVersion(ctx, paidOutside, 1))

	unpaid := createTestBooking(t, db, room.ID)
	unpaid.Status = models.BookingStatusConfirmed
	unpaid.PaymentStatus = models.PaymentStatusPending
	require.NoError(t, db.UpdateBookingStateWithVersion(ctx, unpaid, 1))

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	bookings, err := db.GetPaidBookingsBetween(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, paidInWindow.ID, bookings[0].ID)
}

func TestGetConfirmedUnpaidBookings(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	room := createTestRoom(t, db)

	confirmed := createTestBooking(t, db, room.ID)
	confirmed.Status = models.BookingStatusConfirmed
	confirmed.PaymentStatus = models.PaymentStatusPending
	require.NoError(t, db.UpdateBookingStateWithVersion(ctx, confirmed, 1))

	// Pending bookings are not upcoming revenue yet.
	createTestBooking(t, db, room.ID)

	bookings, err := db.GetConfirmedUnpaidBookings(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, confirmed.ID, bookings[0].ID)
}

func TestGetBookingsByRoom(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	room := createTestRoom(t, db)
	other := createTestRoom(t, db)

	first := createTestBooking(t, db, room.ID)
	second := createTestBooking(t, db, room.ID)
	createTestBooking(t, db, other.ID)

	bookings, err := db.GetBookingsByRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, first.ID, bookings[0].ID)
	assert.Equal(t, second.ID, bookings[1].ID)

	empty, err := db.GetBookingsByRoom(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestScanBooking_EmptyPaymentStatus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	room := createTestRoom(t, db)
	booking := createTestBooking(t, db, room.ID)

	_, err := db.ExecContext(ctx, `UPDATE bookings SET payment_status = '' WHERE id = ?`, booking.ID)
	require.NoError(t, err)

	_, err = db.GetBooking(ctx, booking.ID)
	assert.ErrorIs(t, err, ErrCorruptRecord)
}
