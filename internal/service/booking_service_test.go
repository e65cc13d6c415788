package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"hotelops/internal/database"
	"hotelops/internal/events"
	"hotelops/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRoom(t *testing.T, db *database.DB) *models.Room {
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

func newBookingService(t *testing.T, db *database.DB, bus *events.EventBus) *BookingService {
	t.Helper()
	logger := zerolog.Nop()
	return NewBookingService(db, bus, nil, &logger)
}

func newBookingRequest(roomID int64) *models.Booking {
	return &models.Booking{
		RoomID:      roomID,
		GuestName:   "Ivan Petrov",
		GuestEmail:  "ivan@example.com",
		CheckIn:     time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC),
		CheckOut:    time.Date(2026, 6, 3, 12, 0, 0, 0, time.UTC),
		Guests:      2,
		TotalAmount: decimal.NewFromInt(10000),
	}
}

func TestBookingLifecycle(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db, events.NewEventBus())
	paidAt := time.Date(2026, 6, 3, 12, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return paidAt }
	ctx := context.Background()

	room := newTestRoom(t, db)
	booking := newBookingRequest(room.ID)
	require.NoError(t, svc.CreateBooking(ctx, booking))
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, models.PaymentStatusNone, booking.PaymentStatus)

	confirmed, err := svc.ConfirmBooking(ctx, booking.ID, "front-desk")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)
	assert.Equal(t, models.PaymentStatusPending, confirmed.PaymentStatus)

	discounted, err := svc.ApplyDiscount(ctx, booking.ID, models.Discount{
		Type:   models.DiscountTypePercentage,
		Value:  decimal.NewFromInt(20),
		Reason: "repeat guest",
	}, "front-desk")
	require.NoError(t, err)
	assert.True(t, discounted.DiscountAmount.Equal(decimal.NewFromInt(2000)))
	assert.True(t, discounted.FinalAmount.Equal(decimal.NewFromInt(8000)))

	paid, err := svc.RecordPayment(ctx, booking.ID, "front-desk")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paid.PaidAt.Equal(paidAt))
	assert.True(t, paid.FinalAmount.Equal(decimal.NewFromInt(8000)))

	stored, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
	assert.True(t, stored.FinalAmount.Equal(decimal.NewFromInt(8000)))
}

func TestCreateBooking_Validation(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db, nil)
	ctx := context.Background()
	room := newTestRoom(t, db)

	negative := newBookingRequest(room.ID)
	negative.TotalAmount = decimal.NewFromInt(-1)
	assert.ErrorIs(t, svc.CreateBooking(ctx, negative), ErrInvalidEntry)

	inverted := newBookingRequest(room.ID)
	inverted.CheckOut = inverted.CheckIn.Add(-time.Hour)
	assert.ErrorIs(t, svc.CreateBooking(ctx, inverted), ErrInvalidEntry)

	orphan := newBookingRequest(999)
	assert.ErrorIs(t, svc.CreateBooking(ctx, orphan), database.ErrNotFound)
}

func TestCreateBooking_DerivesNights(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db, nil)
	room := newTestRoom(t, db)

	booking := newBookingRequest(room.ID)
	require.NoError(t, svc.CreateBooking(context.Background(), booking))
	assert.Equal(t, 1, booking.Nights)
}

func TestListBookingsByRoom(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db, nil)
	ctx := context.Background()
	room := newTestRoom(t, db)

	booking := newBookingRequest(room.ID)
	require.NoError(t, svc.CreateBooking(ctx, booking))

	bookings, err := svc.ListBookingsByRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, booking.ID, bookings[0].ID)

	_, err = svc.ListBookingsByRoom(ctx, 999)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestConfirmBooking_OnlyFromPending(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db, nil)
	ctx := context.Background()
	room := newTestRoom(t, db)

	booking := newBookingRequest(room.ID)
	require.NoError(t, svc.CreateBooking(ctx, booking))
	_, err := svc.ConfirmBooking(ctx, booking.ID, "front-desk")
	require.NoError(t, err)

	_, err = svc.ConfirmBooking(ctx, booking.ID, "front-desk")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelBooking_OnlyFromPending(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db, nil)
	ctx := context.Background()
	room := newTestRoom(t, db)

	pending := newBookingRequest(room.ID)
	require.NoError(t, svc.CreateBooking(ctx, pending))
	cancelled, err := svc.CancelBooking(ctx, pending.ID, "front-desk")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	confirmedBooking := newBookingRequest(room.ID)
	require.NoError(t, svc.CreateBooking(ctx, confirmedBooking))
	_, err = svc.ConfirmBooking(ctx, confirmedBooking.ID, "front-desk")
	require.NoError(t, err)
	_, err = svc.CancelBooking(ctx, confirmedBooking.ID, "front-desk")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRecordPayment_OnlyOnce(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db, nil)
	ctx := context.Background()
	room := newTestRoom(t, db)

	booking := newBookingRequest(room.ID)
	require.NoError(t, svc.CreateBooking(ctx, booking))

	// Payment before confirmation is rejected.
	_, err := svc.RecordPayment(ctx, booking.ID, "front-desk")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.ConfirmBooking(ctx, booking.ID, "front-desk")
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, booking.ID, "front-desk")
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, booking.ID, "front-desk")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApplyDiscount_RequiresConfirmed(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db, nil)
	ctx := context.Background()
	room := newTestRoom(t, db)

	booking := newBookingRequest(room.ID)
	require.NoError(t, svc.CreateBooking(ctx, booking))

	discount := models.Discount{Type: models.DiscountTypePercentage, Value: decimal.NewFromInt(10)}
	_, err := svc.ApplyDiscount(ctx, booking.ID, discount, "front-desk")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApplyDiscount_CorrectionAfterPayment(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db, nil)
	ctx := context.Background()
	room := newTestRoom(t, db)

	booking := newBookingRequest(room.ID)
	require.NoError(t, svc.CreateBooking(ctx, booking))
	_, err := svc.ConfirmBooking(ctx, booking.ID, "front-desk")
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, booking.ID, "front-desk")
	require.NoError(t, err)

	// Fixing the discount on a paid booking must move the final amount too.
	corrected, err := svc.ApplyDiscount(ctx, booking.ID, models.Discount{
		Type:  models.DiscountTypeAmount,
		Value: decimal.NewFromInt(1500),
	}, "accounting")
	require.NoError(t, err)
	assert.True(t, corrected.FinalAmount.Equal(decimal.NewFromInt(8500)))
	assert.Equal(t, models.PaymentStatusPaid, corrected.PaymentStatus)
}

func TestApplyDiscount_InvalidValueRejected(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db, nil)
	ctx := context.Background()
	room := newTestRoom(t, db)

	booking := newBookingRequest(room.ID)
	require.NoError(t, svc.CreateBooking(ctx, booking))
	_, err := svc.ConfirmBooking(ctx, booking.ID, "front-desk")
	require.NoError(t, err)

	discount := models.Discount{Type: models.DiscountTypePercentage, Value: decimal.NewFromInt(150)}
	_, err = svc.ApplyDiscount(ctx, booking.ID, discount, "front-desk")
	assert.ErrorIs(t, err, ErrInvalidDiscount)

	stored, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.True(t, stored.DiscountAmount.IsZero(), "rejected discount must not touch the record")
}

func TestSendReviewInvitation_Monotonic(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db, nil)
	ctx := context.Background()
	room := newTestRoom(t, db)

	booking := newBookingRequest(room.ID)
	require.NoError(t, svc.CreateBooking(ctx, booking))
	_, err := svc.ConfirmBooking(ctx, booking.ID, "front-desk")
	require.NoError(t, err)

	invited, err := svc.SendReviewInvitation(ctx, booking.ID, "front-desk")
	require.NoError(t, err)
	assert.True(t, invited.ReviewInvitationSent)

	_, err = svc.SendReviewInvitation(ctx, booking.ID, "front-desk")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBookingService_PublishesEvents(t *testing.T) {
	db := newTestStore(t)
	bus := events.NewEventBus()
	svc := newBookingService(t, db, bus)
	ctx := context.Background()
	room := newTestRoom(t, db)

	var got []events.BookingEventPayload
	bus.Subscribe(events.EventPaymentRecorded, func(event *events.Event) error {
		var payload events.BookingEventPayload
		require.NoError(t, json.Unmarshal(event.Payload, &payload))
		got = append(got, payload)
		return nil
	})

	booking := newBookingRequest(room.ID)
	require.NoError(t, svc.CreateBooking(ctx, booking))
	_, err := svc.ConfirmBooking(ctx, booking.ID, "front-desk")
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, booking.ID, "front-desk")
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, booking.ID, got[0].BookingID)
	assert.Equal(t, models.PaymentStatusPaid, got[0].PaymentStatus)
	assert.Equal(t, "10000", got[0].FinalAmount)
	assert.Equal(t, "front-desk", got[0].Actor)
}
