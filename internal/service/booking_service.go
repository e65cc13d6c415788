package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotelops/internal/database"
	"hotelops/internal/domain"
	"hotelops/internal/events"
	"hotelops/internal/metrics"
	"hotelops/internal/models"
	"hotelops/internal/worker"

	"github.com/rs/zerolog"
)

// conflictRetries bounds the optimistic-concurrency retry loop. A transition
// that loses the race this many times in a row returns the conflict to the
// caller instead of spinning.
const conflictRetries = 3

type BookingService struct {
	store      domain.LedgerStore
	eventBus   domain.EventPublisher
	syncWorker domain.SyncWorker
	retry      worker.RetryPolicy
	now        func() time.Time
	logger     *zerolog.Logger
}

func NewBookingService(store domain.LedgerStore, eventBus domain.EventPublisher, syncWorker domain.SyncWorker, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:      store,
		eventBus:   eventBus,
		syncWorker: syncWorker,
		retry: worker.RetryPolicy{
			MaxRetries:    conflictRetries,
			InitialDelay:  20 * time.Millisecond,
			MaxDelay:      200 * time.Millisecond,
			BackoffFactor: 2,
			Jitter:        0.2,
		},
		now:    time.Now,
		logger: logger,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.TotalAmount.IsNegative() {
		return fmt.Errorf("%w: total amount must not be negative", ErrInvalidEntry)
	}
	if !booking.CheckOut.After(booking.CheckIn) {
		return fmt.Errorf("%w: check-out must be after check-in", ErrInvalidEntry)
	}
	if booking.Nights <= 0 {
		booking.Nights = int(booking.CheckOut.Sub(booking.CheckIn).Hours() / 24)
		if booking.Nights == 0 {
			booking.Nights = 1
		}
	}

	if _, err := s.store.GetRoom(ctx, booking.RoomID); err != nil {
		return err
	}

	booking.Status = models.BookingStatusPending
	booking.PaymentStatus = models.PaymentStatusNone
	booking.FinalAmount = booking.TotalAmount

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingCreated, booking, "")
	s.enqueueSync(ctx, worker.TaskUpsert, booking)
	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

func (s *BookingService) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	return s.store.ListBookings(ctx)
}

// ListBookingsByRoom is the room-detail view: every booking ever taken for
// the room, ordered by check-in.
func (s *BookingService) ListBookingsByRoom(ctx context.Context, roomID int64) ([]*models.Booking, error) {
	if _, err := s.store.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return s.store.GetBookingsByRoom(ctx, roomID)
}

// ConfirmBooking moves a pending booking to confirmed. Payment moves to
// pending at the same time: the booking counts as upcoming revenue from this
// moment, before any money has moved.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID int64, actor string) (*models.Booking, error) {
	booking, err := s.transition(ctx, bookingID, "confirm", func(b *models.Booking) error {
		if b.Status != models.BookingStatusPending {
			return fmt.Errorf("%w: cannot confirm booking in status %q", ErrInvalidTransition, b.Status)
		}
		b.Status = models.BookingStatusConfirmed
		b.PaymentStatus = models.PaymentStatusPending
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingConfirmed, booking, actor)
	s.enqueueSync(ctx, worker.TaskUpdateStatus, booking)
	return booking, nil
}

// CancelBooking is terminal. It makes no ledger-amount change; the
// cancellation notification is a subscriber concern.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64, actor string) (*models.Booking, error) {
	booking, err := s.transition(ctx, bookingID, "cancel", func(b *models.Booking) error {
		if b.Status != models.BookingStatusPending {
			return fmt.Errorf("%w: cannot cancel booking in status %q", ErrInvalidTransition, b.Status)
		}
		b.Status = models.BookingStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingCancelled, booking, actor)
	s.enqueueSync(ctx, worker.TaskUpdateStatus, booking)
	return booking, nil
}

// RecordPayment marks a confirmed booking paid exactly once. The final
// amount is recomputed from the discount fields as stored now, never from a
// cached figure, and the payment timestamp becomes the revenue bucketing key.
func (s *BookingService) RecordPayment(ctx context.Context, bookingID int64, actor string) (*models.Booking, error) {
	booking, err := s.transition(ctx, bookingID, "payment", func(b *models.Booking) error {
		if b.Status != models.BookingStatusConfirmed || b.PaymentStatus != models.PaymentStatusPending {
			return fmt.Errorf("%w: cannot record payment for booking in status %q/%q",
				ErrInvalidTransition, b.Status, b.PaymentStatus)
		}
		b.PaymentStatus = models.PaymentStatusPaid
		paidAt := s.now()
		b.PaidAt = &paidAt
		b.FinalAmount = b.OutstandingAmount()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventPaymentRecorded, booking, actor)
	s.enqueueSync(ctx, worker.TaskUpdateStatus, booking)
	return booking, nil
}

// ApplyDiscount recomputes all three discount fields from the calculator.
// It stays legal after payment: correcting a discount on a paid booking must
// update the final amount so revenue reports track the corrected figure.
func (s *BookingService) ApplyDiscount(ctx context.Context, bookingID int64, discount models.Discount, actor string) (*models.Booking, error) {
	booking, err := s.transition(ctx, bookingID, "discount", func(b *models.Booking) error {
		if b.Status != models.BookingStatusConfirmed {
			return fmt.Errorf("%w: cannot apply discount to booking in status %q", ErrInvalidTransition, b.Status)
		}
		result, err := ComputeDiscount(b.TotalAmount, discount.Type, discount.Value)
		if err != nil {
			return err
		}
		b.DiscountAmount = result.DiscountAmount
		b.DiscountPercentage = result.DiscountPercentage
		b.DiscountReason = discount.Reason
		b.FinalAmount = result.FinalAmount
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventDiscountApplied, booking, actor)
	s.enqueueSync(ctx, worker.TaskUpsert, booking)
	return booking, nil
}

// SendReviewInvitation flips the monotonic invitation flag. A second call
// fails so the guest is never invited twice.
func (s *BookingService) SendReviewInvitation(ctx context.Context, bookingID int64, actor string) (*models.Booking, error) {
	booking, err := s.transition(ctx, bookingID, "review_invite", func(b *models.Booking) error {
		if b.Status != models.BookingStatusConfirmed {
			return fmt.Errorf("%w: cannot invite review for booking in status %q", ErrInvalidTransition, b.Status)
		}
		if b.ReviewInvitationSent {
			return fmt.Errorf("%w: review invitation already sent", ErrInvalidTransition)
		}
		b.ReviewInvitationSent = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventReviewInvited, booking, actor)
	return booking, nil
}

// transition runs a read-modify-write against one booking with a bounded
// retry on version conflict. A rejected mutation returns before any write.
func (s *BookingService) transition(ctx context.Context, id int64, name string, mutate func(*models.Booking) error) (*models.Booking, error) {
	var lastErr error
	for attempt := 1; attempt <= conflictRetries; attempt++ {
		booking, err := s.store.GetBooking(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := mutate(booking); err != nil {
			metrics.IncTransition(name, "rejected")
			return nil, err
		}

		err = s.store.UpdateBookingStateWithVersion(ctx, booking, booking.Version)
		if err == nil {
			metrics.IncTransition(name, "ok")
			return booking, nil
		}
		if !errors.Is(err, database.ErrConcurrentModification) {
			metrics.IncTransition(name, "error")
			return nil, err
		}

		metrics.IncVersionConflict()
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.retry.NextDelay(attempt)):
		}
	}

	metrics.IncTransition(name, "conflict")
	return nil, lastErr
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, actor string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:     booking.ID,
		RoomID:        booking.RoomID,
		GuestName:     booking.GuestName,
		GuestEmail:    booking.GuestEmail,
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		FinalAmount:   booking.FinalAmount.String(),
		PaidAt:        booking.PaidAt,
		Actor:         actor,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, taskType string, booking *models.Booking) {
	if s.syncWorker == nil {
		return
	}

	if err := s.syncWorker.EnqueueBookingSync(ctx, taskType, booking); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Str("task", taskType).Msg("sync enqueue error")
	}
}
