package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hotelops/internal/domain"
	"hotelops/internal/events"

	"github.com/rs/zerolog"
)

const sendTimeout = 10 * time.Second

// Subscriber turns domain events into operator notifications. Delivery is
// best effort; a failed send is logged and dropped, never retried into the
// booking transition path.
type Subscriber struct {
	notifier domain.Notifier
	logger   *zerolog.Logger
}

func NewSubscriber(notifier domain.Notifier, logger *zerolog.Logger) *Subscriber {
	return &Subscriber{
		notifier: notifier,
		logger:   logger,
	}
}

// Register wires the subscriber onto the bus for the event types operators
// care about.
func (s *Subscriber) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingConfirmed, s.handleBooking)
	bus.Subscribe(events.EventBookingCancelled, s.handleBooking)
	bus.Subscribe(events.EventPaymentRecorded, s.handleBooking)
	bus.Subscribe(events.EventReviewInvited, s.handleBooking)
	bus.Subscribe(events.EventRoomCheckedOut, s.handleRoom)
}

func (s *Subscriber) handleBooking(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", event.Type).Msg("decode booking event error")
		return err
	}

	var text string
	switch event.Type {
	case events.EventBookingConfirmed:
		text = fmt.Sprintf("✅ Booking #%d confirmed for %s, due %s", payload.BookingID, payload.GuestName, payload.FinalAmount)
	case events.EventBookingCancelled:
		text = fmt.Sprintf("❌ Booking #%d for %s cancelled", payload.BookingID, payload.GuestName)
	case events.EventPaymentRecorded:
		text = fmt.Sprintf("💰 Payment of %s received for booking #%d (%s)", payload.FinalAmount, payload.BookingID, payload.GuestName)
	case events.EventReviewInvited:
		text = fmt.Sprintf("📝 Review invitation sent to %s for booking #%d", payload.GuestName, payload.BookingID)
	default:
		return nil
	}

	s.send(text, event.Type)
	return nil
}

func (s *Subscriber) handleRoom(event *events.Event) error {
	var payload events.RoomEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", event.Type).Msg("decode room event error")
		return err
	}

	text := fmt.Sprintf("🧹 Room %q checked out, cleaning until %s",
		payload.RoomName, formatCleaningEnd(payload.CleaningEndTime))
	s.send(text, event.Type)
	return nil
}

func (s *Subscriber) send(text, eventType string) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := s.notifier.Send(ctx, text); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("notification send error")
	}
}

func formatCleaningEnd(t *time.Time) string {
	if t == nil {
		return "unknown"
	}
	return t.Format("15:04 02.01.2006")
}
