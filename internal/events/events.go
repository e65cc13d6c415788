package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
	EventPaymentRecorded  = "payment_recorded"
	EventDiscountApplied  = "discount_applied"
	EventReviewInvited    = "review_invitation_sent"
	EventRoomCheckedIn    = "room_checked_in"
	EventRoomCheckedOut   = "room_checked_out"
	EventRoomReady        = "room_ready"
)

// BookingEventPayload is the minimal booking snapshot for event consumers.
// Amounts travel as strings to keep decimal precision across JSON.
type BookingEventPayload struct {
	BookingID     int64      `json:"booking_id"`
	RoomID        int64      `json:"room_id"`
	GuestName     string     `json:"guest_name"`
	GuestEmail    string     `json:"guest_email,omitempty"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	FinalAmount   string     `json:"final_amount"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	Actor         string     `json:"actor,omitempty"`
}

// RoomEventPayload describes a room turnover transition.
type RoomEventPayload struct {
	RoomID          int64      `json:"room_id"`
	RoomName        string     `json:"room_name"`
	Status          string     `json:"status"`
	CleaningEndTime *time.Time `json:"cleaning_end_time,omitempty"`
	Actor           string     `json:"actor,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
