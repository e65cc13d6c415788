package domain

import (
	"context"
	"time"

	"hotelops/internal/models"

	"github.com/shopspring/decimal"
)

// LedgerStore is the durable record storage for rooms, bookings and manual
// ledger entries. Mutations are guarded by per-record versions; a stale
// version yields database.ErrConcurrentModification.
type LedgerStore interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id int64) (*models.Room, error)
	ListRooms(ctx context.Context) ([]*models.Room, error)
	UpdateRoomStatusWithVersion(ctx context.Context, id, fromVersion int64, status string, cleaningEndTime *time.Time) error
	GetExpiredCleaningRooms(ctx context.Context, now time.Time) ([]*models.Room, error)

	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	ListBookings(ctx context.Context) ([]*models.Booking, error)
	UpdateBookingStateWithVersion(ctx context.Context, booking *models.Booking, fromVersion int64) error
	GetBookingsByRoom(ctx context.Context, roomID int64) ([]*models.Booking, error)
	GetPaidBookingsBetween(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	GetConfirmedUnpaidBookings(ctx context.Context) ([]*models.Booking, error)

	CreateRevenueEntry(ctx context.Context, entry *models.ManualRevenueEntry) error
	CreateCostEntry(ctx context.Context, entry *models.ManualCostEntry) error
	GetRevenueEntriesBetween(ctx context.Context, entryType string, start, end time.Time) ([]*models.ManualRevenueEntry, error)
	GetCostEntriesBetween(ctx context.Context, start, end time.Time) ([]*models.ManualCostEntry, error)
}

// SettingsRepository holds runtime-adjustable operational settings. The
// cleaning buffer is read at checkout time; changing it never retroactively
// moves rooms already in cleaning.
type SettingsRepository interface {
	GetBufferHours(ctx context.Context) (int, error)
	SetBufferHours(ctx context.Context, hours int) error
}

// EventPublisher fans out domain events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Notifier delivers operator-facing notifications. Dispatch is
// fire-and-forget from the engine's perspective.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// SyncWorker queues ledger mirror updates for asynchronous delivery.
type SyncWorker interface {
	EnqueueBookingSync(ctx context.Context, taskType string, booking *models.Booking) error
}

// BookingService drives the booking state machine. Every transition is
// atomic per record and fails without side effects from an illegal source
// state. actor identifies the operator for audit.
type BookingService interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	ListBookings(ctx context.Context) ([]*models.Booking, error)
	ListBookingsByRoom(ctx context.Context, roomID int64) ([]*models.Booking, error)
	ConfirmBooking(ctx context.Context, bookingID int64, actor string) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID int64, actor string) (*models.Booking, error)
	RecordPayment(ctx context.Context, bookingID int64, actor string) (*models.Booking, error)
	ApplyDiscount(ctx context.Context, bookingID int64, discount models.Discount, actor string) (*models.Booking, error)
	SendReviewInvitation(ctx context.Context, bookingID int64, actor string) (*models.Booking, error)
}

// RoomService drives room turnover: available -> occupied -> cleaning ->
// available, with lazy buffer expiry on reads.
type RoomService interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id int64) (*models.Room, error)
	ListRooms(ctx context.Context) ([]*models.Room, error)
	CheckIn(ctx context.Context, roomID int64, actor string) (*models.Room, error)
	Checkout(ctx context.Context, roomID, bookingID int64, actor string) (*models.Room, error)
	MarkReady(ctx context.Context, roomID int64, actor string) (*models.Room, error)
	SweepExpired(ctx context.Context) (int, error)
}

// RevenueService is the read-side projection over the ledger. It holds no
// state and re-derives every figure per call.
type RevenueService interface {
	GetRevenue(ctx context.Context, period string, now time.Time) (*models.RevenueReport, error)
	AddManualRevenue(ctx context.Context, entryType string, amount decimal.Decimal, description string, date time.Time, actor string) (*models.ManualRevenueEntry, error)
	AddManualCost(ctx context.Context, category string, amount decimal.Decimal, description string, date time.Time, paymentMethod, actor string) (*models.ManualCostEntry, error)
}
