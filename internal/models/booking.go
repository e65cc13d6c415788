package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Booking struct {
	ID                   int64           `json:"id"`
	RoomID               int64           `json:"room_id"`
	GuestName            string          `json:"guest_name"`
	GuestEmail           string          `json:"guest_email"`
	Phone                string          `json:"phone"`
	CheckIn              time.Time       `json:"check_in"`
	CheckOut             time.Time       `json:"check_out"`
	Nights               int             `json:"nights"`
	Guests               int             `json:"guests"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	Status               string          `json:"status"` // pending, confirmed, cancelled
	PaymentStatus        string          `json:"payment_status"`
	PaidAt               *time.Time      `json:"paid_at,omitempty"`
	DiscountAmount       decimal.Decimal `json:"discount_amount"`
	DiscountPercentage   decimal.Decimal `json:"discount_percentage"`
	DiscountReason       string          `json:"discount_reason,omitempty"`
	FinalAmount          decimal.Decimal `json:"final_amount"`
	ReviewInvitationSent bool            `json:"review_invitation_sent"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	Version              int64           `json:"version"`
}

// OutstandingAmount is the amount still expected from a confirmed, unpaid
// booking: total minus discount, never negative.
func (b *Booking) OutstandingAmount() decimal.Decimal {
	out := b.TotalAmount.Sub(b.DiscountAmount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// IsPaid reports whether payment has been recorded for the booking.
func (b *Booking) IsPaid() bool {
	return b.Status == BookingStatusConfirmed && b.PaymentStatus == PaymentStatusPaid
}

// Discount is the operator input converted once into the booking's
// discount fields. It is never persisted on its own.
type Discount struct {
	Type   string          `json:"type"` // percentage, amount
	Value  decimal.Decimal `json:"value"`
	Reason string          `json:"reason,omitempty"`
}
