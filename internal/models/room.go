package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Room struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Category        string           `json:"category"` // economy, business, first-class
	Price           decimal.Decimal  `json:"price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price,omitempty"`
	Status          string           `json:"status"` // available, occupied, cleaning
	CleaningEndTime *time.Time       `json:"cleaning_end_time,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Version         int64            `json:"version"`
}

// EffectiveStatus evaluates the room status at the given instant. A room in
// cleaning whose buffer has elapsed is already bookable even if no sweep has
// reconciled the stored record yet.
func (r *Room) EffectiveStatus(now time.Time) string {
	if r.Status == RoomStatusCleaning && r.CleaningEndTime != nil && !now.Before(*r.CleaningEndTime) {
		return RoomStatusAvailable
	}
	return r.Status
}
