package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ManualRevenueEntry is an operator-entered revenue line independent of any
// booking. Entries are additive only; corrections are new entries.
type ManualRevenueEntry struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"` // collected, upcoming
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	CreatedBy   string          `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ManualCostEntry is an operator-entered cost line.
type ManualCostEntry struct {
	ID            string          `json:"id"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Date          time.Time       `json:"date"`
	PaymentMethod string          `json:"payment_method"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RevenueReport is the aggregator output for one period anchored to now.
type RevenueReport struct {
	Period      string          `json:"period"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	Collected   decimal.Decimal `json:"collected"`
	Upcoming    decimal.Decimal `json:"upcoming"`
	Costs       decimal.Decimal `json:"costs"`
	NetProfit   decimal.Decimal `json:"net_profit"`
}
