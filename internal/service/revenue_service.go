package service

import (
	"context"
	"fmt"
	"time"

	"hotelops/internal/domain"
	"hotelops/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// upcomingHorizonYears bounds the window used when pulling manual upcoming
// entries. Upcoming money is not tied to the reporting period, so the query
// window just has to be wide enough to cover any realistic entry date.
const upcomingHorizonYears = 10

// RevenueService derives revenue figures directly from the ledger on every
// call. Nothing is cached: a discount correction or late payment shows up in
// the very next report.
type RevenueService struct {
	store  domain.LedgerStore
	now    func() time.Time
	logger *zerolog.Logger
}

func NewRevenueService(store domain.LedgerStore, logger *zerolog.Logger) *RevenueService {
	return &RevenueService{
		store:  store,
		now:    time.Now,
		logger: logger,
	}
}

// GetRevenue builds the report for the period containing now.
//
// Collected is windowed by payment timestamp: a booking belongs to the period
// it was paid in, not the period it was created or confirmed in. Upcoming is
// unwindowed; money owed is owed regardless of the reporting window.
func (s *RevenueService) GetRevenue(ctx context.Context, period string, now time.Time) (*models.RevenueReport, error) {
	start, err := periodStart(period, now)
	if err != nil {
		return nil, err
	}
	end := now

	collected := decimal.Zero

	paidBookings, err := s.store.GetPaidBookingsBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("paid bookings: %w", err)
	}
	for _, b := range paidBookings {
		collected = collected.Add(b.FinalAmount)
	}

	collectedEntries, err := s.store.GetRevenueEntriesBetween(ctx, models.RevenueEntryCollected, start, end)
	if err != nil {
		return nil, fmt.Errorf("collected entries: %w", err)
	}
	for _, e := range collectedEntries {
		collected = collected.Add(e.Amount)
	}

	upcoming := decimal.Zero

	unpaidBookings, err := s.store.GetConfirmedUnpaidBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("unpaid bookings: %w", err)
	}
	for _, b := range unpaidBookings {
		upcoming = upcoming.Add(b.OutstandingAmount())
	}

	horizonStart := now.AddDate(-upcomingHorizonYears, 0, 0)
	horizonEnd := now.AddDate(upcomingHorizonYears, 0, 0)
	upcomingEntries, err := s.store.GetRevenueEntriesBetween(ctx, models.RevenueEntryUpcoming, horizonStart, horizonEnd)
	if err != nil {
		return nil, fmt.Errorf("upcoming entries: %w", err)
	}
	for _, e := range upcomingEntries {
		upcoming = upcoming.Add(e.Amount)
	}

	costs := decimal.Zero

	costEntries, err := s.store.GetCostEntriesBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("cost entries: %w", err)
	}
	for _, e := range costEntries {
		costs = costs.Add(e.Amount)
	}

	return &models.RevenueReport{
		Period:      period,
		PeriodStart: start,
		PeriodEnd:   end,
		Collected:   collected,
		Upcoming:    upcoming,
		Costs:       costs,
		NetProfit:   collected.Sub(costs),
	}, nil
}

func (s *RevenueService) AddManualRevenue(ctx context.Context, entryType string, amount decimal.Decimal, description string, date time.Time, actor string) (*models.ManualRevenueEntry, error) {
	if entryType != models.RevenueEntryCollected && entryType != models.RevenueEntryUpcoming {
		return nil, fmt.Errorf("%w: unknown revenue entry type %q", ErrInvalidEntry, entryType)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidEntry)
	}
	if date.IsZero() {
		date = s.now()
	}

	entry := &models.ManualRevenueEntry{
		ID:          uuid.New().String(),
		Type:        entryType,
		Amount:      amount,
		Description: description,
		Date:        date,
		CreatedBy:   actor,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateRevenueEntry(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info().Str("entry_id", entry.ID).Str("type", entryType).
		Str("amount", amount.String()).Str("created_by", actor).Msg("manual revenue entry added")
	return entry, nil
}

func (s *RevenueService) AddManualCost(ctx context.Context, category string, amount decimal.Decimal, description string, date time.Time, paymentMethod, actor string) (*models.ManualCostEntry, error) {
	if !models.ValidCostCategory(category) {
		return nil, fmt.Errorf("%w: unknown cost category %q", ErrInvalidEntry, category)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidEntry)
	}
	if date.IsZero() {
		date = s.now()
	}

	entry := &models.ManualCostEntry{
		ID:            uuid.New().String(),
		Category:      category,
		Amount:        amount,
		Description:   description,
		Date:          date,
		PaymentMethod: paymentMethod,
		CreatedBy:     actor,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateCostEntry(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info().Str("entry_id", entry.ID).Str("category", category).
		Str("amount", amount.String()).Str("created_by", actor).Msg("manual cost entry added")
	return entry, nil
}
