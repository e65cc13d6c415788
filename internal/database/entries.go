package database

import (
	"context"
	"fmt"
	"time"

	"hotelops/internal/models"

	"github.com/shopspring/decimal"
)

func (db *DB) CreateRevenueEntry(ctx context.Context, entry *models.ManualRevenueEntry) error {
	query := `INSERT INTO revenue_entries (id, type, amount, description, date, created_by, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	_, err := db.ExecContext(ctx, query,
		entry.ID,
		entry.Type,
		entry.Amount.String(),
		entry.Description,
		entry.Date,
		entry.CreatedBy,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create revenue entry: %w", err)
	}
	entry.CreatedAt = now
	return nil
}

func (db *DB) CreateCostEntry(ctx context.Context, entry *models.ManualCostEntry) error {
	query := `INSERT INTO cost_entries (id, category, amount, description, date, payment_method, created_by, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	_, err := db.ExecContext(ctx, query,
		entry.ID,
		entry.Category,
		entry.Amount.String(),
		entry.Description,
		entry.Date,
		entry.PaymentMethod,
		entry.CreatedBy,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create cost entry: %w", err)
	}
	entry.CreatedAt = now
	return nil
}

func (db *DB) GetRevenueEntriesBetween(ctx context.Context, entryType string, start, end time.Time) ([]*models.ManualRevenueEntry, error) {
	query := `SELECT id, type, amount, description, date, created_by, created_at
              FROM revenue_entries WHERE type = ? AND date >= ? AND date <= ? ORDER BY date ASC`
	rows, err := db.QueryContext(ctx, query, entryType, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get revenue entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.ManualRevenueEntry
	for rows.Next() {
		var (
			e   models.ManualRevenueEntry
			amt string
		)
		if err := rows.Scan(&e.ID, &e.Type, &amt, &e.Description, &e.Date, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan revenue entry: %w", err)
		}
		e.Amount, err = decimal.NewFromString(amt)
		if err != nil {
			return nil, fmt.Errorf("%w: bad amount %q on revenue entry %s", ErrCorruptRecord, amt, e.ID)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (db *DB) GetCostEntriesBetween(ctx context.Context, start, end time.Time) ([]*models.ManualCostEntry, error) {
	query := `SELECT id, category, amount, description, date, payment_method, created_by, created_at
              FROM cost_entries WHERE date >= ? AND date <= ? ORDER BY date ASC`
	rows, err := db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get cost entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.ManualCostEntry
	for rows.Next() {
		var (
			e   models.ManualCostEntry
			amt string
		)
		if err := rows.Scan(&e.ID, &e.Category, &amt, &e.Description, &e.Date, &e.PaymentMethod, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cost entry: %w", err)
		}
		e.Amount, err = decimal.NewFromString(amt)
		if err != nil {
			return nil, fmt.Errorf("%w: bad amount %q on cost entry %s", ErrCorruptRecord, amt, e.ID)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
