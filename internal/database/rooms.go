package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hotelops/internal/models"

	"github.com/shopspring/decimal"
)

const roomColumns = `id, name, category, price, discounted_price, status, cleaning_end_time, created_at, updated_at, version`

func (db *DB) CreateRoom(ctx context.Context, room *models.Room) error {
	query := `INSERT INTO rooms (name, category, price, discounted_price, status, cleaning_end_time, created_at, updated_at, version)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()

	var discounted any
	if room.DiscountedPrice != nil {
		discounted = room.DiscountedPrice.String()
	}

	result, err := db.ExecContext(ctx, query,
		room.Name,
		room.Category,
		room.Price.String(),
		discounted,
		room.Status,
		room.CleaningEndTime,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	room.ID = id
	room.CreatedAt = now
	room.UpdatedAt = now
	room.Version = 1

	return nil
}

func (db *DB) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	room, err := scanRoom(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

func (db *DB) ListRooms(ctx context.Context) ([]*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms ORDER BY id ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// UpdateRoomStatusWithVersion moves a room to a new status with an optimistic
// version check. cleaningEndTime must be nil unless the new status is cleaning.
func (db *DB) UpdateRoomStatusWithVersion(ctx context.Context, id, fromVersion int64, status string, cleaningEndTime *time.Time) error {
	query := `UPDATE rooms SET status = ?, cleaning_end_time = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, cleaningEndTime, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// GetExpiredCleaningRooms returns rooms still stored as cleaning whose buffer
// has elapsed. Used by the reconciliation sweep.
func (db *DB) GetExpiredCleaningRooms(ctx context.Context, now time.Time) ([]*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE status = ? AND cleaning_end_time IS NOT NULL AND cleaning_end_time <= ?`
	rows, err := db.QueryContext(ctx, query, models.RoomStatusCleaning, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get expired cleaning rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*models.Room, error) {
	var (
		room       models.Room
		price      string
		discounted sql.NullString
		cleaning   sql.NullTime
	)
	err := row.Scan(
		&room.ID, &room.Name, &room.Category, &price, &discounted,
		&room.Status, &cleaning, &room.CreatedAt, &room.UpdatedAt, &room.Version,
	)
	if err != nil {
		return nil, err
	}

	room.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("%w: bad price %q", ErrCorruptRecord, price)
	}
	if discounted.Valid {
		d, err := decimal.NewFromString(discounted.String)
		if err != nil {
			return nil, fmt.Errorf("%w: bad discounted price %q", ErrCorruptRecord, discounted.String)
		}
		room.DiscountedPrice = &d
	}
	if cleaning.Valid {
		t := cleaning.Time
		room.CleaningEndTime = &t
	}
	return &room, nil
}
