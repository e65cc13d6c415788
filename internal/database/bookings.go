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

const bookingColumns = `id, room_id, guest_name, guest_email, phone, check_in, check_out,
                 nights, guests, total_amount, status, payment_status, paid_at,
                 discount_amount, discount_percentage, discount_reason, final_amount,
                 review_invitation_sent, created_at, updated_at, version`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.PaymentStatus == "" {
		booking.PaymentStatus = models.PaymentStatusNone
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusPending
	}

	query := `INSERT INTO bookings (
				room_id, guest_name, guest_email, phone, check_in, check_out,
				nights, guests, total_amount, status, payment_status, paid_at,
				discount_amount, discount_percentage, discount_reason, final_amount,
				review_invitation_sent, created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		booking.RoomID,
		booking.GuestName,
		booking.GuestEmail,
		booking.Phone,
		booking.CheckIn,
		booking.CheckOut,
		booking.Nights,
		booking.Guests,
		booking.TotalAmount.String(),
		booking.Status,
		booking.PaymentStatus,
		booking.PaidAt,
		booking.DiscountAmount.String(),
		booking.DiscountPercentage.String(),
		booking.DiscountReason,
		booking.FinalAmount.String(),
		booking.ReviewInvitationSent,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1

	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// UpdateBookingStateWithVersion writes back the mutable transition fields of
// a booking guarded by its version. The caller passes the booking as read,
// with the new state already applied; a zero-row update means another writer
// got there first.
func (db *DB) UpdateBookingStateWithVersion(ctx context.Context, booking *models.Booking, fromVersion int64) error {
	query := `UPDATE bookings SET
				status = ?, payment_status = ?, paid_at = ?,
				discount_amount = ?, discount_percentage = ?, discount_reason = ?,
				final_amount = ?, review_invitation_sent = ?,
				version = version + 1, updated_at = ?
			  WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query,
		booking.Status,
		booking.PaymentStatus,
		booking.PaidAt,
		booking.DiscountAmount.String(),
		booking.DiscountPercentage.String(),
		booking.DiscountReason,
		booking.FinalAmount.String(),
		booking.ReviewInvitationSent,
		time.Now(),
		booking.ID,
		fromVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking state: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	booking.Version = fromVersion + 1
	return nil
}

// GetPaidBookingsBetween returns confirmed, paid bookings whose payment
// completed inside [start, end]. Revenue is keyed by paid_at, not stay dates.
func (db *DB) GetPaidBookingsBetween(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE status = ? AND payment_status = ? AND paid_at IS NOT NULL AND paid_at >= ? AND paid_at <= ?
              ORDER BY paid_at ASC`
	return db.queryBookings(ctx, query, models.BookingStatusConfirmed, models.PaymentStatusPaid, start, end)
}

// GetConfirmedUnpaidBookings returns all currently outstanding bookings.
// Upcoming revenue is never windowed.
func (db *DB) GetConfirmedUnpaidBookings(ctx context.Context) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE status = ? AND payment_status != ?
              ORDER BY check_in ASC`
	return db.queryBookings(ctx, query, models.BookingStatusConfirmed, models.PaymentStatusPaid)
}

func (db *DB) GetBookingsByRoom(ctx context.Context, roomID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE room_id = ? ORDER BY check_in ASC`
	return db.queryBookings(ctx, query, roomID)
}

func (db *DB) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at ASC`
	return db.queryBookings(ctx, query)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		b          models.Booking
		total      string
		discAmount string
		discPct    string
		finalAmt   string
		reason     sql.NullString
		email      sql.NullString
		phone      sql.NullString
		paidAt     sql.NullTime
	)
	err := row.Scan(
		&b.ID, &b.RoomID, &b.GuestName, &email, &phone, &b.CheckIn, &b.CheckOut,
		&b.Nights, &b.Guests, &total, &b.Status, &b.PaymentStatus, &paidAt,
		&discAmount, &discPct, &reason, &finalAmt,
		&b.ReviewInvitationSent, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}

	if b.PaymentStatus == "" {
		return nil, fmt.Errorf("%w: booking %d has no payment status", ErrCorruptRecord, b.ID)
	}

	b.GuestEmail = email.String
	b.Phone = phone.String
	b.DiscountReason = reason.String
	if paidAt.Valid {
		t := paidAt.Time
		b.PaidAt = &t
	}

	for _, f := range []struct {
		dst *decimal.Decimal
		raw string
	}{
		{&b.TotalAmount, total},
		{&b.DiscountAmount, discAmount},
		{&b.DiscountPercentage, discPct},
		{&b.FinalAmount, finalAmt},
	} {
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return nil, fmt.Errorf("%w: bad amount %q on booking %d", ErrCorruptRecord, f.raw, b.ID)
		}
		*f.dst = v
	}

	return &b, nil
}
