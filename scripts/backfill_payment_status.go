package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"hotelops/internal/database"
	"hotelops/internal/models"

	"github.com/rs/zerolog"
)

// Backfills payment_status for bookings imported before the column existed.
// Confirmed bookings with a paid_at stamp become paid, other confirmed ones
// pending, and everything else none.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		dbPath = flag.String("db", "./data/hotelops.db", "path to sqlite db")
		dryRun = flag.Bool("dry-run", false, "report what would change without writing")
	)
	flag.Parse()

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := db.QueryContext(ctx,
		`SELECT id, status, paid_at FROM bookings WHERE payment_status IS NULL OR payment_status = ''`)
	if err != nil {
		return fmt.Errorf("select bookings: %w", err)
	}
	defer rows.Close()

	type fix struct {
		id     int64
		status string
	}
	var fixes []fix
	for rows.Next() {
		var (
			id     int64
			status string
			paidAt *time.Time
		)
		if err := rows.Scan(&id, &status, &paidAt); err != nil {
			return fmt.Errorf("scan booking: %w", err)
		}

		paymentStatus := models.PaymentStatusNone
		if status == models.BookingStatusConfirmed {
			paymentStatus = models.PaymentStatusPending
			if paidAt != nil {
				paymentStatus = models.PaymentStatusPaid
			}
		}
		fixes = append(fixes, fix{id: id, status: paymentStatus})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate bookings: %w", err)
	}

	if *dryRun {
		fmt.Printf("dry run: %d bookings would be backfilled\n", len(fixes))
		return nil
	}

	updated := 0
	for _, f := range fixes {
		if _, err := db.ExecContext(ctx,
			`UPDATE bookings SET payment_status = ? WHERE id = ?`, f.status, f.id); err != nil {
			return fmt.Errorf("update booking %d: %w", f.id, err)
		}
		updated++
	}

	fmt.Printf("done: updated=%d\n", updated)
	return nil
}
