package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"hotelops/internal/config"
	"hotelops/internal/database"
	"hotelops/internal/google"
	"hotelops/internal/logging"
)

// Rebuilds the spreadsheet mirror from the ledger. Run after manual sheet
// edits or a mirror drift; the regular worker path only applies deltas.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "configs/config.yaml", "path to config file")
		dryRun     = flag.Bool("dry-run", false, "verify access and report row count without writing")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Google.CredentialsFile == "" || cfg.Google.LedgerSpreadsheetID == "" {
		return fmt.Errorf("google credentials and spreadsheet id must be configured")
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}
	logger := baseLogger.With().Str("component", "resync").Logger()

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	sheetsService, err := google.NewSheetsService(
		cfg.Google.CredentialsFile,
		cfg.Google.LedgerSpreadsheetID,
		cfg.Google.BookingsSheetName,
	)
	if err != nil {
		return fmt.Errorf("init sheets: %w", err)
	}

	if email, err := sheetsService.GetServiceAccountEmail(cfg.Google.CredentialsFile); err == nil {
		logger.Info().Str("service_account", email).Msg("share the spreadsheet with this account")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := sheetsService.TestConnection(ctx); err != nil {
		return fmt.Errorf("spreadsheet not reachable: %w", err)
	}

	bookings, err := db.ListBookings(ctx)
	if err != nil {
		return fmt.Errorf("load bookings: %w", err)
	}
	logger.Info().Int("bookings", len(bookings)).Msg("ledger loaded")

	if *dryRun {
		logger.Info().Msg("dry run, mirror left untouched")
		return nil
	}

	sheetsService.ClearCache()
	if err := sheetsService.ReplaceBookingsSheet(ctx, bookings); err != nil {
		return fmt.Errorf("rewrite mirror: %w", err)
	}

	logger.Info().Msg("mirror rebuilt from ledger")
	return nil
}
