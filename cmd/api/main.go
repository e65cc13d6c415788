package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"hotelops/internal/api"
	"hotelops/internal/config"
	"hotelops/internal/database"
	"hotelops/internal/domain"
	"hotelops/internal/events"
	"hotelops/internal/export"
	"hotelops/internal/google"
	"hotelops/internal/logging"
	"hotelops/internal/metrics"
	"hotelops/internal/models"
	"hotelops/internal/notify"
	"hotelops/internal/repository"
	"hotelops/internal/service"
	"hotelops/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	settings := initSettings(cfg, redisClient, &logger)
	sheetsService := initGoogleSheets(cfg, &logger)

	var syncWorker domain.SyncWorker
	if sheetsService != nil {
		sheetsWorker := worker.NewSheetsWorker(db, sheetsService, redisClient, worker.RetryPolicy{}, &logger)
		go sheetsWorker.Start(ctx)
		syncWorker = sheetsWorker
	}

	eventBus := events.NewEventBus()
	initNotifications(cfg, eventBus, &logger)

	bookingService := service.NewBookingService(db, eventBus, syncWorker, &logger)
	roomService := service.NewRoomService(db, settings, eventBus, &logger)
	revenueService := service.NewRevenueService(db, &logger)

	if count, err := roomService.SeedCleaningGauge(ctx); err != nil {
		logger.Warn().Err(err).Msg("seed cleaning gauge")
	} else if count > 0 {
		logger.Info().Int("rooms_cleaning", count).Msg("cleaning gauge seeded")
	}
	roomService.StartSweep(ctx, sweepInterval(cfg, &logger))

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	exporter := export.NewExporter(db, cfg.Exports.Path, &logger)
	httpServer := api.NewHTTPServer(cfg.API, bookingService, roomService, revenueService, settings, exporter, &logger)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.Port).Msg("hotelops API started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("hotelops API stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("create database directory")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("create exports directory")
		return err
	}
	return nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initSettings builds the settings chain: redis primary when available,
// in-memory fallback seeded from config either way.
func initSettings(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.SettingsRepository {
	memoryRepo := repository.NewMemorySettingsRepository(cfg.Turnover.BufferHours)
	if redisClient == nil {
		return memoryRepo
	}

	redisRepo := repository.NewRedisSettingsRepository(redisClient, time.Duration(models.DefaultSettingsTTL)*time.Second)
	return repository.NewFailoverSettingsRepository(redisRepo, memoryRepo, logger)
}

func initGoogleSheets(cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.CredentialsFile == "" || cfg.Google.LedgerSpreadsheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(
		cfg.Google.CredentialsFile,
		cfg.Google.LedgerSpreadsheetID,
		cfg.Google.BookingsSheetName,
	)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}

	logger.Info().Msg("google sheets connected")
	return sheetsService
}

func initNotifications(cfg *config.Config, eventBus *events.EventBus, logger *zerolog.Logger) {
	if cfg.Notifications.TelegramToken == "" || cfg.Notifications.OperatorChatID == 0 {
		return
	}

	notifier, err := notify.NewTelegramNotifier(cfg.Notifications.TelegramToken, cfg.Notifications.OperatorChatID, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram notifier init failed, continuing without notifications")
		return
	}

	notify.NewSubscriber(notifier, logger).Register(eventBus)
	logger.Info().Msg("operator notifications enabled")
}

func sweepInterval(cfg *config.Config, logger *zerolog.Logger) time.Duration {
	interval, err := time.ParseDuration(cfg.Turnover.SweepInterval)
	if err != nil {
		logger.Warn().Err(err).Str("sweep_interval", cfg.Turnover.SweepInterval).Msg("invalid sweep interval, using default")
		return time.Duration(models.DefaultSweepIntervalSeconds) * time.Second
	}
	return interval
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
