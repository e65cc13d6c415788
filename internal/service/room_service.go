package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotelops/internal/database"
	"hotelops/internal/domain"
	"hotelops/internal/events"
	"hotelops/internal/metrics"
	"hotelops/internal/models"
	"hotelops/internal/worker"

	"github.com/rs/zerolog"
)

type RoomService struct {
	store    domain.LedgerStore
	settings domain.SettingsRepository
	eventBus domain.EventPublisher
	retry    worker.RetryPolicy
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewRoomService(store domain.LedgerStore, settings domain.SettingsRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *RoomService {
	return &RoomService{
		store:    store,
		settings: settings,
		eventBus: eventBus,
		retry: worker.RetryPolicy{
			MaxRetries:    conflictRetries,
			InitialDelay:  20 * time.Millisecond,
			MaxDelay:      200 * time.Millisecond,
			BackoffFactor: 2,
			Jitter:        0.2,
		},
		now:    time.Now,
		logger: logger,
	}
}

func (s *RoomService) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.Name == "" {
		return fmt.Errorf("%w: room name is required", ErrInvalidEntry)
	}
	if !models.ValidRoomCategory(room.Category) {
		return fmt.Errorf("%w: unknown room category %q", ErrInvalidEntry, room.Category)
	}
	if room.Price.IsNegative() {
		return fmt.Errorf("%w: room price must not be negative", ErrInvalidEntry)
	}

	room.Status = models.RoomStatusAvailable
	room.CleaningEndTime = nil
	return s.store.CreateRoom(ctx, room)
}

// GetRoom returns the room with the buffer expiry already applied: a
// cleaning room past its end time reads as available. When the stored record
// is stale, a best-effort reconcile write is attempted; losing that race is
// fine, the sweep or the next read picks it up.
func (s *RoomService) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	room, err := s.store.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	s.applyExpiry(ctx, room)
	return room, nil
}

func (s *RoomService) ListRooms(ctx context.Context) ([]*models.Room, error) {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	for _, room := range rooms {
		s.applyExpiry(ctx, room)
	}
	return rooms, nil
}

// CheckIn moves an available room to occupied. A cleaning room whose buffer
// has expired counts as available.
func (s *RoomService) CheckIn(ctx context.Context, roomID int64, actor string) (*models.Room, error) {
	room, err := s.transitionRoom(ctx, roomID, "checkin", func(r *models.Room) (string, *time.Time, error) {
		if r.EffectiveStatus(s.now()) != models.RoomStatusAvailable {
			return "", nil, fmt.Errorf("%w: cannot check in, room is %q", ErrInvalidRoomState, r.Status)
		}
		return models.RoomStatusOccupied, nil, nil
	})
	if err != nil {
		return nil, err
	}

	s.publishRoomEvent(events.EventRoomCheckedIn, room, actor)
	return room, nil
}

// Checkout moves an occupied room into the cleaning buffer. The buffer width
// is read from settings at this moment and baked into the room's end time;
// later setting changes never move rooms already in cleaning.
func (s *RoomService) Checkout(ctx context.Context, roomID, bookingID int64, actor string) (*models.Room, error) {
	bufferHours := s.bufferHours(ctx)

	room, err := s.transitionRoom(ctx, roomID, "checkout", func(r *models.Room) (string, *time.Time, error) {
		if r.Status != models.RoomStatusOccupied {
			return "", nil, fmt.Errorf("%w: cannot check out, room is %q", ErrInvalidRoomState, r.Status)
		}
		end := s.now().Add(time.Duration(bufferHours) * time.Hour)
		return models.RoomStatusCleaning, &end, nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncRoomsCleaning()
	s.logger.Info().Int64("room_id", roomID).Int64("booking_id", bookingID).
		Int("buffer_hours", bufferHours).Time("cleaning_end", *room.CleaningEndTime).
		Msg("room checked out")
	s.publishRoomEvent(events.EventRoomCheckedOut, room, actor)
	return room, nil
}

// MarkReady is the operator escape hatch: it skips the remaining buffer and
// makes the room available immediately. Only legal while the stored status
// is cleaning.
func (s *RoomService) MarkReady(ctx context.Context, roomID int64, actor string) (*models.Room, error) {
	room, err := s.transitionRoom(ctx, roomID, "mark_ready", func(r *models.Room) (string, *time.Time, error) {
		if r.Status != models.RoomStatusCleaning {
			return "", nil, fmt.Errorf("%w: cannot mark ready, room is %q", ErrInvalidRoomState, r.Status)
		}
		return models.RoomStatusAvailable, nil, nil
	})
	if err != nil {
		return nil, err
	}

	metrics.DecRoomsCleaning()
	s.publishRoomEvent(events.EventRoomReady, room, actor)
	return room, nil
}

// SweepExpired reconciles rooms whose cleaning buffer has elapsed but whose
// stored status still says cleaning. Conflicts are skipped; the next sweep
// retries them. Returns the number of rooms reconciled.
func (s *RoomService) SweepExpired(ctx context.Context) (int, error) {
	rooms, err := s.store.GetExpiredCleaningRooms(ctx, s.now())
	if err != nil {
		return 0, err
	}

	reconciled := 0
	for _, room := range rooms {
		err := s.store.UpdateRoomStatusWithVersion(ctx, room.ID, room.Version, models.RoomStatusAvailable, nil)
		if err != nil {
			if errors.Is(err, database.ErrConcurrentModification) {
				metrics.IncVersionConflict()
				continue
			}
			return reconciled, err
		}
		reconciled++
		metrics.DecRoomsCleaning()
		room.Status = models.RoomStatusAvailable
		room.CleaningEndTime = nil
		s.publishRoomEvent(events.EventRoomReady, room, "sweep")
	}

	if reconciled > 0 {
		s.logger.Info().Int("count", reconciled).Msg("expired cleaning rooms reconciled")
	}
	return reconciled, nil
}

// SeedCleaningGauge sets the cleaning-rooms gauge from the stored statuses.
// Called once at startup; without it the gauge reads zero after a restart
// regardless of how many rooms sit in the buffer. Returns the seeded count.
func (s *RoomService) SeedCleaningGauge(ctx context.Context) (int, error) {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	now := s.now()
	for _, room := range rooms {
		if room.EffectiveStatus(now) == models.RoomStatusCleaning {
			count++
		}
	}
	metrics.SetRoomsCleaning(count)
	return count, nil
}

// StartSweep runs SweepExpired on a fixed interval until the context is done.
func (s *RoomService) StartSweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Duration(models.DefaultSweepIntervalSeconds) * time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.SweepExpired(ctx); err != nil {
					s.logger.Error().Err(err).Msg("turnover sweep error")
				}
			}
		}
	}()
}

// applyExpiry projects the stored room into its effective state and tries an
// opportunistic reconcile write when the buffer has elapsed.
func (s *RoomService) applyExpiry(ctx context.Context, room *models.Room) {
	if room.EffectiveStatus(s.now()) == room.Status {
		return
	}

	if err := s.store.UpdateRoomStatusWithVersion(ctx, room.ID, room.Version, models.RoomStatusAvailable, nil); err == nil {
		room.Version++
		metrics.DecRoomsCleaning()
	}
	room.Status = models.RoomStatusAvailable
	room.CleaningEndTime = nil
}

// transitionRoom runs one version-guarded status change with a bounded retry
// on conflict. mutate returns the target status and cleaning end time.
func (s *RoomService) transitionRoom(ctx context.Context, id int64, name string, mutate func(*models.Room) (string, *time.Time, error)) (*models.Room, error) {
	var lastErr error
	for attempt := 1; attempt <= conflictRetries; attempt++ {
		room, err := s.store.GetRoom(ctx, id)
		if err != nil {
			return nil, err
		}

		status, cleaningEnd, err := mutate(room)
		if err != nil {
			metrics.IncTransition(name, "rejected")
			return nil, err
		}

		err = s.store.UpdateRoomStatusWithVersion(ctx, room.ID, room.Version, status, cleaningEnd)
		if err == nil {
			metrics.IncTransition(name, "ok")
			room.Status = status
			room.CleaningEndTime = cleaningEnd
			room.Version++
			return room, nil
		}
		if !errors.Is(err, database.ErrConcurrentModification) {
			metrics.IncTransition(name, "error")
			return nil, err
		}

		metrics.IncVersionConflict()
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.retry.NextDelay(attempt)):
		}
	}

	metrics.IncTransition(name, "conflict")
	return nil, lastErr
}

func (s *RoomService) bufferHours(ctx context.Context) int {
	hours, err := s.settings.GetBufferHours(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Int("fallback", models.DefaultBufferHours).Msg("buffer hours unavailable, using default")
		return models.DefaultBufferHours
	}
	if hours < models.MinBufferHours {
		return models.MinBufferHours
	}
	if hours > models.MaxBufferHours {
		return models.MaxBufferHours
	}
	return hours
}

func (s *RoomService) publishRoomEvent(eventType string, room *models.Room, actor string) {
	if s.eventBus == nil {
		return
	}

	payload := events.RoomEventPayload{
		RoomID:          room.ID,
		RoomName:        room.Name,
		Status:          room.Status,
		CleaningEndTime: room.CleaningEndTime,
		Actor:           actor,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("room_id", room.ID).Msg("publish event error")
	}
}
