package repository

import (
	"context"
	"sync/atomic"
	"time"

	"hotelops/internal/domain"

	"github.com/rs/zerolog"
)

// recoveryInterval is how long the failover waits before probing a failed
// primary again.
const recoveryInterval = time.Minute

// FailoverSettingsRepository serves settings from the primary store and
// degrades to the fallback when the primary errors. Writes go to both so the
// fallback stays current for the degraded window.
type FailoverSettingsRepository struct {
	primary  domain.SettingsRepository
	fallback domain.SettingsRepository
	logger   *zerolog.Logger
	isDown   atomic.Bool
	// UnixNano of the last failed probe; accessed from concurrent requests.
	lastCheck atomic.Int64
}

func NewFailoverSettingsRepository(primary, fallback domain.SettingsRepository, logger *zerolog.Logger) *FailoverSettingsRepository {
	return &FailoverSettingsRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSettingsRepository) GetBufferHours(ctx context.Context) (int, error) {
	if !r.isDown.Load() {
		hours, err := r.primary.GetBufferHours(ctx)
		if err == nil {
			return hours, nil
		}
		r.logger.Error().Err(err).Msg("Primary settings repository failed, falling back to memory")
		r.markDown()
	}

	if r.shouldProbe() {
		hours, err := r.primary.GetBufferHours(ctx)
		if err == nil {
			r.isDown.Store(false)
			return hours, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.GetBufferHours(ctx)
}

func (r *FailoverSettingsRepository) SetBufferHours(ctx context.Context, hours int) error {
	if err := r.fallback.SetBufferHours(ctx, hours); err != nil {
		return err
	}

	if !r.isDown.Load() {
		err := r.primary.SetBufferHours(ctx, hours)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary settings repository failed, falling back to memory")
		r.markDown()
	}

	return nil
}

func (r *FailoverSettingsRepository) markDown() {
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverSettingsRepository) shouldProbe() bool {
	if !r.isDown.Load() {
		return false
	}
	return time.Since(time.Unix(0, r.lastCheck.Load())) > recoveryInterval
}
