package repository

import (
	"context"
	"fmt"
	"sync"

	"hotelops/internal/models"
)

// MemorySettingsRepository is the in-process settings store. It backs tests
// and serves as the failover target when Redis is down.
type MemorySettingsRepository struct {
	mu          sync.RWMutex
	bufferHours int
}

func NewMemorySettingsRepository(defaultBufferHours int) *MemorySettingsRepository {
	if defaultBufferHours < models.MinBufferHours || defaultBufferHours > models.MaxBufferHours {
		defaultBufferHours = models.DefaultBufferHours
	}
	return &MemorySettingsRepository{
		bufferHours: defaultBufferHours,
	}
}

func (r *MemorySettingsRepository) GetBufferHours(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bufferHours, nil
}

func (r *MemorySettingsRepository) SetBufferHours(ctx context.Context, hours int) error {
	if hours < models.MinBufferHours || hours > models.MaxBufferHours {
		return fmt.Errorf("buffer hours %d out of range [%d, %d]", hours, models.MinBufferHours, models.MaxBufferHours)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bufferHours = hours
	return nil
}
