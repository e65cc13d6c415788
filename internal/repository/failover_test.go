package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakySettings struct {
	hours int
	err   error
	sets  int
}

func (f *flakySettings) GetBufferHours(ctx context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.hours, nil
}

func (f *flakySettings) SetBufferHours(ctx context.Context, hours int) error {
	if f.err != nil {
		return f.err
	}
	f.hours = hours
	f.sets++
	return nil
}

func TestFailover_ServesPrimaryWhenHealthy(t *testing.T) {
	logger := zerolog.Nop()
	primary := &flakySettings{hours: 5}
	fallback := &flakySettings{hours: 2}
	repo := NewFailoverSettingsRepository(primary, fallback, &logger)

	hours, err := repo.GetBufferHours(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, hours)
}

func TestFailover_FallsBackAndStaysDown(t *testing.T) {
	logger := zerolog.Nop()
	primary := &flakySettings{err: errors.New("connection refused")}
	fallback := &flakySettings{hours: 2}
	repo := NewFailoverSettingsRepository(primary, fallback, &logger)
	ctx := context.Background()

	hours, err := repo.GetBufferHours(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, hours)

	// Primary recovers, but the circuit stays open until the probe window.
	primary.err = nil
	primary.hours = 4
	hours, err = repo.GetBufferHours(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, hours)
}

func TestFailover_RecoversAfterProbeWindow(t *testing.T) {
	logger := zerolog.Nop()
	primary := &flakySettings{err: errors.New("connection refused")}
	fallback := &flakySettings{hours: 2}
	repo := NewFailoverSettingsRepository(primary, fallback, &logger)
	ctx := context.Background()

	hours, err := repo.GetBufferHours(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, hours)

	primary.err = nil
	primary.hours = 4
	repo.lastCheck.Store(time.Now().Add(-2 * recoveryInterval).UnixNano())

	hours, err = repo.GetBufferHours(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, hours)
	assert.False(t, repo.isDown.Load())
}

func TestFailover_ConcurrentReadsDuringOutage(t *testing.T) {
	logger := zerolog.Nop()
	primary := &flakySettings{err: errors.New("connection refused")}
	fallback := &flakySettings{hours: 2}
	repo := NewFailoverSettingsRepository(primary, fallback, &logger)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hours, err := repo.GetBufferHours(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, 2, hours)
		}()
	}
	wg.Wait()
}

func TestFailover_WritesKeepFallbackCurrent(t *testing.T) {
	logger := zerolog.Nop()
	primary := &flakySettings{err: errors.New("connection refused")}
	fallback := &flakySettings{hours: 3}
	repo := NewFailoverSettingsRepository(primary, fallback, &logger)
	ctx := context.Background()

	require.NoError(t, repo.SetBufferHours(ctx, 4))
	assert.Equal(t, 4, fallback.hours)

	hours, err := repo.GetBufferHours(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, hours)
}

func TestFailover_WritesReachPrimaryWhenHealthy(t *testing.T) {
	logger := zerolog.Nop()
	primary := &flakySettings{hours: 3}
	fallback := &flakySettings{hours: 3}
	repo := NewFailoverSettingsRepository(primary, fallback, &logger)

	require.NoError(t, repo.SetBufferHours(context.Background(), 5))
	assert.Equal(t, 5, primary.hours)
	assert.Equal(t, 5, fallback.hours)
}
