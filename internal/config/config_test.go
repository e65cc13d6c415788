package config

import (
	"os"
	"path/filepath"
	"testing"

	"hotelops/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ExpandsEnvAndAppliesDefaults(t *testing.T) {
	t.Setenv("TEST_HOTEL_ENV", "staging")
	t.Setenv("TEST_HOTEL_API_KEY", "secret-key")

	path := writeConfigFile(t, `
app:
  name: hotelops
  environment: ${TEST_HOTEL_ENV}
database:
  path: data/hotelops.db
api:
  auth:
    enabled: true
    api_keys:
      - key: ${TEST_HOTEL_API_KEY}
        name: front-desk
        permissions: ["read:bookings", "write:bookings"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Environment)
	require.Len(t, cfg.API.Auth.APIKeys, 1)
	assert.Equal(t, "secret-key", cfg.API.Auth.APIKeys[0].Key)

	// Defaults fill the gaps.
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	assert.Equal(t, models.DefaultBufferHours, cfg.Turnover.BufferHours)
	assert.Equal(t, "1m", cfg.Turnover.SweepInterval)
	assert.Equal(t, "Bookings", cfg.Google.BookingsSheetName)
	assert.Equal(t, "exports", cfg.Exports.Path)
}

func TestLoad_MissingDatabasePath(t *testing.T) {
	path := writeConfigFile(t, `
app:
  name: hotelops
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database path")
}

func TestLoad_BufferHoursOutOfRange(t *testing.T) {
	path := writeConfigFile(t, `
database:
  path: data/hotelops.db
turnover:
  buffer_hours: 12
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "buffer_hours")
}

func TestLoad_DuplicateAPIKeys(t *testing.T) {
	path := writeConfigFile(t, `
database:
  path: data/hotelops.db
api:
  auth:
    enabled: true
    api_keys:
      - key: same
        name: front-desk
      - key: same
        name: accounting
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate api key")
}

func TestLoad_EmptyAPIKey(t *testing.T) {
	path := writeConfigFile(t, `
database:
  path: data/hotelops.db
api:
  auth:
    enabled: true
    api_keys:
      - key: ""
        name: front-desk
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is empty")
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
