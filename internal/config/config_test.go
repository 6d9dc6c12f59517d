package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "velstore")
	t.Setenv("DB_NAME", "velstore")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORAGE_BUCKET", "velstore-images")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, "disable", cfg.DB.SSLMode)
	assert.Equal(t, "us-east-1", cfg.Storage.Region)
	assert.True(t, cfg.Storage.AllowOverwrite)
	assert.Equal(t, time.Duration(0), cfg.Worker.StorageSweepInterval)
	assert.Equal(t, time.Hour, cfg.Worker.StorageSweepMinAge)
}

func TestLoadWorkerDurations(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORAGE_SWEEP_INTERVAL", "30m")
	t.Setenv("STORAGE_SWEEP_MIN_AGE", "2h")
	t.Setenv("STORAGE_ALLOW_OVERWRITE", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Worker.StorageSweepInterval)
	assert.Equal(t, 2*time.Hour, cfg.Worker.StorageSweepMinAge)
	assert.False(t, cfg.Storage.AllowOverwrite)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORAGE_SWEEP_INTERVAL", "often")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_SWEEP_INTERVAL")
}

func TestLoadRequiresDatabase(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_HOST", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST")
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}
