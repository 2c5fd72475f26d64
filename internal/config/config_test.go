package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fanvault")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CRON_SECRET", "cron")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 0.03, cfg.PlatformFeeRate)
	assert.Equal(t, 30, cfg.FreeWindowDays)
	assert.Equal(t, 15*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 5*time.Minute, cfg.SweepLockTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fanvault")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CRON_SECRET", "cron")
	t.Setenv("APP_ENV", "production")
	t.Setenv("R2_BUCKET", "media")
	t.Setenv("MIDTRANS_PRODUCTION", "true")
	t.Setenv("COMMISSION_RATE", "0.15")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "media", cfg.R2.Bucket)
	assert.True(t, cfg.MidtransProduction)
	assert.Equal(t, 0.15, cfg.CommissionRate)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CRON_SECRET", "cron")

	_, err := Load()
	assert.EqualError(t, err, "DATABASE_URL is not set")
}

func TestLoadDeploy(t *testing.T) {
	t.Setenv("DEPLOY_WEBHOOK_SECRET", "hook")

	cfg, err := LoadDeploy()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "refs/heads/main", cfg.Ref)
	assert.Equal(t, 10*time.Minute, cfg.Timeout)
}

func TestLoadDeploy_MissingSecret(t *testing.T) {
	t.Setenv("DEPLOY_WEBHOOK_SECRET", "")

	_, err := LoadDeploy()
	assert.EqualError(t, err, "DEPLOY_WEBHOOK_SECRET is not set")
}
