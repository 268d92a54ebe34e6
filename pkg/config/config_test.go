package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("PUBLIC_BASE_URL", "https://calls.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5001", cfg.Server.Port)
	assert.Equal(t, ResolverIdentity, cfg.Twilio.CallResolver)
	assert.Equal(t, 7*24*time.Hour, cfg.Retention.Window)
	assert.Equal(t, time.Hour, cfg.Retention.SweepInterval)
	assert.Equal(t, "https://calls.example.com", cfg.Twilio.PublicBaseURL)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.SignatureConfigured())
}

func TestLoadProductionSweepsDaily(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")
	t.Setenv("PUBLIC_BASE_URL", "https://calls.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.Retention.SweepInterval)
	assert.True(t, cfg.SignatureConfigured())
}

func TestValidateRejectsUnknownResolver(t *testing.T) {
	t.Setenv("CALL_RESOLVER", "guess")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CALL_RESOLVER")
}

func TestValidateRejectsUnknownRateLimitBackend(t *testing.T) {
	t.Setenv("RATE_LIMIT_BACKEND", "memcached")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_LIMIT_BACKEND")
}
