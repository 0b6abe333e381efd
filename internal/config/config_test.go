package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8081", cfg.HTTPPort)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=SA;BYHOUR=6;BYMINUTE=0;BYSECOND=0", cfg.ComplianceRRule)
	assert.Equal(t, 30*time.Minute, cfg.ComplianceLockTTL)
	assert.Equal(t, 24*time.Hour, cfg.ReminderWindow)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("ACCESS_TTL", "30m")
	t.Setenv("RATE_LIMIT_PER_MIN", "10")
	t.Setenv("TIMEZONE", "America/New_York")

	cfg := Load()
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, 30*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 10, cfg.RateLimitPerMin)
	assert.Equal(t, "America/New_York", cfg.Location().String())
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("ACCESS_TTL", "not-a-duration")
	t.Setenv("RATE_LIMIT_PER_MIN", "many")
	t.Setenv("TIMEZONE", "Mars/Olympus")

	cfg := Load()
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
	assert.Equal(t, time.UTC, cfg.Location())
}
