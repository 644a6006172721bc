package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverrideFromEnvBackfillsZeroValues(t *testing.T) {
	t.Setenv("PROVIDER_TIMEOUT", "")
	t.Setenv("TZ_OFFSET_MINUTES", "")

	var cfg Config
	overrideFromEnv(&cfg)

	assert.Equal(t, 8*time.Second, cfg.Providers.Timeout)
	assert.Equal(t, 330, cfg.Calendar.TimezoneOffsetMinutes)
}

func TestOverrideFromEnvAllowsUTCOffset(t *testing.T) {
	t.Setenv("TZ_OFFSET_MINUTES", "0")

	var cfg Config
	overrideFromEnv(&cfg)

	// An explicit zero offset means UTC and must not be replaced by the
	// default
	assert.Equal(t, 0, cfg.Calendar.TimezoneOffsetMinutes)

	_, offset := time.Now().In(cfg.Calendar.Location()).Zone()
	assert.Equal(t, 0, offset)
}

func TestOverrideFromEnvProviderTimeout(t *testing.T) {
	t.Setenv("PROVIDER_TIMEOUT", "3s")

	var cfg Config
	overrideFromEnv(&cfg)

	assert.Equal(t, 3*time.Second, cfg.Providers.Timeout)
}

func TestCalendarLocation(t *testing.T) {
	loc := (&CalendarConfig{TimezoneOffsetMinutes: 330}).Location()
	_, offset := time.Date(2025, 10, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 330*60, offset)
	assert.Equal(t, "UTC+05:30", loc.String())
}
