package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInt64CSV(t *testing.T) {
	ids, err := parseInt64CSV("123, 456,789")
	require.NoError(t, err)
	assert.Equal(t, []int64{123, 456, 789}, ids)
}

func TestParseInt64CSVEmpty(t *testing.T) {
	ids, err := parseInt64CSV("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	ids, err = parseInt64CSV(" , , ")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestParseInt64CSVInvalid(t *testing.T) {
	_, err := parseInt64CSV("123,abc")
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("ADMIN_IDS", "7580968452")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int64{7580968452}, cfg.AdminIDs)
	assert.Equal(t, "https://earnindia.top/my.php?vehicle=", cfg.LookupAPIBase)
	assert.Equal(t, 2*time.Second, cfg.LookupCooldown)
	assert.Equal(t, 10*time.Second, cfg.LookupTimeout)
	assert.Equal(t, "Asia/Kolkata", cfg.AppTimezone)
	assert.Equal(t, 64, cfg.BotMaxInflight)
	assert.False(t, cfg.HealthEnabled)
}

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("DB_PASSWORD", "secret")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadBadAdminIDs(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("ADMIN_IDS", "not-a-number")

	_, err := Load()
	require.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "localhost",
		DBPort:     5432,
		DBUser:     "botuser",
		DBPassword: "pw",
		DBName:     "rcfinder",
		DBSSLMode:  "disable",
	}
	assert.Equal(t, "postgres://botuser:pw@localhost:5432/rcfinder?sslmode=disable", cfg.DatabaseDSN())
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("LOOKUP_COOLDOWN", "0s")

	_, err := Load()
	require.Error(t, err)
}
