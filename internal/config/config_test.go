package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db.local")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, 48*time.Hour, cfg.Business.ReversalWindow)
	assert.Equal(t, "TRX", cfg.Business.TransactionPrefix)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
	assert.Contains(t, cfg.DB.DSN(), "host=db.local")
	assert.Contains(t, cfg.DB.DSN(), "password=secret")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@h:5432/db")
	t.Setenv("REVERSAL_WINDOW", "24h")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@h:5432/db", cfg.DB.DSN())
	assert.Equal(t, 24*time.Hour, cfg.Business.ReversalWindow)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.True(t, cfg.Redis.Enabled())
}

func TestLoadRejectsNonPositiveWindow(t *testing.T) {
	t.Setenv("REVERSAL_WINDOW", "0s")

	_, err := Load()
	require.Error(t, err)
}

func TestDatabaseOptionsCarryPoolSettings(t *testing.T) {
	db := DBConfig{
		URL:             "postgres://u:p@h:5432/db",
		MaxOpenConns:    12,
		MaxIdleConns:    3,
		ConnMaxLifetime: 90 * time.Second,
	}

	opts := db.Options()
	assert.Equal(t, "postgres://u:p@h:5432/db", opts.DSN)
	assert.Equal(t, 12, opts.MaxOpenConns)
	assert.Equal(t, 3, opts.MaxIdleConns)
	assert.Equal(t, 90*time.Second, opts.ConnMaxLifetime)
}

func TestJWTTTLFollowsExpirationHours(t *testing.T) {
	assert.Equal(t, 24*time.Hour, JWTConfig{ExpirationHours: 24}.TTL())
}
