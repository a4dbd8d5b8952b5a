package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("BACKEND_URL", "")
		t.Setenv("HTTP_PORT", "")
		t.Setenv("REDIS_URL", "")
		t.Setenv("SESSION_SECRET", "")

		cfg := Load()
		assert.Equal(t, "8090", cfg.Port)
		assert.Equal(t, "http://localhost:8080/api", cfg.BackendURL)
		assert.Equal(t, 2*time.Second, cfg.BackendReadTimeout)
		assert.Equal(t, 5*time.Second, cfg.BackendWriteTimeout)
		assert.Empty(t, cfg.RedisURL)
		assert.Empty(t, cfg.SessionSecret)
		assert.Equal(t, "admin.audit", cfg.RabbitExchange)
		assert.True(t, cfg.RLEnabled)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("BACKEND_URL", "http://api.internal:9000/api/")
		t.Setenv("BACKEND_READ_TIMEOUT", "750ms")
		t.Setenv("RL_ENABLED", "false")
		t.Setenv("RL_LIMIT", "5")

		cfg := Load()
		assert.Equal(t, "http://api.internal:9000/api", cfg.BackendURL, "trailing slash trimmed")
		assert.Equal(t, 750*time.Millisecond, cfg.BackendReadTimeout)
		assert.False(t, cfg.RLEnabled)
		assert.Equal(t, 5, cfg.RLLimit)
	})

	t.Run("bad values fall back", func(t *testing.T) {
		t.Setenv("BACKEND_WRITE_TIMEOUT", "soon")
		t.Setenv("RL_LIMIT", "many")

		cfg := Load()
		assert.Equal(t, 5*time.Second, cfg.BackendWriteTimeout)
		assert.Equal(t, 60, cfg.RLLimit)
	})
}
