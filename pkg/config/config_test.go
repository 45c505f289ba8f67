package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 8050, cfg.Server.Port)
		assert.Equal(t, "0.0.0.0:8050", cfg.Server.Addr())
		assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
		assert.Equal(t, "billing_session", cfg.Session.CookieName)
		assert.Equal(t, int64(20<<20), cfg.Upload.MaxBytes)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("HOST", "127.0.0.1")
		t.Setenv("PORT", "9000")
		t.Setenv("SESSION_TTL", "30m")
		t.Setenv("UPLOAD_MAX_BYTES", "1048576")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
		assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
		assert.Equal(t, int64(1<<20), cfg.Upload.MaxBytes)
	})

	t.Run("invalid overrides fall back to defaults", func(t *testing.T) {
		t.Setenv("PORT", "not-a-port")
		t.Setenv("SESSION_TTL", "soon")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8050, cfg.Server.Port)
		assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	})
}
