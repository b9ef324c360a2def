package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "HTTP_ADDR", "BACKEND", "DATABASE_URL", "JWT_SECRET", "JWT_ISSUER",
		"SUPABASE_URL", "SUPABASE_ANON_KEY", "RABBIT_URL", "HTTP_READ_TIMEOUT",
		"COOKIE_SECURE", "CACHE_TTL_LIST", "S3_USE_PATH_STYLE", "MAX_UPLOAD_BYTES",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("local_requires_database_url", func(t *testing.T) {
		clearEnv(t)
		cfg, err := Load()
		assert.Nil(t, cfg)
		require.Error(t, err)
		assert.Equal(t, "missing DATABASE_URL", err.Error())
	})

	t.Run("local_requires_jwt_secret", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://localhost:5432/db")
		cfg, err := Load()
		assert.Nil(t, cfg)
		require.Error(t, err)
		assert.Equal(t, "missing JWT_SECRET", err.Error())
	})

	t.Run("local_loads_with_defaults", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://localhost:5432/db")
		t.Setenv("JWT_SECRET", "super-secret")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "dev", cfg.AppEnv)
		assert.Equal(t, BackendLocal, cfg.Backend)
		assert.Equal(t, "event-images", cfg.StorageBucket)
		assert.Equal(t, "city.events", cfg.RabbitExchange)
		assert.Equal(t, 15*time.Second, cfg.CacheTTLList)
		assert.False(t, cfg.CookieSecure)
		assert.True(t, cfg.S3UsePathStyle)
		assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes)
	})

	t.Run("supabase_requires_url_and_key", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BACKEND", "supabase")
		_, err := Load()
		require.Error(t, err)
		assert.Equal(t, "missing SUPABASE_URL", err.Error())

		t.Setenv("SUPABASE_URL", "https://demo.supabase.co/")
		_, err = Load()
		require.Error(t, err)
		assert.Equal(t, "missing SUPABASE_ANON_KEY", err.Error())

		t.Setenv("SUPABASE_ANON_KEY", "anon")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "https://demo.supabase.co", cfg.SupabaseURL)
	})

	t.Run("unknown_backend", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BACKEND", "firebase")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("prod_local_requires_rabbit", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "prod")
		t.Setenv("DATABASE_URL", "postgres://localhost")
		t.Setenv("JWT_SECRET", "secret")

		cfg, err := Load()
		assert.Nil(t, cfg)
		assert.Error(t, err)
	})

	t.Run("invalid_duration_falls_back", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://localhost")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("HTTP_READ_TIMEOUT", "soon")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 10*time.Second, cfg.HTTPReadTimeout)
	})
}
