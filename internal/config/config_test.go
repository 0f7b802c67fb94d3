package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setProviderEnv(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://project.supabase.co/")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
	t.Setenv("COOKIE_SECRET", "cookie-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setProviderEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "https://project.supabase.co", cfg.SupabaseURL, "trailing slash must be trimmed")
	assert.Equal(t, StoreCookie, cfg.PendingStore)
	assert.Equal(t, time.Hour, cfg.PendingTTL)
	assert.True(t, cfg.CookieSecure)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	setProviderEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("PENDING_STORE", "Memory")
	t.Setenv("PENDING_LOGIN_TTL", "15m")
	t.Setenv("COOKIE_SECURE", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.PendingStore)
	assert.Equal(t, 15*time.Minute, cfg.PendingTTL)
	assert.False(t, cfg.CookieSecure)
}

func TestLoad_MissingProvider(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
	t.Setenv("COOKIE_SECRET", "cookie-secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_URL")
}

func TestLoad_DevModeNeedsJWTSecret(t *testing.T) {
	t.Setenv("OTP_DEV_MODE", "true")
	t.Setenv("SUPABASE_JWT_SECRET", "")
	t.Setenv("COOKIE_SECRET", "cookie-secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_JWT_SECRET")

	t.Setenv("SUPABASE_JWT_SECRET", "dev-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.DevMode)
}

func TestValidate_PendingStores(t *testing.T) {
	base := Config{
		SupabaseURL:     "https://project.supabase.co",
		SupabaseAnonKey: "anon",
		PendingTTL:      time.Hour,
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "cookie-without-secret", mutate: func(c *Config) { c.PendingStore = StoreCookie }, wantErr: "COOKIE_SECRET"},
		{name: "cookie-with-secret", mutate: func(c *Config) { c.PendingStore = StoreCookie; c.CookieSecret = "s" }},
		{name: "memory", mutate: func(c *Config) { c.PendingStore = StoreMemory }},
		{name: "postgres-without-dsn", mutate: func(c *Config) { c.PendingStore = StorePostgres }, wantErr: "DATABASE_URL"},
		{name: "redis-without-url", mutate: func(c *Config) { c.PendingStore = StoreRedis }, wantErr: "REDIS_URL"},
		{name: "unknown", mutate: func(c *Config) { c.PendingStore = "etcd" }, wantErr: "unknown PENDING_STORE"},
		{name: "zero-ttl", mutate: func(c *Config) { c.PendingStore = StoreMemory; c.PendingTTL = 0 }, wantErr: "PENDING_LOGIN_TTL"},
		{name: "bad-url", mutate: func(c *Config) { c.PendingStore = StoreMemory; c.SupabaseURL = "not a url" }, wantErr: "not a valid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
