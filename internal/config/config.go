package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Pending-login store backends selectable with PENDING_STORE.
const (
	StoreCookie   = "cookie"
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds the application configuration
type Config struct {
	Port            string
	SupabaseURL     string
	SupabaseAnonKey string
	JWTSecret       string
	DevMode         bool
	PendingStore    string
	PendingTTL      time.Duration
	CookieSecret    string
	CookieSecure    bool
	DatabaseURL     string
	RedisURL        string
	LogLevel        string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("PENDING_STORE", StoreCookie)
	v.SetDefault("PENDING_LOGIN_TTL", time.Hour)
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("OTP_DEV_MODE", false)

	cfg := &Config{
		Port:            v.GetString("PORT"),
		SupabaseURL:     strings.TrimRight(strings.TrimSpace(v.GetString("SUPABASE_URL")), "/"),
		SupabaseAnonKey: strings.TrimSpace(v.GetString("SUPABASE_ANON_KEY")),
		JWTSecret:       v.GetString("SUPABASE_JWT_SECRET"),
		DevMode:         v.GetBool("OTP_DEV_MODE"),
		PendingStore:    strings.ToLower(strings.TrimSpace(v.GetString("PENDING_STORE"))),
		PendingTTL:      v.GetDuration("PENDING_LOGIN_TTL"),
		CookieSecret:    v.GetString("COOKIE_SECRET"),
		CookieSecure:    v.GetBool("COOKIE_SECURE"),
		DatabaseURL:     strings.TrimSpace(v.GetString("DATABASE_URL")),
		RedisURL:        strings.TrimSpace(v.GetString("REDIS_URL")),
		LogLevel:        v.GetString("LOG_LEVEL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.SupabaseURL != "" {
		slog.Debug("auth provider configured", "url", cfg.SupabaseURL, "dev_mode", cfg.DevMode)
	}

	return cfg, nil
}

// Validate checks required settings for the selected provider and pending store.
func (c *Config) Validate() error {
	if c.DevMode {
		if c.JWTSecret == "" {
			return fmt.Errorf("SUPABASE_JWT_SECRET environment variable is required when OTP_DEV_MODE=true")
		}
	} else {
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL environment variable is required")
		}
		if u, err := url.Parse(c.SupabaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("SUPABASE_URL %q is not a valid URL", c.SupabaseURL)
		}
		if c.SupabaseAnonKey == "" {
			return fmt.Errorf("SUPABASE_ANON_KEY environment variable is required")
		}
	}

	if c.PendingTTL <= 0 {
		return fmt.Errorf("PENDING_LOGIN_TTL must be positive, got %s", c.PendingTTL)
	}

	switch c.PendingStore {
	case StoreCookie:
		if c.CookieSecret == "" {
			return fmt.Errorf("COOKIE_SECRET environment variable is required for the cookie pending store")
		}
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required for the postgres pending store")
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL environment variable is required for the redis pending store")
		}
	default:
		return fmt.Errorf("unknown PENDING_STORE %q (want cookie, memory, postgres or redis)", c.PendingStore)
	}

	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
