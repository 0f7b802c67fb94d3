// Package app wires configuration into a ready-to-serve HTTP handler.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/signalix/otplogin/internal/auth"
	"github.com/signalix/otplogin/internal/config"
	"github.com/signalix/otplogin/internal/db"
	httphandler "github.com/signalix/otplogin/internal/http"
	"github.com/signalix/otplogin/internal/http/handlers"
	"github.com/signalix/otplogin/internal/pending"
	"github.com/signalix/otplogin/internal/repo"
	"github.com/signalix/otplogin/internal/supabase"
)

const purgeInterval = 10 * time.Minute

// App holds the wired handler and the resources it owns
type App struct {
	Handler http.Handler

	closers []func() error
}

// New builds the provider, pending store and router selected by cfg.
// Background work (expired-row purging) stops when ctx is done.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	provider, verifier := newProvider(cfg)

	store, err := a.newStore(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	pages := handlers.NewPages()
	loginHandler := handlers.NewLoginHandler(auth.NewLoginService(provider), store, pages, cfg.CookieSecure)
	dashboardHandler := handlers.NewDashboardHandler(pages)

	a.Handler = httphandler.NewRouter(loginHandler, dashboardHandler, verifier, cfg.CookieSecure)
	return a, nil
}

// Close releases database and cache connections.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func newProvider(cfg *config.Config) (auth.OtpProvider, auth.TokenVerifier) {
	if cfg.DevMode {
		jwtService := auth.NewJWTService(cfg.JWTSecret)
		slog.Warn("OTP_DEV_MODE enabled: no email is sent and the code is always " + auth.DevOTP)
		return auth.NewDevProvider(jwtService), jwtService
	}

	client := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	if cfg.JWTSecret != "" {
		return client, auth.NewJWTService(cfg.JWTSecret)
	}
	return client, client
}

func (a *App) newStore(ctx context.Context, cfg *config.Config) (pending.Store, error) {
	opts := pending.Options{TTL: cfg.PendingTTL, Secure: cfg.CookieSecure}

	switch cfg.PendingStore {
	case config.StoreCookie:
		return pending.NewCookieStore(cfg.CookieSecret, opts), nil

	case config.StoreMemory:
		return pending.NewServerStore(pending.NewMemoryBackend(cfg.PendingTTL), opts), nil

	case config.StorePostgres:
		database, err := openPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, database.Close)

		pendingRepo := repo.NewPendingRepo(database)
		go pending.RunJanitor(ctx, pendingRepo, purgeInterval)
		return pending.NewServerStore(pendingRepo, opts), nil

	case config.StoreRedis:
		client, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return pending.NewServerStore(pending.NewRedisBackend(client), opts), nil
	}

	return nil, fmt.Errorf("unknown pending store %q", cfg.PendingStore)
}

func openPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	database, err := db.Open(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		_ = database.Close()
		return nil, err
	}
	return database, nil
}

func openRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
