// Package app wires configuration into the services a front end needs:
// the API client, the optional database and cache, and session options.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/p-n-ai/unimatch/internal/api"
	"github.com/p-n-ai/unimatch/internal/chat"
	"github.com/p-n-ai/unimatch/internal/events"
	"github.com/p-n-ai/unimatch/internal/i18n"
	"github.com/p-n-ai/unimatch/internal/platform/cache"
	"github.com/p-n-ai/unimatch/internal/platform/config"
	"github.com/p-n-ai/unimatch/internal/platform/database"
	"github.com/p-n-ai/unimatch/internal/prefs"
	"github.com/p-n-ai/unimatch/internal/session"
)

// App holds process-wide dependencies.
type App struct {
	Config  *config.Config
	Service api.Service
	Printer *i18n.Printer
	DB      *database.DB
	Cache   *cache.Cache

	chatStore chat.Store
	events    events.Logger
}

// Option configures an App.
type Option func(*App)

// WithService replaces the HTTP client built from the configuration.
func WithService(svc api.Service) Option {
	return func(a *App) {
		a.Service = svc
	}
}

// Open validates cfg and connects the configured backends. Without a
// database URL transcripts stay in memory and events are dropped.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &App{
		Config:  cfg,
		Printer: i18n.New(cfg.Locale),
		events:  events.NopLogger{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.Service == nil {
		a.Service = api.NewClient(cfg.API.BaseURL)
	}

	if cfg.HasDatabase() {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		store, err := chat.NewPostgresStore(db.Pool)
		if err != nil {
			db.Close()
			return nil, err
		}
		a.DB = db
		a.chatStore = store
		a.events = events.NewPostgresLogger(db.Pool)
		slog.Info("database connected")
	}

	if cfg.HasCache() {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Cache = c
		slog.Info("cache connected")
	}

	return a, nil
}

// Close releases the database and cache connections.
func (a *App) Close() {
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			slog.Warn("closing cache", "error", err)
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// Prefs returns the theme store for one client. With a cache configured
// the preference is shared under clientID; otherwise it lives in the local
// preference file.
func (a *App) Prefs(clientID string) prefs.Store {
	if a.Cache != nil && clientID != "" {
		return prefs.NewRedisStore(a.Cache, clientID)
	}
	return prefs.NewFileStore(a.Config.Prefs.Path)
}

// NewSession builds an unstarted session wired to the configured backends.
// withChat additionally requires chat to be enabled in the configuration.
func (a *App) NewSession(store prefs.Store, withChat bool, extra ...session.Option) *session.Session {
	rc := a.Config.Recommend
	opts := []session.Option{
		session.WithEventLogger(a.events),
		session.WithRecommendParams(api.RecommendParams{PreferredN: rc.PreferredN, AltN: rc.AltN, PerUni: rc.PerUni}),
	}
	if store != nil {
		opts = append(opts, session.WithPrefs(store))
	}
	if withChat && a.Config.Chat.Enabled {
		opts = append(opts, session.WithChat(a.chatStore))
	}
	opts = append(opts, extra...)
	return session.New(a.Service, a.Printer, opts...)
}
