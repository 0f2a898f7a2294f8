// Package config loads application configuration from environment variables.
// All variables use the UNIMATCH_ prefix.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	API       APIConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Recommend RecommendConfig
	Chat      ChatConfig
	Prefs     PrefsConfig
	Log       LogConfig
	Locale    string
}

// ServerConfig holds relay HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// APIConfig points at the external prediction service.
type APIConfig struct {
	BaseURL string
}

// DatabaseConfig holds optional PostgreSQL settings. An empty URL keeps
// transcripts and events in memory.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds optional Redis settings for the shared preference store.
type CacheConfig struct {
	URL string
}

// RecommendConfig holds the query parameters sent to /api/recommend.
type RecommendConfig struct {
	PreferredN int
	AltN       int
	PerUni     int
}

// ChatConfig toggles the chatbot panel.
type ChatConfig struct {
	Enabled bool
}

// PrefsConfig holds the local preference file location.
type PrefsConfig struct {
	Path string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
	File   string // TUI only; stdout belongs to the terminal UI
}

// Load reads configuration from environment variables with UNIMATCH_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("UNIMATCH_SERVER_PORT", 8080),
			Host: envStr("UNIMATCH_SERVER_HOST", "0.0.0.0"),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(envStr("UNIMATCH_API_BASE", "http://127.0.0.1:8000"), "/"),
		},
		Database: DatabaseConfig{
			URL:      envStr("UNIMATCH_DATABASE_URL", ""),
			MaxConns: envInt("UNIMATCH_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("UNIMATCH_DATABASE_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			URL: envStr("UNIMATCH_CACHE_URL", ""),
		},
		Recommend: RecommendConfig{
			PreferredN: envInt("UNIMATCH_RECOMMEND_PREF_N", 10),
			AltN:       envInt("UNIMATCH_RECOMMEND_ALT_N", 10),
			PerUni:     envInt("UNIMATCH_RECOMMEND_PER_UNI", 3),
		},
		Chat: ChatConfig{
			Enabled: envBool("UNIMATCH_CHAT_ENABLED", true),
		},
		Prefs: PrefsConfig{
			Path: envStr("UNIMATCH_PREFS_PATH", defaultPrefsPath()),
		},
		Log: LogConfig{
			Level:  envStr("UNIMATCH_LOG_LEVEL", "info"),
			Format: envStr("UNIMATCH_LOG_FORMAT", "json"),
			File:   envStr("UNIMATCH_LOG_FILE", ""),
		},
		Locale: envStr("UNIMATCH_LOCALE", "id"),
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("UNIMATCH_API_BASE must be an absolute URL, got %q", c.API.BaseURL)
	}

	if c.Recommend.PreferredN < 0 || c.Recommend.AltN < 0 || c.Recommend.PerUni < 0 {
		return fmt.Errorf("recommendation limits must be non-negative")
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("UNIMATCH_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	return nil
}

// HasDatabase returns true if a PostgreSQL URL is configured.
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasCache returns true if a Redis URL is configured.
func (c *Config) HasCache() bool {
	return c.Cache.URL != ""
}

func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".unimatch.yaml"
	}
	return dir + string(os.PathSeparator) + "unimatch" + string(os.PathSeparator) + "prefs.yaml"
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
