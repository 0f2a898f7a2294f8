// Package prefs stores the user's theme preference.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/unimatch/internal/platform/cache"
)

// Key is the preference name, shared by every store.
const Key = "unimatch_theme"

// Theme is a color scheme preference.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// ParseTheme accepts "light" or "dark".
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case Light, Dark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// IsDark reports whether t is the dark theme.
func (t Theme) IsDark() bool {
	return t == Dark
}

// Toggled returns the other theme.
func (t Theme) Toggled() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Store reads and writes the theme preference.
type Store interface {
	Theme(ctx context.Context) (Theme, bool, error)
	SetTheme(ctx context.Context, t Theme) error
}

// Resolve returns the stored theme, falling back to the terminal's
// background when none is stored or the store fails.
func Resolve(ctx context.Context, s Store, darkBackground func() bool) Theme {
	if s != nil {
		if t, ok, err := s.Theme(ctx); err == nil && ok {
			return t
		}
	}
	if darkBackground == nil {
		darkBackground = lipgloss.HasDarkBackground
	}
	if darkBackground() {
		return Dark
	}
	return Light
}

// FileStore keeps preferences in a YAML file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The file is created on the
// first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading prefs: %w", err)
	}
	m := map[string]string{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing prefs %s: %w", s.path, err)
	}
	return m, nil
}

func (s *FileStore) Theme(_ context.Context) (Theme, bool, error) {
	m, err := s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := m[Key]
	if !ok {
		return "", false, nil
	}
	t, err := ParseTheme(v)
	if err != nil {
		return "", false, err
	}
	return t, true, nil
}

func (s *FileStore) SetTheme(_ context.Context, t Theme) error {
	m, err := s.read()
	if err != nil {
		return err
	}
	m[Key] = string(t)

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating prefs dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing prefs: %w", err)
	}
	return nil
}

// RedisStore keeps one client's preferences in Redis so that every relay
// instance sees the same value.
type RedisStore struct {
	cache    *cache.Cache
	clientID string
}

// NewRedisStore returns a store for clientID.
func NewRedisStore(c *cache.Cache, clientID string) *RedisStore {
	return &RedisStore{cache: c, clientID: clientID}
}

func (s *RedisStore) key() string {
	return "prefs:" + s.clientID + ":" + Key
}

func (s *RedisStore) Theme(ctx context.Context) (Theme, bool, error) {
	v, ok, err := s.cache.Get(ctx, s.key())
	if err != nil || !ok {
		return "", false, err
	}
	t, err := ParseTheme(v)
	if err != nil {
		return "", false, err
	}
	return t, true, nil
}

func (s *RedisStore) SetTheme(ctx context.Context, t Theme) error {
	return s.cache.Set(ctx, s.key(), string(t))
}
