// Package config provides configuration types, defaults and validation for tada.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Makepad-fr/tada/internal/cachemanager"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

// Config holds all configuration options.
type Config struct {
	Store StoreConfig `mapstructure:"store" yaml:"store"`
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`
	UI    UIConfig    `mapstructure:"ui" yaml:"ui"`
	Log   LogConfig   `mapstructure:"log" yaml:"log"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"` // "memory", "json" or "sqlite"
	Path    string `mapstructure:"path" yaml:"path"`       // data file; empty uses the backend default
}

// CacheConfig tunes the list snapshot cache. A zero TTL disables it.
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl" yaml:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" yaml:"cleanup_interval"`
}

// UIConfig holds presentation options.
type UIConfig struct {
	Locale string `mapstructure:"locale" yaml:"locale"` // "pt" (baixa/média/alta) or "en"
	Theme  string `mapstructure:"theme" yaml:"theme"`   // "classic", "neon" or "mono"
}

// LogConfig controls the debug log.
type LogConfig struct {
	Debug bool   `mapstructure:"debug" yaml:"debug"`
	Path  string `mapstructure:"path" yaml:"path"`
}

// Themes lists the accepted ui.theme values.
var Themes = []string{"classic", "neon", "mono"}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Store: StoreConfig{Backend: store.BackendJSON},
		Cache: CacheConfig{TTL: cachemanager.DefaultExpiration, CleanupInterval: cachemanager.DefaultCleanupInterval},
		UI:    UIConfig{Locale: string(model.VocabularyPortuguese), Theme: "classic"},
		Log:   LogConfig{Path: "debug.log"},
	}
}

// Validate checks enumerated values and durations.
func (c Config) Validate() error {
	if !slices.Contains(store.Backends, c.Store.Backend) {
		return fmt.Errorf("store.backend: unknown backend %q (want one of %s)", c.Store.Backend, strings.Join(store.Backends, ", "))
	}
	if _, ok := model.ParseVocabulary(c.UI.Locale); !ok {
		return fmt.Errorf("ui.locale: unknown locale %q (want pt or en)", c.UI.Locale)
	}
	if c.UI.Theme != "" && !slices.Contains(Themes, strings.ToLower(c.UI.Theme)) {
		return fmt.Errorf("ui.theme: unknown theme %q (want one of %s)", c.UI.Theme, strings.Join(Themes, ", "))
	}
	if c.Cache.TTL < 0 || c.Cache.CleanupInterval < 0 {
		return fmt.Errorf("cache: durations must not be negative")
	}
	return nil
}

// Vocabulary returns the priority vocabulary for ui.locale.
func (c Config) Vocabulary() model.Vocabulary {
	v, ok := model.ParseVocabulary(c.UI.Locale)
	if !ok {
		return model.VocabularyPortuguese
	}
	return v
}

// DataPath returns the configured data file, or the backend's default
// location inside the working directory.
func (c Config) DataPath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	switch c.Store.Backend {
	case store.BackendSQLite:
		return filepath.Join(wd, ".tada", "tada.db"), nil
	default:
		return filepath.Join(wd, "todos.json"), nil
	}
}
