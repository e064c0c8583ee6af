// Package config loads the leapview configuration.
//
// Values are layered from built-in defaults, a YAML file, LEAPVIEW_
// environment variables and explicitly set command-line flags, in that
// order of increasing precedence.
package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/leapview/pkg/core"
)

// Default configuration values.
const (
	DefaultEngine       = "bigquery"
	DefaultMaxRows      = 10000
	DefaultPort         = 8765
	DefaultSessionTTL   = 12 * time.Hour
	DefaultQueryTimeout = 2 * time.Minute
	DefaultHistoryLimit = 10
	DefaultCacheBackend = "memory"
	DefaultCacheTTL     = 10 * time.Minute
	DefaultCacheEntries = 256
	DefaultHistoryPath  = ".leapview/history.db"
	DefaultLogLevel     = "info"
	DefaultOutput       = "table"
)

// Config holds all leapview configuration.
type Config struct {
	Engine   EngineConfig  `koanf:"engine"`
	UI       UIConfig      `koanf:"ui"`
	Cache    CacheConfig   `koanf:"cache"`
	History  HistoryConfig `koanf:"history"`
	LogLevel string        `koanf:"log_level"`
	Verbose  bool          `koanf:"verbose"`
	Output   string        `koanf:"output"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// EngineConfig selects and configures the warehouse engine.
type EngineConfig struct {
	Type            string         `koanf:"type"`
	Scope           string         `koanf:"scope"`
	Location        string         `koanf:"location"`
	Path            string         `koanf:"path"`
	Host            string         `koanf:"host"`
	Port            int            `koanf:"port"`
	Database        string         `koanf:"database"`
	User            string         `koanf:"user"`
	Password        string         `koanf:"password"`
	SSLMode         string         `koanf:"sslmode"`
	MaxRows         int            `koanf:"max_rows"`
	CredentialsFile string         `koanf:"credentials_file"`
	Params          map[string]any `koanf:"params"`
}

// Core converts the section into the engine registry's config.
func (e EngineConfig) Core() core.EngineConfig {
	return core.EngineConfig{
		Type:     strings.ToLower(e.Type),
		Scope:    e.Scope,
		Location: e.Location,
		Path:     e.Path,
		Host:     e.Host,
		Port:     e.Port,
		Database: e.Database,
		User:     e.User,
		Password: e.Password,
		SSLMode:  e.SSLMode,
		MaxRows:  e.MaxRows,
		Params:   e.Params,
	}
}

// UIConfig configures the dashboard server.
type UIConfig struct {
	Port          int           `koanf:"port"`
	AutoOpen      bool          `koanf:"auto_open"`
	SessionSecret string        `koanf:"session_secret"`
	SessionTTL    time.Duration `koanf:"session_ttl"`
	QueryTimeout  time.Duration `koanf:"query_timeout"`
	HistoryLimit  int           `koanf:"history_limit"`
	Dev           bool          `koanf:"dev"`
}

// CacheConfig configures the query result cache.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Backend    string        `koanf:"backend"`
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"`
	Redis      RedisConfig   `koanf:"redis"`
}

// RedisConfig locates the Redis cache backend.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// HistoryConfig configures the query history database.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// SlogLevel maps LogLevel to a slog level. Verbose forces debug.
func (c *Config) SlogLevel() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			Type:    DefaultEngine,
			MaxRows: DefaultMaxRows,
		},
		UI: UIConfig{
			Port:         DefaultPort,
			AutoOpen:     true,
			SessionTTL:   DefaultSessionTTL,
			QueryTimeout: DefaultQueryTimeout,
			HistoryLimit: DefaultHistoryLimit,
		},
		Cache: CacheConfig{
			Enabled:    true,
			Backend:    DefaultCacheBackend,
			TTL:        DefaultCacheTTL,
			MaxEntries: DefaultCacheEntries,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    DefaultHistoryPath,
		},
		LogLevel: DefaultLogLevel,
		Output:   DefaultOutput,
	}
}

// defaultMap is Defaults in koanf's flat key form.
func defaultMap() map[string]any {
	d := Defaults()
	return map[string]any{
		"engine.type":       d.Engine.Type,
		"engine.max_rows":   d.Engine.MaxRows,
		"ui.port":           d.UI.Port,
		"ui.auto_open":      d.UI.AutoOpen,
		"ui.session_ttl":    d.UI.SessionTTL.String(),
		"ui.query_timeout":  d.UI.QueryTimeout.String(),
		"ui.history_limit":  d.UI.HistoryLimit,
		"cache.enabled":     d.Cache.Enabled,
		"cache.backend":     d.Cache.Backend,
		"cache.ttl":         d.Cache.TTL.String(),
		"cache.max_entries": d.Cache.MaxEntries,
		"history.enabled":   d.History.Enabled,
		"history.path":      d.History.Path,
		"log_level":         d.LogLevel,
		"verbose":           d.Verbose,
		"output":            d.Output,
	}
}
