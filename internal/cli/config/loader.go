package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable leapview reads.
const EnvPrefix = "LEAPVIEW_"

// ConfigFileNames are looked up in the working directory when no file is given.
var ConfigFileNames = []string{"leapview.yaml", "leapview.yml"}

// sections are the nested config groups; env keys are split after them.
var sections = []string{"cache.redis", "engine", "ui", "cache", "history"}

// flagKeys maps flag names onto config keys where the two differ.
var flagKeys = map[string]string{
	"credentials": "engine.credentials_file",
	"engine":      "engine.type",
	"scope":       "engine.scope",
	"max-rows":    "engine.max_rows",
	"port":        "ui.port",
	"dev":         "ui.dev",
	"log-level":   "log_level",
}

// skippedFlags are flags that never become config values.
var skippedFlags = map[string]bool{
	"config": true,
	"help":   true,
	"format": true,
	"input":  true,
	"limit":  true,
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

type (
	loggerKey struct{}
	configKey struct{}
)

// findConfigFile returns explicit, or the first default file name that exists.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range ConfigFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load builds the configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaultMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: LEAPVIEW_UI_PORT -> ui.port
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only those set explicitly
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || skippedFlags[f.Name] {
				return "", nil
			}
			return flagKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	cfg.Engine.Password = expandEnvVars(cfg.Engine.Password)
	cfg.Engine.User = expandEnvVars(cfg.Engine.User)
	cfg.Cache.Redis.Password = expandEnvVars(cfg.Cache.Redis.Password)
	cfg.UI.SessionSecret = expandEnvVars(cfg.UI.SessionSecret)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// envKey maps an environment variable name to a config key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		prefix := strings.ReplaceAll(section, ".", "_") + "_"
		if strings.HasPrefix(key, prefix) {
			return section + "." + strings.TrimPrefix(key, prefix)
		}
	}
	return key
}

func flagKey(name string) string {
	if key, ok := flagKeys[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "-", "_")
}

// expandEnvVars expands ${VAR} patterns with environment variable values.
// Unknown variables are left as written.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})
}

// WithLogger stores the logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// WithConfig stores the loaded configuration in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the configuration from ctx, or the defaults if none was loaded.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return Defaults()
}
