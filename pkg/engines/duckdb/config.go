package duckdb

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds DuckDB-specific configuration.
// Parsed from core.EngineConfig.Params using mapstructure.
type Params struct {
	// Extensions to install and load (e.g., "httpfs", "spatial", "json")
	Extensions []string `mapstructure:"extensions"`

	// Secrets for cloud storage authentication
	Secrets []SecretConfig `mapstructure:"secrets"`

	// Settings to apply at session level (e.g., memory_limit, threads)
	Settings map[string]string `mapstructure:"settings"`
}

// SecretConfig defines a DuckDB secret for cloud storage.
type SecretConfig struct {
	// Type: "s3", "gcs", "azure", "r2", "huggingface"
	Type string `mapstructure:"type"`

	// Provider: "config", "credential_chain", ...
	Provider string `mapstructure:"provider"`

	Region   string `mapstructure:"region,omitempty"`
	Scope    any    `mapstructure:"scope,omitempty"`
	KeyID    string `mapstructure:"key_id,omitempty"`
	Secret   string `mapstructure:"secret,omitempty"`
	Endpoint string `mapstructure:"endpoint,omitempty"`
	URLStyle string `mapstructure:"url_style,omitempty"`
	UseSSL   *bool  `mapstructure:"use_ssl,omitempty"`
}

// ParseParams decodes the engine params map. A nil map yields empty Params.
func ParseParams(raw map[string]any) (*Params, error) {
	params := &Params{}
	if len(raw) == 0 {
		return params, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           params,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid duckdb params: %w", err)
	}
	return params, nil
}

// SetupStatements returns the statements that apply params to a fresh
// database, in a deterministic order.
func (p *Params) SetupStatements() []string {
	var stmts []string
	for _, ext := range p.Extensions {
		stmts = append(stmts, "INSTALL "+ext, "LOAD "+ext)
	}

	keys := make([]string, 0, len(p.Settings))
	for k := range p.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		stmts = append(stmts, fmt.Sprintf("SET %s = %s", k, quote(p.Settings[k])))
	}

	for i, s := range p.Secrets {
		stmts = append(stmts, s.createStatement(i))
	}
	return stmts
}

func (s SecretConfig) createStatement(i int) string {
	opts := []string{"TYPE " + s.Type}
	if s.Provider != "" {
		opts = append(opts, "PROVIDER "+s.Provider)
	}
	add := func(key, value string) {
		if value != "" {
			opts = append(opts, key+" "+quote(value))
		}
	}
	add("REGION", s.Region)
	add("KEY_ID", s.KeyID)
	add("SECRET", s.Secret)
	add("ENDPOINT", s.Endpoint)
	add("URL_STYLE", s.URLStyle)
	if s.UseSSL != nil {
		opts = append(opts, fmt.Sprintf("USE_SSL %t", *s.UseSSL))
	}
	switch scope := s.Scope.(type) {
	case string:
		add("SCOPE", scope)
	case []any:
		for _, v := range scope {
			add("SCOPE", fmt.Sprint(v))
		}
	}
	return fmt.Sprintf("CREATE OR REPLACE SECRET leapview_secret_%d (%s)", i, strings.Join(opts, ", "))
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
