package duckdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		want    *Params
		wantErr bool
	}{
		{
			name:  "nil params returns empty struct",
			input: nil,
			want:  &Params{},
		},
		{
			name: "extensions only",
			input: map[string]any{
				"extensions": []any{"httpfs", "json"},
			},
			want: &Params{Extensions: []string{"httpfs", "json"}},
		},
		{
			name: "settings are weakly typed",
			input: map[string]any{
				"settings": map[string]any{
					"memory_limit": "4GB",
					"threads":      4,
				},
			},
			want: &Params{Settings: map[string]string{"memory_limit": "4GB", "threads": "4"}},
		},
		{
			name: "secrets",
			input: map[string]any{
				"secrets": []any{
					map[string]any{"type": "s3", "provider": "credential_chain", "region": "us-west-2"},
				},
			},
			want: &Params{Secrets: []SecretConfig{{Type: "s3", Provider: "credential_chain", Region: "us-west-2"}}},
		},
		{
			name:    "unknown key rejected",
			input:   map[string]any{"extentions": []any{"httpfs"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParams(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParams_SetupStatements(t *testing.T) {
	useSSL := false
	p := &Params{
		Extensions: []string{"httpfs"},
		Settings:   map[string]string{"threads": "2", "memory_limit": "1GB"},
		Secrets: []SecretConfig{{
			Type:     "s3",
			Provider: "config",
			KeyID:    "AKIA",
			Secret:   "it's",
			Scope:    []any{"s3://a", "s3://b"},
			UseSSL:   &useSSL,
		}},
	}

	assert.Equal(t, []string{
		"INSTALL httpfs",
		"LOAD httpfs",
		"SET memory_limit = '1GB'",
		"SET threads = '2'",
		"CREATE OR REPLACE SECRET leapview_secret_0 (TYPE s3, PROVIDER config, KEY_ID 'AKIA', SECRET 'it''s', USE_SSL false, SCOPE 's3://a', SCOPE 's3://b')",
	}, p.SetupStatements())
}
