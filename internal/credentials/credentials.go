// Package credentials parses warehouse key documents into core.Credentials.
package credentials

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/zeebo/xxh3"

	"github.com/leapstack-labs/leapview/pkg/core"
)

// TypeServiceAccount is the key type issued for Google service accounts.
const TypeServiceAccount = "service_account"

// Parse validates a JSON key document. Blank input yields core.ErrEmptyInput;
// anything that is not a usable key yields core.ErrInvalidFormat. Nothing of
// raw is referenced by the error.
func Parse(raw []byte) (*core.Credentials, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, core.ErrEmptyInput
	}

	var creds core.Credentials
	if err := json.Unmarshal(trimmed, &creds); err != nil {
		return nil, fmt.Errorf("%w: not a JSON object", core.ErrInvalidFormat)
	}

	if err := validate(&creds); err != nil {
		creds.Zero()
		return nil, err
	}

	creds.Raw = append([]byte(nil), trimmed...)
	creds.Fingerprint = Fingerprint(&creds)
	return &creds, nil
}

// ParseFile reads and parses a key document from disk. The file contents are
// wiped from memory once parsed.
func ParseFile(path string) (*core.Credentials, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	defer clear(raw)
	return Parse(raw)
}

func validate(c *core.Credentials) error {
	var missing []string
	if c.Type == "" {
		missing = append(missing, "type")
	}
	if c.ProjectID == "" {
		missing = append(missing, "project_id")
	}
	if c.Type == TypeServiceAccount {
		if c.ClientEmail == "" {
			missing = append(missing, "client_email")
		}
		if c.PrivateKey == "" {
			missing = append(missing, "private_key")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", core.ErrInvalidFormat, strings.Join(missing, ", "))
	}

	if c.Type == TypeServiceAccount && !strings.Contains(c.PrivateKey, "PRIVATE KEY-----") {
		return fmt.Errorf("%w: private_key is not a PEM block", core.ErrInvalidFormat)
	}
	return nil
}

// Fingerprint identifies a key by its identity fields and secret without
// keeping any of them.
func Fingerprint(c *core.Credentials) string {
	h := xxh3.New()
	for _, part := range []string{c.Type, c.ProjectID, c.ClientEmail, c.PrivateKeyID, c.PrivateKey, c.User, c.Password} {
		_, _ = h.WriteString(part)
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// Describe returns a short, secret-free label for a key.
func Describe(c *core.Credentials) string {
	switch {
	case c.ClientEmail != "":
		return fmt.Sprintf("%s (%s)", c.ClientEmail, c.ProjectID)
	case c.User != "":
		return fmt.Sprintf("%s@%s", c.User, c.ProjectID)
	default:
		return fmt.Sprintf("%s key for %s", c.Type, c.ProjectID)
	}
}
