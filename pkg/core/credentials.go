package core

// Credentials is a parsed warehouse key. It lives only long enough to be
// exchanged for a Client and is zeroed afterwards.
type Credentials struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id,omitempty"`
	PrivateKey   string `json:"private_key,omitempty"`
	ClientEmail  string `json:"client_email,omitempty"`
	ClientID     string `json:"client_id,omitempty"`

	// User and Password are used by engines that authenticate with a login.
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`

	// Raw is the original key document, required by engines that parse it themselves.
	Raw []byte `json:"-"`

	// Fingerprint identifies the key without revealing it.
	Fingerprint string `json:"-"`
}

// Zero wipes the secret material. The Fingerprint survives so the caller
// can still key caches on it.
func (c *Credentials) Zero() {
	if c == nil {
		return
	}
	for i := range c.Raw {
		c.Raw[i] = 0
	}
	c.Raw = nil
	c.PrivateKey = ""
	c.PrivateKeyID = ""
	c.Password = ""
}
