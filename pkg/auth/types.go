// Package auth builds and interprets the NTLMSSP handshake messages and
// holds the credential types a session authenticates with. Message
// construction is stateless: each builder is a pure function of its
// arguments.
package auth

// Credentials is the identity material handed to session setup.
type Credentials interface {
	Domain() string
	Username() string
}

// KerberosProvider is implemented by credentials that authenticate via
// Kerberos/SPNEGO instead of NTLM.
type KerberosProvider interface {
	Credentials
	GetSPNEGOToken(spn string) ([]byte, error)
}

// PasswordCredentials authenticates with a plaintext password.
type PasswordCredentials struct {
	domain   string
	username string
	password string
}

// NewPasswordCredentials builds password credentials.
func NewPasswordCredentials(domain, username, password string) *PasswordCredentials {
	return &PasswordCredentials{domain: domain, username: username, password: password}
}

// Domain returns the domain.
func (c *PasswordCredentials) Domain() string { return c.domain }

// Username returns the account name.
func (c *PasswordCredentials) Username() string { return c.username }

// Password returns the password.
func (c *PasswordCredentials) Password() string { return c.password }

// HashCredentials authenticates with a raw 16-byte NT hash
// (pass-the-hash).
type HashCredentials struct {
	domain   string
	username string
	ntHash   []byte
}

// NewHashCredentials builds hash credentials from a 16-byte NT hash.
func NewHashCredentials(domain, username string, ntHash []byte) *HashCredentials {
	h := make([]byte, len(ntHash))
	copy(h, ntHash)
	return &HashCredentials{domain: domain, username: username, ntHash: h}
}

// Domain returns the domain.
func (c *HashCredentials) Domain() string { return c.domain }

// Username returns the account name.
func (c *HashCredentials) Username() string { return c.username }

// NTHash returns a copy of the NT hash.
func (c *HashCredentials) NTHash() []byte {
	h := make([]byte, len(c.ntHash))
	copy(h, c.ntHash)
	return h
}

// AnonymousCredentials requests a null session.
type AnonymousCredentials struct{}

// Domain returns the empty domain.
func (AnonymousCredentials) Domain() string { return "" }

// Username returns the empty account name.
func (AnonymousCredentials) Username() string { return "" }
