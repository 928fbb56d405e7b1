package smb

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/croxford/smbls/pkg/auth"
)

// Defaults applied to unset connection fields.
const (
	DefaultUsername = "guest"
	DefaultPassword = ""
	DefaultDomain   = "WORKGROUP"
	DefaultTimeout  = 5000 * time.Millisecond
)

// Options describes one connection. Either fill the fields directly or
// derive them from a connection string with ParseConnectionString; the two
// paths produce identical results.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	Domain   string
	Timeout  time.Duration

	// Socks5URL routes the TCP connection through a SOCKS5 proxy.
	Socks5URL string

	// Credentials overrides Username/Password/Domain with a prepared
	// credential, e.g. Kerberos or pass-the-hash.
	Credentials auth.Credentials
}

// Normalize fills defaults and validates the descriptor. A missing host is
// rejected before any connection attempt.
func (o *Options) Normalize() error {
	if o.Host == "" {
		return errors.New("missing host")
	}
	if o.Port == 0 {
		o.Port = DefaultPort
	}
	if o.Port < 0 || o.Port > 65535 {
		return fmt.Errorf("invalid port %d", o.Port)
	}
	if o.Username == "" {
		o.Username = DefaultUsername
	}
	if o.Domain == "" {
		o.Domain = DefaultDomain
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	return nil
}

// credentials returns the credential to authenticate with.
func (o *Options) credentials() auth.Credentials {
	if o.Credentials != nil {
		return o.Credentials
	}
	return auth.NewPasswordCredentials(o.Domain, o.Username, o.Password)
}

// ParseConnectionString parses a connection descriptor of the form
//
//	smb://[[domain;]username[:password]@]host[:port]
//
// Omitted fields take the same defaults Normalize applies. The string is
// rejected before any connection attempt when it does not match the
// grammar or names no host.
func ParseConnectionString(s string) (Options, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Options{}, fmt.Errorf("invalid connection string: %w", err)
	}
	if u.Scheme != "smb" {
		return Options{}, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return Options{}, errors.New("missing host")
	}

	opts := Options{Host: u.Hostname()}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return Options{}, fmt.Errorf("invalid port %q", p)
		}
		opts.Port = port
	}
	if u.User != nil {
		user := u.User.Username()
		if domain, rest, ok := strings.Cut(user, ";"); ok {
			opts.Domain = domain
			user = rest
		}
		opts.Username = user
		opts.Password, _ = u.User.Password()
	}
	if err := opts.Normalize(); err != nil {
		return Options{}, err
	}
	return opts, nil
}
