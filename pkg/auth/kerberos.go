package auth

import (
	"fmt"
	"os"
	"strings"

	"github.com/jcmturner/gokrb5/v8/client"
	"github.com/jcmturner/gokrb5/v8/config"
	"github.com/jcmturner/gokrb5/v8/credentials"
	"github.com/jcmturner/gokrb5/v8/keytab"
	"github.com/jcmturner/gokrb5/v8/spnego"
)

// KerberosCredentials authenticates the session with a Kerberos service
// ticket instead of NTLM. The SPNEGO token it produces rides the same
// SESSION_SETUP exchange.
type KerberosCredentials struct {
	realm    string
	username string
	krb      *client.Client
}

// NewKerberosFromCCache loads an existing ticket cache (e.g. the file
// KRB5CCNAME points at).
func NewKerberosFromCCache(ccachePath, realm string) (*KerberosCredentials, error) {
	ccache, err := credentials.LoadCCache(ccachePath)
	if err != nil {
		return nil, fmt.Errorf("load ccache: %w", err)
	}
	cfg, err := krb5Config()
	if err != nil {
		return nil, err
	}
	krb, err := client.NewFromCCache(ccache, cfg)
	if err != nil {
		return nil, fmt.Errorf("create kerberos client: %w", err)
	}
	username := ""
	if names := ccache.DefaultPrincipal.PrincipalName.NameString; len(names) > 0 {
		username = names[0]
	}
	return &KerberosCredentials{realm: strings.ToUpper(realm), username: username, krb: krb}, nil
}

// NewKerberosFromKeytab builds credentials that request tickets using a
// keytab.
func NewKerberosFromKeytab(keytabPath, username, realm string) (*KerberosCredentials, error) {
	cfg, err := krb5Config()
	if err != nil {
		return nil, err
	}
	kt, err := keytab.Load(keytabPath)
	if err != nil {
		return nil, fmt.Errorf("load keytab: %w", err)
	}
	krb := client.NewWithKeytab(username, realm, kt, cfg)
	return &KerberosCredentials{realm: strings.ToUpper(realm), username: username, krb: krb}, nil
}

// NewKerberosFromPassword builds credentials that perform an AS-REQ with
// the password.
func NewKerberosFromPassword(username, realm, password string) (*KerberosCredentials, error) {
	cfg, err := krb5Config()
	if err != nil {
		return nil, err
	}
	krb := client.NewWithPassword(username, realm, password, cfg)
	return &KerberosCredentials{realm: strings.ToUpper(realm), username: username, krb: krb}, nil
}

// Domain returns the realm.
func (k *KerberosCredentials) Domain() string { return k.realm }

// Username returns the principal's first name component.
func (k *KerberosCredentials) Username() string { return k.username }

// Login obtains the TGT. Ccache-backed clients already hold one.
func (k *KerberosCredentials) Login() error {
	return k.krb.Login()
}

// GetSPNEGOToken produces the initial SPNEGO context token for the SPN
// (cifs/<host> for SMB).
func (k *KerberosCredentials) GetSPNEGOToken(spn string) ([]byte, error) {
	token, err := spnego.SPNEGOClient(k.krb, spn).InitSecContext()
	if err != nil {
		return nil, fmt.Errorf("build SPNEGO token: %w", err)
	}
	return token.Marshal()
}

// Close destroys the Kerberos session state.
func (k *KerberosCredentials) Close() {
	if k.krb != nil {
		k.krb.Destroy()
	}
}

func krb5Config() (*config.Config, error) {
	for _, path := range []string{os.Getenv("KRB5_CONFIG"), "/etc/krb5.conf", "/etc/krb5/krb5.conf"} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return config.Load(path)
		}
	}
	return config.NewFromString("[libdefaults]\ndns_lookup_realm = true\ndns_lookup_kdc = true\n")
}
