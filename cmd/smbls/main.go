package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/jfjallid/golog"
	"github.com/mjwhitta/cli"
	"golang.org/x/term"

	"github.com/croxford/smbls/pkg/auth"
	"github.com/croxford/smbls/pkg/smb"
	"github.com/croxford/smbls/pkg/srvsvc"
)

const version = "0.1.0"

var log = golog.Get("")

func main() {
	var (
		target   string
		port     int
		username string
		password string
		hash     string
		domain   string
		ccache   string
		keytab   string
		socks5   string
		timeout  int
		shell    bool
		noPass   bool
		debug    bool
	)

	cli.Align = true
	cli.Banner = "smbls [OPTIONS] [smb://[[domain;]user[:pass]@]host[:port] | host]"
	cli.Info("List the shares a remote SMB server exposes")

	cli.Flag(&target, "t", "target", "", "Target server IP/hostname (alternative to the positional form)")
	cli.Flag(&port, "P", "port", 0, "Target port (default 445)")
	cli.Flag(&username, "u", "user", "", "Username")
	cli.Flag(&domain, "d", "domain", "", "Domain name / Kerberos realm")
	cli.Flag(&password, "p", "password", "", "Password")
	cli.Flag(&hash, "H", "hash", "", "NT hash for pass-the-hash (32 hex chars)")
	cli.Flag(&ccache, "k", "ccache", "", "Kerberos ccache file (defaults to $KRB5CCNAME)")
	cli.Flag(&keytab, "K", "keytab", "", "Kerberos keytab file")
	cli.Flag(&socks5, "s", "socks5", "", "SOCKS5 proxy (host:port or user:pass@host:port)")
	cli.Flag(&timeout, "T", "timeout", 0, "Connection timeout in seconds (default 5)")
	cli.Flag(&noPass, "n", "no-pass", false, "Do not prompt for a password")
	cli.Flag(&shell, "i", "interactive", false, "Interactive multi-target prompt")
	cli.Flag(&debug, "v", "debug", false, "Enable debug logging")
	cli.Parse()

	if debug {
		enableDebugLogging()
	}

	opts := smb.Options{
		Host:     target,
		Port:     port,
		Username: username,
		Password: password,
		Domain:   domain,
	}
	if timeout > 0 {
		opts.Timeout = time.Duration(timeout) * time.Second
	}
	if socks5 != "" {
		if !strings.HasPrefix(socks5, "socks5://") {
			socks5 = "socks5://" + socks5
		}
		opts.Socks5URL = socks5
	}

	// A positional argument is either a connection string or a bare host.
	if len(cli.Args()) > 0 {
		arg := cli.Args()[0]
		if strings.HasPrefix(arg, "smb://") {
			parsed, err := smb.ParseConnectionString(arg)
			if err != nil {
				log.Errorf("%v\n", err)
				os.Exit(1)
			}
			mergeOptions(&opts, parsed)
		} else if opts.Host == "" {
			opts.Host = arg
		}
	}

	if ccache == "" {
		ccache = strings.TrimPrefix(os.Getenv("KRB5CCNAME"), "FILE:")
	}
	// Kerberos and pass-the-hash produce explicit credentials; plain
	// password logins ride on the Options fields so connection-string
	// credentials and flag credentials behave identically.
	creds, err := buildCredentials(username, hash, domain, ccache, keytab)
	if err != nil {
		log.Errorf("%v\n", err)
		os.Exit(1)
	}
	if creds != nil {
		if closer, ok := creds.(interface{ Close() }); ok {
			defer closer.Close()
		}
		opts.Credentials = creds
	} else if opts.Username != "" && opts.Password == "" && !noPass {
		opts.Password = promptPassword()
	}

	ctx := context.Background()

	if shell {
		runShell(ctx, opts)
		return
	}

	if opts.Host == "" {
		log.Errorln("missing target host")
		cli.Usage(1)
	}
	if err := enumerate(ctx, opts); err != nil {
		log.Errorf("%v\n", err)
		os.Exit(1)
	}
}

// mergeOptions overlays fields parsed from a connection string onto flag
// values; explicit flags win for credential fields, the string wins for
// host and port.
func mergeOptions(opts *smb.Options, parsed smb.Options) {
	opts.Host = parsed.Host
	opts.Port = parsed.Port
	if opts.Username == "" {
		opts.Username = parsed.Username
	}
	if opts.Password == "" {
		opts.Password = parsed.Password
	}
	if opts.Domain == "" {
		opts.Domain = parsed.Domain
	}
}

func buildCredentials(username, hash, domain, ccache, keytab string) (auth.Credentials, error) {
	switch {
	case ccache != "":
		if domain == "" {
			return nil, fmt.Errorf("kerberos ccache requires a realm (-d)")
		}
		krb, err := auth.NewKerberosFromCCache(ccache, domain)
		if err != nil {
			return nil, fmt.Errorf("load ccache: %w", err)
		}
		if err := krb.Login(); err != nil {
			return nil, fmt.Errorf("kerberos login: %w", err)
		}
		return krb, nil
	case keytab != "":
		if username == "" || domain == "" {
			return nil, fmt.Errorf("kerberos keytab requires -u and -d")
		}
		krb, err := auth.NewKerberosFromKeytab(keytab, username, domain)
		if err != nil {
			return nil, fmt.Errorf("load keytab: %w", err)
		}
		if err := krb.Login(); err != nil {
			return nil, fmt.Errorf("kerberos login: %w", err)
		}
		return krb, nil
	case hash != "":
		raw, err := parseHash(hash)
		if err != nil {
			return nil, err
		}
		return auth.NewHashCredentials(domain, username, raw), nil
	default:
		return nil, nil
	}
}

func enumerate(ctx context.Context, opts smb.Options) error {
	shares, err := srvsvc.ListShares(ctx, opts)
	if err != nil {
		return err
	}
	printShares(opts.Host, shares)
	return nil
}

func printShares(host string, shares []srvsvc.ShareInfo) {
	fmt.Printf("Shares on %s:\n\n", host)
	fmt.Printf("%-20s %-12s %-7s %s\n", "NAME", "TYPE", "HIDDEN", "REMARK")
	for _, s := range shares {
		hidden := ""
		if s.Hidden {
			hidden = "yes"
		}
		typ := s.Type.String()
		if s.Temporary {
			typ += " (temp)"
		}
		fmt.Printf("%-20s %-12s %-7s %s\n", s.Name, typ, hidden, s.Remark)
	}
	fmt.Printf("\n%d share(s)\n", len(shares))
}

func promptPassword() string {
	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Errorf("read password: %v\n", err)
		os.Exit(1)
	}
	return string(raw)
}

func parseHash(hash string) ([]byte, error) {
	hash = strings.TrimSpace(hash)
	if len(hash) != 32 {
		return nil, fmt.Errorf("invalid hash length %d (expected 32 hex chars)", len(hash))
	}
	raw := make([]byte, 16)
	for i := 0; i < 16; i++ {
		if _, err := fmt.Sscanf(hash[i*2:i*2+2], "%02x", &raw[i]); err != nil {
			return nil, fmt.Errorf("invalid hash: %w", err)
		}
	}
	return raw, nil
}

func enableDebugLogging() {
	flags := golog.LstdFlags | golog.Lshortfile
	golog.Set("github.com/croxford/smbls/pkg/smb", "smb", golog.LevelDebug, flags, golog.DefaultOutput, golog.DefaultErrOutput)
	golog.Set("github.com/croxford/smbls/pkg/srvsvc", "srvsvc", golog.LevelDebug, flags, golog.DefaultOutput, golog.DefaultErrOutput)
	log.SetFlags(flags)
	log.SetLogLevel(golog.LevelDebug)
}
