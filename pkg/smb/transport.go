// Package smb implements the client side of the SMB2 conversation needed
// to reach a named pipe on a remote server: direct TCP framing, dialect
// negotiation, NTLM or Kerberos session setup, tree connect and file
// handle operations.
package smb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/jfjallid/golog"
	"golang.org/x/net/proxy"

	"github.com/croxford/smbls/internal/encoding"
)

var log = golog.Get("github.com/croxford/smbls/pkg/smb")

// DefaultPort is the direct-hosted SMB TCP port.
const DefaultPort = 445

// maxFrameSize bounds a single inbound frame; anything larger is treated
// as a corrupt stream.
const maxFrameSize = 16 * 1024 * 1024

// Transport frames SMB2 messages over a TCP stream. Every frame is
// prefixed by a 4-byte big-endian length of what follows, the prefix
// itself excluded. Reads consume exactly one frame at a time, so two
// frames delivered in a single segment come back from consecutive Recv
// calls rather than concatenated.
type Transport struct {
	mu      sync.Mutex
	conn    net.Conn
	timeout time.Duration
	host    string
}

// TransportConfig controls dialing and per-call deadlines.
type TransportConfig struct {
	Timeout   time.Duration
	Socks5URL string // optional socks5://[user:pass@]host:port proxy
}

// DialTransport connects to host:port and wraps the stream in framing.
func DialTransport(ctx context.Context, host string, port int, cfg TransportConfig) (*Transport, error) {
	if port <= 0 {
		port = DefaultPort
	}
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))

	var conn net.Conn
	var err error
	if cfg.Socks5URL != "" {
		conn, err = dialSocks5(ctx, cfg.Socks5URL, addr, cfg.Timeout)
	} else {
		d := &net.Dialer{Timeout: cfg.Timeout}
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	log.Debugf("connected to %s\n", addr)
	return &Transport{conn: conn, timeout: cfg.Timeout, host: host}, nil
}

func dialSocks5(ctx context.Context, proxyURL, target string, timeout time.Duration) (net.Conn, error) {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid SOCKS5 URL: %w", err)
	}
	var auth *proxy.Auth
	if u.User != nil {
		pass, _ := u.User.Password()
		auth = &proxy.Auth{User: u.User.Username(), Password: pass}
	}
	dialer, err := proxy.SOCKS5("tcp", u.Host, auth, &net.Dialer{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("create SOCKS5 dialer: %w", err)
	}
	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		conn, err := dialer.Dial("tcp", target)
		ch <- result{conn, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.conn, r.err
	}
}

// Send writes one framed message.
func (t *Transport) Send(msg []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return ErrNotConnected
	}
	if len(msg) > maxFrameSize {
		return errors.New("message too large for framing")
	}
	if t.timeout > 0 {
		t.conn.SetWriteDeadline(time.Now().Add(t.timeout))
	}
	frame := make([]byte, 4+len(msg))
	encoding.PutUint32BE(frame[0:4], uint32(len(msg)))
	copy(frame[4:], msg)
	if _, err := t.conn.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Recv reads exactly one framed message.
func (t *Transport) Recv() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil, ErrNotConnected
	}
	if t.timeout > 0 {
		t.conn.SetReadDeadline(time.Now().Add(t.timeout))
	}
	prefix := make([]byte, 4)
	if _, err := io.ReadFull(t.conn, prefix); err != nil {
		return nil, fmt.Errorf("read frame prefix: %w", err)
	}
	frameLen := int(encoding.Uint32BE(prefix))
	if frameLen == 0 {
		return nil, errors.New("empty frame")
	}
	if frameLen > maxFrameSize {
		return nil, fmt.Errorf("frame too large: %d bytes", frameLen)
	}
	msg := make([]byte, frameLen)
	if _, err := io.ReadFull(t.conn, msg); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return msg, nil
}

// Close tears the connection down. Safe to call more than once.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

// RemoteHost returns the host the transport was dialed with.
func (t *Transport) RemoteHost() string {
	return t.host
}
