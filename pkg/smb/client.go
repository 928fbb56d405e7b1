package smb

import (
	"context"
	"fmt"
)

// Client bundles a transport and session for one target host.
type Client struct {
	opts      Options
	transport *Transport
	session   *Session
}

// Dial connects to the target and negotiates a dialect. The returned client
// is not yet authenticated.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}
	transport, err := DialTransport(ctx, opts.Host, opts.Port, TransportConfig{
		Timeout:   opts.Timeout,
		Socks5URL: opts.Socks5URL,
	})
	if err != nil {
		return nil, err
	}

	session := NewSession(transport)
	if _, err := session.Negotiate(ctx); err != nil {
		transport.Close()
		return nil, err
	}
	return &Client{opts: opts, transport: transport, session: session}, nil
}

// Authenticate runs session setup with the client's configured credentials.
// On failure the connection is closed; the client cannot be reused.
func (c *Client) Authenticate(ctx context.Context) error {
	if err := c.session.Authenticate(ctx, c.opts.credentials()); err != nil {
		c.transport.Close()
		return fmt.Errorf("authenticate %s: %w", c.opts.Host, err)
	}
	return nil
}

// Session exposes the underlying session for tree and file operations.
func (c *Client) Session() *Session { return c.session }

// Guest reports whether the login was downgraded to guest.
func (c *Client) Guest() bool { return c.session.Guest() }

// IPCTree connects the IPC$ share that named pipes live under.
func (c *Client) IPCTree(ctx context.Context) (*Tree, error) {
	return c.session.TreeConnect(ctx, "IPC$")
}

// Close logs off when authenticated and tears down the connection. Logoff
// failures are logged, not returned; the socket close is what matters.
func (c *Client) Close(ctx context.Context) error {
	if err := c.session.Logoff(ctx); err != nil {
		log.Debugf("logoff: %v\n", err)
	}
	return c.transport.Close()
}
