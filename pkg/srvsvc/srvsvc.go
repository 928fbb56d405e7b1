// Package srvsvc speaks enough of the Server Service Remote Protocol
// (MS-SRVS) to enumerate the shares a host exposes: bind to the srvsvc
// interface over the named pipe, issue NetShareEnumAll, decode the result.
package srvsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/jfjallid/golog"

	"github.com/croxford/smbls/internal/encoding"
	"github.com/croxford/smbls/pkg/dcerpc"
)

var log = golog.Get("github.com/croxford/smbls/pkg/srvsvc")

// Syntax identifies the srvsvc interface, version 3.0.
var Syntax = dcerpc.SyntaxID{
	UUID:    dcerpc.MustParseUUID("4b324fc8-1670-01d3-1278-5a47bf6ee188"),
	Version: 3,
}

// PipeName is the endpoint under IPC$.
const PipeName = "srvsvc"

const opNetShareEnumAll = 15

// maxReadLen bounds the bind_ack read from the pipe.
const maxReadLen = 65536

// Pipe is the named-pipe surface the client drives: raw writes and reads
// for the bind exchange, transceive for calls.
type Pipe interface {
	Write(ctx context.Context, data []byte) error
	Read(ctx context.Context, maxLen uint32) ([]byte, error)
	Transceive(ctx context.Context, input []byte) ([]byte, error)
}

// Client runs srvsvc operations over an open pipe. Call ids start at 1 and
// increase per call; the bind consumes the first.
type Client struct {
	pipe   Pipe
	callID uint32
	bound  bool
}

// NewClient wraps an open srvsvc pipe. Bind must run before any call.
func NewClient(pipe Pipe) *Client {
	return &Client{pipe: pipe, callID: 1}
}

// Bind negotiates the srvsvc interface with the NDR transfer syntax. The
// bind rides on plain pipe write/read rather than transceive.
func (c *Client) Bind(ctx context.Context) error {
	req := dcerpc.NewBindRequest(Syntax, c.callID)
	c.callID++

	if err := c.pipe.Write(ctx, req.Marshal()); err != nil {
		return fmt.Errorf("send bind: %w", err)
	}
	raw, err := c.pipe.Read(ctx, maxReadLen)
	if err != nil {
		return fmt.Errorf("read bind_ack: %w", err)
	}

	var ack dcerpc.BindAck
	if err := ack.Unmarshal(raw); err != nil {
		return fmt.Errorf("parse bind_ack: %w", err)
	}
	if !ack.Accepted() {
		return dcerpc.ErrBindFailed
	}
	log.Debugf("bound to srvsvc, max frag %d\n", ack.MaxXmitFrag)
	c.bound = true
	return nil
}

// call issues one operation through transceive and returns the response
// stub with the RPC headers stripped.
func (c *Client) call(ctx context.Context, opnum uint16, stub []byte) ([]byte, error) {
	if !c.bound {
		return nil, errors.New("srvsvc client is not bound")
	}
	req := dcerpc.NewRequest(opnum, stub, c.callID)
	c.callID++

	raw, err := c.pipe.Transceive(ctx, req.Marshal())
	if err != nil {
		return nil, err
	}
	var resp dcerpc.Response
	if err := resp.Unmarshal(raw); err != nil {
		return nil, err
	}
	return resp.Stub, nil
}

// NetShareEnumAll lists every share on the server, hidden ones included.
func (c *Client) NetShareEnumAll(ctx context.Context, serverName string) ([]ShareInfo, error) {
	stub, err := c.call(ctx, opNetShareEnumAll, encodeShareEnumRequest(serverName))
	if err != nil {
		return nil, fmt.Errorf("NetShareEnumAll: %w", err)
	}
	if len(stub) < 4 {
		return nil, errors.New("NetShareEnumAll: empty response stub")
	}
	// operation return value trails the stub
	if code := encoding.Uint32(stub[len(stub)-4:]); code != 0 {
		return nil, fmt.Errorf("NetShareEnumAll: server returned error 0x%08X", code)
	}

	shares, err := parseShares(stub)
	if err != nil {
		return nil, fmt.Errorf("NetShareEnumAll: %w", err)
	}
	log.Debugf("enumerated %d shares\n", len(shares))
	return shares, nil
}

// Referent ids for the top-level pointers in the request stub. Any
// non-zero values serve; these match common client traffic.
const (
	refServerName uint32 = 0x00020000
	refContainer  uint32 = 0x00020004
)

// encodeShareEnumRequest marshals the NetShareEnumAll arguments: the
// server name as a referenced conformant varying string, info level 1
// with a null container, no buffer cap and a null resume handle.
func encodeShareEnumRequest(serverName string) []byte {
	name := encoding.UTF16Null(`\\` + serverName)
	charCount := uint32(len(name) / 2)

	buf := make([]byte, 0, 48+len(name))
	buf = appendUint32(buf, refServerName)
	buf = appendUint32(buf, charCount) // max count
	buf = appendUint32(buf, 0)         // offset
	buf = appendUint32(buf, charCount) // actual count
	buf = append(buf, name...)
	if charCount%2 != 0 {
		buf = append(buf, 0, 0) // pad to 4-byte boundary
	}

	buf = appendUint32(buf, 1) // info level
	buf = appendUint32(buf, 1) // switch value
	buf = appendUint32(buf, refContainer)
	buf = appendUint32(buf, 0)          // entries read
	buf = appendUint32(buf, 0)          // null array
	buf = appendUint32(buf, 0xFFFFFFFF) // preferred max length
	buf = appendUint32(buf, 0)          // null resume handle
	return buf
}

func appendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	encoding.PutUint32(b[:], v)
	return append(buf, b[:]...)
}
