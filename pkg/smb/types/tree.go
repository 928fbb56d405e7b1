package types

import (
	"errors"

	"github.com/croxford/smbls/internal/encoding"
)

// TreeConnectRequest attaches the session to one share by UNC path. The
// path length field is patched from the encoded path.
type TreeConnectRequest struct {
	Path []byte // UNC path, UTF-16LE
}

// NewTreeConnectRequest builds a connect request for an encoded UNC path.
func NewTreeConnectRequest(path []byte) *TreeConnectRequest {
	return &TreeConnectRequest{Path: path}
}

// Marshal serializes the request: 8 fixed bytes, then the path.
func (r *TreeConnectRequest) Marshal() []byte {
	buf := make([]byte, 8+len(r.Path))
	encoding.PutUint16(buf[0:2], 9) // structure size
	encoding.PutUint16(buf[4:6], HeaderSize+8)
	encoding.PutUint16(buf[6:8], uint16(len(r.Path)))
	copy(buf[8:], r.Path)
	return buf
}

// TreeConnectResponse reports the type of the connected share. The tree id
// itself is echoed in the response header, not the body.
type TreeConnectResponse struct {
	Type       TreeType
	ShareFlags uint32
	MaxAccess  AccessMask
}

// Unmarshal parses a TREE_CONNECT response body.
func (r *TreeConnectResponse) Unmarshal(buf []byte) error {
	if len(buf) < 16 {
		return errors.New("short buffer for tree connect response")
	}
	if encoding.Uint16(buf[0:2]) != 16 {
		return errors.New("bad tree connect response structure size")
	}
	r.Type = TreeType(buf[2])
	r.ShareFlags = encoding.Uint32(buf[4:8])
	r.MaxAccess = AccessMask(encoding.Uint32(buf[12:16]))
	return nil
}

// TreeDisconnectRequest is the fixed 4-byte disconnect body.
type TreeDisconnectRequest struct{}

// Marshal serializes the disconnect request.
func (TreeDisconnectRequest) Marshal() []byte {
	buf := make([]byte, 4)
	encoding.PutUint16(buf[0:2], 4)
	return buf
}
