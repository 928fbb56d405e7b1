package types

import (
	"errors"

	"github.com/croxford/smbls/internal/encoding"
)

// SessionSetupRequest carries one authentication token. The security buffer
// length field is the only part patched per round of the handshake.
type SessionSetupRequest struct {
	SecurityMode   SecurityMode
	Capabilities   Capabilities
	SecurityBuffer []byte
}

// NewSessionSetupRequest wraps an authentication token (SPNEGO or raw
// NTLMSSP) for one SESSION_SETUP round.
func NewSessionSetupRequest(token []byte) *SessionSetupRequest {
	return &SessionSetupRequest{
		SecurityMode:   SigningEnabled,
		Capabilities:   CapDFS,
		SecurityBuffer: token,
	}
}

// Marshal serializes the request: 24 fixed bytes, then the token. The
// buffer offset is counted from the start of the SMB2 header.
func (r *SessionSetupRequest) Marshal() []byte {
	buf := make([]byte, 24+len(r.SecurityBuffer))
	encoding.PutUint16(buf[0:2], 25) // structure size
	buf[3] = byte(r.SecurityMode)
	encoding.PutUint32(buf[4:8], uint32(r.Capabilities))
	encoding.PutUint16(buf[12:14], HeaderSize+24)
	encoding.PutUint16(buf[14:16], uint16(len(r.SecurityBuffer)))
	copy(buf[24:], r.SecurityBuffer)
	return buf
}

// Session flag bits in the SESSION_SETUP response.
const (
	SessionFlagIsGuest uint16 = 0x0001
	SessionFlagIsNull  uint16 = 0x0002
)

// SessionSetupResponse holds the server's session flags and its
// authentication token (the NTLM challenge on round one).
type SessionSetupResponse struct {
	SessionFlags   uint16
	SecurityBuffer []byte
}

// Unmarshal parses a SESSION_SETUP response body.
func (r *SessionSetupResponse) Unmarshal(buf []byte) error {
	if len(buf) < 8 {
		return errors.New("short buffer for session setup response")
	}
	if encoding.Uint16(buf[0:2]) != 9 {
		return errors.New("bad session setup response structure size")
	}
	r.SessionFlags = encoding.Uint16(buf[2:4])
	secOffset := int(encoding.Uint16(buf[4:6])) - HeaderSize
	secLen := int(encoding.Uint16(buf[6:8]))
	if secLen > 0 && secOffset >= 0 && secOffset+secLen <= len(buf) {
		r.SecurityBuffer = append([]byte(nil), buf[secOffset:secOffset+secLen]...)
	}
	return nil
}

// IsGuest reports whether the server downgraded the session to guest.
func (r *SessionSetupResponse) IsGuest() bool {
	return r.SessionFlags&SessionFlagIsGuest != 0
}

// LogoffRequest is the fixed 4-byte LOGOFF body.
type LogoffRequest struct{}

// Marshal serializes the logoff request.
func (LogoffRequest) Marshal() []byte {
	buf := make([]byte, 4)
	encoding.PutUint16(buf[0:2], 4)
	return buf
}
