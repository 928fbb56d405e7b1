package types

import (
	"errors"

	"github.com/croxford/smbls/internal/encoding"
)

// NegotiateRequest is the SMB2 NEGOTIATE body. The capability list is
// static for this client; no per-request patching is needed.
type NegotiateRequest struct {
	SecurityMode SecurityMode
	Capabilities Capabilities
	ClientGUID   [16]byte
	Dialects     []Dialect
}

// NewNegotiateRequest advertises the SMB2/SMB3 dialects this client speaks.
func NewNegotiateRequest() *NegotiateRequest {
	return &NegotiateRequest{
		SecurityMode: SigningEnabled,
		Capabilities: CapDFS | CapLargeMTU,
		Dialects: []Dialect{
			DialectSMB2_0_2,
			DialectSMB2_1,
			DialectSMB3_0,
			DialectSMB3_0_2,
		},
	}
}

// Marshal serializes the request: 36 fixed bytes plus 2 per dialect.
func (r *NegotiateRequest) Marshal() []byte {
	buf := make([]byte, 36+len(r.Dialects)*2)
	encoding.PutUint16(buf[0:2], 36) // structure size
	encoding.PutUint16(buf[2:4], uint16(len(r.Dialects)))
	encoding.PutUint16(buf[4:6], uint16(r.SecurityMode))
	encoding.PutUint32(buf[8:12], uint32(r.Capabilities))
	copy(buf[12:28], r.ClientGUID[:])
	for i, d := range r.Dialects {
		encoding.PutUint16(buf[36+i*2:], uint16(d))
	}
	return buf
}

// NegotiateResponse carries the fields the session needs from the server's
// NEGOTIATE reply.
type NegotiateResponse struct {
	SecurityMode    SecurityMode
	Dialect         Dialect
	ServerGUID      [16]byte
	MaxTransactSize uint32
	MaxReadSize     uint32
	MaxWriteSize    uint32
	SecurityBuffer  []byte // GSS/SPNEGO hint, unused by raw NTLMSSP
}

// Unmarshal parses a NEGOTIATE response body.
func (r *NegotiateResponse) Unmarshal(buf []byte) error {
	if len(buf) < 64 {
		return errors.New("short buffer for negotiate response")
	}
	if encoding.Uint16(buf[0:2]) != 65 {
		return errors.New("bad negotiate response structure size")
	}
	r.SecurityMode = SecurityMode(encoding.Uint16(buf[2:4]))
	r.Dialect = Dialect(encoding.Uint16(buf[4:6]))
	copy(r.ServerGUID[:], buf[8:24])
	r.MaxTransactSize = encoding.Uint32(buf[28:32])
	r.MaxReadSize = encoding.Uint32(buf[32:36])
	r.MaxWriteSize = encoding.Uint32(buf[36:40])

	secOffset := int(encoding.Uint16(buf[56:58])) - HeaderSize
	secLen := int(encoding.Uint16(buf[58:60]))
	if secLen > 0 && secOffset >= 0 && secOffset+secLen <= len(buf) {
		r.SecurityBuffer = append([]byte(nil), buf[secOffset:secOffset+secLen]...)
	}
	return nil
}

// RequiresSigning reports the server's signing-required mode bit.
func (r *NegotiateResponse) RequiresSigning() bool {
	return r.SecurityMode&SigningRequired != 0
}
