package auth

import (
	"github.com/croxford/smbls/internal/encoding"
)

// NegotiateMessage is the first handshake message, advertising the flags
// this client negotiates. Domain and workstation are left empty; the
// server identifies us from the authenticate message.
type NegotiateMessage struct {
	Flags uint32
}

// NewNegotiateMessage builds the initial message with the standard flag
// set.
func NewNegotiateMessage() *NegotiateMessage {
	return &NegotiateMessage{Flags: negotiateFlags}
}

// Marshal serializes the 40-byte message: signature, type, flags, two
// empty field descriptors and the version.
func (m *NegotiateMessage) Marshal() []byte {
	buf := make([]byte, 40)
	copy(buf[0:8], signature[:])
	encoding.PutUint32(buf[8:12], typeNegotiate)
	encoding.PutUint32(buf[12:16], m.Flags)
	// 16:24 domain fields, 24:32 workstation fields, both empty
	copy(buf[32:40], version[:])
	return buf
}
