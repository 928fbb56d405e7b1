// Package dcerpc marshals connection-oriented DCE/RPC messages: bind,
// bind_ack, request, response and fault. It performs no I/O itself; the
// caller moves the marshaled bytes over whatever pipe carries the
// conversation.
package dcerpc

import (
	"github.com/croxford/smbls/internal/encoding"
)

// Protocol version carried in every header.
const (
	VersionMajor = 5
	VersionMinor = 0
)

// PacketType is the message kind at header offset 2.
type PacketType uint8

const (
	PacketTypeRequest  PacketType = 0
	PacketTypeResponse PacketType = 2
	PacketTypeFault    PacketType = 3
	PacketTypeBind     PacketType = 11
	PacketTypeBindAck  PacketType = 12
	PacketTypeBindNak  PacketType = 13
)

// Fragment flags at header offset 3. Single-fragment messages carry both.
const (
	FlagFirstFrag uint8 = 0x01
	FlagLastFrag  uint8 = 0x02
)

// NDRDataRepresentation selects little-endian integers, ASCII characters
// and IEEE floats.
const NDRDataRepresentation uint32 = 0x00000010

// CommonHeader is the 16-byte header every connection-oriented PDU starts
// with. FragLength covers the whole PDU including the header.
type CommonHeader struct {
	Version            uint8
	VersionMinor       uint8
	PacketType         PacketType
	PacketFlags        uint8
	DataRepresentation uint32
	FragLength         uint16
	AuthLength         uint16
	CallID             uint32
}

func newCommonHeader(typ PacketType, callID uint32) CommonHeader {
	return CommonHeader{
		Version:            VersionMajor,
		VersionMinor:       VersionMinor,
		PacketType:         typ,
		PacketFlags:        FlagFirstFrag | FlagLastFrag,
		DataRepresentation: NDRDataRepresentation,
		CallID:             callID,
	}
}

// Marshal serializes the header.
func (h *CommonHeader) Marshal() []byte {
	buf := make([]byte, 16)
	buf[0] = h.Version
	buf[1] = h.VersionMinor
	buf[2] = byte(h.PacketType)
	buf[3] = h.PacketFlags
	encoding.PutUint32(buf[4:8], h.DataRepresentation)
	encoding.PutUint16(buf[8:10], h.FragLength)
	encoding.PutUint16(buf[10:12], h.AuthLength)
	encoding.PutUint32(buf[12:16], h.CallID)
	return buf
}

// Unmarshal parses the header.
func (h *CommonHeader) Unmarshal(buf []byte) error {
	if len(buf) < 16 {
		return ErrShortBuffer
	}
	h.Version = buf[0]
	h.VersionMinor = buf[1]
	h.PacketType = PacketType(buf[2])
	h.PacketFlags = buf[3]
	h.DataRepresentation = encoding.Uint32(buf[4:8])
	h.FragLength = encoding.Uint16(buf[8:10])
	h.AuthLength = encoding.Uint16(buf[10:12])
	h.CallID = encoding.Uint32(buf[12:16])
	return nil
}
