package dcerpc

import (
	"fmt"

	"github.com/croxford/smbls/internal/encoding"
)

// Request carries one operation's marshaled stub to the server.
type Request struct {
	Header    CommonHeader
	ContextID uint16
	Opnum     uint16
	Stub      []byte
}

// NewRequest builds a request for one operation on the bound context.
func NewRequest(opnum uint16, stub []byte, callID uint32) *Request {
	return &Request{
		Header: newCommonHeader(PacketTypeRequest, callID),
		Opnum:  opnum,
		Stub:   stub,
	}
}

// Marshal serializes the request: 16-byte header, 8 fixed bytes, stub.
func (r *Request) Marshal() []byte {
	total := 16 + 8 + len(r.Stub)
	r.Header.FragLength = uint16(total)

	buf := make([]byte, total)
	copy(buf[0:16], r.Header.Marshal())
	encoding.PutUint32(buf[16:20], uint32(len(r.Stub))) // alloc hint
	encoding.PutUint16(buf[20:22], r.ContextID)
	encoding.PutUint16(buf[22:24], r.Opnum)
	copy(buf[24:], r.Stub)
	return buf
}

// Response is the server's answer to a request. The stub starts after the
// 24-byte response header and runs to the fragment length.
type Response struct {
	Header      CommonHeader
	AllocHint   uint32
	ContextID   uint16
	CancelCount uint8
	Stub        []byte
}

// Unmarshal parses a response PDU. A FAULT in its place comes back as a
// FaultError carrying the fault status.
func (r *Response) Unmarshal(buf []byte) error {
	if err := r.Header.Unmarshal(buf); err != nil {
		return err
	}
	if r.Header.PacketType == PacketTypeFault {
		var f Fault
		if err := f.Unmarshal(buf); err != nil {
			return err
		}
		return &FaultError{Status: f.Status}
	}
	if r.Header.PacketType != PacketTypeResponse {
		return fmt.Errorf("unexpected packet type %d", r.Header.PacketType)
	}
	if len(buf) < 24 {
		return ErrShortBuffer
	}

	r.AllocHint = encoding.Uint32(buf[16:20])
	r.ContextID = encoding.Uint16(buf[20:22])
	r.CancelCount = buf[22]

	stubEnd := int(r.Header.FragLength)
	if stubEnd > len(buf) {
		stubEnd = len(buf)
	}
	if stubEnd > 24 {
		r.Stub = append([]byte(nil), buf[24:stubEnd]...)
	}
	return nil
}

// Fault is the server-side failure PDU.
type Fault struct {
	Header    CommonHeader
	AllocHint uint32
	ContextID uint16
	Status    uint32
}

// Unmarshal parses a fault PDU.
func (r *Fault) Unmarshal(buf []byte) error {
	if err := r.Header.Unmarshal(buf); err != nil {
		return err
	}
	if len(buf) < 28 {
		return ErrShortBuffer
	}
	r.AllocHint = encoding.Uint32(buf[16:20])
	r.ContextID = encoding.Uint16(buf[20:22])
	r.Status = encoding.Uint32(buf[24:28])
	return nil
}
