package dcerpc

import (
	"github.com/croxford/smbls/internal/encoding"
)

// Fragment sizes offered in the bind. Large enough that a share list never
// fragments.
const defaultMaxFrag = 4280

// BindRequest negotiates one presentation context: the abstract interface
// plus the NDR transfer syntax.
type BindRequest struct {
	Header      CommonHeader
	MaxXmitFrag uint16
	MaxRecvFrag uint16
	AssocGroup  uint32
	ContextID   uint16
	Abstract    SyntaxID
	Transfer    SyntaxID
}

// NewBindRequest builds a bind for one interface with the standard NDR
// transfer syntax.
func NewBindRequest(abstract SyntaxID, callID uint32) *BindRequest {
	return &BindRequest{
		Header:      newCommonHeader(PacketTypeBind, callID),
		MaxXmitFrag: defaultMaxFrag,
		MaxRecvFrag: defaultMaxFrag,
		Abstract:    abstract,
		Transfer:    NDRSyntax,
	}
}

// Marshal serializes the bind PDU: 16-byte header, 12 fixed bytes, one
// 44-byte context item.
func (r *BindRequest) Marshal() []byte {
	const total = 16 + 12 + 44
	r.Header.FragLength = total

	buf := make([]byte, total)
	copy(buf[0:16], r.Header.Marshal())
	encoding.PutUint16(buf[16:18], r.MaxXmitFrag)
	encoding.PutUint16(buf[18:20], r.MaxRecvFrag)
	encoding.PutUint32(buf[20:24], r.AssocGroup)
	buf[24] = 1 // context item count, 3 reserved bytes follow

	encoding.PutUint16(buf[28:30], r.ContextID)
	buf[30] = 1 // transfer syntax count, 1 reserved byte follows
	copy(buf[32:52], r.Abstract.Marshal())
	copy(buf[52:72], r.Transfer.Marshal())
	return buf
}

// BindResult is one per-context outcome in a bind_ack. Result 0 means the
// context was accepted.
type BindResult struct {
	Result         uint16
	Reason         uint16
	TransferSyntax SyntaxID
}

// BindAck is the server's answer to a bind.
type BindAck struct {
	Header      CommonHeader
	MaxXmitFrag uint16
	MaxRecvFrag uint16
	AssocGroup  uint32
	SecAddr     string
	Results     []BindResult
}

// Unmarshal parses a bind_ack (or bind_nak, which fails the type check).
func (r *BindAck) Unmarshal(buf []byte) error {
	if err := r.Header.Unmarshal(buf); err != nil {
		return err
	}
	if r.Header.PacketType != PacketTypeBindAck {
		return ErrBindFailed
	}
	if len(buf) < 26 {
		return ErrShortBuffer
	}

	r.MaxXmitFrag = encoding.Uint16(buf[16:18])
	r.MaxRecvFrag = encoding.Uint16(buf[18:20])
	r.AssocGroup = encoding.Uint32(buf[20:24])

	offset := 24
	secAddrLen := int(encoding.Uint16(buf[24:26]))
	offset += 2
	if secAddrLen > 0 {
		if offset+secAddrLen > len(buf) {
			return ErrShortBuffer
		}
		// drop the trailing null
		r.SecAddr = string(buf[offset : offset+secAddrLen-1])
		offset += secAddrLen
	}
	// result list is 4-aligned relative to the PDU start
	if rem := offset % 4; rem != 0 {
		offset += 4 - rem
	}
	if offset+4 > len(buf) {
		return ErrShortBuffer
	}

	numResults := int(buf[offset])
	offset += 4 // 3 reserved bytes follow the count
	for i := 0; i < numResults; i++ {
		if offset+24 > len(buf) {
			return ErrShortBuffer
		}
		res := BindResult{
			Result: encoding.Uint16(buf[offset : offset+2]),
			Reason: encoding.Uint16(buf[offset+2 : offset+4]),
		}
		if err := res.TransferSyntax.Unmarshal(buf[offset+4:]); err != nil {
			return err
		}
		r.Results = append(r.Results, res)
		offset += 24
	}
	return nil
}

// Accepted reports whether the first presentation context was accepted.
func (r *BindAck) Accepted() bool {
	return len(r.Results) > 0 && r.Results[0].Result == 0
}
