package dcerpc

import (
	"bytes"
	"errors"
	"testing"

	"github.com/croxford/smbls/internal/encoding"
)

func TestParseUUID(t *testing.T) {
	u, err := ParseUUID("4b324fc8-1670-01d3-1278-5a47bf6ee188")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := u.String(); got != "4b324fc8-1670-01d3-1278-5a47bf6ee188" {
		t.Errorf("String() = %s", got)
	}
	// first three groups are byte-swapped on the wire
	want := []byte{0xc8, 0x4f, 0x32, 0x4b, 0x70, 0x16, 0xd3, 0x01,
		0x12, 0x78, 0x5a, 0x47, 0xbf, 0x6e, 0xe1, 0x88}
	if !bytes.Equal(u[:], want) {
		t.Errorf("wire bytes = %x, want %x", u[:], want)
	}

	u2, err := ParseUUID("4b324fc8167001d312785a47bf6ee188")
	if err != nil {
		t.Fatalf("parse without dashes: %v", err)
	}
	if u != u2 {
		t.Error("dashed and undashed forms should parse identically")
	}
}

func TestParseUUIDInvalid(t *testing.T) {
	if _, err := ParseUUID("4b324fc8-1670"); err == nil {
		t.Error("expected error for short input")
	}
	if _, err := ParseUUID("zz324fc8-1670-01d3-1278-5a47bf6ee188"); err == nil {
		t.Error("expected error for invalid hex")
	}
}

func TestCommonHeaderRoundTrip(t *testing.T) {
	h := newCommonHeader(PacketTypeRequest, 42)
	h.FragLength = 120
	buf := h.Marshal()
	if len(buf) != 16 {
		t.Fatalf("header is %d bytes", len(buf))
	}
	if encoding.Uint32(buf[12:16]) != 42 {
		t.Errorf("call id bytes = %x", buf[12:16])
	}

	var parsed CommonHeader
	if err := parsed.Unmarshal(buf); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed != h {
		t.Errorf("round trip: %+v != %+v", parsed, h)
	}
}

func TestBindRequestLayout(t *testing.T) {
	abstract := SyntaxID{UUID: MustParseUUID("4b324fc8-1670-01d3-1278-5a47bf6ee188"), Version: 3}
	buf := NewBindRequest(abstract, 1).Marshal()

	if len(buf) != 72 {
		t.Fatalf("bind PDU is %d bytes, want 72", len(buf))
	}
	if PacketType(buf[2]) != PacketTypeBind {
		t.Errorf("packet type = %d", buf[2])
	}
	if got := encoding.Uint16(buf[8:10]); got != 72 {
		t.Errorf("frag length = %d", got)
	}
	if got := encoding.Uint16(buf[16:18]); got != defaultMaxFrag {
		t.Errorf("max xmit frag = %d", got)
	}
	if buf[24] != 1 {
		t.Errorf("context item count = %d", buf[24])
	}
	if !bytes.Equal(buf[32:48], abstract.UUID[:]) {
		t.Errorf("abstract syntax = %x", buf[32:48])
	}
	if got := encoding.Uint32(buf[48:52]); got != 3 {
		t.Errorf("abstract version = %d", got)
	}
	if !bytes.Equal(buf[52:68], NDRSyntax.UUID[:]) {
		t.Errorf("transfer syntax = %x", buf[52:68])
	}
}

func TestRequestMarshal(t *testing.T) {
	stub := []byte{1, 2, 3, 4, 5}
	buf := NewRequest(15, stub, 7).Marshal()

	if got := encoding.Uint16(buf[8:10]); int(got) != len(buf) {
		t.Errorf("frag length = %d, pdu is %d bytes", got, len(buf))
	}
	if got := encoding.Uint32(buf[16:20]); int(got) != len(stub) {
		t.Errorf("alloc hint = %d", got)
	}
	if got := encoding.Uint16(buf[22:24]); got != 15 {
		t.Errorf("opnum = %d", got)
	}
	if !bytes.Equal(buf[24:], stub) {
		t.Errorf("stub = %x", buf[24:])
	}
}

func TestResponseUnmarshal(t *testing.T) {
	stub := []byte{0xAA, 0xBB, 0xCC}
	h := newCommonHeader(PacketTypeResponse, 7)
	h.FragLength = uint16(24 + len(stub))
	buf := h.Marshal()
	buf = append(buf, make([]byte, 8)...) // alloc hint, context id, cancel, reserved
	buf = append(buf, stub...)

	var resp Response
	if err := resp.Unmarshal(buf); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !bytes.Equal(resp.Stub, stub) {
		t.Errorf("stub = %x, want %x", resp.Stub, stub)
	}
}

func TestResponseUnmarshalFault(t *testing.T) {
	h := newCommonHeader(PacketTypeFault, 7)
	h.FragLength = 32
	buf := h.Marshal()
	buf = append(buf, make([]byte, 8)...)
	var status [4]byte
	encoding.PutUint32(status[:], 0x1C010002)
	buf = append(buf, status[:]...)

	var resp Response
	err := resp.Unmarshal(buf)
	var fault *FaultError
	if !errors.As(err, &fault) {
		t.Fatalf("error = %v, want FaultError", err)
	}
	if fault.Status != 0x1C010002 {
		t.Errorf("fault status = %08x", fault.Status)
	}
}

func TestBindAckRejectsNak(t *testing.T) {
	h := newCommonHeader(PacketTypeBindNak, 1)
	h.FragLength = 16
	var ack BindAck
	if err := ack.Unmarshal(h.Marshal()); !errors.Is(err, ErrBindFailed) {
		t.Errorf("error = %v, want ErrBindFailed", err)
	}
}
