package srvsvc

import (
	"bytes"
	"context"
	"testing"

	"github.com/croxford/smbls/internal/encoding"
	"github.com/croxford/smbls/pkg/dcerpc"
)

func appendString(buf []byte, s string) []byte {
	text := encoding.UTF16Null(s)
	count := uint32(len(text) / 2)
	buf = appendUint32(buf, count) // max count
	buf = appendUint32(buf, 0)     // offset
	buf = appendUint32(buf, count) // actual count
	buf = append(buf, text...)
	if count%2 != 0 {
		buf = append(buf, 0, 0)
	}
	return buf
}

// buildShareStub assembles a NetShareEnumAll response stub for the given
// name/type/remark triples, trailing total count, resume handle and
// return code included.
func buildShareStub(shares []ShareInfo) []byte {
	var buf []byte
	buf = appendUint32(buf, 1)          // level
	buf = appendUint32(buf, 1)          // switch
	buf = appendUint32(buf, 0x00020000) // ctr referent
	buf = appendUint32(buf, uint32(len(shares)))
	buf = appendUint32(buf, 0x00020004) // array referent
	buf = appendUint32(buf, uint32(len(shares)))

	ref := uint32(0x00020008)
	for _, s := range shares {
		typeWord := uint32(s.Type)
		if s.Hidden {
			typeWord |= shareFlagHidden
		}
		if s.Temporary {
			typeWord |= shareFlagTemporary
		}
		buf = appendUint32(buf, ref)
		ref += 4
		buf = appendUint32(buf, typeWord)
		buf = appendUint32(buf, ref)
		ref += 4
	}
	for _, s := range shares {
		buf = appendString(buf, s.Name)
		buf = appendString(buf, s.Remark)
	}

	buf = appendUint32(buf, uint32(len(shares))) // total entries
	buf = appendUint32(buf, 0)                   // resume handle
	buf = appendUint32(buf, 0)                   // return code
	return buf
}

func TestParseSharesTwoEntries(t *testing.T) {
	want := []ShareInfo{
		{Name: "PUBLIC", Type: ShareTypeDisk},
		{Name: "ADMIN$", Type: ShareTypeDisk, Hidden: true, Remark: "Remote Admin"},
	}
	got, err := parseShares(buildShareStub(want))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("parsed %d shares, want 2", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("share %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseSharesKindsAndFlags(t *testing.T) {
	want := []ShareInfo{
		{Name: "IPC$", Type: ShareTypeIPC, Hidden: true, Remark: "Remote IPC"},
		{Name: "LPT1", Type: ShareTypePrintQueue, Temporary: true},
		{Name: "COM1", Type: ShareTypeDevice},
	}
	got, err := parseShares(buildShareStub(want))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("share %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseSharesEmpty(t *testing.T) {
	got, err := parseShares(buildShareStub(nil))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("parsed %d shares from empty stub", len(got))
	}
}

func TestParseSharesTruncated(t *testing.T) {
	stub := buildShareStub([]ShareInfo{{Name: "PUBLIC", Type: ShareTypeDisk}})
	for _, cut := range []int{8, entriesOffset + 4, len(stub) - 30} {
		if _, err := parseShares(stub[:cut]); err == nil {
			t.Errorf("cut at %d: expected error", cut)
		}
	}
}

// The cursor advance after each string depends on the parity of its
// character count: even counts advance count*2, odd counts count*2 + 2.
func TestParseShareStringPadding(t *testing.T) {
	// "AB\0": count 3 (odd), text 4 bytes, advance 8
	odd := appendString(nil, "AB")
	name, next, err := parseShareString(odd, 0)
	if err != nil {
		t.Fatalf("odd-count string: %v", err)
	}
	if name != "AB" {
		t.Errorf("odd-count string = %q", name)
	}
	if wantNext := 12 + 3*2 + 2; next != wantNext {
		t.Errorf("odd-count cursor = %d, want %d", next, wantNext)
	}

	// "ABC\0": count 4 (even), text 6 bytes, advance 8
	even := appendString(nil, "ABC")
	name, next, err = parseShareString(even, 0)
	if err != nil {
		t.Fatalf("even-count string: %v", err)
	}
	if name != "ABC" {
		t.Errorf("even-count string = %q", name)
	}
	if wantNext := 12 + 4*2; next != wantNext {
		t.Errorf("even-count cursor = %d, want %d", next, wantNext)
	}
}

func TestParseShareStringInconsistentDescriptor(t *testing.T) {
	buf := appendString(nil, "X")
	encoding.PutUint32(buf[4:8], 2) // nonzero text offset
	if _, _, err := parseShareString(buf, 0); err == nil {
		t.Error("expected error for nonzero text offset")
	}
	buf = appendString(nil, "X")
	encoding.PutUint32(buf[8:12], 99) // actual count beyond max count
	if _, _, err := parseShareString(buf, 0); err == nil {
		t.Error("expected error for inconsistent counts")
	}
}

func TestEncodeShareEnumRequest(t *testing.T) {
	stub := encodeShareEnumRequest("server")
	// `\\server\0` is 9 characters: referent + 12-byte descriptor +
	// 18 bytes text + 2 pad, then 7 fixed words
	if len(stub) != 4+12+18+2+28 {
		t.Fatalf("stub is %d bytes", len(stub))
	}
	if encoding.Uint32(stub[0:4]) == 0 {
		t.Error("server name pointer must be non-null")
	}
	if encoding.Uint32(stub[4:8]) != 9 || encoding.Uint32(stub[12:16]) != 9 {
		t.Error("conformant counts should cover the terminator")
	}
	if !bytes.Equal(stub[16:20], encoding.UTF16(`\\`)) {
		t.Errorf("name should begin with backslashes: %x", stub[16:20])
	}
	tail := stub[len(stub)-28:]
	if encoding.Uint32(tail[0:4]) != 1 || encoding.Uint32(tail[4:8]) != 1 {
		t.Error("info level and switch must be 1")
	}
	if encoding.Uint32(tail[20:24]) != 0xFFFFFFFF {
		t.Error("preferred max length must be unlimited")
	}
	if encoding.Uint32(tail[24:28]) != 0 {
		t.Error("resume handle must be null")
	}
}

// fakePipe feeds canned PDUs back to the client and records what it was
// sent.
type fakePipe struct {
	written    [][]byte
	readQueue  [][]byte
	transceive func(input []byte) []byte
}

func (p *fakePipe) Write(ctx context.Context, data []byte) error {
	p.written = append(p.written, data)
	return nil
}

func (p *fakePipe) Read(ctx context.Context, maxLen uint32) ([]byte, error) {
	next := p.readQueue[0]
	p.readQueue = p.readQueue[1:]
	return next, nil
}

func (p *fakePipe) Transceive(ctx context.Context, input []byte) ([]byte, error) {
	return p.transceive(input), nil
}

func buildBindAck(callID uint32, accepted bool) []byte {
	secAddr := []byte("\\PIPE\\srvsvc\x00")
	buf := make([]byte, 0, 64)
	header := dcerpc.CommonHeader{
		Version:            dcerpc.VersionMajor,
		VersionMinor:       dcerpc.VersionMinor,
		PacketType:         dcerpc.PacketTypeBindAck,
		PacketFlags:        dcerpc.FlagFirstFrag | dcerpc.FlagLastFrag,
		DataRepresentation: dcerpc.NDRDataRepresentation,
		CallID:             callID,
	}
	buf = append(buf, header.Marshal()...)
	buf = appendUint32(buf, 0) // max xmit/recv frags, patched below
	buf = appendUint32(buf, 0) // assoc group
	var lenField [2]byte
	encoding.PutUint16(lenField[:], uint16(len(secAddr)))
	buf = append(buf, lenField[:]...)
	buf = append(buf, secAddr...)
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	buf = appendUint32(buf, 1) // one result, 3 reserved bytes
	result := uint32(0)
	if !accepted {
		result = 2 // provider rejection
	}
	var res [4]byte
	encoding.PutUint16(res[0:2], uint16(result))
	buf = append(buf, res[:]...)
	buf = append(buf, dcerpc.NDRSyntax.Marshal()...)
	encoding.PutUint16(buf[8:10], uint16(len(buf))) // frag length
	return buf
}

func buildCallResponse(callID uint32, stub []byte) []byte {
	header := dcerpc.CommonHeader{
		Version:            dcerpc.VersionMajor,
		VersionMinor:       dcerpc.VersionMinor,
		PacketType:         dcerpc.PacketTypeResponse,
		PacketFlags:        dcerpc.FlagFirstFrag | dcerpc.FlagLastFrag,
		DataRepresentation: dcerpc.NDRDataRepresentation,
		FragLength:         uint16(24 + len(stub)),
		CallID:             callID,
	}
	buf := append([]byte{}, header.Marshal()...)
	buf = appendUint32(buf, uint32(len(stub))) // alloc hint
	buf = appendUint32(buf, 0)                 // context id, cancel count, reserved
	return append(buf, stub...)
}

func TestClientBindAndEnum(t *testing.T) {
	want := []ShareInfo{
		{Name: "PUBLIC", Type: ShareTypeDisk},
		{Name: "ADMIN$", Type: ShareTypeDisk, Hidden: true, Remark: "Remote Admin"},
	}
	pipe := &fakePipe{
		readQueue: [][]byte{buildBindAck(1, true)},
		transceive: func(input []byte) []byte {
			return buildCallResponse(2, buildShareStub(want))
		},
	}

	client := NewClient(pipe)
	if err := client.Bind(context.Background()); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if len(pipe.written) != 1 {
		t.Fatalf("bind wrote %d messages", len(pipe.written))
	}
	var sent dcerpc.CommonHeader
	if err := sent.Unmarshal(pipe.written[0]); err != nil {
		t.Fatalf("parse sent bind: %v", err)
	}
	if sent.PacketType != dcerpc.PacketTypeBind || sent.CallID != 1 {
		t.Errorf("sent header = %+v", sent)
	}

	got, err := client.NetShareEnumAll(context.Background(), "testhost")
	if err != nil {
		t.Fatalf("enum: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("share %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestClientBindRejected(t *testing.T) {
	pipe := &fakePipe{readQueue: [][]byte{buildBindAck(1, false)}}
	client := NewClient(pipe)
	if err := client.Bind(context.Background()); err == nil {
		t.Fatal("expected bind rejection")
	}
	if _, err := client.NetShareEnumAll(context.Background(), "x"); err == nil {
		t.Error("calls before a successful bind must fail")
	}
}

func TestNetShareEnumAllServerError(t *testing.T) {
	stub := buildShareStub(nil)
	encoding.PutUint32(stub[len(stub)-4:], 5) // WERR_ACCESS_DENIED
	pipe := &fakePipe{
		readQueue: [][]byte{buildBindAck(1, true)},
		transceive: func(input []byte) []byte {
			return buildCallResponse(2, stub)
		},
	}
	client := NewClient(pipe)
	if err := client.Bind(context.Background()); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if _, err := client.NetShareEnumAll(context.Background(), "x"); err == nil {
		t.Error("nonzero return code must surface as an error")
	}
}
