package types

import (
	"bytes"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := NewHeader(CommandTreeConnect, 7)
	h.TreeID = 3
	h.SessionID = 0x1122334455667788

	buf := h.Marshal()
	if len(buf) != HeaderSize {
		t.Fatalf("marshaled header is %d bytes, want %d", len(buf), HeaderSize)
	}
	if !bytes.Equal(buf[0:4], ProtocolID[:]) {
		t.Errorf("bad protocol id: %x", buf[0:4])
	}

	var parsed Header
	if err := parsed.Unmarshal(buf); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.Command != CommandTreeConnect {
		t.Errorf("command = %v", parsed.Command)
	}
	if parsed.MessageID != 7 {
		t.Errorf("message id = %d", parsed.MessageID)
	}
	if parsed.TreeID != 3 {
		t.Errorf("tree id = %d", parsed.TreeID)
	}
	if parsed.SessionID != 0x1122334455667788 {
		t.Errorf("session id = %x", parsed.SessionID)
	}
}

func TestHeaderUnmarshalRejectsBadMagic(t *testing.T) {
	buf := NewHeader(CommandNegotiate, 0).Marshal()
	buf[0] = 0xFD
	var h Header
	if err := h.Unmarshal(buf); err == nil {
		t.Error("expected error for bad protocol id")
	}
	if err := h.Unmarshal(buf[:32]); err == nil {
		t.Error("expected error for short buffer")
	}
}

func TestHeaderIsInterim(t *testing.T) {
	h := Header{Status: StatusPending, Flags: FlagsServerToRedir | FlagsAsyncCommand}
	if !h.IsInterim() {
		t.Error("pending async frame should be interim")
	}
	h = Header{Status: StatusPending, Flags: FlagsServerToRedir}
	if h.IsInterim() {
		t.Error("pending without async flag is not interim")
	}
	h = Header{Status: StatusSuccess, Flags: FlagsServerToRedir | FlagsAsyncCommand}
	if h.IsInterim() {
		t.Error("success frame is not interim")
	}
}

func TestStatusString(t *testing.T) {
	if got := StatusAccessDenied.String(); got != "STATUS_ACCESS_DENIED" {
		t.Errorf("known status = %q", got)
	}
	if got := NTStatus(0xC0FFEE00).String(); got != "0xC0FFEE00" {
		t.Errorf("unknown status = %q", got)
	}
	if NTStatus(0xC0FFEE00).Known() {
		t.Error("0xC0FFEE00 should not be in the known table")
	}
}
