package smb

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/croxford/smbls/internal/encoding"
)

// fakeConn is an in-memory net.Conn: reads consume the prepared inbound
// buffer, writes accumulate in sent.
type fakeConn struct {
	inbound bytes.Buffer
	sent    bytes.Buffer
	closed  bool
}

func (c *fakeConn) Read(b []byte) (int, error)         { return c.inbound.Read(b) }
func (c *fakeConn) Write(b []byte) (int, error)        { return c.sent.Write(b) }
func (c *fakeConn) Close() error                       { c.closed = true; return nil }
func (c *fakeConn) LocalAddr() net.Addr                { return nil }
func (c *fakeConn) RemoteAddr() net.Addr               { return nil }
func (c *fakeConn) SetDeadline(t time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

// frame prepends the 4-byte big-endian length prefix.
func frame(msg []byte) []byte {
	out := make([]byte, 4+len(msg))
	encoding.PutUint32BE(out[0:4], uint32(len(msg)))
	copy(out[4:], msg)
	return out
}

func newFakeTransport() (*Transport, *fakeConn) {
	conn := &fakeConn{}
	return &Transport{conn: conn, host: "testhost"}, conn
}

func TestTransportSendFraming(t *testing.T) {
	tr, conn := newFakeTransport()
	msg := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if err := tr.Send(msg); err != nil {
		t.Fatalf("send: %v", err)
	}
	want := []byte{0, 0, 0, 4, 0xDE, 0xAD, 0xBE, 0xEF}
	if !bytes.Equal(conn.sent.Bytes(), want) {
		t.Errorf("wire bytes = %x, want %x", conn.sent.Bytes(), want)
	}
}

// Two frames arriving in one delivery must come back from two Recv calls,
// not concatenated.
func TestTransportRecvSplitsConcatenatedFrames(t *testing.T) {
	tr, conn := newFakeTransport()
	first := []byte("interim")
	second := []byte("the real answer")
	conn.inbound.Write(frame(first))
	conn.inbound.Write(frame(second))

	got1, err := tr.Recv()
	if err != nil {
		t.Fatalf("first recv: %v", err)
	}
	if !bytes.Equal(got1, first) {
		t.Errorf("first frame = %q", got1)
	}
	got2, err := tr.Recv()
	if err != nil {
		t.Fatalf("second recv: %v", err)
	}
	if !bytes.Equal(got2, second) {
		t.Errorf("second frame = %q", got2)
	}
}

func TestTransportRecvTruncatedFrame(t *testing.T) {
	tr, conn := newFakeTransport()
	full := frame([]byte("cut off"))
	conn.inbound.Write(full[:len(full)-3])
	if _, err := tr.Recv(); err == nil {
		t.Error("expected error for truncated frame")
	}
}

func TestTransportCloseIdempotent(t *testing.T) {
	tr, conn := newFakeTransport()
	if err := tr.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !conn.closed {
		t.Error("underlying conn not closed")
	}
	if err := tr.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
	if err := tr.Send([]byte("x")); err != ErrNotConnected {
		t.Errorf("send after close = %v, want ErrNotConnected", err)
	}
	if _, err := tr.Recv(); err != ErrNotConnected {
		t.Errorf("recv after close = %v, want ErrNotConnected", err)
	}
}
