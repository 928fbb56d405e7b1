package smb

import (
	"context"
	"errors"
	"testing"

	"github.com/croxford/smbls/pkg/smb/types"
)

// respond builds a server response frame for a request message id.
func respond(cmd types.Command, messageID uint64, status types.NTStatus, flags types.HeaderFlags, body []byte) []byte {
	h := types.NewHeader(cmd, messageID)
	h.Status = status
	h.Flags = flags | types.FlagsServerToRedir
	return frame(append(h.Marshal(), body...))
}

func TestSessionRequestResolvesAfterInterimFrame(t *testing.T) {
	tr, conn := newFakeTransport()
	s := NewSession(tr)

	// pending frame and the real response arrive in one delivery
	conn.inbound.Write(respond(types.CommandIoctl, 0, types.StatusPending, types.FlagsAsyncCommand, nil))
	conn.inbound.Write(respond(types.CommandIoctl, 0, types.StatusSuccess, 0, []byte("payload")))

	header, payload, err := s.request(types.CommandIoctl, 0, nil, types.StatusSuccess)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if header.Status != types.StatusSuccess {
		t.Errorf("status = %v", header.Status)
	}
	if string(payload) != "payload" {
		t.Errorf("payload = %q, want the second frame's body", payload)
	}
}

func TestSessionRequestCorrelationMismatch(t *testing.T) {
	tr, conn := newFakeTransport()
	s := NewSession(tr)

	conn.inbound.Write(respond(types.CommandRead, 5, types.StatusSuccess, 0, nil))

	if _, _, err := s.request(types.CommandRead, 0, nil, types.StatusSuccess); err == nil {
		t.Fatal("expected correlation error for mismatched message id")
	}
}

func TestSessionMessageIDIncrementsOncePerRequest(t *testing.T) {
	tr, conn := newFakeTransport()
	s := NewSession(tr)

	conn.inbound.Write(respond(types.CommandRead, 0, types.StatusSuccess, 0, nil))
	conn.inbound.Write(respond(types.CommandRead, 1, types.StatusAccessDenied, 0, nil))
	conn.inbound.Write(respond(types.CommandRead, 2, types.StatusSuccess, 0, nil))

	if _, _, err := s.request(types.CommandRead, 0, nil, types.StatusSuccess); err != nil {
		t.Fatalf("first request: %v", err)
	}
	// a status failure still consumes exactly one message id
	if _, _, err := s.request(types.CommandRead, 0, nil, types.StatusSuccess); err == nil {
		t.Fatal("second request should fail on status")
	}
	if _, _, err := s.request(types.CommandRead, 0, nil, types.StatusSuccess); err != nil {
		t.Fatalf("third request: %v", err)
	}
}

func TestSessionRequestStatusMismatch(t *testing.T) {
	tr, conn := newFakeTransport()
	s := NewSession(tr)

	conn.inbound.Write(respond(types.CommandSessionSetup, 0, types.StatusLogonFailure, 0, nil))

	_, _, err := s.request(types.CommandSessionSetup, 0, nil, types.StatusSuccess)
	if err == nil {
		t.Fatal("expected status error")
	}
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error %T is not a StatusError", err)
	}
	if se.Status != types.StatusLogonFailure || se.Expected != types.StatusSuccess {
		t.Errorf("status error = %+v", se)
	}
	if !errors.Is(err, ErrAuthFailed) {
		t.Error("logon failure should unwrap to ErrAuthFailed")
	}
}

// Access denied during authentication must surface the sentinel and leave
// the connection closed.
func TestAuthenticateAccessDeniedClosesConnection(t *testing.T) {
	tr, conn := newFakeTransport()
	s := NewSession(tr)
	s.negotiated = &NegotiateResult{Dialect: types.DialectSMB2_1}
	client := &Client{opts: Options{Host: "testhost", Username: "alice"}, transport: tr, session: s}

	conn.inbound.Write(respond(types.CommandSessionSetup, 0, types.StatusAccessDenied, 0, nil))

	err := client.Authenticate(context.Background())
	if err == nil {
		t.Fatal("expected authentication failure")
	}
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("error = %v, want ErrAccessDenied in chain", err)
	}
	if !conn.closed {
		t.Error("connection left open after failed authentication")
	}
	if _, _, err := s.request(types.CommandTreeConnect, 0, nil, types.StatusSuccess); !errors.Is(err, ErrNotConnected) {
		t.Errorf("request after failure = %v, want ErrNotConnected", err)
	}
}

func TestTreeConnectRequiresAuthentication(t *testing.T) {
	tr, _ := newFakeTransport()
	s := NewSession(tr)
	if _, err := s.TreeConnect(context.Background(), "IPC$"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("tree connect before auth = %v, want ErrNotConnected", err)
	}
}

func TestSessionSetupCapturesSessionID(t *testing.T) {
	tr, conn := newFakeTransport()
	s := NewSession(tr)

	h := types.NewHeader(types.CommandSessionSetup, 0)
	h.Status = types.StatusMoreProcessingReq
	h.Flags = types.FlagsServerToRedir
	h.SessionID = 0xCAFEBABE
	body := make([]byte, 8)
	body[0] = 9 // structure size
	conn.inbound.Write(frame(append(h.Marshal(), body...)))

	header, _, err := s.request(types.CommandSessionSetup, 0, nil, types.StatusMoreProcessingReq)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if header.SessionID != 0xCAFEBABE {
		t.Errorf("session id = %x", header.SessionID)
	}
}
